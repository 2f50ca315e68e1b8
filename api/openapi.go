package api

import (
	"net/http"

	"github.com/accidentcast/forecaster/forecast"
	"github.com/accidentcast/forecaster/series"
	"github.com/getkin/kin-openapi/openapi3"
)

const (
	Title   = "API Prophet"
	Version = "1.0.0"
)

func detailSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("detail", openapi3.NewStringSchema()).
		WithRequired([]string{"detail"})
}

func jsonResponse(description string, schema *openapi3.Schema) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(description).WithJSONSchema(schema)}
}

// recordSchema describes one forecast day. Seasonality and regressor columns depend on the
// model and are left as additional properties.
func recordSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema().
		WithProperty("ds", openapi3.NewStringSchema()).
		WithProperty("yhat", openapi3.NewFloat64Schema()).
		WithProperty("yhat_lower", openapi3.NewFloat64Schema()).
		WithProperty("yhat_upper", openapi3.NewFloat64Schema()).
		WithProperty(forecast.ComponentTrend, openapi3.NewFloat64Schema()).
		WithProperty(forecast.ComponentHolidays, openapi3.NewFloat64Schema()).
		WithProperty(forecast.ComponentExtraRegressors, openapi3.NewFloat64Schema()).
		WithProperty(forecast.ComponentAdditiveTerms, openapi3.NewFloat64Schema()).
		WithAdditionalProperties(openapi3.NewFloat64Schema())
	schema.Required = []string{"ds", "yhat", "yhat_lower", "yhat_upper", forecast.ComponentTrend}
	return schema
}

// NewDocument builds the OpenAPI description of the public routes
func NewDocument(keys []series.Key, maxDays int) *openapi3.T {
	enum := make([]any, len(keys))
	for i, k := range keys {
		enum[i] = k.String()
	}

	predict := &openapi3.Operation{
		OperationID: "predict",
		Summary:     "Prévision quotidienne d'une série sur un horizon en jours",
		Parameters: openapi3.Parameters{
			&openapi3.ParameterRef{Value: openapi3.NewPathParameter("model_name").
				WithDescription("Série à prévoir").
				WithSchema(openapi3.NewStringSchema().WithEnum(enum...))},
			&openapi3.ParameterRef{Value: openapi3.NewPathParameter("days").
				WithDescription("Nombre de jours prévus après l'historique").
				WithSchema(openapi3.NewIntegerSchema().WithMin(0).WithMax(float64(maxDays)))},
		},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, jsonResponse("Une prévision par jour", openapi3.NewArraySchema().WithItems(recordSchema()))),
			openapi3.WithStatus(http.StatusNotFound, jsonResponse("Modèle introuvable", detailSchema())),
			openapi3.WithStatus(http.StatusUnprocessableEntity, jsonResponse("Horizon invalide", detailSchema())),
		),
	}

	root := &openapi3.Operation{
		OperationID: "root",
		Summary:     "Accueil",
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, jsonResponse("Message d'accueil", openapi3.NewObjectSchema().
				WithProperty("message", openapi3.NewStringSchema()).
				WithProperty("docs", openapi3.NewStringSchema()))),
		),
	}

	health := &openapi3.Operation{
		OperationID: "health",
		Summary:     "État du service",
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, jsonResponse("Séries chargées", openapi3.NewObjectSchema().
				WithProperty("status", openapi3.NewStringSchema()).
				WithProperty("series", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())))),
		),
	}

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   Title,
			Version: Version,
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/", &openapi3.PathItem{Get: root}),
			openapi3.WithPath("/health", &openapi3.PathItem{Get: health}),
			openapi3.WithPath("/predict/{model_name}/{days}", &openapi3.PathItem{Post: predict}),
		),
	}
}
