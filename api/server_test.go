package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/accidentcast/forecaster/dashboard"
	"github.com/accidentcast/forecaster/history"
	"github.com/accidentcast/forecaster/internal/testutil"
	"github.com/accidentcast/forecaster/regressor"
	"github.com/accidentcast/forecaster/registry"
	"github.com/accidentcast/forecaster/series"
	"github.com/accidentcast/forecaster/service"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const historyDays = 90

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	keys := series.DefaultKeys()
	fx := testutil.Write(t, keys, historyDays, 60)

	entries := make([]registry.Entry, len(keys))
	for i, key := range keys {
		entries[i] = registry.Entry{Key: key, Path: fx.ModelPath(key)}
	}
	log, _ := test.NewNullLogger()
	reg, err := registry.Load(context.Background(), entries, log)
	require.NoError(t, err)
	hist, err := history.Load(fx.HistoryPath)
	require.NoError(t, err)

	promReg := prometheus.NewRegistry()
	svc := service.New(reg, regressor.NewStore(fx.RegressorsDir), service.NewDefaultOptions(), promReg, log)
	return New(Config{Addr: ":0", MetricsEnabled: true, DashboardDays: 30}, Deps{
		Keys:      reg.Keys(),
		Forecasts: svc,
		Dashboard: dashboard.New(svc, reg, hist),
		Gatherer:  promReg,
	}, log)
}

func serve(s *Server, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestPredict(t *testing.T) {
	s := newTestServer(t)

	testData := map[string]struct {
		target string
		code   int
		detail string
		rows   int
		last   string
	}{
		"total accidents": {
			target: "/predict/total_accidents/30",
			code:   http.StatusOK,
			rows:   historyDays + 30,
			last:   "2019-04-30T00:00:00",
		},
		"history only": {
			target: "/predict/total_accidents/0",
			code:   http.StatusOK,
			rows:   historyDays,
			last:   "2019-03-31T00:00:00",
		},
		"accented series": {
			target: "/predict/" + url.PathEscape(series.SeverityLightInjury.String()) + "/7",
			code:   http.StatusOK,
			rows:   historyDays + 7,
			last:   "2019-04-07T00:00:00",
		},
		"unknown series": {
			target: "/predict/unknown_series/30",
			code:   http.StatusNotFound,
			detail: "Modèle unknown_series introuvable",
		},
		"non integer days": {
			target: "/predict/total_accidents/abc",
			code:   http.StatusUnprocessableEntity,
		},
		"negative days": {
			target: "/predict/total_accidents/-1",
			code:   http.StatusUnprocessableEntity,
		},
		"too many days": {
			target: "/predict/total_accidents/366",
			code:   http.StatusUnprocessableEntity,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			w := serve(s, http.MethodPost, td.target)
			require.Equal(t, td.code, w.Code, w.Body.String())

			if td.code != http.StatusOK {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				require.Contains(t, body, "detail")
				if td.detail != "" {
					assert.Equal(t, td.detail, body["detail"])
				}
				return
			}

			var records []map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
			require.Len(t, records, td.rows)
			assert.Equal(t, "2019-01-01T00:00:00", records[0]["ds"])
			assert.Equal(t, td.last, records[len(records)-1]["ds"])
			for _, rec := range records {
				yhat := rec["yhat"].(float64)
				trend := rec["trend"].(float64)
				additive := rec["additive_terms"].(float64)
				assert.InDelta(t, yhat, trend+additive, 1e-9)
				sum := rec["weekly"].(float64) + rec["yearly"].(float64) +
					rec["holidays"].(float64) + rec["extra_regressors_additive"].(float64)
				assert.InDelta(t, additive, sum, 1e-9)
			}
		})
	}
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t)

	testData := map[string]struct {
		method   string
		target   string
		code     int
		contains []string
	}{
		"root": {
			method:   http.MethodGet,
			target:   "/",
			code:     http.StatusOK,
			contains: []string{"Bienvenue sur l'API Prophet !", `"docs":"/docs"`},
		},
		"health": {
			method:   http.MethodGet,
			target:   "/health",
			code:     http.StatusOK,
			contains: []string{`"status":"ok"`, "total_accidents"},
		},
		"docs": {
			method:   http.MethodGet,
			target:   "/docs",
			code:     http.StatusOK,
			contains: []string{"swagger-ui", "/openapi.json"},
		},
		"dashboard index": {
			method:   http.MethodGet,
			target:   "/dashboard",
			code:     http.StatusOK,
			contains: []string{"/dashboard/forecast", "total_accidents", "/dashboard/history?series=total_accidents", "/dashboard/history/csv"},
		},
		"dashboard forecast": {
			method:   http.MethodGet,
			target:   "/dashboard/forecast?series=total_accidents&days=20",
			code:     http.StatusOK,
			contains: []string{"Contributions", "echarts"},
		},
		"dashboard default days": {
			method: http.MethodGet,
			target: "/dashboard/forecast?series=total_accidents",
			code:   http.StatusOK,
		},
		"dashboard unknown series": {
			method:   http.MethodGet,
			target:   "/dashboard/forecast?series=unknown_series",
			code:     http.StatusNotFound,
			contains: []string{"unknown_series introuvable"},
		},
		"dashboard bad days": {
			method: http.MethodGet,
			target: "/dashboard/forecast?series=total_accidents&days=0",
			code:   http.StatusUnprocessableEntity,
		},
		"dashboard history": {
			method:   http.MethodGet,
			target:   "/dashboard/history?series=total_accidents",
			code:     http.StatusOK,
			contains: []string{"Moyenne Mobile 30 jours", "01-01-2019 au 31-03-2019"},
		},
		"dashboard history range": {
			method:   http.MethodGet,
			target:   "/dashboard/history?series=total_accidents&from=2019-02-01&to=2019-02-28",
			code:     http.StatusOK,
			contains: []string{"01-02-2019 au 28-02-2019"},
		},
		"dashboard history unknown series": {
			method:   http.MethodGet,
			target:   "/dashboard/history?series=unknown_series",
			code:     http.StatusNotFound,
			contains: []string{"unknown_series introuvable"},
		},
		"dashboard history bad date": {
			method:   http.MethodGet,
			target:   "/dashboard/history?series=total_accidents&from=hier",
			code:     http.StatusUnprocessableEntity,
			contains: []string{"from doit"},
		},
		"dashboard history reversed range": {
			method: http.MethodGet,
			target: "/dashboard/history?series=total_accidents&from=2019-03-01&to=2019-02-01",
			code:   http.StatusUnprocessableEntity,
		},
		"history csv": {
			method:   http.MethodGet,
			target:   "/dashboard/history/csv",
			code:     http.StatusOK,
			contains: []string{"date,total_accidents,", "2019-03-31,"},
		},
		"history csv one series": {
			method:   http.MethodGet,
			target:   "/dashboard/history/csv?series=total_accidents&from=2019-03-31",
			code:     http.StatusOK,
			contains: []string{"date,total_accidents\n2019-03-31,"},
		},
		"history csv unknown series": {
			method: http.MethodGet,
			target: "/dashboard/history/csv?series=unknown_series",
			code:   http.StatusNotFound,
		},
		"metrics": {
			method: http.MethodGet,
			target: "/metrics",
			code:   http.StatusOK,
		},
		"predict with get": {
			method: http.MethodGet,
			target: "/predict/total_accidents/30",
			code:   http.StatusNotFound,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			w := serve(s, td.method, td.target)
			require.Equal(t, td.code, w.Code, w.Body.String())
			for _, c := range td.contains {
				assert.Contains(t, w.Body.String(), c)
			}
		})
	}
}

func TestHistoryCSVHeaders(t *testing.T) {
	s := newTestServer(t)
	w := serve(s, http.MethodGet, "/dashboard/history/csv?series=total_accidents&to=2019-01-02")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, contentTypeCSV, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="nbr_acc_jour.csv"`, w.Header().Get("Content-Disposition"))
	assert.Len(t, strings.Split(strings.TrimSpace(w.Body.String()), "\n"), 3)
}

func TestMetricsAfterPredict(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, serve(s, http.MethodPost, "/predict/total_accidents/5").Code)
	require.Equal(t, http.StatusNotFound, serve(s, http.MethodPost, "/predict/nope/5").Code)

	w := serve(s, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `accidentcast_forecasts_total{series="total_accidents",status="ok"} 1`), body)
	assert.True(t, strings.Contains(body, `accidentcast_forecasts_total{series="unknown",status="unknown_series"} 1`), body)
	assert.Contains(t, body, "accidentcast_forecast_duration_seconds")
}

func TestOpenAPI(t *testing.T) {
	s := newTestServer(t)

	w := serve(s, http.MethodGet, "/openapi.json")
	require.Equal(t, http.StatusOK, w.Code)

	doc, err := openapi3.NewLoader().LoadFromData(w.Body.Bytes())
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))

	predict := doc.Paths.Find("/predict/{model_name}/{days}")
	require.NotNil(t, predict)
	require.NotNil(t, predict.Post)
	assert.NotNil(t, predict.Post.Responses.Status(http.StatusNotFound))
	assert.NotNil(t, predict.Post.Responses.Status(http.StatusUnprocessableEntity))

	root := doc.Paths.Find("/")
	require.NotNil(t, root)
	assert.NotNil(t, root.Get)
}
