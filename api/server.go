package api

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/accidentcast/forecaster/dashboard"
	"github.com/accidentcast/forecaster/series"
	"github.com/accidentcast/forecaster/service"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Forecaster computes forecasts for the endpoint
type Forecaster interface {
	Forecast(ctx context.Context, key string, days int) (*service.Forecast, error)
	MaxHorizonDays() int
}

// Deps are the components served by the API. Gatherer may be nil when metrics are disabled.
type Deps struct {
	Keys      []series.Key
	Forecasts Forecaster
	Dashboard *dashboard.Dashboard
	Gatherer  prometheus.Gatherer
}

type Server struct {
	cfg    Config
	deps   Deps
	doc    *openapi3.T
	engine *gin.Engine
	server *http.Server
	log    logrus.FieldLogger
}

// New builds the router. Every dependency must be loaded already.
func New(cfg Config, deps Deps, log logrus.FieldLogger) *Server {
	if cfg.DashboardDays <= 0 {
		cfg.DashboardDays = dashboard.DefaultDays
	}
	s := &Server{
		cfg:  cfg,
		deps: deps,
		doc:  NewDocument(deps.Keys, deps.Forecasts.MaxHorizonDays()),
		log:  log.WithField("component", "api"),
	}

	engine := gin.New()
	setupMiddleware(engine, cfg, s.log)
	engine.SetHTMLTemplate(template.Must(template.New("").Parse(templates)))

	engine.GET("/", s.root)
	engine.GET("/health", s.health)
	engine.GET("/docs", s.docs)
	engine.GET("/openapi.json", s.openapi)
	engine.POST("/predict/:model_name/:days", s.predict)
	if deps.Dashboard != nil {
		engine.GET("/dashboard", s.dashboardIndex)
		engine.GET("/dashboard/forecast", s.dashboardForecast)
		engine.GET("/dashboard/history", s.dashboardHistory)
		engine.GET("/dashboard/history/csv", s.historyCSV)
	}
	if cfg.MetricsEnabled && deps.Gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	s.engine = engine
	return s
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves in the background until Stop is called
func (s *Server) Start(_ context.Context) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	s.server = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		s.log.WithField("addr", s.cfg.Addr).Info("Starting API and dashboard server")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("Server failed")
		}
	}()
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	s.log.Info("Stopping API and dashboard server")

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
