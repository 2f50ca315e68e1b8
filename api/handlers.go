package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/accidentcast/forecaster/internal/csvtable"
	"github.com/accidentcast/forecaster/series"
	"github.com/accidentcast/forecaster/service"
	"github.com/accidentcast/forecaster/timedataset"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeCSV  = "text/csv; charset=utf-8"

	historyFilename = "nbr_acc_jour.csv"
)

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Bienvenue sur l'API Prophet !",
		"docs":    "/docs",
	})
}

func (s *Server) health(c *gin.Context) {
	keys := make([]string, len(s.deps.Keys))
	for i, k := range s.deps.Keys {
		keys[i] = k.String()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "series": keys})
}

func (s *Server) openapi(c *gin.Context) {
	body, err := s.doc.MarshalJSON()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, contentTypeJSON, body)
}

func (s *Server) docs(c *gin.Context) {
	c.HTML(http.StatusOK, "docs", gin.H{"Title": Title, "DocURL": "/openapi.json"})
}

func (s *Server) predict(c *gin.Context) {
	name := c.Param("model_name")
	raw := c.Param("days")
	days, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": fmt.Sprintf("days doit être un entier, reçu %q", raw)})
		return
	}

	fc, err := s.deps.Forecasts.Forecast(c.Request.Context(), name, days)
	if err != nil {
		s.forecastError(c, name, err)
		return
	}
	body, err := json.Marshal(fc.Records)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, contentTypeJSON, body)
}

func (s *Server) dashboardIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index", gin.H{
		"Title":   Title,
		"Keys":    s.deps.Keys,
		"Days":    s.cfg.DashboardDays,
		"MaxDays": s.deps.Forecasts.MaxHorizonDays(),
	})
}

func (s *Server) dashboardForecast(c *gin.Context) {
	name := c.Query("series")
	days := s.cfg.DashboardDays
	if raw := c.Query("days"); raw != "" {
		var err error
		if days, err = strconv.Atoi(raw); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": fmt.Sprintf("days doit être un entier, reçu %q", raw)})
			return
		}
	}

	var buf bytes.Buffer
	if err := s.deps.Dashboard.Render(c.Request.Context(), &buf, name, days); err != nil {
		s.forecastError(c, name, err)
		return
	}
	c.Data(http.StatusOK, contentTypeHTML, buf.Bytes())
}

func (s *Server) dashboardHistory(c *gin.Context) {
	name := c.Query("series")
	from, to, ok := queryRange(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := s.deps.Dashboard.RenderHistory(&buf, name, from, to); err != nil {
		s.forecastError(c, name, err)
		return
	}
	c.Data(http.StatusOK, contentTypeHTML, buf.Bytes())
}

// historyCSV exports the recorded counts. Repeated series parameters select the columns.
func (s *Server) historyCSV(c *gin.Context) {
	names := c.QueryArray("series")
	keys := make([]series.Key, len(names))
	for i, name := range names {
		keys[i] = series.Key(name)
	}
	from, to, ok := queryRange(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := s.deps.Dashboard.WriteHistoryCSV(&buf, keys, from, to); err != nil {
		var name string
		if len(names) > 0 {
			name = names[0]
		}
		s.forecastError(c, name, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", historyFilename))
	c.Data(http.StatusOK, contentTypeCSV, buf.Bytes())
}

// queryRange reads the optional from and to days. It answers the request itself on a bad date.
func queryRange(c *gin.Context) (time.Time, time.Time, bool) {
	var bounds [2]time.Time
	for i, param := range []string{"from", "to"} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		d, err := csvtable.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": fmt.Sprintf("%s doit être une date, reçu %q", param, raw)})
			return time.Time{}, time.Time{}, false
		}
		bounds[i] = d
	}
	return bounds[0], bounds[1], true
}

func (s *Server) forecastError(c *gin.Context, name string, err error) {
	switch {
	case errors.Is(err, series.ErrUnknownSeries):
		c.JSON(http.StatusNotFound, gin.H{"detail": fmt.Sprintf("Modèle %s introuvable", name)})
	case errors.Is(err, service.ErrInvalidHorizon), errors.Is(err, timedataset.ErrInvalidRange):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
	default:
		s.fail(c, err)
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	s.log.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "Erreur interne"})
}
