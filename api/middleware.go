package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// setupMiddleware configures global middleware for the engine
func setupMiddleware(engine *gin.Engine, cfg Config, log logrus.FieldLogger) {
	// a panic in a handler becomes a 500, never a crash
	engine.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		log.WithField("path", c.Request.URL.Path).Errorf("Recovered from panic: %v", err)
		c.AbortWithStatusJSON(500, gin.H{"detail": "Erreur interne"})
	}))
	engine.Use(requestLogger(log))
	engine.Use(setupCORS(cfg.AllowedOrigins))
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"status":  c.Writer.Status(),
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"latency": time.Since(start),
		})
		if c.Writer.Status() >= 500 {
			entry.Error("Request failed")
			return
		}
		entry.Debug("Request served")
	}
}

func setupCORS(allowed string) gin.HandlerFunc {
	origins := strings.Split(allowed, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if allowed == "" || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
