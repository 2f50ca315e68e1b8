// Package api exposes the forecast service over HTTP: the prediction endpoint, its OpenAPI
// document, health and metrics, and the dashboard pages.
package api

import (
	"errors"
	"time"
)

var ErrAddrRequired = errors.New("api address is required")

// Config represents the HTTP server configuration
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	// AllowedOrigins is a comma separated list of CORS origins, * allows any
	AllowedOrigins string
	MetricsEnabled bool
	// DashboardDays is the horizon of the dashboard when none is requested
	DashboardDays int
}

// Validate validates the API configuration
func (c *Config) Validate() error {
	if c.Addr == "" {
		return ErrAddrRequired
	}
	return nil
}
