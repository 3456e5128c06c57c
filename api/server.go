package api

import (
	"net/http"
	"os"
	"time"

	"github.com/efarmaplus/storefront/pkg/config"
)

// NewServer wraps handler with the listen address and timeouts cmd/api uses.
// PORT, when set by the platform, wins over the configured port.
func NewServer(cfg *config.Config, handler http.Handler) *http.Server {
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	return &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
