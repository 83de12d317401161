package api

import (
	"net"
	"net/http"

	"github.com/angelmondragon/storefront/pkg/config"
)

// NewServer builds the HTTP server for the development backend.
func NewServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         net.JoinHostPort("", cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}
