package apiserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/costpilot/costpilot/internal/config"
	"github.com/costpilot/costpilot/internal/store"
)

// NewServer creates a new HTTP server for the REST API.
func NewServer(cfg *config.Config, estimates *store.EstimateStore) *http.Server {
	router := NewRouter(cfg, estimates)

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.APIServer.Address, cfg.APIServer.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
