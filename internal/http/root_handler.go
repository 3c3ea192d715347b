package http

import (
	"net/http"

	"github.com/skyyield/skyyield/pkg/logger"
)

// RootHandler serves the health and version endpoints
type RootHandler struct {
	version     string
	environment string
	logger      logger.Logger
}

func NewRootHandler(version, environment string, logger logger.Logger) *RootHandler {
	return &RootHandler{
		version:     version,
		environment: environment,
		logger:      logger,
	}
}

func (h *RootHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/", h.handleRoot)
}

func (h *RootHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.version,
	})
}

func (h *RootHandler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteJSONError(w, "Not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"name":        "SkyYield API",
		"version":     h.version,
		"environment": h.environment,
	})
}
