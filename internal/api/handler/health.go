package handler

import (
	"net/http"

	"github.com/hfakhoury/majalla-chat/internal/api/response"
	"github.com/hfakhoury/majalla-chat/internal/llm"
	"github.com/hfakhoury/majalla-chat/internal/repository/mongo"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ListProviders returns the configured generation providers
func ListProviders(router *llm.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]any{
			"providers":        router.ListProviders(),
			"default_provider": router.DefaultProvider(),
		})
	}
}

// ReadyCheck returns readiness status including document store connectivity
func ReadyCheck(client *mongo.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := client.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "document store not ready")
			return
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}
