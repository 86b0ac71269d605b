package handlers

import (
	"context"
	"net/http"

	"github.com/iudanet/phoneauth/internal/server/router"
	"github.com/iudanet/phoneauth/pkg/api"
)

// HealthHandler отвечает на ping запросы
type HealthHandler struct {
	version string
}

// NewHealthHandler создает новый handler для ping
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version: version,
	}
}

// Ping обрабатывает /ping на любой метод
func (h *HealthHandler) Ping(context.Context, *router.Request) router.Result {
	return router.Result{
		Status:  http.StatusOK,
		Payload: api.HealthResponse{Status: "ok", Version: h.version},
	}
}
