// Package handlers implements the users, tokens and ping resources served
// through the router.
package handlers

import (
	"net/http"

	"github.com/iudanet/phoneauth/internal/server/router"
)

// Названия ресурсов в таблице маршрутизации
const (
	RoutePing   = "ping"
	RouteUsers  = "users"
	RouteTokens = "tokens"
)

// Routes собирает таблицу маршрутизации для router.New
func Routes(health *HealthHandler, users *UsersHandler, tokens *TokensHandler) map[string]router.HandlerFunc {
	return map[string]router.HandlerFunc{
		RoutePing:   health.Ping,
		RouteUsers:  users.Handle,
		RouteTokens: tokens.Handle,
	}
}

// errorResult формирует ответ с {"Error": message}
func errorResult(status int, message string) router.Result {
	return router.Result{
		Status:  status,
		Payload: router.ErrorPayload(message),
	}
}

func methodNotAllowed() router.Result {
	return router.Result{Status: http.StatusMethodNotAllowed}
}

func notFound() router.Result {
	return router.Result{Status: http.StatusNotFound}
}
