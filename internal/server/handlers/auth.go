package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/iudanet/phoneauth/internal/server/router"
	"github.com/iudanet/phoneauth/internal/server/storage"
	"github.com/iudanet/phoneauth/internal/validation"
	"github.com/iudanet/phoneauth/pkg/api"
)

const bearerPrefix = "Bearer "

// Authenticator проверяет, что запрос к ресурсу пользователя
// сопровождается действующим токеном этого пользователя
type Authenticator struct {
	logger   *slog.Logger
	tokens   storage.TokenStorage
	now      func() time.Time
	required bool
}

// NewAuthenticator создает Authenticator.
// При required == false Authorize пропускает все запросы.
func NewAuthenticator(logger *slog.Logger, tokens storage.TokenStorage, required bool) *Authenticator {
	return &Authenticator{
		logger:   logger,
		tokens:   tokens,
		now:      time.Now,
		required: required,
	}
}

// Verify reports whether token id exists, belongs to phone and has not expired.
// The record is read from storage on every call.
func (a *Authenticator) Verify(ctx context.Context, id, phone string) bool {
	if validation.ValidateTokenID(id) != nil || phone == "" {
		return false
	}

	token, err := a.tokens.GetToken(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrTokenNotFound) {
			a.logger.ErrorContext(ctx, "failed to read token", slog.Any("error", err))
		}
		return false
	}

	return token.Phone == phone && token.Valid(a.now())
}

// Authorize проверяет токен из заголовков запроса для phone
func (a *Authenticator) Authorize(ctx context.Context, req *router.Request, phone string) bool {
	if !a.required {
		return true
	}

	id := TokenFromHeaders(req.Headers)
	if a.Verify(ctx, id, phone) {
		return true
	}

	a.logger.WarnContext(ctx, "rejected request with invalid token",
		slog.String("path", req.Path),
		slog.String("method", req.Method))
	return false
}

// TokenFromHeaders извлекает id токена из заголовка "token"
// или из "Authorization: Bearer <id>"
func TokenFromHeaders(h http.Header) string {
	if id := strings.TrimSpace(h.Get(api.TokenHeader)); id != "" {
		return id
	}

	authHeader := h.Get("Authorization")
	if strings.HasPrefix(authHeader, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	}

	return ""
}

func forbidden() router.Result {
	return errorResult(http.StatusForbidden, "Missing required token in header, or token is invalid")
}
