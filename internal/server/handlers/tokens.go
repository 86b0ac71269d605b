package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/iudanet/phoneauth/internal/crypto"
	"github.com/iudanet/phoneauth/internal/models"
	"github.com/iudanet/phoneauth/internal/server/router"
	"github.com/iudanet/phoneauth/internal/server/storage"
	"github.com/iudanet/phoneauth/internal/validation"
	"github.com/iudanet/phoneauth/pkg/api"
)

// DefaultTokenTTL время жизни токена по умолчанию
const DefaultTokenTTL = time.Hour

// maxIDAttempts ограничивает число попыток подобрать свободный id токена
const maxIDAttempts = 3

// TokensHandler обрабатывает ресурс /tokens
type TokensHandler struct {
	logger *slog.Logger
	users  storage.UserStorage
	tokens storage.TokenStorage
	hasher *crypto.Hasher
	now    func() time.Time
	newID  func() (string, error)
	ttl    time.Duration
}

// NewTokensHandler создает новый handler для токенов.
// ttl <= 0 заменяется на DefaultTokenTTL.
func NewTokensHandler(
	logger *slog.Logger,
	users storage.UserStorage,
	tokens storage.TokenStorage,
	hasher *crypto.Hasher,
	ttl time.Duration,
) *TokensHandler {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokensHandler{
		logger: logger,
		users:  users,
		tokens: tokens,
		hasher: hasher,
		now:    time.Now,
		newID: func() (string, error) {
			return crypto.RandomString(validation.TokenIDLen)
		},
		ttl: ttl,
	}
}

// Handle выбирает обработчик по методу запроса
func (h *TokensHandler) Handle(ctx context.Context, req *router.Request) router.Result {
	switch req.Method {
	case "post":
		return h.Create(ctx, req)
	case "get":
		return h.Get(ctx, req)
	case "put":
		return h.Extend(ctx, req)
	case "delete":
		return h.Delete(ctx, req)
	default:
		return methodNotAllowed()
	}
}

// Create обрабатывает POST /tokens
// Required: phone, password
func (h *TokensHandler) Create(ctx context.Context, req *router.Request) router.Result {
	body := crypto.DecodeJSON[api.CreateTokenRequest](req.Payload)

	phone := strings.TrimSpace(body.Phone)
	password := strings.TrimSpace(body.Password)

	if validation.ValidatePhone(phone) != nil || password == "" {
		return errorResult(http.StatusBadRequest, "Missing required field(s)")
	}

	user, err := h.users.GetUser(ctx, phone)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		}
		return errorResult(http.StatusBadRequest, "Could not find the specified user")
	}

	if !h.hasher.Matches(password, user.HashedPassword) {
		h.logger.WarnContext(ctx, "password mismatch", slog.String("phone", phone))
		return errorResult(http.StatusBadRequest, "Password did not match the specified user's stored password")
	}

	token, err := h.issue(ctx, phone)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create token", slog.Any("error", err))
		return errorResult(http.StatusInternalServerError, "Could not create the new token")
	}

	h.logger.InfoContext(ctx, "token issued",
		slog.String("phone", phone),
		slog.Time("expires_at", token.ExpiresAt()))

	return router.Result{Status: http.StatusOK, Payload: toAPIToken(token)}
}

// issue генерирует id и сохраняет новый токен,
// при совпадении id повторяет попытку
func (h *TokensHandler) issue(ctx context.Context, phone string) (*models.Token, error) {
	var lastErr error
	for range maxIDAttempts {
		id, err := h.newID()
		if err != nil {
			return nil, err
		}

		token := models.NewToken(id, phone, h.now(), h.ttl)
		err = h.tokens.CreateToken(ctx, token)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, storage.ErrTokenAlreadyExists) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// Get обрабатывает GET /tokens?id=...
func (h *TokensHandler) Get(ctx context.Context, req *router.Request) router.Result {
	id := strings.TrimSpace(req.Query.Get("id"))
	if id == "" {
		return errorResult(http.StatusBadRequest, "Missing required field")
	}
	if validation.ValidateTokenID(id) != nil {
		return notFound()
	}

	token, err := h.tokens.GetToken(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrTokenNotFound) {
			h.logger.ErrorContext(ctx, "failed to get token", slog.Any("error", err))
		}
		return notFound()
	}

	return router.Result{Status: http.StatusOK, Payload: toAPIToken(token)}
}

// Extend обрабатывает PUT /tokens
// Required: id, extend == true
func (h *TokensHandler) Extend(ctx context.Context, req *router.Request) router.Result {
	body := crypto.DecodeJSON[api.ExtendTokenRequest](req.Payload)

	id := strings.TrimSpace(body.ID)
	if validation.ValidateTokenID(id) != nil || !body.Extend {
		return errorResult(http.StatusBadRequest, "Missing required field(s) or field(s) are invalid")
	}

	token, err := h.tokens.GetToken(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrTokenNotFound) {
			h.logger.ErrorContext(ctx, "failed to get token", slog.Any("error", err))
		}
		return errorResult(http.StatusBadRequest, "Specified token does not exist")
	}

	now := h.now()
	if !token.Valid(now) {
		return errorResult(http.StatusBadRequest, "The token has already expired, and cannot be extended")
	}

	token.Extend(now, h.ttl)

	if err := h.tokens.UpdateToken(ctx, token); err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return errorResult(http.StatusBadRequest, "Specified token does not exist")
		}
		h.logger.ErrorContext(ctx, "failed to update token", slog.Any("error", err))
		return errorResult(http.StatusInternalServerError, "Could not update the token's expiration")
	}

	return router.Result{Status: http.StatusOK, Payload: toAPIToken(token)}
}

// Delete обрабатывает DELETE /tokens?id=...
func (h *TokensHandler) Delete(ctx context.Context, req *router.Request) router.Result {
	id := strings.TrimSpace(req.Query.Get("id"))
	if validation.ValidateTokenID(id) != nil {
		return errorResult(http.StatusBadRequest, "Missing required field")
	}

	if err := h.tokens.DeleteToken(ctx, id); err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return errorResult(http.StatusBadRequest, "Could not find the specified token")
		}
		h.logger.ErrorContext(ctx, "failed to delete token", slog.Any("error", err))
		return errorResult(http.StatusInternalServerError, "Could not delete the specified token")
	}

	return router.Result{Status: http.StatusOK}
}

func toAPIToken(t *models.Token) api.Token {
	return api.Token{
		Phone:   t.Phone,
		ID:      t.ID,
		Expires: t.Expires,
	}
}
