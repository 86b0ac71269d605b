package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/phoneauth/internal/crypto"
	"github.com/iudanet/phoneauth/internal/models"
	"github.com/iudanet/phoneauth/internal/server/router"
	"github.com/iudanet/phoneauth/internal/server/storage"
	"github.com/iudanet/phoneauth/internal/validation"
	"github.com/iudanet/phoneauth/pkg/api"
)

// UsersHandler обрабатывает ресурс /users
type UsersHandler struct {
	logger *slog.Logger
	users  storage.UserStorage
	tokens storage.TokenStorage
	hasher *crypto.Hasher
	auth   *Authenticator
}

// NewUsersHandler создает новый handler для пользователей
func NewUsersHandler(
	logger *slog.Logger,
	users storage.UserStorage,
	tokens storage.TokenStorage,
	hasher *crypto.Hasher,
	auth *Authenticator,
) *UsersHandler {
	return &UsersHandler{
		logger: logger,
		users:  users,
		tokens: tokens,
		hasher: hasher,
		auth:   auth,
	}
}

// Handle выбирает обработчик по методу запроса
func (h *UsersHandler) Handle(ctx context.Context, req *router.Request) router.Result {
	switch req.Method {
	case "post":
		return h.Create(ctx, req)
	case "get":
		return h.Get(ctx, req)
	case "put":
		return h.Update(ctx, req)
	case "delete":
		return h.Delete(ctx, req)
	default:
		return methodNotAllowed()
	}
}

// Create обрабатывает POST /users
// Required: firstName, lastName, phone, password, tosAgreement
func (h *UsersHandler) Create(ctx context.Context, req *router.Request) router.Result {
	body := crypto.DecodeJSON[api.CreateUserRequest](req.Payload)

	firstName := strings.TrimSpace(body.FirstName)
	lastName := strings.TrimSpace(body.LastName)
	phone := strings.TrimSpace(body.Phone)
	password := strings.TrimSpace(body.Password)

	if firstName == "" || lastName == "" || password == "" ||
		validation.ValidatePhone(phone) != nil || !body.TOSAgreement {
		return errorResult(http.StatusBadRequest, "Missing required fields")
	}

	hashed, err := h.hasher.Hash(password)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		return errorResult(http.StatusInternalServerError, "Could not hash the user's password")
	}

	user := &models.User{
		FirstName:      firstName,
		LastName:       lastName,
		Phone:          phone,
		HashedPassword: hashed,
		TOSAgreement:   true,
	}

	// CreateUser атомарен: из двух параллельных запросов с одним телефоном успешен только один
	if err := h.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.logger.WarnContext(ctx, "user already exists", slog.String("phone", phone))
			return errorResult(http.StatusBadRequest, "A user with that phone number already exists")
		}
		h.logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
		return errorResult(http.StatusInternalServerError, "Could not create the new user")
	}

	h.logger.InfoContext(ctx, "user created", slog.String("phone", phone))

	return router.Result{Status: http.StatusOK}
}

// Get обрабатывает GET /users?phone=...
func (h *UsersHandler) Get(ctx context.Context, req *router.Request) router.Result {
	phone := strings.TrimSpace(req.Query.Get("phone"))
	if validation.ValidatePhone(phone) != nil {
		return errorResult(http.StatusBadRequest, "Missing required field")
	}

	if !h.auth.Authorize(ctx, req, phone) {
		return forbidden()
	}

	user, err := h.users.GetUser(ctx, phone)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		}
		return notFound()
	}

	return router.Result{Status: http.StatusOK, Payload: toAPIUser(user)}
}

// Update обрабатывает PUT /users
// Required: phone. Optional (хотя бы одно): firstName, lastName, password
func (h *UsersHandler) Update(ctx context.Context, req *router.Request) router.Result {
	body := crypto.DecodeJSON[api.UpdateUserRequest](req.Payload)

	phone := strings.TrimSpace(body.Phone)
	firstName := strings.TrimSpace(body.FirstName)
	lastName := strings.TrimSpace(body.LastName)
	password := strings.TrimSpace(body.Password)

	if validation.ValidatePhone(phone) != nil {
		return errorResult(http.StatusBadRequest, "Missing required field")
	}
	if firstName == "" && lastName == "" && password == "" {
		return errorResult(http.StatusBadRequest, "Missing fields to update")
	}

	if !h.auth.Authorize(ctx, req, phone) {
		return forbidden()
	}

	user, err := h.users.GetUser(ctx, phone)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		}
		return errorResult(http.StatusBadRequest, "The specified user does not exist")
	}

	if firstName != "" {
		user.FirstName = firstName
	}
	if lastName != "" {
		user.LastName = lastName
	}
	if password != "" {
		hashed, err := h.hasher.Hash(password)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
			return errorResult(http.StatusInternalServerError, "Could not hash the user's password")
		}
		user.HashedPassword = hashed
	}

	if err := h.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return errorResult(http.StatusBadRequest, "The specified user does not exist")
		}
		h.logger.ErrorContext(ctx, "failed to update user", slog.Any("error", err))
		return errorResult(http.StatusInternalServerError, "Could not update the user")
	}

	h.logger.InfoContext(ctx, "user updated", slog.String("phone", phone))

	return router.Result{Status: http.StatusOK}
}

// Delete обрабатывает DELETE /users?phone=...
func (h *UsersHandler) Delete(ctx context.Context, req *router.Request) router.Result {
	phone := strings.TrimSpace(req.Query.Get("phone"))
	if validation.ValidatePhone(phone) != nil {
		return errorResult(http.StatusBadRequest, "Missing required field")
	}

	if !h.auth.Authorize(ctx, req, phone) {
		return forbidden()
	}

	if err := h.users.DeleteUser(ctx, phone); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return errorResult(http.StatusBadRequest, "Could not find the specified user")
		}
		h.logger.ErrorContext(ctx, "failed to delete user", slog.Any("error", err))
		return errorResult(http.StatusInternalServerError, "Could not delete the specified user")
	}

	// Токены удаленного пользователя больше не нужны, ошибка не влияет на ответ
	revoked, err := h.tokens.DeleteUserTokens(ctx, phone)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to revoke tokens of deleted user",
			slog.String("phone", phone),
			slog.Any("error", err))
	}

	h.logger.InfoContext(ctx, "user deleted",
		slog.String("phone", phone),
		slog.Int("revoked_tokens", revoked))

	return router.Result{Status: http.StatusOK}
}

func toAPIUser(u *models.User) api.User {
	return api.User(u.Public())
}
