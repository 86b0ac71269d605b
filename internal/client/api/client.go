package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iudanet/phoneauth/pkg/api"
)

// Error описывает ответ сервера со статусом вне 2xx
type Error struct {
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is a server Error with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовок с токеном при редиректе
				if len(via) > 0 && via[0].Header.Get(api.TokenHeader) != "" {
					req.Header.Set(api.TokenHeader, via[0].Header.Get(api.TokenHeader))
				}
				return nil
			},
		},
	}
}

// Ping проверяет доступность сервера
func (c *Client) Ping(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/ping", nil, "", nil, &resp); err != nil {
		return nil, fmt.Errorf("ping request failed: %w", err)
	}
	return &resp, nil
}

// CreateUser регистрирует нового пользователя
func (c *Client) CreateUser(ctx context.Context, req api.CreateUserRequest) error {
	if err := c.doRequest(ctx, http.MethodPost, "/users", nil, "", req, nil); err != nil {
		return fmt.Errorf("create user request failed: %w", err)
	}
	return nil
}

// GetUser получает данные пользователя
func (c *Client) GetUser(ctx context.Context, phone, token string) (*api.User, error) {
	var resp api.User
	query := url.Values{"phone": []string{phone}}
	if err := c.doRequest(ctx, http.MethodGet, "/users", query, token, nil, &resp); err != nil {
		return nil, fmt.Errorf("get user request failed: %w", err)
	}
	return &resp, nil
}

// UpdateUser изменяет имя, фамилию или пароль пользователя
func (c *Client) UpdateUser(ctx context.Context, req api.UpdateUserRequest, token string) error {
	if err := c.doRequest(ctx, http.MethodPut, "/users", nil, token, req, nil); err != nil {
		return fmt.Errorf("update user request failed: %w", err)
	}
	return nil
}

// DeleteUser удаляет пользователя
func (c *Client) DeleteUser(ctx context.Context, phone, token string) error {
	query := url.Values{"phone": []string{phone}}
	if err := c.doRequest(ctx, http.MethodDelete, "/users", query, token, nil, nil); err != nil {
		return fmt.Errorf("delete user request failed: %w", err)
	}
	return nil
}

// CreateToken выполняет вход и возвращает новый токен
func (c *Client) CreateToken(ctx context.Context, req api.CreateTokenRequest) (*api.Token, error) {
	var resp api.Token
	if err := c.doRequest(ctx, http.MethodPost, "/tokens", nil, "", req, &resp); err != nil {
		return nil, fmt.Errorf("create token request failed: %w", err)
	}
	return &resp, nil
}

// GetToken получает токен по id
func (c *Client) GetToken(ctx context.Context, id string) (*api.Token, error) {
	var resp api.Token
	query := url.Values{"id": []string{id}}
	if err := c.doRequest(ctx, http.MethodGet, "/tokens", query, "", nil, &resp); err != nil {
		return nil, fmt.Errorf("get token request failed: %w", err)
	}
	return &resp, nil
}

// ExtendToken продлевает действующий токен
func (c *Client) ExtendToken(ctx context.Context, id string) (*api.Token, error) {
	var resp api.Token
	req := api.ExtendTokenRequest{ID: id, Extend: true}
	if err := c.doRequest(ctx, http.MethodPut, "/tokens", nil, "", req, &resp); err != nil {
		return nil, fmt.Errorf("extend token request failed: %w", err)
	}
	return &resp, nil
}

// DeleteToken отзывает токен
func (c *Client) DeleteToken(ctx context.Context, id string) error {
	query := url.Values{"id": []string{id}}
	if err := c.doRequest(ctx, http.MethodDelete, "/tokens", query, "", nil, nil); err != nil {
		return fmt.Errorf("delete token request failed: %w", err)
	}
	return nil
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, token string, body, result any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(api.TokenHeader, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			apiErr.Message = errResp.Error
		}
		return apiErr
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
