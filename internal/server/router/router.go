// Package router maps a decoded HTTP request onto a named resource handler
// and turns the handler's Result into a JSON response.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/iudanet/phoneauth/pkg/api"
)

// DefaultMaxBodyBytes ограничивает размер тела запроса по умолчанию
const DefaultMaxBodyBytes = 1 << 20

// Request is the normalized request descriptor passed to handlers.
type Request struct {
	Query   url.Values
	Headers http.Header
	Path    string // путь без ведущих и завершающих "/"
	Method  string // метод в нижнем регистре: "post", "get", ...
	Payload []byte // тело запроса как есть
}

// Result is what a handler produces: a status and an optional payload.
// A zero Status means 200, a nil Payload is sent as {}.
type Result struct {
	Payload any
	Status  int
}

// HandlerFunc implements the business logic of one resource.
type HandlerFunc func(ctx context.Context, req *Request) Result

// Router dispatches requests by trimmed path. The routing table is fixed
// at construction and is safe for concurrent use.
type Router struct {
	logger       *slog.Logger
	routes       map[string]HandlerFunc
	notFound     HandlerFunc
	maxBodyBytes int64
}

// Option configures a Router
type Option func(*Router)

// WithMaxBodyBytes sets the request body limit.
func WithMaxBodyBytes(n int64) Option {
	return func(r *Router) {
		if n > 0 {
			r.maxBodyBytes = n
		}
	}
}

// WithNotFound replaces the handler used for unmapped paths.
func WithNotFound(h HandlerFunc) Option {
	return func(r *Router) {
		if h != nil {
			r.notFound = h
		}
	}
}

// New creates a Router over routes. Route keys are normalized the same way
// request paths are.
func New(logger *slog.Logger, routes map[string]HandlerFunc, opts ...Option) *Router {
	r := &Router{
		logger:       logger,
		routes:       make(map[string]HandlerFunc, len(routes)),
		notFound:     NotFound,
		maxBodyBytes: DefaultMaxBodyBytes,
	}

	for path, h := range routes {
		r.routes[TrimPath(path)] = h
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// NotFound always answers 404.
func NotFound(context.Context, *Request) Result {
	return Result{Status: http.StatusNotFound}
}

// TrimPath strips leading and trailing slashes.
func TrimPath(path string) string {
	return strings.Trim(path, "/")
}

// Handler returns the handler registered for path, or the not-found handler.
func (rt *Router) Handler(path string) HandlerFunc {
	if h, ok := rt.routes[TrimPath(path)]; ok {
		return h
	}
	return rt.notFound
}

// Dispatch runs the handler selected for req and normalizes its result.
func (rt *Router) Dispatch(ctx context.Context, req *Request) Result {
	res := rt.Handler(req.Path)(ctx, req)
	return Normalize(res)
}

// Normalize fills in the defaults of a Result.
func Normalize(res Result) Result {
	if res.Status == 0 {
		res.Status = http.StatusOK
	}
	if res.Payload == nil {
		res.Payload = struct{}{}
	}
	return res
}

// ServeHTTP decodes r into a Request, dispatches it and writes the JSON response.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, rt.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rt.logger.WarnContext(ctx, "request body too large", slog.Int64("limit", tooLarge.Limit))
			rt.writeJSON(w, r, Result{Status: http.StatusBadRequest, Payload: ErrorPayload("Request body too large")})
			return
		}
		rt.logger.ErrorContext(ctx, "failed to read request body", slog.Any("error", err))
		rt.writeJSON(w, r, Result{Status: http.StatusBadRequest, Payload: ErrorPayload("Could not read request body")})
		return
	}

	req := &Request{
		Path:    TrimPath(r.URL.Path),
		Query:   r.URL.Query(),
		Method:  strings.ToLower(r.Method),
		Headers: r.Header,
		Payload: payload,
	}

	rt.writeJSON(w, r, rt.Dispatch(ctx, req))
}

// writeJSON отправляет JSON ответ
func (rt *Router) writeJSON(w http.ResponseWriter, r *http.Request, res Result) {
	res = Normalize(res)

	body, err := json.Marshal(res.Payload)
	if err != nil {
		rt.logger.ErrorContext(r.Context(), "failed to encode JSON response", slog.Any("error", err))
		res.Status = http.StatusInternalServerError
		body = []byte(`{}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Status)
	if _, err := w.Write(body); err != nil {
		rt.logger.WarnContext(r.Context(), "failed to write response", slog.Any("error", err))
	}
}

// ErrorPayload builds the body of an error result.
func ErrorPayload(message string) api.ErrorResponse {
	return api.ErrorResponse{Error: message}
}
