package api

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error string `json:"Error"` // описание ошибки
}
