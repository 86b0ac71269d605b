package api

// HealthResponse представляет ответ /ping
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
