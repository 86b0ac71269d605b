package api

import "time"

// CreateTokenRequest представляет запрос на выдачу токена (POST /tokens)
type CreateTokenRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// ExtendTokenRequest представляет запрос на продление токена (PUT /tokens)
type ExtendTokenRequest struct {
	ID     string `json:"id"`
	Extend bool   `json:"extend"`
}

// Token представляет токен в ответах /tokens
type Token struct {
	Phone   string `json:"phone"`
	ID      string `json:"id"`
	Expires int64  `json:"expires"` // миллисекунды с начала эпохи
}

// ExpiresAt returns the expiry as time.Time.
func (t Token) ExpiresAt() time.Time {
	return time.UnixMilli(t.Expires)
}

// TokenHeader is the request header carrying the token id.
const TokenHeader = "token"
