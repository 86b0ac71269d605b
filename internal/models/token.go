package models

import "time"

// Token представляет bearer-токен, выданный пользователю
type Token struct {
	Phone   string `json:"phone"`   // телефон владельца (ссылка на User по значению)
	ID      string `json:"id"`      // случайный идентификатор, ключ записи
	Expires int64  `json:"expires"` // время истечения, миллисекунды с начала эпохи
}

// NewToken creates a token for phone that expires ttl after now.
func NewToken(id, phone string, now time.Time, ttl time.Duration) *Token {
	return &Token{
		Phone:   phone,
		ID:      id,
		Expires: now.Add(ttl).UnixMilli(),
	}
}

// Valid reports whether the token is still usable at now.
func (t *Token) Valid(now time.Time) bool {
	return now.UnixMilli() < t.Expires
}

// ExpiresAt returns the expiry as time.Time.
func (t *Token) ExpiresAt() time.Time {
	return time.UnixMilli(t.Expires)
}

// Extend moves the expiry to ttl after now.
func (t *Token) Extend(now time.Time, ttl time.Duration) {
	t.Expires = now.Add(ttl).UnixMilli()
}
