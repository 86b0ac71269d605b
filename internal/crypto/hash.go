package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrEmptyInput is returned when there is nothing to hash.
var ErrEmptyInput = errors.New("input cannot be empty")

// Hasher хеширует пароли через HMAC-SHA256 с секретом из конфигурации
type Hasher struct {
	secret []byte
}

// NewHasher создает Hasher с заданным секретом
func NewHasher(secret string) *Hasher {
	return &Hasher{secret: []byte(secret)}
}

// Hash возвращает hex-encoded HMAC-SHA256 от input.
// Результат детерминирован для одного и того же секрета.
func (h *Hasher) Hash(input string) (string, error) {
	if input == "" {
		return "", ErrEmptyInput
	}

	mac := hmac.New(sha256.New, h.secret)
	// hash.Hash.Write никогда не возвращает ошибку
	_, _ = mac.Write([]byte(input))

	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Matches проверяет, что input хешируется в hashed
func (h *Hasher) Matches(input, hashed string) bool {
	if hashed == "" {
		return false
	}
	computed, err := h.Hash(input)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(computed), []byte(hashed))
}
