package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// TokenAlphabet is the set of characters RandomString draws from.
const TokenAlphabet = "abcdefghijklmnopqrstuvwxyz"

// ErrInvalidLength is returned for a non-positive length.
var ErrInvalidLength = errors.New("length must be positive")

// RandomString генерирует строку заданной длины из символов TokenAlphabet.
// Используется crypto/rand: строка служит идентификатором bearer-токена.
func RandomString(length int) (string, error) {
	if length <= 0 {
		return "", ErrInvalidLength
	}

	limit := big.NewInt(int64(len(TokenAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		buf[i] = TokenAlphabet[n.Int64()]
	}

	return string(buf), nil
}
