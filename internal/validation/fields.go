package validation

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

const (
	// PhoneLen точная длина номера телефона
	PhoneLen = 11
	// TokenIDLen длина идентификатора токена
	TokenIDLen = 20
)

// TokenIDPattern определяет допустимый формат идентификатора токена
var TokenIDPattern = regexp.MustCompile(`^[a-z]{20}$`)

// ValidatePhone проверяет, что номер телефона ровно PhoneLen символов (рун, не байт).
// Ожидает уже обрезанную (trimmed) строку.
func ValidatePhone(phone string) error {
	if phone == "" {
		return fmt.Errorf("phone cannot be empty")
	}

	if utf8.RuneCountInString(phone) != PhoneLen {
		return fmt.Errorf("phone must be exactly %d characters long", PhoneLen)
	}

	return nil
}

// ValidateTokenID проверяет формат идентификатора токена
func ValidateTokenID(id string) error {
	if id == "" {
		return fmt.Errorf("token id cannot be empty")
	}

	if !TokenIDPattern.MatchString(id) {
		return fmt.Errorf("token id must be %d lowercase letters", TokenIDLen)
	}

	return nil
}

// ValidateRequired проверяет, что обязательное поле заполнено
func ValidateRequired(field, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	return nil
}
