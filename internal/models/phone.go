package models

import (
	"errors"
	"strings"
	"unicode"
)

var ErrInvalidPhone = errors.New("número de telefone inválido, use o formato: 5511999999999")

// NormalizePhone strips everything but digits, prefixes the Brazilian country
// code when an 11-digit local number is given, and validates the final length.
func NormalizePhone(phone string) (string, error) {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	formatted := b.String()

	if !strings.HasPrefix(formatted, "55") && len(formatted) == 11 {
		formatted = "55" + formatted
	}

	if len(formatted) < 12 || len(formatted) > 14 {
		return "", ErrInvalidPhone
	}
	return formatted, nil
}
