// Package util reúne validações de entrada compartilhadas pelos
// serviços.
package util

import (
	"errors"
	"net/mail"
	"strings"
)

// MinPasswordRunes é o mínimo aceito para senha de colaborador.
const MinPasswordRunes = 8

// NormalizeEmail valida e canoniza o e-mail (trim + caixa baixa). O
// valor devolvido é o que vai para o banco; comparações posteriores
// não precisam repetir a normalização.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", errors.New("email obrigatório")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", errors.New("email inválido")
	}
	return email, nil
}

// ValidatePassword exige o mínimo de caracteres úteis; espaços nas
// pontas não contam.
func ValidatePassword(senha string) error {
	if len([]rune(strings.TrimSpace(senha))) < MinPasswordRunes {
		return errors.New("senha deve ter pelo menos 8 caracteres")
	}
	return nil
}

// RequireString garante valor não vazio após trim.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(field + " obrigatório")
	}
	return nil
}
