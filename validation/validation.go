// Package validation collects field violations as translatable codes.
package validation

import (
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PasswordMinLength is the shortest accepted password.
const PasswordMinLength = 8

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Translate maps every code through tr, e.g. i18n.T bound to a language.
func (v Violations) Translate(tr func(code string) string) map[string]string {
	out := make(map[string]string, len(v))
	for field, code := range v {
		out[field] = tr(code)
	}
	return out
}

// Rules only record the first violation of a field.
func set(v Violations, field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		set(v, field, "required")
	}
}

// Email accepts a bare address ("a@b.c"); an empty value is left to Required.
func Email(field, value string, v Violations) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || !strings.Contains(value[strings.LastIndex(value, "@"):], ".") {
		set(v, field, "invalid_email")
	}
}

// Password enforces the account password rules.
func Password(field, value string, v Violations) {
	if value == "" {
		set(v, field, "required")
		return
	}
	if utf8.RuneCountInString(value) < PasswordMinLength {
		set(v, field, "password_too_short")
		return
	}
	var letter, digit bool
	for _, r := range value {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter {
		set(v, field, "password_needs_letter")
	} else if !digit {
		set(v, field, "password_needs_digit")
	}
}

// Match flags field when confirmation differs from value.
func Match(field, value, confirmation string, v Violations) {
	if value != confirmation {
		set(v, field, "password_mismatch")
	}
}
