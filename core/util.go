package core

import (
	"context"
	"strings"
	"time"
	"unicode"
)

// DefaultUniversidadeNome is shown when the owning account has no university name yet.
const DefaultUniversidadeNome = "Universidade não definida"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// OnlyDigits drops every non-digit character of `s`.
func OnlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// Coalesce returns the cleaned `s`, or `orig` when `s` is blank.
// It implements the partial update rule: blank input never clears a stored value.
func Coalesce(s, orig string, lower ...bool) string {
	if c := CleanString(s, lower...); c != "" {
		return c
	}
	return orig
}

// FoldKey normalizes a name for case-insensitive uniqueness checks.
func FoldKey(s string) string {
	return strings.ToLower(strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " "))
}

// Clock abstracts time so that delays and timestamps can be controlled in tests.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration)
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

func (SystemClock) Sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
