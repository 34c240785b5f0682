// Package slug generates URL-safe identifiers for plans and subscriptions.
// Non-alphanumeric runes collapse into a single separator; an optional random
// suffix keeps slugs unique when several subscriptions share one plan name.
package slug

import (
	"crypto/rand"
	"strings"
	"unicode"
)

// Option configures slug generation.
type Option func(*config)

type config struct {
	separator    string
	maxLength    int
	suffixLength int
}

// Separator sets the rune sequence placed between words. Default is "-".
func Separator(s string) Option {
	return func(c *config) { c.separator = s }
}

// MaxLength truncates the slug body to at most n runes. Zero means no limit.
// A random suffix, if requested, is appended after truncation.
func MaxLength(n int) Option {
	return func(c *config) { c.maxLength = n }
}

// WithSuffix appends a random lowercase alphanumeric suffix of n characters.
func WithSuffix(n int) Option {
	return func(c *config) { c.suffixLength = n }
}

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Make converts s into a lowercase URL-safe slug.
func Make(s string, opts ...Option) string {
	cfg := &config{separator: "-"}
	for _, opt := range opts {
		opt(cfg)
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false

	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteString(cfg.separator)
			}
			b.WriteRune(r)
			pendingSep = false
			continue
		}
		pendingSep = true
	}

	out := b.String()
	if cfg.maxLength > 0 {
		runes := []rune(out)
		if len(runes) > cfg.maxLength {
			out = strings.TrimSuffix(string(runes[:cfg.maxLength]), cfg.separator)
		}
	}

	if cfg.suffixLength > 0 {
		suffix := randomSuffix(cfg.suffixLength)
		if out == "" {
			return suffix
		}
		return out + cfg.separator + suffix
	}

	return out
}

func randomSuffix(n int) string {
	buf := make([]byte, n)
	// crypto/rand.Read never returns an error on supported platforms
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = suffixAlphabet[int(b)%len(suffixAlphabet)]
	}
	return string(buf)
}
