package utils

import (
	"errors"
	"strings"
	"unicode"
)

// MaxIdentifierLength bounds platform identifiers accepted from config, CLI
// and webhook payloads. LINE ids are 33 characters; Telegram usernames are
// at most 32.
const MaxIdentifierLength = 128

// ValidateIdentifier checks that id is a usable opaque platform identifier:
// non-empty after trimming, bounded in length, and free of whitespace and
// control characters.
func ValidateIdentifier(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("identifier is required and must be a non-empty string")
	}
	if len(id) > MaxIdentifierLength {
		return errors.New("identifier is too long")
	}
	if strings.IndexFunc(id, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}) >= 0 {
		return errors.New("identifier must not contain whitespace or control characters")
	}
	return nil
}
