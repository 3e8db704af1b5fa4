package errors

import (
	"strings"
	"unicode"
)

// ValidatePageKey validates a page key for safety and correctness. Page keys
// are opaque namespace strings like "module:pharmacy:inventory" that end up
// in URLs and storage keys, so the rules are intentionally conservative:
//   - no empty keys
//   - no control characters or null bytes
//   - no path traversal sequences
//   - maximum length of 200 characters
func ValidatePageKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidPageKey, "page key cannot be empty")
	}
	if len(key) > 200 {
		return New(ErrCodeInvalidPageKey, "page key too long (max 200 characters)")
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPageKey, "page key contains control characters")
		}
	}
	for _, pattern := range []string{"..", "//", "\\", "\x00"} {
		if strings.Contains(key, pattern) {
			return New(ErrCodeInvalidPageKey, "page key contains invalid sequence %q", pattern)
		}
	}
	return nil
}

// ValidateBlockID validates a block identifier. Block ids are chosen by page
// authors and shared between the layout payload and the hidden-block list.
func ValidateBlockID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidBlock, "block id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidBlock, "block id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidBlock, "block id contains whitespace or control characters")
		}
	}
	return nil
}
