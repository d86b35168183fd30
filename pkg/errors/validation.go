package errors

import (
	"strings"
	"unicode"
)

// ValidateItemID validates an item identifier for safety and correctness.
// IDs end up in snapshot files, store keys, and API paths, so the rules are
// intentionally conservative:
//   - No empty IDs
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateItemID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidItem, "item ID cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidItem, "item ID too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidItem, "item ID contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidItem, "item ID contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateTypeTag validates an item type tag. Type tags are extension
// registry keys and must be simple identifiers.
func ValidateTypeTag(tag string) error {
	if tag == "" {
		return New(ErrCodeInvalidItem, "type tag cannot be empty")
	}

	for _, r := range tag {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' && r != '.' {
			return New(ErrCodeInvalidItem, "type tag contains invalid character %q", r)
		}
	}

	return nil
}

// ValidateStoreKey validates a snapshot store key for safety.
// It ensures the key is a simple name without path components, so file-backed
// stores can never be driven outside their root directory.
func ValidateStoreKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "store key cannot be empty")
	}

	const maxKeyLength = 200
	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidInput, "store key too long (max %d characters)", maxKeyLength)
	}

	for _, r := range key {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "store key contains invalid characters")
		}
	}

	if strings.ContainsAny(key, "/\\") {
		return New(ErrCodeInvalidInput, "store key cannot contain path separators")
	}

	if strings.Contains(key, "..") {
		return New(ErrCodeInvalidInput, "store key cannot contain path traversal sequences (..)")
	}

	if strings.HasPrefix(key, ".") {
		return New(ErrCodeInvalidInput, "store key cannot be a hidden file")
	}

	return nil
}
