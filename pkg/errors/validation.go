package errors

import (
	"strings"
	"unicode"
)

// ValidateConversationID validates a conversation identifier received from
// an outer surface (CLI flag, HTTP path segment) before it reaches a source.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - No path traversal sequences
//   - Maximum length of 256 characters
func ValidateConversationID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "conversation id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "conversation id too long (max 256 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "conversation id contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "conversation id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateOutputPath validates a file path destined for writes.
// It prevents null bytes and unreasonably long paths; absolute and relative
// paths are both allowed since the caller chooses the destination.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' {
			return New(ErrCodeInvalidInput, "output path contains null bytes")
		}
	}

	return nil
}

// ValidateMongoURI validates a MongoDB connection string.
// It ensures the URI uses a mongodb scheme without fully parsing it.
func ValidateMongoURI(rawURI string) error {
	if rawURI == "" {
		return New(ErrCodeInvalidConfig, "mongo URI cannot be empty")
	}

	if !strings.HasPrefix(rawURI, "mongodb://") && !strings.HasPrefix(rawURI, "mongodb+srv://") {
		return New(ErrCodeInvalidConfig, "mongo URI must use mongodb or mongodb+srv scheme")
	}

	return nil
}
