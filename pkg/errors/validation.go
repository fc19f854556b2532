package errors

import (
	"strings"
	"unicode"
)

// ValidateStem validates a corpus entry stem for safety and correctness.
// Work-dir artifact paths are derived from stems, so a stem containing path
// components could escape the working directory.
//
// The validation rules are intentionally conservative:
//   - No empty stems
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidateStem(stem string) error {
	if stem == "" {
		return New(ErrCodeInvalidStem, "stem cannot be empty")
	}

	if len(stem) > 256 {
		return New(ErrCodeInvalidStem, "stem too long (max 256 characters)")
	}

	for _, r := range stem {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidStem, "stem contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(stem, pattern) {
			return New(ErrCodeInvalidStem, "stem contains invalid characters: %q", pattern)
		}
	}

	return nil
}
