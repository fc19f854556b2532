package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeRenderFailed, "renderer failed on %s", "a-fill-001")

	if err.Code != ErrCodeRenderFailed {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeRenderFailed)
	}

	if err.Message != "renderer failed on a-fill-001" {
		t.Errorf("Message = %v, want %v", err.Message, "renderer failed on a-fill-001")
	}

	expected := "RENDER_FAILED: renderer failed on a-fill-001"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeCacheError, cause, "load fingerprint cache")

	if err.Code != ErrCodeCacheError {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeCacheError)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeRegression, "test"),
			code:     ErrCodeRegression,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeRegression, "test"),
			code:     ErrCodeRenderFailed,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeDiffFailed, New(ErrCodeSizeMismatch, "inner"), "outer"),
			code:     ErrCodeDiffFailed,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeRegression,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeRegression,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if code := GetCode(New(ErrCodeCursorError, "test")); code != ErrCodeCursorError {
		t.Errorf("GetCode() = %v, want %v", code, ErrCodeCursorError)
	}

	if code := GetCode(errors.New("plain")); code != "" {
		t.Errorf("GetCode() = %v, want empty", code)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeRegression, "images differ by 42 pixels")
	if msg := UserMessage(err); msg != "images differ by 42 pixels" {
		t.Errorf("UserMessage() = %v", msg)
	}

	plain := errors.New("plain error")
	if msg := UserMessage(plain); msg != "plain error" {
		t.Errorf("UserMessage() = %v", msg)
	}
}

func TestValidateStem(t *testing.T) {
	tests := []struct {
		stem    string
		wantErr bool
	}{
		{"a-fill-001", false},
		{"e-svg-007", false},
		{"with.dots", false},
		{"", true},
		{"../escape", true},
		{"dir/stem", true},
		{"back\\slash", true},
		{"ctrl\x01char", true},
	}

	for _, tt := range tests {
		err := ValidateStem(tt.stem)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStem(%q) error = %v, wantErr %v", tt.stem, err, tt.wantErr)
		}
	}
}
