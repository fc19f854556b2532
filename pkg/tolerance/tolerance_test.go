package tolerance

import (
	"strings"
	"testing"

	"github.com/pixeldrift/pixeldrift/pkg/errors"
)

func TestDefaults(t *testing.T) {
	r := New()

	if got := r.AllowedDifference("unknown-stem"); got != 0 {
		t.Errorf("AllowedDifference(unknown) = %d, want 0", got)
	}
	if r.CrashAllowed("unknown-stem") {
		t.Error("CrashAllowed(unknown) = true, want false")
	}

	// Built-in crash-allowed set
	for _, stem := range []string{"e-svg-007", "e-svg-034", "e-svg-035", "e-svg-036"} {
		if !r.CrashAllowed(stem) {
			t.Errorf("CrashAllowed(%s) = false, want true", stem)
		}
	}
}

func TestReadAllowances(t *testing.T) {
	r := New()
	input := "a-fill-001,42\ne-filter-003,1337\n"
	if err := r.ReadAllowances(strings.NewReader(input)); err != nil {
		t.Fatalf("ReadAllowances error: %v", err)
	}

	if got := r.AllowedDifference("a-fill-001"); got != 42 {
		t.Errorf("AllowedDifference(a-fill-001) = %d, want 42", got)
	}
	if got := r.AllowedDifference("e-filter-003"); got != 1337 {
		t.Errorf("AllowedDifference(e-filter-003) = %d, want 1337", got)
	}
	if got := r.AllowedDifference("a-fill-002"); got != 0 {
		t.Errorf("AllowedDifference(a-fill-002) = %d, want 0", got)
	}
}

func TestReadAllowancesMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"non-integer", "a-fill-001,lots\n"},
		{"negative", "a-fill-001,-5\n"},
		{"missing column", "a-fill-001\n"},
		{"path traversal stem", "../../etc/passwd,0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			err := r.ReadAllowances(strings.NewReader(tt.input))
			if !errors.Is(err, errors.ErrCodeInvalidAllowList) && errors.GetCode(err) == "" {
				t.Errorf("want typed allow-list error, got %v", err)
			}
			if err == nil {
				t.Error("want error, got nil")
			}
		})
	}
}

func TestReadCrashAllowed(t *testing.T) {
	r := New()
	input := "# intentionally broken inputs\n\ne-svg-100\n  e-svg-101  \n"
	if err := r.ReadCrashAllowed(strings.NewReader(input)); err != nil {
		t.Fatalf("ReadCrashAllowed error: %v", err)
	}

	if !r.CrashAllowed("e-svg-100") {
		t.Error("CrashAllowed(e-svg-100) = false, want true")
	}
	if !r.CrashAllowed("e-svg-101") {
		t.Error("CrashAllowed(e-svg-101) = false, want true")
	}
	// Built-in set survives extension
	if !r.CrashAllowed("e-svg-007") {
		t.Error("built-in crash-allowed entry lost after load")
	}
	if r.CrashAllowed("# intentionally broken inputs") {
		t.Error("comment line should not become a stem")
	}
}

func TestReadCrashAllowedBadStem(t *testing.T) {
	r := New()
	if err := r.ReadCrashAllowed(strings.NewReader("sub/dir\n")); err == nil {
		t.Error("want error for stem with path separator")
	}
}
