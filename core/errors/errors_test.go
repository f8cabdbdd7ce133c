package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      *NotFoundError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "with ID",
			err:      &NotFoundError{Resource: "manifest", ID: "/models/a"},
			wantMsg:  "manifest not found: /models/a",
			wantBase: ErrNotFound,
		},
		{
			name:     "without ID",
			err:      &NotFoundError{Resource: "model"},
			wantMsg:  "model not found",
			wantBase: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.err.Unwrap(); !errors.Is(got, tt.wantBase) {
				t.Errorf("Unwrap() = %v, want %v", got, tt.wantBase)
			}
		})
	}

	t.Run("with underlying error", func(t *testing.T) {
		underlyingErr := fmt.Errorf("stat failed")
		err := &NotFoundError{Resource: "path", ID: "model.zip", Err: underlyingErr}
		if got := err.Unwrap(); got != underlyingErr {
			t.Errorf("Unwrap() = %v, want %v", got, underlyingErr)
		}
	})
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name    string
		err     *ValidationError
		wantMsg string
	}{
		{
			name:    "with field",
			err:     &ValidationError{Field: "module_id", Message: "is required"},
			wantMsg: "validation failed for module_id: is required",
		},
		{
			name:    "without field",
			err:     &ValidationError{Message: "empty target"},
			wantMsg: "validation failed: empty target",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrInvalidInput) {
				t.Errorf("expected %v to match ErrInvalidInput", tt.err)
			}
		})
	}
}

func TestContractError(t *testing.T) {
	tests := []struct {
		name    string
		err     *ContractError
		wantMsg string
	}{
		{
			name:    "with component",
			err:     NewContract("backend CATALOG", "model instance", "string"),
			wantMsg: "contract violation in backend CATALOG: expected model instance, got string",
		},
		{
			name:    "without component",
			err:     &ContractError{Expected: "model instance", Got: "int"},
			wantMsg: "contract violation: expected model instance, got int",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrContract) {
				t.Errorf("expected %v to match ErrContract", tt.err)
			}
		})
	}
}

func TestIOError(t *testing.T) {
	baseErr := fmt.Errorf("permission denied")
	tests := []struct {
		name    string
		err     *IOError
		wantMsg string
	}{
		{
			name:    "with path",
			err:     &IOError{Operation: "extract", Path: "/tmp/model.zip", Err: baseErr},
			wantMsg: "failed to extract /tmp/model.zip: permission denied",
		},
		{
			name:    "without path",
			err:     &IOError{Operation: "create temp dir", Err: baseErr},
			wantMsg: "failed to create temp dir: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.err.Unwrap(); !errors.Is(got, baseErr) {
				t.Errorf("Unwrap() = %v, want %v", got, baseErr)
			}
		})
	}
}

func TestParseError(t *testing.T) {
	t.Run("with path", func(t *testing.T) {
		err := &ParseError{Format: "YAML", Path: "config.yml", Message: "did not find expected key"}
		want := "failed to parse YAML at config.yml: did not find expected key"
		if got := err.Error(); got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Error("expected ParseError to match ErrInvalidInput")
		}
	})

	t.Run("with underlying error", func(t *testing.T) {
		underlyingErr := fmt.Errorf("yaml: line 3")
		err := &ParseError{Format: "YAML", Message: "bad indent", Err: underlyingErr}
		if got := err.Unwrap(); got != underlyingErr {
			t.Errorf("Unwrap() = %v, want %v", got, underlyingErr)
		}
	})
}

func TestUnsupportedError(t *testing.T) {
	err := NewUnsupported("archive format", "rar")
	if got := err.Error(); got != "unsupported archive format: rar" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrUnsupported) {
		t.Error("expected UnsupportedError to match ErrUnsupported")
	}
	if got := (&UnsupportedError{Feature: "target"}).Error(); got != "unsupported target" {
		t.Errorf("Error() = %q, want %q", got, "unsupported target")
	}
}

func TestWrap(t *testing.T) {
	t.Run("wraps error", func(t *testing.T) {
		baseErr := fmt.Errorf("base error")
		wrapped := Wrap(baseErr, "context message")
		if !errors.Is(wrapped, baseErr) {
			t.Errorf("Wrap() error does not unwrap to base error")
		}
		if wrapped.Error() != "context message: base error" {
			t.Errorf("Wrap() = %q", wrapped.Error())
		}
	})

	t.Run("nil error returns nil", func(t *testing.T) {
		if got := Wrap(nil, "context"); got != nil {
			t.Errorf("Wrap(nil) = %v, want nil", got)
		}
		if got := Wrapf(nil, "context %s", "x"); got != nil {
			t.Errorf("Wrapf(nil) = %v, want nil", got)
		}
	})

	t.Run("wrapf formats", func(t *testing.T) {
		wrapped := Wrapf(ErrNotFound, "load %s", "a")
		if wrapped.Error() != "load a: not found" {
			t.Errorf("Wrapf() = %q", wrapped.Error())
		}
	})
}

func TestAs(t *testing.T) {
	err := Wrap(&NotFoundError{Resource: "model", ID: "123"}, "resolve")
	var nfErr *NotFoundError
	if !As(err, &nfErr) {
		t.Fatal("As() failed to match NotFoundError")
	}
	if nfErr.ID != "123" {
		t.Errorf("As() nfErr.ID = %q, want %q", nfErr.ID, "123")
	}
	if !Is(err, ErrNotFound) {
		t.Error("Is() failed to match ErrNotFound")
	}
}
