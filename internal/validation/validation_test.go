package validation

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizePath(t *testing.T) {
	baseDir := "/tmp/test"

	tests := []struct {
		name      string
		userPath  string
		want      string
		wantError error
	}{
		{name: "simple valid path", userPath: "model", want: "model"},
		{name: "nested valid path", userPath: "models/demo", want: filepath.Join("models", "demo")},
		{name: "redundant separators", userPath: "models//demo", want: filepath.Join("models", "demo")},
		{name: "dot component", userPath: "./model", want: "model"},
		{name: "dots inside a name", userPath: "v1..2", want: "v1..2"},
		{name: "inner dotdot that stays inside", userPath: "a/../b", want: "b"},
		{name: "traversal", userPath: "../etc", wantError: ErrPathTraversal},
		{name: "traversal in middle", userPath: "a/../../etc", wantError: ErrPathTraversal},
		{name: "absolute path", userPath: "/etc/passwd", wantError: ErrPathTraversal},
		{name: "empty path", userPath: "", wantError: ErrEmptyPath},
		{name: "control character", userPath: "mo\ndel", wantError: ErrInvalidCharacter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizePath(baseDir, tt.userPath)
			if tt.wantError != nil {
				if !errors.Is(err, tt.wantError) {
					t.Errorf("SanitizePath() error = %v, want %v", err, tt.wantError)
				}
				return
			}
			if err != nil {
				t.Fatalf("SanitizePath() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("SanitizePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name      string
		filename  string
		wantError error
	}{
		{name: "valid simple filename", filename: "catalog.db"},
		{name: "valid filename with spaces", filename: "my catalog.db"},
		{name: "valid filename with special chars", filename: "catalog_v2-2024.db"},
		{name: "empty filename", filename: "", wantError: ErrInvalidFilename},
		{name: "dot filename", filename: ".", wantError: ErrInvalidFilename},
		{name: "dotdot filename", filename: "..", wantError: ErrInvalidFilename},
		{name: "filename with slash", filename: "dir/catalog.db", wantError: ErrInvalidFilename},
		{name: "filename with backslash", filename: "dir\\catalog.db", wantError: ErrInvalidFilename},
		{name: "filename with null byte", filename: "catalog\x00.db", wantError: ErrInvalidFilename},
		{name: "filename with control character", filename: "catalog\n.db", wantError: ErrInvalidFilename},
		{name: "filename starting with hyphen", filename: "-catalog.db", wantError: ErrInvalidFilename},
		{name: "too long filename", filename: strings.Repeat("a", 256), wantError: ErrFilenameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilename(tt.filename)
			if tt.wantError != nil {
				if !errors.Is(err, tt.wantError) {
					t.Errorf("ValidateFilename() error = %v, want %v", err, tt.wantError)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateFilename() unexpected error: %v", err)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantError error
	}{
		{name: "valid relative path", path: "model.zip"},
		{name: "valid absolute path", path: "/tmp/model.zip"},
		{name: "valid nested path", path: "models/demo/config.yml"},
		{name: "empty path", path: "", wantError: ErrEmptyPath},
		{name: "path with null byte", path: "model\x00.zip", wantError: ErrInvalidCharacter},
		{name: "path with control character", path: "models/demo\n.zip", wantError: ErrInvalidCharacter},
		{name: "very long path", path: strings.Repeat("a/", 2048) + "model.zip", wantError: ErrPathTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantError != nil {
				if !errors.Is(err, tt.wantError) {
					t.Errorf("ValidatePath() error = %v, want %v", err, tt.wantError)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidatePath() unexpected error: %v", err)
			}
		})
	}
}
