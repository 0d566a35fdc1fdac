package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	t.Setenv("DOCUMENTARIAN_TEST_DIR", "/tmp/doc")

	tests := []struct {
		in   string
		want string
	}{
		{"~/styles/dark.json", filepath.Join(home, "styles/dark.json")},
		{"$DOCUMENTARIAN_TEST_DIR/out.md", "/tmp/doc/out.md"},
		{"/abs/path", "/abs/path"},
	}

	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
