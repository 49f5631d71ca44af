package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestUserDirs(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		name string
		env  string
		val  string
		fn   func() (string, error)
		want string
	}{
		{"cache default", "XDG_CACHE_HOME", "", cacheDir, filepath.Join(home, ".cache", appName)},
		{"cache xdg", "XDG_CACHE_HOME", "/tmp/custom-cache", cacheDir, filepath.Join("/tmp/custom-cache", appName)},
		{"layouts default", "XDG_CONFIG_HOME", "", layoutsDir, filepath.Join(home, ".config", appName, "layouts")},
		{"layouts xdg", "XDG_CONFIG_HOME", "/tmp/custom-config", layoutsDir, filepath.Join("/tmp/custom-config", appName, "layouts")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.val)
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "docs/tags.toml", "docs/tags"},
		{"", "-", "layout"},
		{"out/tags.svg", "tags.json", "out/tags"},
		{"out/tags.png", "tags.json", "out/tags"},
		{"out/tags", "tags.json", "out/tags"},
		{"out/tags.v2", "tags.json", "out/tags.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}
