package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadExtensions(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr bool
	}{
		{
			name:    "toml",
			file:    "isobin.toml",
			content: "[cargo]\nripgrep = \"14.1.0\"\n",
		},
		{
			name:    "yaml",
			file:    "isobin.yaml",
			content: "cargo:\n  ripgrep: \"14.1.0\"\n",
		},
		{
			name:    "json",
			file:    "isobin.json",
			content: `{"cargo":{"ripgrep":"14.1.0"}}`,
		},
		{
			name:    "no extension",
			file:    "isobin",
			content: "",
			wantErr: true,
		},
		{
			name:    "unknown extension",
			file:    "isobin.ini",
			content: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write fixture: %v", err)
			}

			m, err := Load(path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Load(%s): want error, got nil", tt.file)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load(%s): %v", tt.file, err)
			}
			spec, ok := m.Providers[Cargo]["ripgrep"]
			if !ok {
				t.Fatalf("Load(%s): missing cargo/ripgrep entry", tt.file)
			}
			if spec.Detail.Version != "14.1.0" {
				t.Errorf("version = %q, want 14.1.0", spec.Detail.Version)
			}
		})
	}
}

func TestFixResolvesRelativePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "isobin.yaml")
	content := "cargo:\n  mytool:\n    path: ./vendor/mytool\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := filepath.Join(dir, "vendor", "mytool")
	got := m.Providers[Cargo]["mytool"].Detail.AbsolutePath
	if got != want {
		t.Errorf("AbsolutePath = %q, want %q", got, want)
	}
}

func TestValidateRequiresVersionPathOrGit(t *testing.T) {
	m := NewManifest()
	m.Providers[Cargo] = ProviderManifest{
		"bad": {Detail: DependencyDetail{}},
	}
	if err := m.Validate(); err == nil {
		t.Fatal("Validate: want error for dependency with no version/path/git")
	}

	m.Providers[Cargo]["bad"] = DependencySpec{Detail: DependencyDetail{Version: "1.0.0"}}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate: unexpected error: %v", err)
	}
}
