package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(New(""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Config{
		SchemaDir: "schemas",
		Server:    ServerConfig{Addr: ":8080"},
		Log:       LogConfig{Level: "info"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("unexpected defaults (-want +got):\n%s", diff)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	content := `
schema_dir: forms
container_class: site-form
theme:
  name: acme
  variant: dark
  tokens:
    primary: "#123"
server:
  addr: 127.0.0.1:9000
log:
  level: debug
`
	if err := os.WriteFile(filepath.Join(dir, "slabs.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SLABS_SERVER_ADDR", ":7000")
	t.Setenv("SLABS_LOG_DEVELOPMENT", "true")

	cfg, err := Load(New(""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Config{
		SchemaDir:      "forms",
		ContainerClass: "site-form",
		Theme:          ThemeConfig{Name: "acme", Variant: "dark", Tokens: map[string]string{"primary": "#123"}},
		Server:         ServerConfig{Addr: ":7000"},
		Log:            LogConfig{Level: "debug", Development: true},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if _, err := Load(New(filepath.Join(dir, "missing.yaml"))); err == nil {
		t.Fatalf("expected error for a missing explicit file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("schema_dir: \"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(New(bad)); err == nil {
		t.Fatalf("expected error for an empty schema_dir")
	}
}
