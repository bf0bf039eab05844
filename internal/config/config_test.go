package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty prefix", func(c *Config) { c.Lowering.NamePrefix = "" }, true},
		{"digit prefix", func(c *Config) { c.Lowering.NamePrefix = "9t" }, true},
		{"underscore prefix", func(c *Config) { c.Lowering.NamePrefix = "_" }, false},
		{"json format", func(c *Config) { c.Output.Format = "json" }, false},
		{"unknown format", func(c *Config) { c.Output.Format = "html" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".tmplc.toml")
	content := `[lowering]
name_prefix = "_cfg"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Lowering.NamePrefix != "_cfg" {
		t.Errorf("expected _cfg, got %q", cfg.Lowering.NamePrefix)
	}
	if cfg.Output.Format != DefaultOutputFormat {
		t.Errorf("unset values keep defaults, got %q", cfg.Output.Format)
	}
}

func TestLoadConfig_MissingExplicitPath(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected an error for a missing explicit config path")
	}
}

func TestLoadConfigWithTarget_PrefersConfigNearTarget(t *testing.T) {
	dir := t.TempDir()
	content := `[lowering]
name_prefix = "_near"
`
	if err := os.WriteFile(filepath.Join(dir, ".tmplc.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "unit.tmplu")
	if err := os.WriteFile(target, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigWithTarget("", target)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Lowering.NamePrefix != "_near" {
		t.Errorf("expected the config next to the target, got %q", cfg.Lowering.NamePrefix)
	}
}

func TestGenerateDefaultConfigContent(t *testing.T) {
	content, err := GenerateDefaultConfigContent()
	if err != nil {
		t.Fatalf("failed to render: %v", err)
	}

	for _, want := range []string{"[lowering]", "[analysis]", "[output]", DefaultNamePrefix, DefaultOutputFormat} {
		if !strings.Contains(content, want) {
			t.Errorf("expected %q in generated config:\n%s", want, content)
		}
	}

	// the generated file must itself load cleanly
	dir := t.TempDir()
	path := filepath.Join(dir, ".tmplc.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("generated config failed to load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("generated config failed to validate: %v", err)
	}
}
