package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeToml(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ".tmplc.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestTomlLoader_LoadsAllSections(t *testing.T) {
	dir := t.TempDir()
	writeToml(t, dir, `[lowering]
name_prefix = "_gen"
output_dir = "lowered"

[analysis]
include_patterns = ["core*.tmplu"]
exclude_patterns = ["*_scratch.tmplu"]
recursive = false

[output]
format = "json"
directory = "reports"
`)

	cfg, err := NewTomlConfigLoader().LoadConfig(dir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Lowering.NamePrefix != "_gen" {
		t.Errorf("expected name_prefix _gen, got %q", cfg.Lowering.NamePrefix)
	}
	if cfg.Lowering.OutputDir != "lowered" {
		t.Errorf("expected output_dir lowered, got %q", cfg.Lowering.OutputDir)
	}
	if len(cfg.Analysis.IncludePatterns) != 1 || cfg.Analysis.IncludePatterns[0] != "core*.tmplu" {
		t.Errorf("unexpected include patterns: %v", cfg.Analysis.IncludePatterns)
	}
	if cfg.Analysis.Recursive {
		t.Error("expected recursive disabled")
	}
	if cfg.Output.Format != "json" || cfg.Output.Directory != "reports" {
		t.Errorf("unexpected output section: %+v", cfg.Output)
	}
}

func TestTomlLoader_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeToml(t, dir, `[output]
format = "yaml"
`)

	cfg, err := NewTomlConfigLoader().LoadConfig(dir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Output.Format != "yaml" {
		t.Errorf("expected format yaml, got %q", cfg.Output.Format)
	}
	if cfg.Lowering.NamePrefix != DefaultNamePrefix {
		t.Errorf("unset sections keep defaults, got prefix %q", cfg.Lowering.NamePrefix)
	}
	if !cfg.Analysis.Recursive {
		t.Error("an unset recursive flag keeps the default, not false")
	}
}

func TestTomlLoader_ExplicitFalseRecursive(t *testing.T) {
	dir := t.TempDir()
	writeToml(t, dir, `[analysis]
recursive = false
`)

	cfg, err := NewTomlConfigLoader().LoadConfig(dir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Analysis.Recursive {
		t.Error("an explicit false must override the default")
	}
}

func TestTomlLoader_NoFileReturnsDefaults(t *testing.T) {
	cfg, err := NewTomlConfigLoader().LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	want := DefaultConfig()
	if cfg.Lowering.NamePrefix != want.Lowering.NamePrefix || cfg.Output.Format != want.Output.Format {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestTomlLoader_SearchesUpward(t *testing.T) {
	root := t.TempDir()
	writeToml(t, root, `[lowering]
name_prefix = "_up"
`)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewTomlConfigLoader().LoadConfig(nested)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Lowering.NamePrefix != "_up" {
		t.Errorf("expected the config found in an ancestor directory, got %q", cfg.Lowering.NamePrefix)
	}
}

func TestTomlLoader_InvalidValuesRejected(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad prefix", "[lowering]\nname_prefix = \"1x\"\n"},
		{"bad format", "[output]\nformat = \"xml\"\n"},
		{"broken toml", "[lowering\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeToml(t, dir, tt.content)
			if _, err := NewTomlConfigLoader().LoadConfig(dir); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
