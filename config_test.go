package goder

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestLoadRunConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.toml")
	content := `
schema = "schemas/cdr.asn1"
root_type = "CallEventRecord"
output_dir = "out"
ext = "dat, .BER"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("LoadRunConfig failed: %v", err)
	}
	if cfg.Schema != "schemas/cdr.asn1" {
		t.Errorf("Schema = %q", cfg.Schema)
	}
	if cfg.RootType != "CallEventRecord" {
		t.Errorf("RootType = %q", cfg.RootType)
	}
	if cfg.OutputDir != "out" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if want := []string{"dat", "ber"}; !slices.Equal(cfg.Extensions, want) {
		t.Errorf("Extensions = %v, want %v", cfg.Extensions, want)
	}
}

func TestLoadRunConfigPartial(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.toml")
	if err := os.WriteFile(path, []byte(`root_type = "auto"`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RootType != "auto" {
		t.Errorf("RootType = %q", cfg.RootType)
	}
	if cfg.Schema != "" || cfg.OutputDir != "" || cfg.Extensions != nil {
		t.Errorf("unset keys leaked values: %+v", cfg)
	}
}

func TestLoadRunConfigMissingFile(t *testing.T) {
	if _, err := LoadRunConfig("/no/such/run.toml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadRunConfigBadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.toml")
	if err := os.WriteFile(path, []byte("schema = [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRunConfig(path); err == nil {
		t.Error("expected error for malformed TOML")
	}
}
