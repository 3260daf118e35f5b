package goder

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// RunConfig holds decode-run defaults loadable from a TOML file. The
// CLI overlays these under its flags: an explicit flag always wins.
type RunConfig struct {
	Schema     string
	RootType   string
	OutputDir  string
	Extensions []string
}

// runfile key mapping for the TOML defaults file.
type fileConfig struct {
	Schema     string `toml:"schema"`
	RootType   string `toml:"root_type"`
	OutputDir  string `toml:"output_dir"`
	Extensions string `toml:"ext"`
}

// LoadRunConfig reads a TOML defaults file.
//
//	schema = "schemas/cdr.asn1"
//	root_type = "CallEventRecord"
//	output_dir = "out"
//	ext = "dat,ber"
func LoadRunConfig(path string) (RunConfig, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return RunConfig{}, fmt.Errorf("load run config: %w", err)
	}

	var cfg RunConfig
	if meta.IsDefined("schema") {
		cfg.Schema = strings.TrimSpace(raw.Schema)
	}
	if meta.IsDefined("root_type") {
		cfg.RootType = strings.TrimSpace(raw.RootType)
	}
	if meta.IsDefined("output_dir") {
		cfg.OutputDir = strings.TrimSpace(raw.OutputDir)
	}
	if meta.IsDefined("ext") {
		cfg.Extensions = SplitExtensions(raw.Extensions)
	}
	return cfg, nil
}
