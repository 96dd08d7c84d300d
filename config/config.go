// Package config defines the engine's input configuration contract (§6
// "Inputs", SPEC_FULL.md §9.2) and a thin YAML loader. Config loading
// itself is a non-goal of the engine proper — this package only carries
// the data and a minimal load path, not a flag surface or validation DSL.
package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pysymtab/engine/resolver"
)

// InterpreterConfiguration is the full set of inputs the engine needs
// beyond the AST itself: which Python it is modelling, where to look for
// source and stubs, and how to treat stub/source conflicts.
type InterpreterConfiguration struct {
	Version           resolver.Version `yaml:"version"`
	InterpreterPath   string           `yaml:"interpreter_path"`
	SearchPaths       []string         `yaml:"search_paths"`
	ScrapeLibraryPath string           `yaml:"scrape_library_path"`
	StubPaths         []string         `yaml:"stub_paths"`
	StubsExclusive    bool             `yaml:"stubs_exclusive"`
	RequireInitFile   bool             `yaml:"require_init_file"`
}

// Load reads an optional YAML configuration file at path (a missing file is
// not an error — callers get the zero-value configuration) and then applies
// environment-variable overrides for the interpreter path and search paths
// (§9.2 "environment-variable overrides for interpreter path and search
// paths").
func Load(path string) (InterpreterConfiguration, error) {
	var cfg InterpreterConfiguration
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return applyEnvOverrides(cfg), nil
			}
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	return applyEnvOverrides(cfg), nil
}

const (
	envInterpreterPath = "PYSYM_INTERPRETER_PATH"
	envSearchPaths     = "PYSYM_SEARCH_PATHS" // colon-separated, like $PATH
)

func applyEnvOverrides(cfg InterpreterConfiguration) InterpreterConfiguration {
	if p := os.Getenv(envInterpreterPath); p != "" {
		cfg.InterpreterPath = p
	}
	if p := os.Getenv(envSearchPaths); p != "" {
		cfg.SearchPaths = strings.Split(p, ":")
	}
	return cfg
}
