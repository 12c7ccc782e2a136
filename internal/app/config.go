package app

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"
)

// Mode selects what a run does.
type Mode string

const (
	// ModeBuild builds and optimizes every catalog package.
	ModeBuild Mode = "build"
	// ModeRepro reproduces existing artifacts in dependency order.
	ModeRepro Mode = "repro"
)

// OutputDirName is the directory under the work dir that receives built artifacts.
const OutputDirName = "wasm-output"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Mode Mode

	WorkDir     string // clone and output root
	ProjectPath string // existing source tree; skips the clone when set
	WasmPath    string // repro mode: directory scanned for artifacts
	CatalogPath string // overrides the embedded catalog when set

	Tool  string // contract CLI
	Cargo string
	Git   string

	Toolchain string        // pinned toolchain version; empty selects randomly
	Timeout   time.Duration // per external process; zero disables
	Verify    bool          // build mode: also reproduce what was built
	KeepGoing bool          // continue past failures and summarize at the end

	LogFormat string
	LogLevel  string
	Color     bool
}

// NewConfig validates cfg and fills defaults.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Mode {
	case ModeBuild:
	case ModeRepro:
		if cfg.WasmPath == "" {
			return nil, errors.New("repro mode requires a wasm directory")
		}
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
	if cfg.Timeout < 0 {
		return nil, errors.New("timeout must not be negative")
	}

	if cfg.WorkDir == "" {
		cfg.WorkDir = "repro-test"
	}
	if cfg.Tool == "" {
		cfg.Tool = "soroban"
	}
	if cfg.Cargo == "" {
		cfg.Cargo = "cargo"
	}
	if cfg.Git == "" {
		cfg.Git = "git"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, err := newLogger(cfg.LogLevel, cfg.LogFormat, io.Discard); err != nil {
		return nil, err
	}

	// External tools run with their own working directory, so every path
	// handed to them must not depend on ours.
	for _, p := range []*string{&cfg.WorkDir, &cfg.ProjectPath, &cfg.WasmPath, &cfg.CatalogPath} {
		if *p == "" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return nil, fmt.Errorf("resolving path %q: %w", *p, err)
		}
		*p = abs
	}

	return &cfg, nil
}
