// Package metadata discovers the buildable contract packages of a Cargo
// manifest by asking `cargo metadata`.
package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/specialistvlad/wasmrepro/internal/ctxlog"
	"github.com/specialistvlad/wasmrepro/internal/runner"
)

// ContractCrateType is the crate type of a package that compiles to a
// loadable contract binary.
const ContractCrateType = "cdylib"

// Package is a buildable unit reported by the resolver.
type Package struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	ManifestPath string   `json:"manifest_path"`
	Targets      []Target `json:"targets"`
}

// Target is one build target of a package.
type Target struct {
	Name       string   `json:"name"`
	Kind       []string `json:"kind"`
	CrateTypes []string `json:"crate_types"`
}

// IsContract reports whether any target of p produces a contract binary.
func (p Package) IsContract() bool {
	for _, t := range p.Targets {
		if slices.Contains(t.CrateTypes, ContractCrateType) {
			return true
		}
	}
	return false
}

type document struct {
	Packages []Package `json:"packages"`
}

// MissingManifestError reports a catalog contract without a manifest.
type MissingManifestError struct {
	Contract     string
	ManifestPath string
}

func (e *MissingManifestError) Error() string {
	return fmt.Sprintf("contract %q has no manifest at %s", e.Contract, e.ManifestPath)
}

// ResolveError reports a resolver process that exited unsuccessfully.
type ResolveError struct {
	ManifestPath string
	ExitStatus   int
	Stderr       string
}

func (e *ResolveError) Error() string {
	msg := fmt.Sprintf("metadata resolution for %s failed with exit status %d", e.ManifestPath, e.ExitStatus)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Discoverer lists the contract packages of a manifest.
type Discoverer struct {
	Runner runner.Runner
	// Cargo is the resolver binary.
	Cargo string
}

// NewDiscoverer returns a Discoverer invoking cargo through r.
func NewDiscoverer(r runner.Runner, cargo string) *Discoverer {
	if cargo == "" {
		cargo = "cargo"
	}
	return &Discoverer{Runner: r, Cargo: cargo}
}

// Discover returns the packages of manifestPath that have a contract
// target. Dependencies are not resolved. A missing manifest is a
// *MissingManifestError naming contract.
func (d *Discoverer) Discover(ctx context.Context, contract, manifestPath string) ([]Package, error) {
	logger := ctxlog.FromContext(ctx)

	if _, err := os.Stat(manifestPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &MissingManifestError{Contract: contract, ManifestPath: manifestPath}
		}
		return nil, fmt.Errorf("checking manifest of %q: %w", contract, err)
	}

	var stdout, stderr bytes.Buffer
	status, err := d.Runner.Run(ctx, runner.Command{
		Name:   d.Cargo,
		Args:   []string{"metadata", "--format-version", "1", "--no-deps", "--manifest-path", manifestPath},
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("resolving metadata of %q: %w", contract, err)
	}
	if status != 0 {
		return nil, &ResolveError{ManifestPath: manifestPath, ExitStatus: status, Stderr: string(bytes.TrimSpace(stderr.Bytes()))}
	}

	var doc document
	if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
		return nil, fmt.Errorf("decoding metadata of %q: %w", contract, err)
	}

	var out []Package
	for _, p := range doc.Packages {
		if p.IsContract() {
			out = append(out, p)
			continue
		}
		logger.Debug("Skipping package without contract target.", "package", p.Name)
	}
	logger.Debug("Packages discovered.", "contract", contract, "total", len(doc.Packages), "contracts", len(out))
	return out, nil
}
