package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/wasmrepro/internal/config"
	"github.com/specialistvlad/wasmrepro/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Source       *sourceBlock       `hcl:"source,block"`
	Toolchain    *toolchainBlock    `hcl:"toolchain,block"`
	Catalog      *catalogBlock      `hcl:"catalog,block"`
	Dependencies []*dependencyBlock `hcl:"dependency,block"`
	Remain       hcl.Body           `hcl:",remain"`
}

type sourceBlock struct {
	Name string `hcl:"name,optional"`
	URL  string `hcl:"url,optional"`
}

type toolchainBlock struct {
	Env      string         `hcl:"env,optional"`
	Versions hcl.Expression `hcl:"versions"`
}

type catalogBlock struct {
	Contracts hcl.Expression `hcl:"contracts"`
}

type dependencyBlock struct {
	Name   string `hcl:"name,label"`
	Before string `hcl:"before"`
	After  string `hcl:"after"`
}

// Load parses every file and merges the decoded blocks into one model.
// Scalar blocks (source, toolchain) from later files replace earlier ones;
// catalog contracts and dependency blocks accumulate in file order.
func (l *Loader) Load(ctx context.Context, files ...config.File) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "file_count", len(files))

	model := &config.Model{}
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCL(file.Content, file.Name)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file.Name, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file.Name, diags)
		}

		if err := l.merge(ctx, model, &root); err != nil {
			return nil, fmt.Errorf("in %s: %w", file.Name, err)
		}
	}

	logger.Debug("HCL loading complete.",
		"contracts", len(model.Catalog.Contracts),
		"dependencies", len(model.Dependencies),
		"toolchain_versions", len(model.Toolchain.Versions),
	)
	return model, nil
}

func (l *Loader) merge(ctx context.Context, model *config.Model, root *fileRoot) error {
	if root.Source != nil {
		if root.Source.Name != "" {
			model.Source.Name = root.Source.Name
		}
		if root.Source.URL != "" {
			model.Source.URL = root.Source.URL
		}
	}

	if root.Toolchain != nil {
		versions, err := decodeStringList(ctx, root.Toolchain.Versions)
		if err != nil {
			return fmt.Errorf("toolchain versions: %w", err)
		}
		model.Toolchain.Versions = versions
		if root.Toolchain.Env != "" {
			model.Toolchain.Env = root.Toolchain.Env
		}
	}

	if root.Catalog != nil {
		contracts, err := decodeStringList(ctx, root.Catalog.Contracts)
		if err != nil {
			return fmt.Errorf("catalog contracts: %w", err)
		}
		model.Catalog.Contracts = append(model.Catalog.Contracts, contracts...)
	}

	for _, dep := range root.Dependencies {
		model.Dependencies = append(model.Dependencies, config.DependencyPair{
			Name:   dep.Name,
			Before: dep.Before,
			After:  dep.After,
		})
	}
	return nil
}
