package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/wasmrepro/internal/ctxlog"
)

// EmbeddedCatalogName is the source name reported for the built-in catalog.
const EmbeddedCatalogName = "embedded catalog.hcl"

//go:embed catalog.hcl
var embeddedCatalog []byte

// EmbeddedCatalog returns the built-in catalog document.
func EmbeddedCatalog() File {
	return File{Name: EmbeddedCatalogName, Content: embeddedCatalog}
}

// LoadCatalog reads the catalog from the given paths, or from the embedded
// document when none are given, and validates the result. Every failure is
// returned as a *ConfigError.
func LoadCatalog(ctx context.Context, loader Loader, paths ...string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)

	files := make([]File, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, &ConfigError{Source: p, Err: err}
		}
		files = append(files, File{Name: p, Content: content})
	}
	if len(files) == 0 {
		files = append(files, EmbeddedCatalog())
	}

	source := fileNames(files)
	model, err := loader.Load(ctx, files...)
	if err != nil {
		return nil, &ConfigError{Source: source, Err: err}
	}
	if err := model.Validate(); err != nil {
		return nil, &ConfigError{Source: source, Err: err}
	}

	logger.Debug("Catalog loaded.", "source", source, "contracts", len(model.Catalog.Contracts), "dependencies", len(model.Dependencies))
	for _, dup := range duplicates(model.Catalog.Contracts) {
		logger.Warn("Contract listed more than once in catalog.", "contract", dup)
	}
	return model, nil
}

// Validate checks the invariants the pipeline relies on.
func (m *Model) Validate() error {
	var errs []error
	if len(m.Catalog.Contracts) == 0 {
		errs = append(errs, errors.New("catalog lists no contracts"))
	}
	for i, c := range m.Catalog.Contracts {
		switch {
		case strings.TrimSpace(c) == "":
			errs = append(errs, fmt.Errorf("contract #%d has an empty name", i))
		case filepath.IsAbs(c):
			errs = append(errs, fmt.Errorf("contract %q must be a relative path", c))
		case containsParentRef(c):
			errs = append(errs, fmt.Errorf("contract %q must not contain '..'", c))
		}
	}
	for _, d := range m.Dependencies {
		if d.Before == "" || d.After == "" {
			errs = append(errs, fmt.Errorf("dependency %q needs both before and after", d.Name))
			continue
		}
		n := d.Normalized()
		if n.Before == n.After {
			errs = append(errs, fmt.Errorf("dependency %q refers to %q on both sides", d.Name, n.Before))
		}
	}
	for _, v := range m.Toolchain.Versions {
		if strings.TrimSpace(v) == "" {
			errs = append(errs, errors.New("toolchain versions must not be empty strings"))
			break
		}
	}
	return errors.Join(errs...)
}

// RequireToolchain reports an error when no version is pinned and the
// catalog offers none to choose from.
func (m *Model) RequireToolchain(pinned string) error {
	if strings.TrimSpace(pinned) == "" && len(m.Toolchain.Versions) == 0 {
		return errors.New("catalog lists no toolchain versions and none is pinned with --toolchain")
	}
	return nil
}

func containsParentRef(p string) bool {
	for _, seg := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}

func duplicates(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		if seen[n] {
			out = append(out, n)
			continue
		}
		seen[n] = true
	}
	return out
}

func fileNames(files []File) string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}
