// Package artifact holds the naming rules for compiled contract binaries.
package artifact

import (
	"path/filepath"
	"strings"
)

const (
	// Ext is the extension of a compiled contract.
	Ext = ".wasm"
	// OptimizedMarker is inserted before the extension of optimized artifacts.
	OptimizedMarker = "optimized"
)

// NormalizeName converts a package name into the form the build tool uses
// for output files: hyphens become underscores.
func NormalizeName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// FileName returns the artifact file name the build tool produces for the
// named package, e.g. "atomic-swap" -> "atomic_swap.wasm".
func FileName(pkgName string) string {
	return NormalizeName(pkgName) + Ext
}

// OptimizedPath inserts the optimized marker before the extension:
// "out/foo.wasm" -> "out/foo.optimized.wasm".
//
// It is not idempotent: applying it to its own output inserts the marker
// again. Always derive from the unoptimized path.
func OptimizedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "." + OptimizedMarker + ext
}

// IsOptimized reports whether path carries the optimized marker.
func IsOptimized(path string) bool {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.HasSuffix(stem, "."+OptimizedMarker)
}

// Identity returns the stable name an artifact is known by in dependency
// declarations: the file stem without the optimized marker, normalized.
// "out/atomic-swap.optimized.wasm" and "x/atomic_swap.wasm" share the
// identity "atomic_swap".
func Identity(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = strings.TrimSuffix(stem, "."+OptimizedMarker)
	return NormalizeName(stem)
}
