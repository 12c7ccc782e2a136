// Package config defines the format-agnostic configuration model for the
// application, along with the Loader interface for reading it from a
// concrete format.
//
// The Model is the single source of truth for the contract catalog, the
// known cross-contract dependency pairs, the allowed toolchain versions and
// the reference source repository. The HCL implementation of Loader lives in
// the hcl package; the default catalog is embedded in this package.
package config
