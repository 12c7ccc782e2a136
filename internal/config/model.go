package config

import "strings"

// Model is the unified, format-agnostic representation of the tool's
// domain configuration.
type Model struct {
	Source       Source
	Toolchain    Toolchain
	Catalog      Catalog
	Dependencies []DependencyPair
}

// Source identifies the reference repository that contracts are built from.
type Source struct {
	// Name is the directory the repository is cloned into, relative to the
	// work directory.
	Name string
	URL  string
}

// Toolchain lists the compiler versions a build may be pinned to.
type Toolchain struct {
	// Env is the environment variable used to override the toolchain.
	Env      string
	Versions []string
}

// Catalog is the ordered list of contract directories to process.
type Catalog struct {
	Contracts []string
}

// DependencyPair declares that the artifact identified by Before must be
// built and verified before the artifact identified by After.
//
// Identities are artifact stems (see artifact.Identity): package names with
// hyphens normalized to underscores.
type DependencyPair struct {
	Name   string
	Before string
	After  string
}

// Normalized returns the pair with both identities in canonical form.
func (p DependencyPair) Normalized() DependencyPair {
	return DependencyPair{
		Name:   p.Name,
		Before: strings.ReplaceAll(p.Before, "-", "_"),
		After:  strings.ReplaceAll(p.After, "-", "_"),
	}
}
