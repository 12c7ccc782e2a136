// Package dag builds the dependency graph over discovered contract artifacts
// and derives the order in which they must be verified.
//
// Nodes are stable artifact identities (normalized package names), not
// file paths. Edges come from the known dependency pairs in the catalog: an
// edge Before -> After means After may only be processed once Before has
// been. A cycle is a configuration error and is never resolved implicitly.
package dag
