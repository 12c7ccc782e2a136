package config

import "context"

// File is a named configuration document.
type File struct {
	Name    string
	Content []byte
}

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load parses the given documents, in order, and merges them into a
	// single Model. Later documents override scalar blocks and extend lists.
	Load(ctx context.Context, files ...File) (*Model, error)
}
