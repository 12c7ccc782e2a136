package config

import "fmt"

// ConfigError reports a malformed or invalid catalog document.
type ConfigError struct {
	// Source names the document that failed, e.g. "embedded catalog.hcl".
	Source string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration in %s: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
