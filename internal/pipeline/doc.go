// Package pipeline runs the per-package stages that check a contract build
// for reproducibility: build, optimize and reproduce.
//
// Each stage constructs the arguments for the external tool, runs it to
// completion and converts a non-zero exit status into a *StageError. No stage
// retries, and a failed stage stops the remaining stages for that package.
package pipeline
