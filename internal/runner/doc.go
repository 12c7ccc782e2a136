// Package runner launches the external tools the pipeline orchestrates.
//
// Every tool invocation goes through the Runner interface, which has a single
// blocking operation returning the process exit status. Exec is the real
// implementation; Fake records invocations and returns scripted statuses so
// that callers can be tested without spawning processes.
package runner
