// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the two operating modes (build and
// reproduce), decoupled from any specific entrypoint like a CLI.
package app
