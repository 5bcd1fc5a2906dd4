// Package cli turns command-line arguments into an app.Config. Flags are
// layered over DISPATCHGO_* environment variables and an optional config
// file; usage errors carry the exit code the process should end with.
package cli
