// Package cli provides the interactive FieldLog operator console.
//
// The console authenticates with an access token issued by fieldlogctl,
// opens a session for the configured job pack and structure, and drives the
// operator surface: movement advance/rollback, tape transport marks, event
// edits and deletes, deployment selection and mode switching. Every command
// renders the snapshot returned by the server; a background watcher tracks
// connectivity.
//
// The REPL is started via App.Root(ctx), which blocks until the operator
// exits. See runREPL for the command table.
package cli
