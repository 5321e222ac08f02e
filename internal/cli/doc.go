// Package cli provides the interactive nodekeeper shell.
//
// It wires configuration, the local SQLite store, the credential and
// registry services, and a read-eval-print loop over them. On start the
// bundled default servers are installed once; after that every registry
// mutation is submitted to the serial transaction queue and the shell waits
// for its completion before printing the result.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
