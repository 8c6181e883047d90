// Package cli implements the notekeeper command line: a cobra command tree
// for one-shot operations (register, login, sync, export, ...) and an
// interactive shell for working with notes and tags.
//
// The shell reads commands line by line and dispatches them to App methods
// through execIface, so tests can drive the loop with a stub. Notes and tags
// are always read from and written to the local store; pushes to the server
// happen in the background when the connection comes back, or on "sync".
package cli
