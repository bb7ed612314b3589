// Package cli provides the interactive lifedash command-line client.
//
// It wires configuration, the durable slot store, the backend API client, the
// session manager and the access gate into a REPL. Typical flow: resolve the
// persisted session, then execute user commands until exit.
//
// Key features:
//   - Register / Login / Logout against the credential service
//   - Todos and plans stored on the server, scoped to the signed-in owner
//   - Quick links and story ideas kept in local owner-scoped slots
//   - AI suggestions seeded from the user's existing entries
//   - Picture uploads through presigned URLs
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
