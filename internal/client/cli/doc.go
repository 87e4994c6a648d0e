// Package cli provides the interactive Matthias chat client.
//
// It wires configuration, the local account vault, the per-server history
// and media cache, the connection layer, and an interactive REPL.
// Typical flow: log in to a local account, connect to a server, then chat
// while a background watcher pulls new messages every sync interval.
//
// Key features:
//   - Register / Login / Logout against local encrypted account files
//   - Connect / Disconnect, with bookmarked server addresses
//   - Say, reply, upload, react and edit
//   - Sync and history, folded into a local SQLite copy of the ledger
//   - Fetch attachments into the media cache
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartSyncWatcher, and runREPL for details.
package cli
