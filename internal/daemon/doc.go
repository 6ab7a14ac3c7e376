// Package daemon runs the long-lived serve host: an HTTP API over the
// resolver, a websocket feed of extraction attempts and state transitions,
// and an optional background reconcile loop. A file lock keeps a single
// instance per state directory.
package daemon
