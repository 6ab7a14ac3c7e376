// Package main hosts the vidresolve CLI entrypoint and command graph.
//
// The Cobra command tree resolves videos from the terminal, downloads and
// converts subtitles, and runs the serve daemon and the sidecar reconcile
// loop. Configuration loading and collaborator wiring live in the command
// context so subcommands only describe their flags and output.
package main
