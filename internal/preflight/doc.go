// Package preflight provides readiness checks for the paths and services
// vidresolve depends on.
//
// The CLI "vidresolve check" command runs RunAll and prints each result; the
// serve command runs the same checks at startup and logs failures without
// refusing to start. Checks for disabled features are skipped.
package preflight
