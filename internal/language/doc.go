// Package language normalizes caption language codes and renders their
// human-readable names.
package language
