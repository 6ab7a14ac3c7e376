// Package textutil provides filename sanitization for artifacts written by
// vidresolve.
package textutil
