// Package services holds request-scoped context keys and the shared error
// taxonomy used by the resolver, the extraction strategies, and the hosts
// that surface their failures.
//
// Wrap tags an error with one of the sentinel markers so callers can classify
// it with errors.Is without parsing messages.
package services
