// Package playerdata models the provider's player-response document with an
// explicit optional-field schema.
//
// Every section is a pointer or a presence-tracking value so callers check
// presence before access instead of assuming a shape. Numbers the provider
// sometimes emits as strings decode through FlexInt.
package playerdata
