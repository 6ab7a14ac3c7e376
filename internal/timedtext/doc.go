// Package timedtext converts the provider's XML timed-text payloads into SRT.
//
// Two cue shapes are understood: <text start="s" dur="s"> with times in
// seconds and srv3 <p t="ms" d="ms"> with times in milliseconds. WebVTT is
// never produced here; it is requested from the source directly and passed
// through unchanged.
package timedtext
