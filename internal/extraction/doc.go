// Package extraction obtains the raw player-response document for a video by
// running an ordered list of strategies until one yields a valid document.
//
// The built-in strategies, in their default order, are:
//   - global: read a player response the host already holds in memory
//   - element: ask a host element accessor for the player response
//   - script: scan inline script text for a marker and cut out the JSON
//   - remote: post to the player endpoint with one or more client profiles
//
// A strategy whose capability is missing from the Page reports
// services.ErrStrategyUnavailable and is skipped exactly like one that failed.
// Only when every strategy has failed does Extract return an *ExhaustedError.
// Each attempt is reported to an Observer for diagnostics; observers never
// influence control flow.
package extraction
