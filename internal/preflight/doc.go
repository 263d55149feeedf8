// Package preflight provides readiness checks for the paths and audio source
// audiopref depends on.
//
// These checks run in two contexts:
//   - "audiopref serve" runs RunAll before binding and logs failures so a
//     misconfigured data directory is visible before the first rating is lost.
//   - The CLI "audiopref check" command renders every Result as a table.
//
// Checks for features that are not configured are skipped.
package preflight
