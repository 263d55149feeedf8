// Command audiopref runs the audio preference rating server and the
// administrator tooling around its data file.
//
// "audiopref serve" starts the HTTP API. The remaining commands read the same
// configuration and data file directly: list and export ratings, list raters,
// preview generated pairs, run readiness checks, send a test notification and
// manage the configuration file.
package main
