// Package ratings records rater details and pair ratings on top of a
// ratingstore backend and renders the CSV export.
//
// Every operation is one load-modify-save cycle. Submitting the same pair
// twice appends a second record; Current reconstructs the latest score per
// pair for a rater.
package ratings
