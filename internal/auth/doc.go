// Package auth checks rater and developer credentials against configured
// secrets. It carries no sessions; callers decide what to do with a Result.
package auth
