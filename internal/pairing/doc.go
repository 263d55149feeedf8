// Package pairing discovers raw/improved audio pairs and decides the order a
// rater hears them in.
//
// A Source lists candidate folders (a local directory tree, a Google Drive
// folder or an S3 prefix). The Generator keeps folders that hold both assets,
// derives a display label and flips a fair coin per pair: heads shows the raw
// asset first. Pair.Canonical maps the scores a rater gave per displayed slot
// back to the stored order, where audioA is always the improved asset.
package pairing
