// Package local implements vector.Store on BadgerDB with brute-force
// scan scoring. It shares the Badger backend used for checkpoints, so
// an embedded deployment needs exactly one data directory.
package local
