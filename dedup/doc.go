// Package dedup collapses duplicate transcripts in a fetched window.
//
// Exact duplicates share a raw id and keep the first occurrence. Fuzzy
// duplicates are near-identical copies (same normalized title, close
// timestamps, compatible durations) grouped transitively; each group
// keeps the most complete copy by a weighted score of content units,
// participants, and age.
package dedup
