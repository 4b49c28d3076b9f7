// Package mock provides a deterministic ai.Embedder test double.
//
// Without injected function fields the embedder hashes each text into a
// fixed unit vector, so tests get stable similarity scores without a
// model server.
package mock
