// Package similarity implements cosine similarity and deterministic top-K
// ranking over dense vectors.
package similarity
