// Package reembed recomputes the embeddings of stored recipes, typically
// after the embedding model or its dimension changed.
//
// Records are read page by page in ID order, embedded in bounded concurrent
// groups and written back. A recipe whose embedding fails is counted and
// left untouched; the run continues with the next one.
package reembed
