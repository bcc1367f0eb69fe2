// Package ingestion turns normalized recipes into stored records.
//
// The Coordinator processes a collection one record at a time:
//   - validate, skipping recipes that are not ingestible
//   - skip recipes already stored (same name and source, or same source URL)
//   - score quality, falling back to a neutral score when the scorer fails
//   - embed, storing the recipe without a vector when embedding fails
//   - persist, recording the failure and moving on when storage fails
//
// Only a persistence failure marks a record failed. Every run returns
// complete statistics, which are also written to a JSON run log.
package ingestion
