// Package orchestrator runs the sources one after another: download when
// needed, load, cap, ingest. It collects a per-source summary and an overall
// success flag.
package orchestrator
