// Package backoff holds the retry loop and the sleep abstraction shared by
// the HTTP sources and the embedding clients. Callers inject a Sleeper so
// retry schedules can be asserted without real timers.
package backoff
