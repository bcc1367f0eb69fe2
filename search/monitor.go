package search

import (
	"github.com/poiesic/larder/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterSemanticSearch(ids []core.ID)
	SemanticHit(record *core.IngestionRecord, similarity float32)
	TextHit(record *core.IngestionRecord)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                 {}
func (n *noopMonitor) AfterSemanticSearch(_ []core.ID)                {}
func (n *noopMonitor) SemanticHit(_ *core.IngestionRecord, _ float32) {}
func (n *noopMonitor) TextHit(_ *core.IngestionRecord)                {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)                  {}
