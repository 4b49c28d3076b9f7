package search

import "github.com/poiesic/tributary/core"

// Monitor provides hooks to observe the search process.
// Implement this interface to trace intermediate results, for
// debugging or verbose CLI output.
type Monitor interface {
	Start(query string)
	AfterQueryEmbedding(dimension int)
	AfterVectorQuery(candidates []core.Match)
	VerbatimHit(doc *core.Document)
	Finish(results []core.Match)
}

// noopMonitor is a no-op implementation of Monitor.
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                  {}
func (n *noopMonitor) AfterQueryEmbedding(_ int)       {}
func (n *noopMonitor) AfterVectorQuery(_ []core.Match) {}
func (n *noopMonitor) VerbatimHit(_ *core.Document)    {}
func (n *noopMonitor) Finish(_ []core.Match)           {}
