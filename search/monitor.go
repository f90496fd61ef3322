package search

import "github.com/poiesic/groundwork/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterEmbedding(dimension int)
	AfterCorpusLoad(items, usable int)
	Finish(results []core.RetrievalResult)
}

type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                  {}
func (n *noopMonitor) AfterEmbedding(_ int)            {}
func (n *noopMonitor) AfterCorpusLoad(_, _ int)        {}
func (n *noopMonitor) Finish(_ []core.RetrievalResult) {}
