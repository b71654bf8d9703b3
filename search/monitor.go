package search

import (
	"github.com/poiesic/almanac/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterEmbedding(dimensions int)
	// AfterCandidateScan reports how many fragments were read and how many of
	// those were discarded as noise.
	AfterCandidateScan(scanned, noise int)
	LexicalUnavailable()
	Admitted(result *core.RankedResult)
	Finish(results []*core.RankedResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                  {}
func (n *noopMonitor) AfterEmbedding(_ int)            {}
func (n *noopMonitor) AfterCandidateScan(_, _ int)     {}
func (n *noopMonitor) LexicalUnavailable()             {}
func (n *noopMonitor) Admitted(_ *core.RankedResult)   {}
func (n *noopMonitor) Finish(_ []*core.RankedResult)   {}
