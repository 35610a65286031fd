package dedup

import (
	"fmt"
	"sync"
)

// Stats accumulates the per-run read counters that summarize what
// happened to every record offered to the pipeline.
type Stats struct {
	ReadsIn       int
	ReadsOut      int
	ReadsUnmapped int
	ReadsUnpaired int
	MateUnmapped  int
	Chimeric      int
}

// Add folds other's counters into s.
func (s *Stats) Add(other Stats) {
	s.ReadsIn += other.ReadsIn
	s.ReadsOut += other.ReadsOut
	s.ReadsUnmapped += other.ReadsUnmapped
	s.ReadsUnpaired += other.ReadsUnpaired
	s.MateUnmapped += other.MateUnmapped
	s.Chimeric += other.Chimeric
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"Reads In: %d\nReads Out: %d\nReads Unmapped: %d\nReads Unpaired: %d\nMates Unmapped: %d\nReads Chimeric: %d",
		s.ReadsIn, s.ReadsOut, s.ReadsUnmapped, s.ReadsUnpaired, s.MateUnmapped, s.Chimeric,
	)
}

// statsAggregator is a mutex-protected Stats, one per pipeline run,
// merged into from each bundle worker.
type statsAggregator struct {
	mu    sync.Mutex
	stats Stats
}

func (a *statsAggregator) merge(s Stats) {
	a.mu.Lock()
	a.stats.Add(s)
	a.mu.Unlock()
}

func (a *statsAggregator) snapshot() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}
