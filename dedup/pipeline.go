package dedup

import (
	"fmt"
	"io"
	"sync"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"github.com/grailbio/base/log"
)

var (
	ugTag = sam.NewTag("UG")
	bxTag = sam.NewTag("BX")
)

// DefaultWorkers is the bundle-level parallelism Run uses when none is
// specified.
const DefaultWorkers = 8

// writtenMate records what a dedup/group pass wrote for one read-1,
// so its rescued mate-2 can carry the same cluster annotations.
type writtenMate struct {
	ug int32
	bx string
}

// Run streams SAM/BAM records from r, clusters and deduplicates (or
// labels, per cfg.GroupOnly) them, and writes the result to w. Input
// must be coordinate-sorted; this is not verified.
func Run(r io.Reader, w io.Writer, cfg Config) (Stats, error) {
	return RunWithWorkers(r, w, cfg, DefaultWorkers)
}

// RunWithWorkers is Run with an explicit bundle-worker pool size.
func RunWithWorkers(r io.Reader, w io.Writer, cfg Config, workers int) (Stats, error) {
	if workers < 1 {
		workers = 1
	}

	reader, err := bam.NewReader(r, workers)
	if err != nil {
		return Stats{}, fmt.Errorf("dedup: opening input: %w", err)
	}
	defer reader.Close()

	writer, err := bam.NewWriter(w, reader.Header(), workers)
	if err != nil {
		return Stats{}, fmt.Errorf("dedup: opening output: %w", err)
	}
	defer writer.Close()

	bundles := make(chan bundle, workers)
	readErrc := make(chan error, 1)
	var mate2 []*sam.Record

	out := make(chan emittedRecord, 4*workers)
	workErrc := make(chan error, 1)
	agg := &statsAggregator{}

	go func() {
		next := func() (*sam.Record, error) { return reader.Read() }
		if !cfg.IsPaired {
			readBundles(next, bundles, readErrc)
			return
		}
		// Mate-2 records never enter clustering; buffer them here, in
		// the single sequential reader, so the rescue pass below can
		// replay them in original input order without re-reading the
		// stream (bam.Reader over a pipe or stdin cannot be rewound).
		// They still count toward reads_in, same as the original: every
		// record read is tallied before the mate-2 skip is applied.
		filtered := func() (*sam.Record, error) {
			for {
				rec, err := next()
				if err != nil {
					return nil, err
				}
				if rec.Flags&sam.Read2 != 0 {
					mate2 = append(mate2, rec)
					agg.merge(Stats{ReadsIn: 1})
					continue
				}
				return rec, nil
			}
		}
		readBundles(filtered, bundles, readErrc)
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range bundles {
				log.Debug.Printf("bundle refID=%d: %d records", b.refID, len(b.records))
				rm, stats, err := groupReads(b.records, cfg)
				agg.merge(stats)
				if err != nil {
					select {
					case workErrc <- err:
					default:
					}
					continue
				}
				rm.Do(func(bucket *positionBucket) {
					for _, er := range emitLocus(bucket, cfg) {
						out <- er
					}
				})
			}
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()

	var stats Stats
	var groupCounter int32
	written := make(map[string]writtenMate)

	for er := range out {
		r := er.Record
		var mate writtenMate
		if cfg.GroupOnly {
			mate = writtenMate{ug: groupCounter, bx: er.MasterUMI}
			groupCounter++
			ugAux, err := sam.NewAux(ugTag, mate.ug)
			if err != nil {
				return stats, fmt.Errorf("dedup: tagging UG: %w", err)
			}
			bxAux, err := sam.NewAux(bxTag, mate.bx)
			if err != nil {
				return stats, fmt.Errorf("dedup: tagging BX: %w", err)
			}
			r.AuxFields = append(r.AuxFields, ugAux, bxAux)
		}
		if err := writer.Write(r); err != nil {
			return stats, fmt.Errorf("dedup: writing record: %w", err)
		}
		stats.ReadsOut++
		if cfg.IsPaired {
			written[r.Name] = mate
		}
	}

	select {
	case err := <-readErrc:
		return stats, fmt.Errorf("dedup: reading input: %w", err)
	default:
	}
	select {
	case err := <-workErrc:
		return stats, fmt.Errorf("dedup: grouping reads: %w", err)
	default:
	}

	if cfg.IsPaired {
		for _, rec := range mate2 {
			mate, ok := written[rec.Name]
			if !ok {
				continue
			}
			if cfg.GroupOnly {
				ugAux, err := sam.NewAux(ugTag, mate.ug)
				if err != nil {
					return stats, fmt.Errorf("dedup: tagging rescued UG: %w", err)
				}
				bxAux, err := sam.NewAux(bxTag, mate.bx)
				if err != nil {
					return stats, fmt.Errorf("dedup: tagging rescued BX: %w", err)
				}
				rec.AuxFields = append(rec.AuxFields, ugAux, bxAux)
			}
			if err := writer.Write(rec); err != nil {
				return stats, fmt.Errorf("dedup: writing rescued mate: %w", err)
			}
			stats.ReadsOut++
		}
	}

	agg.merge(stats)
	return agg.snapshot(), nil
}
