package dedup

import (
	"fmt"
	"strings"

	"github.com/biogo/hts/sam"

	"github.com/brackishbio/umid/umi"
)

// recordClass is the outcome of filtering a single record ahead of
// UMI bucketing.
type recordClass int

const (
	classMapped recordClass = iota
	classUnmapped
	classUnpaired
	classChimeric
	classMateUnmapped
)

// classify decides whether a record is eligible for clustering. In
// paired mode, a record additionally needs the Paired flag set and its
// mate on the same reference; a record whose mate is unmapped is
// classMateUnmapped, which is informational only: the record is still
// grouped.
func classify(r *sam.Record, paired bool) recordClass {
	if paired {
		if r.Flags&sam.Unmapped != 0 {
			return classUnmapped
		}
		if r.Flags&sam.Paired == 0 {
			return classUnpaired
		}
		if r.MateRef == nil || r.Ref == nil || r.MateRef.ID() != r.Ref.ID() {
			return classChimeric
		}
		if r.Flags&sam.MateUnmapped != 0 {
			return classMateUnmapped
		}
		return classMapped
	}
	if r.Flags&sam.Unmapped != 0 {
		return classUnmapped
	}
	return classMapped
}

// extractUMI reads the raw UMI sequence from either the read name
// (its last '_'-delimited field) or an aux tag, per cfg.
func extractUMI(r *sam.Record, cfg Config) (string, error) {
	if cfg.UMIInReadID {
		fields := strings.Split(r.Name, "_")
		last := fields[len(fields)-1]
		if last == "" {
			return "", fmt.Errorf("dedup: no UMI suffix in read name %q", r.Name)
		}
		return last, nil
	}
	aux, ok := r.Tag([]byte(cfg.UMITag))
	if !ok {
		return "", fmt.Errorf("dedup: record %q missing UMI tag %q", r.Name, cfg.UMITag)
	}
	v, ok := aux.Value().(string)
	if !ok {
		return "", fmt.Errorf("dedup: UMI tag %q on %q is not a string", cfg.UMITag, r.Name)
	}
	return v, nil
}

// groupReads classifies and buckets every record in a bundle (a
// contiguous run of records sharing one reference sequence),
// returning the resulting Position/UMI index and the Stats
// attributable to this bundle.
func groupReads(records []*sam.Record, cfg Config) (*readMap, Stats, error) {
	rm := newReadMap()
	var stats Stats

	for _, r := range records {
		stats.ReadsIn++

		if cfg.IsPaired && r.Flags&sam.Read2 != 0 {
			// Mate-2 records are rescued in a second pass once their
			// mate-1's fate (written or dropped) is known.
			continue
		}

		switch classify(r, cfg.IsPaired) {
		case classUnmapped:
			stats.ReadsUnmapped++
			continue
		case classUnpaired:
			stats.ReadsUnpaired++
			continue
		case classChimeric:
			stats.Chimeric++
			continue
		case classMateUnmapped:
			stats.MateUnmapped++
		case classMapped:
		}

		raw, err := extractUMI(r, cfg)
		if err != nil {
			return nil, stats, err
		}
		if cfg.Corrector != nil {
			raw, _, _ = cfg.Corrector.CorrectUMI(raw)
		}
		code, err := umi.Encode(raw)
		if err != nil {
			return nil, stats, fmt.Errorf("dedup: record %q: %w", r.Name, err)
		}

		pos := NewPosition(r, cfg)
		rm.bucketFor(pos).insert(code, r, cfg.GroupOnly)
	}

	return rm, stats, nil
}
