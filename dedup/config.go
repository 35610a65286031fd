package dedup

import "github.com/brackishbio/umid/umi"

// Config controls UMI bucketing, cluster resolution, and emission. Zero
// value is not meaningful; start from DefaultConfig.
type Config struct {
	// UMITag is the two-character SAM tag holding the raw UMI sequence
	// (ignored when UMIInReadID is set).
	UMITag string
	// UMIInReadID extracts the UMI from the last '_'-delimited field of
	// the read name instead of an aux tag.
	UMIInReadID bool

	// Corrector, when non-nil, snaps every raw UMI to the nearest member
	// of a known-UMI panel before it is encoded and bucketed. Reads whose
	// UMI doesn't snap uniquely to a panel member are bucketed under
	// their raw UMI unchanged.
	Corrector *umi.SnapCorrector

	// AllowedReadDist is the maximum Hamming distance, in bases, at
	// which two UMIs at the same locus are considered network
	// neighbors.
	AllowedReadDist int
	// AllowedCountFactor gates a directed edge i->j on freq(i) >=
	// AllowedCountFactor*freq(j) - 1.
	AllowedCountFactor int
	// AllowedNetworkDepth bounds how far a cluster grows from its seed:
	// 1 keeps the seed alone, 2 adds its direct out-neighbors, and each
	// further increment adds one more hop.
	AllowedNetworkDepth int

	// IgnoreSplicePos collapses all spliced alignments at a position to
	// a single bucket instead of separating them by splice offset.
	IgnoreSplicePos bool
	// GroupOnly emits every read annotated with its cluster (UG/BX
	// tags) instead of collapsing each cluster to one representative.
	GroupOnly bool
	// IsPaired includes template length in the position key and runs
	// the mate-2 rescue pass after the primary pass.
	IsPaired bool
}

// DefaultConfig matches the reference tool's command-line defaults.
func DefaultConfig() Config {
	return Config{
		UMITag:              "RX",
		AllowedReadDist:     1,
		AllowedCountFactor:  2,
		AllowedNetworkDepth: 2,
	}
}
