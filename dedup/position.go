package dedup

import (
	"github.com/biogo/hts/sam"
)

// Position is the coordinate key reads are bucketed by ahead of UMI
// clustering: reference, 5' alignment coordinate adjusted for soft
// clips, splice offset (when applicable), strand, and for paired data,
// template length. Two reads sharing a Position are candidates for the
// same cluster.
type Position struct {
	Target int
	Pos    int

	// SpliceOffset is nil for reads with no splice (no N operation and
	// no soft clip after the 5'-most CIGAR operation); otherwise it
	// holds the offset from Pos to the first such break (see findSplice).
	SpliceOffset *int
	// TemplateLength is nil outside paired mode.
	TemplateLength *int

	IsReverse bool
}

// NewPosition derives the bucketing key for r under cfg.
func NewPosition(r *sam.Record, cfg Config) Position {
	reverse := r.Flags&sam.Reverse != 0

	p := Position{
		Target:    r.Ref.ID(),
		IsReverse: reverse,
	}

	if reverse {
		pos := r.End()
		if n := len(r.Cigar); n > 0 && r.Cigar[n-1].Type() == sam.CigarSoftClipped {
			pos += r.Cigar[n-1].Len()
		}
		p.Pos = pos
	} else {
		pos := r.Pos
		if len(r.Cigar) > 0 && r.Cigar[0].Type() == sam.CigarSoftClipped {
			pos -= r.Cigar[0].Len()
		}
		p.Pos = pos
	}

	if off := findSplice(r.Cigar, reverse); off != nil {
		if cfg.IgnoreSplicePos {
			zero := 0
			p.SpliceOffset = &zero
		} else {
			p.SpliceOffset = off
		}
	}

	if cfg.IsPaired {
		tlen := r.TempLen
		p.TemplateLength = &tlen
	}

	return p
}

// findSplice walks the CIGAR from the 5' end (reversed when the read is
// on the minus strand), starting from the length of a leading 5' soft
// clip and counting reference-consumed bases until it hits a
// reference-skip or any later soft clip (including one at the 3' end),
// which marks a splice junction. It returns nil when no such break is
// found.
func findSplice(cigar sam.Cigar, reverse bool) *int {
	ops := cigar
	if reverse {
		ops = make(sam.Cigar, len(cigar))
		for i, co := range cigar {
			ops[len(cigar)-1-i] = co
		}
	}

	i := 0
	offset := 0
	if len(ops) > 0 && ops[0].Type() == sam.CigarSoftClipped {
		offset = ops[0].Len()
		i = 1
	}

	for ; i < len(ops); i++ {
		switch ops[i].Type() {
		case sam.CigarSkipped, sam.CigarSoftClipped:
			off := offset
			return &off
		case sam.CigarMatch, sam.CigarDeletion, sam.CigarEqual, sam.CigarMismatch:
			offset += ops[i].Len()
		default:
			// Insertion, hard clip, padding: consumes no reference.
		}
	}
	return nil
}

// Less implements the lexicographic ordering over (Target, Pos,
// TemplateLength, SpliceOffset, IsReverse); nil optional fields sort
// before any concrete value, so two positions differing only in
// whether a splice or template length is present remain ordered
// consistently within a single run.
func (p Position) Less(o Position) bool {
	if p.Target != o.Target {
		return p.Target < o.Target
	}
	if p.Pos != o.Pos {
		return p.Pos < o.Pos
	}
	if c := compareOptionalInt(p.TemplateLength, o.TemplateLength); c != 0 {
		return c < 0
	}
	if c := compareOptionalInt(p.SpliceOffset, o.SpliceOffset); c != 0 {
		return c < 0
	}
	return !p.IsReverse && o.IsReverse
}

// Equal reports whether p and o are the same bucketing key.
func (p Position) Equal(o Position) bool {
	return p.Target == o.Target &&
		p.Pos == o.Pos &&
		equalOptionalInt(p.TemplateLength, o.TemplateLength) &&
		equalOptionalInt(p.SpliceOffset, o.SpliceOffset) &&
		p.IsReverse == o.IsReverse
}

func compareOptionalInt(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}

func equalOptionalInt(a, b *int) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}
