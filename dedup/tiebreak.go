package dedup

import "github.com/biogo/hts/sam"

var nhTag = sam.NewTag("NH")
var nmTag = sam.NewTag("NM")

// betterRepresentative reports whether candidate should replace incumbent
// as the representative read for a UMI bucket. The ladder, applied in
// order until one comparison is decisive, is: higher mapping quality;
// fewer reported alignments (NH); fewer mismatches (NM); longer read;
// otherwise the incumbent is kept.
func betterRepresentative(candidate, incumbent *sam.Record) bool {
	if candidate.MapQ != incumbent.MapQ {
		return candidate.MapQ > incumbent.MapQ
	}
	if cNH, iNH := readTagInt(candidate, nhTag), readTagInt(incumbent, nhTag); cNH != iNH {
		return cNH < iNH
	}
	if cNM, iNM := readTagInt(candidate, nmTag), readTagInt(incumbent, nmTag); cNM != iNM {
		return cNM < iNM
	}
	if candidate.Seq.Length != incumbent.Seq.Length {
		return candidate.Seq.Length > incumbent.Seq.Length
	}
	return false
}

// readTagInt returns the integer value of an aux tag whose encoding is
// one of the fixed-width integer kinds, or 0 if the tag is absent.
func readTagInt(r *sam.Record, tag sam.Tag) int {
	aux, ok := r.Tag(tag[:])
	if !ok {
		return 0
	}
	switch v := aux.Value().(type) {
	case int8:
		return int(v)
	case uint8:
		return int(v)
	case int16:
		return int(v)
	case uint16:
		return int(v)
	case int32:
		return int(v)
	case uint32:
		return int(v)
	default:
		return 0
	}
}
