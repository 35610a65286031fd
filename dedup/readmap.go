package dedup

import (
	"github.com/biogo/hts/sam"
	"github.com/biogo/store/llrb"

	"github.com/brackishbio/umid/umi"
)

// readFreq tracks, for one UMI at one locus, how many qualifying reads
// it has seen and the read(s) that will ultimately be emitted for it:
// a single representative in dedup mode, or every read in group mode.
type readFreq struct {
	Freq int

	representative *sam.Record // dedup mode
	members        []*sam.Record
}

// add folds r into the bucket, keeping the best representative under
// the tie-break ladder, or, in group mode, the full member list.
func (rf *readFreq) add(r *sam.Record, groupMode bool) {
	rf.Freq++
	if groupMode {
		rf.members = append(rf.members, r)
		return
	}
	if rf.representative == nil || betterRepresentative(r, rf.representative) {
		rf.representative = r
	}
}

// positionBucket is one node of the per-bundle Position index: a
// locus and the UMI table of reads observed there. Node order for
// graph building is not derived from insertion order here; buildGraph
// fixes it by sorting on frequency and decoded sequence instead.
type positionBucket struct {
	pos  Position
	umis map[umi.Code]*readFreq
}

func newPositionBucket(pos Position) *positionBucket {
	return &positionBucket{pos: pos, umis: map[umi.Code]*readFreq{}}
}

// Compare implements llrb.Comparable, ordering buckets by Position.
func (b *positionBucket) Compare(c llrb.Comparable) int {
	o := c.(*positionBucket)
	switch {
	case b.pos.Less(o.pos):
		return -1
	case o.pos.Less(b.pos):
		return 1
	default:
		return 0
	}
}

func (b *positionBucket) insert(code umi.Code, r *sam.Record, groupMode bool) {
	rf, ok := b.umis[code]
	if !ok {
		rf = &readFreq{}
		b.umis[code] = rf
	}
	rf.add(r, groupMode)
}

// readMap is the ordered Position -> UMI-table index for one bundle
// (one reference sequence's worth of reads). Iteration with Do walks
// loci in the order defined by Position.Less without a separate sort
// pass. Run processes bundles concurrently, so the output stream as a
// whole is not coordinate-sorted.
type readMap struct {
	tree llrb.Tree
}

func newReadMap() *readMap { return &readMap{} }

func (m *readMap) bucketFor(pos Position) *positionBucket {
	probe := &positionBucket{pos: pos}
	if existing := m.tree.Get(probe); existing != nil {
		return existing.(*positionBucket)
	}
	b := newPositionBucket(pos)
	m.tree.Insert(b)
	return b
}

// Do visits every locus in Position order.
func (m *readMap) Do(fn func(b *positionBucket)) {
	m.tree.Do(func(c llrb.Comparable) bool {
		fn(c.(*positionBucket))
		return false
	})
}

func (m *readMap) Len() int { return m.tree.Len() }
