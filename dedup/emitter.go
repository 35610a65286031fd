package dedup

import (
	"github.com/biogo/hts/sam"

	"github.com/grailbio/base/log"
)

// emittedRecord is one record ready to leave the pipeline. MasterUMI
// is set only in group mode, where every emitted record carries the
// decoded consensus UMI of its cluster as the BX tag; ClusterID is
// filled in by the consumer, which owns the monotonically increasing
// counter (spec.md's "ids are dense... in emission order").
type emittedRecord struct {
	Record    *sam.Record
	MasterUMI string
	Grouped   bool
}

// emitLocus resolves one locus's UMI graph into clusters and returns
// the records that locus contributes to the output stream: one
// representative per cluster in dedup mode, or every member record
// (tagged with its cluster's master UMI) in group mode.
func emitLocus(b *positionBucket, cfg Config) []emittedRecord {
	g, nodes := buildGraph(b.umis, cfg.AllowedReadDist, cfg.AllowedCountFactor)
	clusters := resolveClusters(g, nodes, cfg.AllowedNetworkDepth)
	log.Debug.Printf("locus target=%d pos=%d: %d UMIs, %d clusters", b.pos.Target, b.pos.Pos, len(nodes), len(clusters))

	var out []emittedRecord
	for _, c := range clusters {
		if !cfg.GroupOnly {
			out = append(out, emittedRecord{Record: nodes[c.Master].freq.representative})
			continue
		}
		master := nodes[c.Master].code.Decode()
		for _, idx := range c.Nodes {
			for _, r := range nodes[idx].freq.members {
				out = append(out, emittedRecord{Record: r, MasterUMI: master, Grouped: true})
			}
		}
	}
	return out
}
