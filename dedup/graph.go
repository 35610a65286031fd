package dedup

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/brackishbio/umid/umi"
)

// node is one UMI observed at a locus, paired with its read-frequency
// bucket. Its position in the nodes slice is also its graph.Node ID.
type node struct {
	code umi.Code
	freq *readFreq
}

// buildGraph lays every UMI at a locus out as a node, ordered by
// descending frequency (ties broken by decoded sequence) so that
// node IDs -- and therefore cluster seeding order -- are reproducible
// from one run to the next, then adds a directed edge i->j whenever i
// and j are within dist bases of each other and freq(i) >=
// countFactor*freq(j) - 1, per the count-asymmetric adjacency rule.
func buildGraph(umis map[umi.Code]*readFreq, dist, countFactor int) (*simple.DirectedGraph, []node) {
	nodes := make([]node, 0, len(umis))
	for code, rf := range umis {
		nodes = append(nodes, node{code: code, freq: rf})
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].freq.Freq != nodes[j].freq.Freq {
			return nodes[i].freq.Freq > nodes[j].freq.Freq
		}
		return nodes[i].code.Decode() < nodes[j].code.Decode()
	})

	g := simple.NewDirectedGraph()
	for i := range nodes {
		g.AddNode(simple.Node(int64(i)))
	}
	for i := range nodes {
		for j := range nodes {
			if i == j {
				continue
			}
			if umi.Hamming(nodes[i].code, nodes[j].code) > dist {
				continue
			}
			if nodes[i].freq.Freq < countFactor*nodes[j].freq.Freq-1 {
				continue
			}
			g.SetEdge(g.NewEdge(simple.Node(int64(i)), simple.Node(int64(j))))
		}
	}
	return g, nodes
}

// outNeighbors returns the IDs of nodes id has an edge to, in
// ascending order. Sorting keeps cluster traversal deterministic
// despite gonum's graph iterators not guaranteeing an order.
func outNeighbors(g *simple.DirectedGraph, id int64) []int {
	ns := graph.NodesOf(g.From(id))
	out := make([]int, len(ns))
	for i, n := range ns {
		out[i] = int(n.ID())
	}
	sort.Ints(out)
	return out
}
