package dedup

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
)

// cluster is a set of node indices resolved to share one UMI identity,
// plus the index (into the same nodes slice) of the node chosen as
// its representative.
type cluster struct {
	Nodes  []int
	Master int
}

// resolveClusters greedily partitions every node in g into clusters,
// seeding each new cluster at the highest-frequency unseen node and
// absorbing nodes reachable within depth-1 further hops along
// outgoing edges. A node is claimed by at most one cluster: once
// admitted (as a seed or a neighbor), it is marked seen and cannot be
// admitted again.
//
// depth=1 admits only the seed itself; depth=2 additionally admits
// the seed's direct out-neighbors; each further increment extends the
// frontier by one more hop.
func resolveClusters(g *simple.DirectedGraph, nodes []node, depth int) []cluster {
	n := len(nodes)
	priority := make([]int, n)
	for i := range priority {
		priority[i] = i
	}
	sort.SliceStable(priority, func(i, j int) bool {
		return nodes[priority[i]].freq.Freq > nodes[priority[j]].freq.Freq
	})

	seen := make([]bool, n)
	var clusters []cluster

	for _, x := range priority {
		if seen[x] {
			continue
		}
		seen[x] = true

		var admitted []int
		frontier := []int{x}
		for round := 0; round < depth-1 && len(frontier) > 0; round++ {
			var next []int
			for _, f := range frontier {
				for _, to := range outNeighbors(g, int64(f)) {
					if seen[to] {
						continue
					}
					seen[to] = true
					admitted = append(admitted, to)
					next = append(next, to)
				}
			}
			frontier = next
		}

		// The seed is appended last, not first: the master-node
		// search below walks admission order starting from
		// index 0, so a neighbor that ties the seed's frequency wins
		// the master slot.
		members := append(admitted, x)

		masterPos := 0
		for i, idx := range members {
			if nodes[idx].freq.Freq > nodes[members[masterPos]].freq.Freq {
				masterPos = i
			}
		}

		clusters = append(clusters, cluster{Nodes: members, Master: members[masterPos]})
	}
	return clusters
}
