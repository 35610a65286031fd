package dedup

import (
	"testing"

	"github.com/brackishbio/umid/umi"
)

func freqBucket(t *testing.T, bases map[string]int) map[umi.Code]*readFreq {
	t.Helper()
	out := map[umi.Code]*readFreq{}
	for seq, freq := range bases {
		code, err := umi.Encode(seq)
		if err != nil {
			t.Fatalf("Encode(%q): %v", seq, err)
		}
		out[code] = &readFreq{Freq: freq}
	}
	return out
}

// umiFamily mirrors the worked network example: a dominant UMI (ATTA)
// with two one-off sequencing-error neighbors, a second, lower-count
// true UMI (AGGA) one edit away from the dominant one's neighbor
// (AGTA), and a low-count neighbor of AGTA's own.
func umiFamily(t *testing.T) map[umi.Code]*readFreq {
	return freqBucket(t, map[string]int{
		"ATTA": 456,
		"ATTG": 1,
		"ATTT": 2,
		"AGTA": 72,
		"AGTC": 1,
		"AGGA": 90,
	})
}

func TestBuildGraphEdges(t *testing.T) {
	g, nodes := buildGraph(umiFamily(t), 1, 2)

	indexOf := func(seq string) int {
		for i, n := range nodes {
			if n.code.Decode() == seq {
				return i
			}
		}
		t.Fatalf("node %s not found", seq)
		return -1
	}

	wantEdges := map[string][]string{
		"ATTA": {"AGTA", "ATTG", "ATTT"},
		"AGTA": {"AGTC"},
		"ATTT": {"ATTG"},
		"AGGA": {},
		"ATTG": {},
		"AGTC": {},
	}
	for seq, want := range wantEdges {
		got := outNeighbors(g, int64(indexOf(seq)))
		gotSeqs := make([]string, len(got))
		for i, id := range got {
			gotSeqs[i] = nodes[id].code.Decode()
		}
		if len(gotSeqs) != len(want) {
			t.Errorf("neighbors(%s) = %v, want %v", seq, gotSeqs, want)
			continue
		}
		wantSet := map[string]bool{}
		for _, w := range want {
			wantSet[w] = true
		}
		for _, g := range gotSeqs {
			if !wantSet[g] {
				t.Errorf("neighbors(%s) = %v, want %v", seq, gotSeqs, want)
				break
			}
		}
	}
}

func TestBuildGraphNodeOrderIsDeterministic(t *testing.T) {
	bases := umiFamily(t)
	_, nodes1 := buildGraph(bases, 1, 2)
	_, nodes2 := buildGraph(bases, 1, 2)
	if len(nodes1) != len(nodes2) {
		t.Fatalf("node count differs between runs")
	}
	for i := range nodes1 {
		if nodes1[i].code != nodes2[i].code {
			t.Errorf("node %d differs between runs: %s vs %s", i, nodes1[i].code.Decode(), nodes2[i].code.Decode())
		}
	}
	// Highest frequency UMI sorts first.
	if nodes1[0].code.Decode() != "ATTA" {
		t.Errorf("nodes[0] = %s, want ATTA", nodes1[0].code.Decode())
	}
}
