package umi

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/grailbio/base/log"

	"github.com/brackishbio/umid/seqdist"
)

var (
	alphabetMap = map[byte]bool{
		'A': true,
		'C': true,
		'G': true,
		'T': true,
	}

	alphabetWithN    = []byte{'A', 'C', 'G', 'T', 'N'}
	alphabetWithNMap = map[byte]bool{
		'A': true,
		'C': true,
		'G': true,
		'T': true,
		'N': true,
	}
)

func levenshteinCostFn(s1, s2 string) int {
	return seqdist.Levenshtein(s1, s2, "", "")
}

type snapCorrectorEntry struct {
	knownUMI string
	edits    int
}

// SnapCorrector implements "snap" correction of UMIs against a panel of
// known-good barcodes, an optional pre-pass ahead of position bucketing
// for library preparations that draw UMIs from a fixed panel rather than
// fully random sequence. A UMI U is snappable if there is a known
// non-random UMI U1 that is strictly closer to U than every other known
// UMI, in terms of Levenshtein edit distance.
type SnapCorrector struct {
	knownUMIs []string
	k         int

	// correctionTable maps every snappable k-mer (k is the length of the
	// UMI) to the known UMI it should snap to.
	correctionTable map[string]snapCorrectorEntry
}

// NewSnapCorrector builds a corrector from a newline-separated list of
// known UMIs (the contents of a file with one UMI per line). Each UMI
// must consist of characters ACGT and all UMIs must share one length;
// N is accepted only in the UMIs passed to CorrectUMI.
func NewSnapCorrector(knownUMIs []byte) *SnapCorrector {
	log.Debug.Printf("building snappable UMI correction table")
	reader := bytes.NewBuffer(knownUMIs)
	scanner := bufio.NewScanner(reader)
	known := []string{}
	k := -1
	for scanner.Scan() {
		u := strings.ToUpper(scanner.Text())
		if u == "" {
			continue
		}
		if k < 0 {
			k = len(u)
		}
		if len(u) != k {
			panic(fmt.Sprintf("umi: known UMI %s has length %d, others have length %d", u, len(u), k))
		}
		validateUMI(u, false)
		known = append(known, u)
	}
	if k < 0 {
		panic("umi: no UMIs in known-UMI panel")
	}

	costTable := map[string][][]string{}
	all := allKmers(k, alphabetWithN)
	for _, s := range all {
		costTable[s] = make([][]string, k+1)
	}

	for _, candidate := range all {
		for _, known := range known {
			cost := levenshteinCostFn(candidate, known)
			if costTable[candidate][cost] == nil {
				costTable[candidate][cost] = make([]string, 0)
			}
			costTable[candidate][cost] = append(costTable[candidate][cost], known)
		}
	}

	correctionTable := map[string]snapCorrectorEntry{}
	for candidate, costList := range costTable {
		for cost, knownList := range costList {
			if len(knownList) == 1 {
				correctionTable[candidate] = snapCorrectorEntry{knownList[0], cost}
			}
			if len(knownList) > 0 {
				break
			}
		}
	}
	log.Debug.Printf("done building snappable UMI correction table: %d/%d snappable", len(correctionTable), len(all))

	return &SnapCorrector{
		knownUMIs:       known,
		k:               k,
		correctionTable: correctionTable,
	}
}

// CorrectUMI upper-cases u and, if there is exactly one known UMI
// closest to it by Levenshtein edit distance, returns that known UMI,
// the edit distance to it, and whether it differs from u (a UMI already
// in the panel comes back unchanged with 0 edits and false). Otherwise
// it returns the upper-cased u, -1, and false.
func (c *SnapCorrector) CorrectUMI(u string) (corrected string, edits int, didCorrect bool) {
	u = strings.ToUpper(u)
	validateUMI(u, true)
	entry, found := c.correctionTable[u]
	if found {
		return entry.knownUMI, entry.edits, entry.knownUMI != u
	}
	return u, -1, false
}

func validateUMI(u string, allowN bool) {
	for _, c := range u {
		if (allowN && !alphabetWithNMap[byte(c)]) || (!allowN && !alphabetMap[byte(c)]) {
			panic(fmt.Sprintf("umi: invalid base %c in %v", c, u))
		}
	}
}

// allKmers returns every k-mer over the given alphabet.
func allKmers(k int, alphabet []byte) []string {
	var fn func(partial string, length int) []string
	fn = func(partial string, length int) []string {
		if len(partial) == length {
			return []string{partial}
		}
		var kmers []string
		for _, c := range alphabet {
			kmers = append(kmers, fn(partial+string(c), length)...)
		}
		return kmers
	}
	return fn("", k)
}
