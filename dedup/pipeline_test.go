package dedup

import (
	"bytes"
	"testing"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

func writeBAM(t *testing.T, header *sam.Header, records []*sam.Record) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := bam.NewWriter(&buf, header, 1)
	if err != nil {
		t.Fatalf("bam.NewWriter: %v", err)
	}
	for _, r := range records {
		if err := w.Write(r); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

func pipelineFixture(t *testing.T) (*sam.Header, *sam.Reference) {
	t.Helper()
	ref, err := sam.NewReference("chr1", "", "", 10000, nil, nil)
	if err != nil {
		t.Fatalf("NewReference: %v", err)
	}
	h, err := sam.NewHeader(nil, []*sam.Reference{ref})
	if err != nil {
		t.Fatalf("NewHeader: %v", err)
	}
	return h, h.Refs()[0]
}

func simpleRecord(t *testing.T, ref *sam.Reference, name string, pos int, mapQ byte, rx string) *sam.Record {
	t.Helper()
	seq := []byte("ACGTACGTACGTACGTACGT")
	aux, err := sam.NewAux(sam.NewTag("RX"), rx)
	if err != nil {
		t.Fatalf("NewAux: %v", err)
	}
	r, err := sam.NewRecord(name, ref, nil, pos, -1, 0, mapQ,
		[]sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, len(seq))}, seq, nil, []sam.Aux{aux})
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	return r
}

func TestRunDedupCollapsesCluster(t *testing.T) {
	header, ref := pipelineFixture(t)
	records := []*sam.Record{
		simpleRecord(t, ref, "read-a", 100, 60, "CAGTA"),
		simpleRecord(t, ref, "read-b", 100, 60, "CAGTA"),
		simpleRecord(t, ref, "read-c", 100, 40, "CAGTG"), // one edit from CAGTA, lower MapQ
	}
	input := writeBAM(t, header, records)

	var out bytes.Buffer
	stats, err := RunWithWorkers(bytes.NewReader(input), &out, DefaultConfig(), 2)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.ReadsIn != 3 {
		t.Errorf("ReadsIn = %d, want 3", stats.ReadsIn)
	}
	if stats.ReadsOut != 1 {
		t.Errorf("ReadsOut = %d, want 1 (all three reads cluster together)", stats.ReadsOut)
	}

	reader, err := bam.NewReader(&out, 1)
	if err != nil {
		t.Fatalf("bam.NewReader: %v", err)
	}
	defer reader.Close()
	rec, err := reader.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if rec.Name != "read-a" && rec.Name != "read-b" {
		t.Errorf("unexpected representative %q, want the higher-MapQ CAGTA read", rec.Name)
	}
}

func TestRunGroupModeTagsEveryRecord(t *testing.T) {
	header, ref := pipelineFixture(t)
	records := []*sam.Record{
		simpleRecord(t, ref, "read-a", 100, 60, "CAGTA"),
		simpleRecord(t, ref, "read-b", 100, 60, "CAGTA"),
	}
	input := writeBAM(t, header, records)

	cfg := DefaultConfig()
	cfg.GroupOnly = true
	var out bytes.Buffer
	stats, err := RunWithWorkers(bytes.NewReader(input), &out, cfg, 2)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.ReadsOut != 2 {
		t.Errorf("ReadsOut = %d, want 2", stats.ReadsOut)
	}

	reader, err := bam.NewReader(&out, 1)
	if err != nil {
		t.Fatalf("bam.NewReader: %v", err)
	}
	defer reader.Close()
	for i := 0; i < 2; i++ {
		rec, err := reader.Read()
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		bx, ok := rec.Tag([]byte("BX"))
		if !ok {
			t.Fatalf("record %d missing BX tag", i)
		}
		if v := bx.Value(); v != "CAGTA" {
			t.Errorf("BX = %v, want CAGTA", v)
		}
		if _, ok := rec.Tag([]byte("UG")); !ok {
			t.Errorf("record %d missing UG tag", i)
		}
	}
}

func TestRunUnmappedReadsAreCountedAndDropped(t *testing.T) {
	header, ref := pipelineFixture(t)
	mapped := simpleRecord(t, ref, "read-a", 100, 60, "CAGTA")
	unmapped := simpleRecord(t, ref, "read-b", 100, 60, "CAGTA")
	unmapped.Flags |= sam.Unmapped
	input := writeBAM(t, header, []*sam.Record{mapped, unmapped})

	var out bytes.Buffer
	stats, err := RunWithWorkers(bytes.NewReader(input), &out, DefaultConfig(), 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.ReadsUnmapped != 1 {
		t.Errorf("ReadsUnmapped = %d, want 1", stats.ReadsUnmapped)
	}
	if stats.ReadsOut != 1 {
		t.Errorf("ReadsOut = %d, want 1", stats.ReadsOut)
	}
}
