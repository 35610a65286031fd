package dedup

import (
	"io"
	"testing"

	"github.com/biogo/hts/sam"
)

func fakeRecord(t *testing.T, ref *sam.Reference, name string) *sam.Record {
	t.Helper()
	var rr *sam.Reference
	pos := -1
	flags := sam.Unmapped
	if ref != nil {
		rr = ref
		pos = 10
		flags = 0
	}
	r, err := sam.NewRecord(name, rr, nil, pos, -1, 0, 60, nil, []byte("ACGT"), nil, nil)
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	r.Flags = flags
	return r
}

func TestReadBundlesGroupsContiguousReferences(t *testing.T) {
	chr1 := mustRef(t, "chr1", 1000)
	chr2 := mustRef(t, "chr2", 1000)

	records := []*sam.Record{
		fakeRecord(t, chr1, "a"),
		fakeRecord(t, chr1, "b"),
		fakeRecord(t, chr2, "c"),
		fakeRecord(t, chr2, "d"),
		fakeRecord(t, chr2, "e"),
	}
	i := 0
	next := func() (*sam.Record, error) {
		if i >= len(records) {
			return nil, io.EOF
		}
		r := records[i]
		i++
		return r, nil
	}

	bundles := make(chan bundle, 10)
	errc := make(chan error, 1)
	readBundles(next, bundles, errc)

	select {
	case err := <-errc:
		t.Fatalf("unexpected error: %v", err)
	default:
	}

	var got []bundle
	for b := range bundles {
		got = append(got, b)
	}
	if len(got) != 2 {
		t.Fatalf("got %d bundles, want 2", len(got))
	}
	if len(got[0].records) != 2 || len(got[1].records) != 3 {
		t.Errorf("bundle sizes = %d, %d; want 2, 3", len(got[0].records), len(got[1].records))
	}
}

func TestReadBundlesPropagatesError(t *testing.T) {
	boom := io.ErrUnexpectedEOF
	next := func() (*sam.Record, error) {
		return nil, boom
	}
	bundles := make(chan bundle, 1)
	errc := make(chan error, 1)
	readBundles(next, bundles, errc)

	select {
	case err := <-errc:
		if err != boom {
			t.Errorf("err = %v, want %v", err, boom)
		}
	default:
		t.Error("expected an error on errc")
	}
}
