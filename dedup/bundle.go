package dedup

import (
	"io"

	"github.com/biogo/hts/sam"
)

// bundle groups a contiguous run of records sharing one reference
// sequence ID. It relies on the input being coordinate-sorted, so a
// reference's records all arrive together; unmapped records (RefID
// -1) form their own bundle(s).
type bundle struct {
	refID   int
	records []*sam.Record
}

// readBundles drains reader, emitting one bundle per contiguous run
// of same-reference records on bundles, then closes it. It stops and
// sends err on the first read error other than io.EOF.
func readBundles(next func() (*sam.Record, error), bundles chan<- bundle, errc chan<- error) {
	defer close(bundles)

	var current *bundle
	for {
		r, err := next()
		if err != nil {
			if err != io.EOF {
				errc <- err
			}
			break
		}
		refID := -1
		if r.Ref != nil {
			refID = r.Ref.ID()
		}
		if current == nil {
			current = &bundle{refID: refID}
		} else if current.refID != refID {
			bundles <- *current
			current = &bundle{refID: refID}
		}
		current.records = append(current.records, r)
	}
	if current != nil && len(current.records) > 0 {
		bundles <- *current
	}
}
