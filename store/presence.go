package store

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// presence records which rows of a column were actually written.
// A nil *presence means every row below the column's row count is present.
type presence struct {
	rb *roaring64.Bitmap
}

func newPresence() *presence {
	return &presence{rb: roaring64.New()}
}

func (p *presence) add(row uint64) {
	p.rb.Add(row)
}

func (p *presence) contains(row uint64) bool {
	if p == nil {
		return true
	}
	return p.rb.Contains(row)
}

func (p *presence) cardinality() uint64 {
	return p.rb.GetCardinality()
}

// marshal encodes the bitmap, or returns nil when all rows are present.
func (p *presence) marshal(rows uint64) ([]byte, error) {
	if p.cardinality() == rows {
		return nil, nil
	}
	p.rb.RunOptimize()
	return p.rb.MarshalBinary()
}

func unmarshalPresence(b []byte) (*presence, error) {
	if len(b) == 0 {
		return nil, nil
	}
	rb := roaring64.New()
	if err := rb.UnmarshalBinary(b); err != nil {
		return nil, corrupted("presence bitmap: %v", err)
	}
	return &presence{rb: rb}, nil
}
