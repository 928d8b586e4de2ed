package domain

import (
	"fmt"
	"hash/fnv"
)

// RawRecord is one row of the flat storage format consumed by the hierarchy
// builder and produced by flattening: a measured area, a total price, a
// status, and a space-separated address path.
type RawRecord struct {
	Area       float64 `json:"area"`
	TotalPrice float64 `json:"total_price"`
	Status     string  `json:"status"`
	Address    string  `json:"address"`
}

// RecordError describes a single malformed record skipped by the builder.
// A bad record never aborts the batch; callers surface these as diagnostics.
type RecordError struct {
	Record RawRecord
	Reason string
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record at %q skipped: %s", e.Record.Address, e.Reason)
}

// AddressID derives a deterministic unit identifier from an address storage
// string. Synthesized parent groups must receive the same id across runs
// because ids double as stable references during deduplication.
func AddressID(addressKey string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(addressKey))
	return fmt.Sprintf("%016x", h.Sum64())
}
