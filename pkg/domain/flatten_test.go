package domain

import (
	"sort"
	"testing"
)

func sortedTuples(t *testing.T, records []RawRecord) []RawRecord {
	t.Helper()
	out := make([]RawRecord, len(records))
	copy(out, records)
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

func TestFlattenEmitsOneRecordPerLeaf(t *testing.T) {
	group := mustGroup(t, "5 1")
	nested := mustGroup(t, "5 1 2")
	if err := nested.Add(mustLeaf(t, "5 1 2 1", 40, 10)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := group.Add(mustLeaf(t, "5 1 1", 60, 20)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := group.Add(nested); err != nil {
		t.Fatalf("add: %v", err)
	}

	records, err := Flatten(group)
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("record count = %d, want 2", len(records))
	}
	if records[0].Address != "5 1 1" || records[1].Address != "5 1 2 1" {
		t.Fatalf("unexpected record addresses: %v", records)
	}
	if records[0].Area != 60 || records[0].TotalPrice != 60*20 {
		t.Fatalf("unexpected leaf record: %+v", records[0])
	}
}

func TestFlattenEmptyGroupFails(t *testing.T) {
	group := mustGroup(t, "9 9")
	if _, err := Flatten(group); err == nil {
		t.Fatal("expected EmptyAggregateError from flattening a childless group")
	}
}

func TestFlattenZeroPlaceholderLeafFails(t *testing.T) {
	group := mustGroup(t, "1 1")
	if err := group.Add(mustLeaf(t, "1 1 1", 0, 10)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := Flatten(group); err == nil {
		t.Fatal("expected measurement error from a placeholder leaf")
	}
}

func TestBuildFlattenRoundTrip(t *testing.T) {
	original := []RawRecord{
		{Area: 8000, TotalPrice: 45 * 8000, Status: "FOR_SALE", Address: "5 1"},
		{Area: 700, TotalPrice: 30 * 700, Status: "FOR_SALE", Address: "5 1 1"},
		{Area: 300, TotalPrice: 28 * 300, Status: "SOLD", Address: "5 1 2"},
		{Area: 50, TotalPrice: 50 * 20, Status: "FOR_SALE", Address: "2 3 1 2"},
		{Area: 120, TotalPrice: 120 * 11, Status: "SOLD", Address: "8 2"},
	}

	forest, skipped, err := BuildForest(original)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped records: %v", skipped)
	}

	flattened, err := FlattenForest(forest)
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}

	rebuilt, skipped, err := BuildForest(flattened)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped records on rebuild: %v", skipped)
	}
	reflattened, err := FlattenForest(rebuilt)
	if err != nil {
		t.Fatalf("reflatten: %v", err)
	}

	first := sortedTuples(t, flattened)
	second := sortedTuples(t, reflattened)
	if len(first) != len(second) {
		t.Fatalf("record counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("record %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}
