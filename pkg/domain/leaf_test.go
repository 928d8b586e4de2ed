package domain

import (
	"errors"
	"testing"
)

func mustAddress(t *testing.T, s string) Address {
	t.Helper()
	addr, err := ParseAddress(s)
	if err != nil {
		t.Fatalf("parse address %q: %v", s, err)
	}
	return addr
}

func mustLeaf(t *testing.T, addr string, area, price float64) *Leaf {
	t.Helper()
	a := mustAddress(t, addr)
	leaf, err := NewLeaf(AddressID(a.Key()), a, area, price, StatusForSale)
	if err != nil {
		t.Fatalf("new leaf: %v", err)
	}
	return leaf
}

func TestLeafAggregates(t *testing.T) {
	leaf := mustLeaf(t, "5 1", 80, 45)
	area, err := leaf.Area()
	if err != nil {
		t.Fatalf("area: %v", err)
	}
	if area != 80 {
		t.Fatalf("area = %v, want 80", area)
	}
	price, err := leaf.TotalPrice()
	if err != nil {
		t.Fatalf("total price: %v", err)
	}
	if price != 80*45 {
		t.Fatalf("total price = %v, want %v", price, 80*45)
	}
}

func TestZeroPlaceholderLeafFailsReads(t *testing.T) {
	leaf := mustLeaf(t, "5 1", 0, 45)

	if _, err := leaf.Area(); err == nil {
		t.Fatal("expected NonPositiveAreaError for zero area")
	} else {
		var nonPositive NonPositiveAreaError
		if !errors.As(err, &nonPositive) {
			t.Fatalf("wrong error type: %v", err)
		}
	}

	if _, err := leaf.TotalPrice(); err == nil {
		t.Fatal("expected NonPositiveMeasurementError for zero area")
	} else {
		var nonPositive NonPositiveMeasurementError
		if !errors.As(err, &nonPositive) {
			t.Fatalf("wrong error type: %v", err)
		}
	}

	// Zero price with positive area also blocks the price query.
	priced := mustLeaf(t, "5 2", 80, 0)
	if _, err := priced.TotalPrice(); err == nil {
		t.Fatal("expected NonPositiveMeasurementError for zero price per area")
	}
}

func TestLeafSettersRevalidate(t *testing.T) {
	leaf := mustLeaf(t, "5 1", 80, 45)

	if err := leaf.SetArea(0); err == nil {
		t.Fatal("expected InvalidAssignmentError for zero area")
	}
	if err := leaf.SetArea(-3); err == nil {
		t.Fatal("expected InvalidAssignmentError for negative area")
	}
	if err := leaf.SetPricePerArea(0); err == nil {
		t.Fatal("expected InvalidAssignmentError for zero price")
	}

	if err := leaf.SetArea(100); err != nil {
		t.Fatalf("set area: %v", err)
	}
	if err := leaf.SetPricePerArea(50); err != nil {
		t.Fatalf("set price per area: %v", err)
	}
	price, err := leaf.TotalPrice()
	if err != nil {
		t.Fatalf("total price: %v", err)
	}
	if price != 5000 {
		t.Fatalf("total price = %v, want 5000", price)
	}
}

func TestLeafRejectsChildren(t *testing.T) {
	leaf := mustLeaf(t, "5 1", 80, 45)
	other := mustLeaf(t, "5 2", 10, 10)

	if err := leaf.Add(other); err == nil {
		t.Fatal("expected UnsupportedForLeafError from Add")
	} else {
		var unsupported UnsupportedForLeafError
		if !errors.As(err, &unsupported) {
			t.Fatalf("wrong error type: %v", err)
		}
	}
	if err := leaf.Remove(other); err == nil {
		t.Fatal("expected UnsupportedForLeafError from Remove")
	}
	if got := len(leaf.Children()); got != 0 {
		t.Fatalf("leaf reported %d children", got)
	}
}

func TestLeafFindByAddress(t *testing.T) {
	leaf := mustLeaf(t, "5 1", 80, 45)
	if got := leaf.FindByAddress(mustAddress(t, "5 1")); got != leaf {
		t.Fatal("expected self on exact match")
	}
	if got := leaf.FindByAddress(mustAddress(t, "9 9")); got != nil {
		t.Fatalf("expected nil on mismatch, got %v", got)
	}
}

func TestLeafConstructorValidation(t *testing.T) {
	addr := mustAddress(t, "5 1")
	if _, err := NewLeaf("id", Address{}, 1, 1, StatusForSale); err == nil {
		t.Fatal("expected error for zero address")
	}
	if _, err := NewLeaf("id", addr, -1, 1, StatusForSale); err == nil {
		t.Fatal("expected error for negative area")
	}
	if _, err := NewLeaf("id", addr, 1, -1, StatusForSale); err == nil {
		t.Fatal("expected error for negative price")
	}
}
