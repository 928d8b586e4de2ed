package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"estatecore/pkg/domain"
)

func mustAddress(t *testing.T, raw string) Address {
	t.Helper()
	addr, err := domain.ParseAddress(raw)
	if err != nil {
		t.Fatalf("parse address %q: %v", raw, err)
	}
	return addr
}

func mustLeaf(t *testing.T, id, addr string, area, price float64) *Leaf {
	t.Helper()
	leaf, err := domain.NewLeaf(id, mustAddress(t, addr), area, price, StatusForSale)
	if err != nil {
		t.Fatalf("new leaf %q: %v", id, err)
	}
	return leaf
}

func mustGroup(t *testing.T, id, addr string, children ...Unit) *Group {
	t.Helper()
	group, err := domain.NewGroup(id, mustAddress(t, addr), StatusForSale)
	if err != nil {
		t.Fatalf("new group %q: %v", id, err)
	}
	for _, child := range children {
		if err := group.Add(child); err != nil {
			t.Fatalf("add child to %q: %v", id, err)
		}
	}
	return group
}

func TestImportRecordsBuildsCatalog(t *testing.T) {
	svc := NewInMemoryService(NewDefaultRulesEngine())
	recs := []RawRecord{
		{Area: 100, TotalPrice: 250000, Status: "FOR_SALE", Address: "1 1"},
		{Area: 700, TotalPrice: 1400000, Status: "FOR_SALE", Address: "5 1 1"},
		{Area: 8000, TotalPrice: 16000000, Status: "FOR_SALE", Address: "5 1"},
		{Area: -3, TotalPrice: 1, Status: "FOR_SALE", Address: "9 9"},
	}

	forest, skipped, _, err := svc.ImportRecords(context.Background(), recs)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(skipped) != 1 {
		t.Fatalf("skipped %d records, want 1", len(skipped))
	}
	if len(forest) != 2 {
		t.Fatalf("forest has %d trees, want 2", len(forest))
	}

	units, err := svc.ListUnits(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("catalog has %d trees, want 2", len(units))
	}

	building, err := svc.FindByAddress(context.Background(), mustAddress(t, "5 1"))
	if err != nil {
		t.Fatalf("find building: %v", err)
	}
	area, err := building.Area()
	if err != nil {
		t.Fatalf("building area: %v", err)
	}
	if area != 700 {
		t.Fatalf("building area = %v, want 700 (composite wins over free leaf)", area)
	}
}

func TestImportCSVRoundTripsThroughExportCSV(t *testing.T) {
	svc := NewInMemoryService(NewDefaultRulesEngine())
	input := "Area,Price,Status,Address\n100,250000,FOR_SALE,1 1\n700,1400000,SOLD,5 1 1\n"

	if _, _, _, err := svc.ImportCSV(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("import csv: %v", err)
	}

	var out strings.Builder
	if err := svc.ExportCSV(context.Background(), &out); err != nil {
		t.Fatalf("export csv: %v", err)
	}
	got := out.String()
	if !strings.HasPrefix(got, "Area,Price,Status,Address\n") {
		t.Fatalf("export missing header: %q", got)
	}
	if !strings.Contains(got, "5 1 1") || !strings.Contains(got, "SOLD") {
		t.Fatalf("export missing leaf row: %q", got)
	}
}

func TestRegisterAndGetUnit(t *testing.T) {
	svc := NewInMemoryService(NewDefaultRulesEngine())
	if _, _, err := svc.RegisterUnit(context.Background(), mustLeaf(t, "flat-1", "1 1", 50, 1000)); err != nil {
		t.Fatalf("register: %v", err)
	}
	unit, err := svc.GetUnit(context.Background(), "flat-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if unit.ID() != "flat-1" {
		t.Fatalf("id = %q", unit.ID())
	}
	if _, err := svc.GetUnit(context.Background(), "missing"); err == nil {
		t.Fatal("expected ErrNotFound")
	} else {
		var notFound ErrNotFound
		if !errors.As(err, &notFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	}
}

func TestDuplicateAddressBlocksRegistration(t *testing.T) {
	svc := NewInMemoryService(NewDefaultRulesEngine())
	if _, _, err := svc.RegisterUnit(context.Background(), mustLeaf(t, "flat-1", "1 1", 50, 1000)); err != nil {
		t.Fatalf("register first: %v", err)
	}
	_, res, err := svc.RegisterUnit(context.Background(), mustLeaf(t, "flat-2", "1 1", 60, 1200))
	var ruleErr RuleViolationError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("err = %v, want RuleViolationError", err)
	}
	if !res.HasBlocking() {
		t.Fatal("expected blocking violation in result")
	}
	units, _ := svc.ListUnits(context.Background())
	if len(units) != 1 {
		t.Fatalf("catalog has %d units after blocked register, want 1", len(units))
	}
}

func TestAttachAndDetachUnit(t *testing.T) {
	svc := NewInMemoryService(NewDefaultRulesEngine())
	group := mustGroup(t, "bldg-5", "5 1", mustLeaf(t, "flat-511", "5 1 1", 700, 2000))
	if _, _, err := svc.RegisterUnit(context.Background(), group); err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, _, err := svc.AttachUnit(context.Background(), "bldg-5", mustAddress(t, "5 1"), mustLeaf(t, "flat-512", "5 1 2", 300, 2000))
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	area, err := updated.Area()
	if err != nil {
		t.Fatalf("area after attach: %v", err)
	}
	if area != 1000 {
		t.Fatalf("area = %v, want 1000", area)
	}

	updated, _, err = svc.DetachUnit(context.Background(), "bldg-5", mustAddress(t, "5 1 1"))
	if err != nil {
		t.Fatalf("detach: %v", err)
	}
	if updated.FindByAddress(mustAddress(t, "5 1 1")) != nil {
		t.Fatal("detached leaf still present")
	}
	area, err = updated.Area()
	if err != nil {
		t.Fatalf("area after detach: %v", err)
	}
	if area != 300 {
		t.Fatalf("area = %v, want 300", area)
	}
}

func TestAttachOutsideParentAddressBlocked(t *testing.T) {
	svc := NewInMemoryService(NewDefaultRulesEngine())
	group := mustGroup(t, "bldg-5", "5 1", mustLeaf(t, "flat-511", "5 1 1", 700, 2000))
	if _, _, err := svc.RegisterUnit(context.Background(), group); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, err := svc.AttachUnit(context.Background(), "bldg-5", mustAddress(t, "5 1"), mustLeaf(t, "stray", "7 2 1", 10, 10))
	var ruleErr RuleViolationError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("err = %v, want RuleViolationError from address integrity", err)
	}
}

func TestDetachTopLevelAddressFails(t *testing.T) {
	svc := NewInMemoryService(NewDefaultRulesEngine())
	group := mustGroup(t, "bldg-5", "5 1", mustLeaf(t, "flat-511", "5 1 1", 700, 2000))
	if _, _, err := svc.RegisterUnit(context.Background(), group); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.DetachUnit(context.Background(), "bldg-5", mustAddress(t, "5 1")); err == nil {
		t.Fatal("expected error detaching the root address")
	}
}

func TestSetUnitStatusPropagates(t *testing.T) {
	svc := NewInMemoryService(NewDefaultRulesEngine())
	group := mustGroup(t, "bldg-5", "5 1",
		mustLeaf(t, "flat-511", "5 1 1", 700, 2000),
		mustLeaf(t, "flat-512", "5 1 2", 300, 2000))
	if _, _, err := svc.RegisterUnit(context.Background(), group); err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, _, err := svc.SetUnitStatus(context.Background(), "bldg-5", StatusSold)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	for _, child := range updated.Children() {
		if child.Status() != StatusSold {
			t.Fatalf("child %s status = %q, want SOLD", child.ID(), child.Status())
		}
	}
}

func TestSetUnitPricePerAreaRecomputesAggregate(t *testing.T) {
	svc := NewInMemoryService(NewDefaultRulesEngine())
	group := mustGroup(t, "bldg-5", "5 1",
		mustLeaf(t, "flat-511", "5 1 1", 700, 2000),
		mustLeaf(t, "flat-512", "5 1 2", 300, 2000))
	if _, _, err := svc.RegisterUnit(context.Background(), group); err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, _, err := svc.SetUnitPricePerArea(context.Background(), "bldg-5", 3000)
	if err != nil {
		t.Fatalf("set price: %v", err)
	}
	total, err := updated.TotalPrice()
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 3000*1000 {
		t.Fatalf("total = %v, want %v", total, 3000*1000)
	}
}

func TestSetLeafAreaNested(t *testing.T) {
	svc := NewInMemoryService(NewDefaultRulesEngine())
	group := mustGroup(t, "bldg-5", "5 1", mustLeaf(t, "flat-511", "5 1 1", 700, 2000))
	if _, _, err := svc.RegisterUnit(context.Background(), group); err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, _, err := svc.SetLeafArea(context.Background(), "bldg-5", mustAddress(t, "5 1 1"), 750)
	if err != nil {
		t.Fatalf("set area: %v", err)
	}
	area, err := updated.Area()
	if err != nil {
		t.Fatalf("area: %v", err)
	}
	if area != 750 {
		t.Fatalf("area = %v, want 750", area)
	}

	if _, _, err := svc.SetLeafArea(context.Background(), "bldg-5", mustAddress(t, "5 1 1"), -1); err == nil {
		t.Fatal("expected negative area rejection")
	}
}

func TestRemoveUnit(t *testing.T) {
	svc := NewInMemoryService(NewDefaultRulesEngine())
	if _, _, err := svc.RegisterUnit(context.Background(), mustLeaf(t, "flat-1", "1 1", 50, 1000)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.RemoveUnit(context.Background(), "flat-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := svc.GetUnit(context.Background(), "flat-1"); err == nil {
		t.Fatal("unit still present after remove")
	}
}
