package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

func TestRunImportExportRoundTrip(t *testing.T) {
	t.Setenv("ESTATECORE_STORAGE_DRIVER", "memory")

	input := strings.Join([]string{
		"Area,Price,Status,Address",
		"100,250000,FOR_SALE,1 1",
		"700,1400000,SOLD,5 1 1",
		"",
	}, "\n")
	in := writeTempCSV(t, input)
	out := filepath.Join(t.TempDir(), "export.csv")

	if err := run(context.Background(), zap.NewNop(), in, out, true); err != nil {
		t.Fatalf("run: %v", err)
	}

	payload, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	got := string(payload)
	if !strings.HasPrefix(got, "Area,Price,Status,Address\n") {
		t.Fatalf("export missing header: %q", got)
	}
	if !strings.Contains(got, "5 1 1") {
		t.Fatalf("export missing leaf row: %q", got)
	}
}

func TestRunImportMissingFile(t *testing.T) {
	t.Setenv("ESTATECORE_STORAGE_DRIVER", "memory")
	if err := run(context.Background(), zap.NewNop(), filepath.Join(t.TempDir(), "absent.csv"), "", false); err == nil {
		t.Fatal("expected error for missing import file")
	}
}

func TestRunUnknownStorageDriver(t *testing.T) {
	t.Setenv("ESTATECORE_STORAGE_DRIVER", "bogus")
	if err := run(context.Background(), zap.NewNop(), "", "", true); err == nil {
		t.Fatal("expected error for unknown storage driver")
	}
}
