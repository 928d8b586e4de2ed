// Package records encodes and decodes the flat CSV record format used for
// catalog import and export: an Area,Price,Status,Address header followed by
// one row per unit, with space-separated integer address paths.
package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"estatecore/pkg/domain"
)

var header = []string{"Area", "Price", "Status", "Address"}

// Read decodes flat records from r. Rows with the wrong shape or
// unparsable numbers are reported as RecordError diagnostics and skipped;
// semantic validation (positive areas, known statuses, address shape) is
// left to the hierarchy builder. A missing or mismatched header fails the
// read.
func Read(r io.Reader) ([]domain.RawRecord, []domain.RecordError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	first, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("missing header row")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	if !headerMatches(first) {
		return nil, nil, fmt.Errorf("unexpected header %v, want %v", first, header)
	}

	var recs []domain.RawRecord
	var diags []domain.RecordError
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read row: %w", err)
		}
		if len(row) != len(header) {
			diags = append(diags, domain.RecordError{
				Record: domain.RawRecord{Address: strings.Join(row, ",")},
				Reason: fmt.Sprintf("expected %d fields, got %d", len(header), len(row)),
			})
			continue
		}
		area, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if err != nil {
			diags = append(diags, domain.RecordError{
				Record: domain.RawRecord{Address: strings.TrimSpace(row[3])},
				Reason: fmt.Sprintf("unparsable area %q", row[0]),
			})
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			diags = append(diags, domain.RecordError{
				Record: domain.RawRecord{Area: area, Address: strings.TrimSpace(row[3])},
				Reason: fmt.Sprintf("unparsable price %q", row[1]),
			})
			continue
		}
		recs = append(recs, domain.RawRecord{
			Area:       area,
			TotalPrice: price,
			Status:     strings.TrimSpace(row[2]),
			Address:    strings.TrimSpace(row[3]),
		})
	}
	return recs, diags, nil
}

// Write encodes recs to w in the exact format Read accepts.
func Write(w io.Writer, recs []domain.RawRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range recs {
		row := []string{
			strconv.FormatFloat(rec.Area, 'f', -1, 64),
			strconv.FormatFloat(rec.TotalPrice, 'f', -1, 64),
			rec.Status,
			rec.Address,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func headerMatches(row []string) bool {
	if len(row) != len(header) {
		return false
	}
	for i, field := range header {
		if !strings.EqualFold(strings.TrimSpace(row[i]), field) {
			return false
		}
	}
	return true
}
