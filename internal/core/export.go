package core

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// ExportFilename is the suggested download name for exported CSV.
const ExportFilename = "VehicleData.csv"

// ExportContentType is the MIME type of exported CSV.
const ExportContentType = "text/csv;charset=utf-8"

// exportColumns is the fixed export layout. It does not follow the
// table's column visibility.
var exportColumns = []Column{
	{Name: "VIN", Field: FieldVIN},
	{Name: "Make", Field: FieldMake},
	{Name: "Model", Field: FieldModel},
	{Name: "Year", Field: FieldModelYear},
	{Name: "Type", Field: FieldVehicleType},
	{Name: "Range", Field: FieldRange},
	{Name: "County", Field: FieldCounty},
}

// ExportHeader returns the export header cells.
func ExportHeader() []string {
	header := make([]string, len(exportColumns))
	for i, c := range exportColumns {
		header[i] = c.Name
	}
	return header
}

// WriteCSV writes records in the export layout. Every cell, header
// included, is double-quoted; rows are separated by "\n" with no
// trailing newline.
func WriteCSV(w io.Writer, records []Record) error {
	if err := writeCSVRow(w, ExportHeader()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	cells := make([]string, len(exportColumns))
	for i, r := range records {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
		for j, c := range exportColumns {
			cells[j] = r.Text(c.Field)
		}
		if err := writeCSVRow(w, cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return nil
}

// ExportCSV returns the CSV serialization of records.
func ExportCSV(records []Record) []byte {
	var buf bytes.Buffer
	// bytes.Buffer writes never fail
	_ = WriteCSV(&buf, records)
	return buf.Bytes()
}

// writeCSVRow writes one row of quoted cells. Embedded quotes are doubled.
func writeCSVRow(w io.Writer, cells []string) error {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		b.WriteByte('"')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
