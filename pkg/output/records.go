package output

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/ccollicutt/iselog/pkg/extractor"
)

// RecordColumns returns the CSV header used by WriteRecordsCSV.
func RecordColumns() []string {
	cols := make([]string, 0, 12)
	for _, f := range extractor.AllFields() {
		cols = append(cols, string(f))
	}
	return append(cols, "message_description")
}

// WriteRecordsJSON writes records as an indented JSON array. Absent fields
// are omitted from each object.
func WriteRecordsJSON(w io.Writer, records []extractor.Record) error {
	if records == nil {
		records = []extractor.Record{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}

// WriteRecordsCSV writes one row per record. Absent fields are empty cells.
func WriteRecordsCSV(w io.Writer, records []extractor.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RecordColumns()); err != nil {
		return err
	}

	cols := RecordColumns()
	for i := range records {
		values := records[i].Values()
		row := make([]string, len(cols))
		for j, col := range cols {
			row[j] = values[col]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
