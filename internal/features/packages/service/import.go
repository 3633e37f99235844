package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ImportRecord is one entry in a bulk import file.
type ImportRecord struct {
	// Number is the tracking number to register.
	Number string `json:"number"`
	// Carrier is the optional carrier code.
	Carrier string `json:"carrier,omitempty"`
}

// ImportError reports a single record that could not be imported.
type ImportError struct {
	// Record is the 1-based position of the record in the input.
	Record int `json:"record"`
	// TrackingNumber is the offending number, if the record carried one.
	TrackingNumber string `json:"tracking_number,omitempty"`
	// Message describes why the record was rejected.
	Message string `json:"message"`
}

// ImportResult is the per-record outcome of a bulk import.
type ImportResult struct {
	Imported int           `json:"imported"`
	Errors   []ImportError `json:"errors"`
}

// ParseJSONRecords decodes a JSON array of {number, carrier} records.
func ParseJSONRecords(r io.Reader) ([]ImportRecord, error) {
	var records []ImportRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse import file: %w", err)
	}
	return records, nil
}

// ParseCSVRecords decodes tabular records with a header row. Both "number"
// and "tracking_number" are accepted as the number column.
func ParseCSVRecords(r io.Reader) ([]ImportRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	numberCol, carrierCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "number", "tracking_number":
			if numberCol == -1 {
				numberCol = i
			}
		case "carrier":
			carrierCol = i
		}
	}
	if numberCol == -1 {
		return nil, fmt.Errorf("CSV header has no number column")
	}

	var records []ImportRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		var record ImportRecord
		if numberCol < len(row) {
			record.Number = row[numberCol]
		}
		if carrierCol >= 0 && carrierCol < len(row) {
			record.Carrier = row[carrierCol]
		}
		records = append(records, record)
	}

	return records, nil
}
