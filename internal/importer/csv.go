package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadCSV reads a header row followed by data rows. Header names are
// lower-cased and every value is trimmed.
func ReadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoRecords
	}
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	var records []Record
	for {
		line, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV line %d: %w", len(records)+2, err)
		}
		rec := make(Record, len(header))
		for i, h := range header {
			if h == "" || i >= len(line) {
				continue
			}
			rec[h] = strings.TrimSpace(line[i])
		}
		records = append(records, rec)
	}
	return records, nil
}

// RecordsFromMaps converts decoded JSON rows into records.
func RecordsFromMaps(rows []map[string]any) []Record {
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := make(Record, len(row))
		for k, v := range row {
			rec[strings.ToLower(strings.TrimSpace(k))] = stringify(v)
		}
		records = append(records, rec)
	}
	return records
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
