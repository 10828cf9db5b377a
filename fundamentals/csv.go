package fundamentals

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ReadCSV parses a universe from rows shaped like
//
//	symbol,sector,<metric>,<metric>...
//
// The header row is required. Empty cells and "NaN" are missing values; an
// ipoyear of -1 is the provider's "unknown" and is also treated as missing.
// Numeric NASDAQ sector codes are mapped to names.
func ReadCSV(r io.Reader) (Universe, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fundamentals: read header: %w", err)
	}
	if len(header) < 2 ||
		!strings.EqualFold(strings.TrimSpace(header[0]), "symbol") ||
		!strings.EqualFold(strings.TrimSpace(header[1]), "sector") {
		return nil, fmt.Errorf("fundamentals: header must start with symbol,sector: %v", header)
	}
	metrics := make([]string, len(header)-2)
	for i, h := range header[2:] {
		metrics[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var out Universe
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("fundamentals: line %d: %w", line, err)
		}
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}

		rec := Row{
			Symbol:  strings.TrimSpace(row[0]),
			Metrics: make(map[string]float64, len(metrics)),
		}
		if len(row) > 1 {
			rec.Sector = SectorName(strings.TrimSpace(row[1]))
		}
		for i, name := range metrics {
			if i+2 >= len(row) {
				break
			}
			cell := strings.TrimSpace(row[i+2])
			if cell == "" || strings.EqualFold(cell, "nan") {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("fundamentals: line %d: bad %s %q: %w", line, name, cell, err)
			}
			if name == IPOYear && v == -1 {
				continue
			}
			if math.IsNaN(v) {
				continue
			}
			rec.Metrics[name] = v
		}
		out = append(out, rec)
	}
}

// LoadCSV reads a universe from a file.
func LoadCSV(path string) (Universe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}
