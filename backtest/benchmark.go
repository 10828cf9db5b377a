package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rustyeddy/rebalancer/market"
)

// ReadBenchmark parses a date,return CSV into a date-ordered series.
// Returns are fractions (0.01 is +1%). A header row is allowed.
func ReadBenchmark(r io.Reader) (market.ReturnSeries, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var out market.ReturnSeries
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("benchmark: line %d: %w", line, err)
		}
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "date") {
			continue
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("benchmark: line %d: want date,return", line)
		}
		d, err := parseDate(row[0])
		if err != nil {
			return nil, fmt.Errorf("benchmark: line %d: %w", line, err)
		}
		ret, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("benchmark: line %d: bad return %q: %w", line, row[1], err)
		}
		out = append(out, market.DailyReturn{Date: d, Return: ret})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func LoadBenchmark(path string) (market.ReturnSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadBenchmark(f)
}
