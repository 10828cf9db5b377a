package cmd

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rustyeddy/rebalancer/market"
)

// cashSymbol is the positions-file row holding uninvested cash in its
// quantity column.
const cashSymbol = "CASH"

// positionsFile is the content of a positions CSV. Cash is nil when the file
// has no CASH row.
type positionsFile struct {
	Positions []market.Position
	Cash      *float64
}

// readPositions parses symbol,quantity,cost_basis rows. A header row is
// optional. Symbols are kept as written, like bars and fundamentals.
func readPositions(r io.Reader) (positionsFile, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	var (
		out  positionsFile
		line int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return positionsFile{}, err
		}
		line++
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "symbol") {
			continue
		}
		if len(rec) < 2 {
			return positionsFile{}, fmt.Errorf("line %d: want symbol,quantity[,cost_basis]", line)
		}

		sym := strings.TrimSpace(rec[0])
		qty, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return positionsFile{}, fmt.Errorf("line %d: quantity: %w", line, err)
		}
		if strings.EqualFold(sym, cashSymbol) {
			out.Cash = &qty
			continue
		}
		var cost float64
		if len(rec) > 2 && strings.TrimSpace(rec[2]) != "" {
			if cost, err = strconv.ParseFloat(strings.TrimSpace(rec[2]), 64); err != nil {
				return positionsFile{}, fmt.Errorf("line %d: cost_basis: %w", line, err)
			}
		}
		out.Positions = append(out.Positions, market.Position{Symbol: sym, Quantity: qty, CostBasis: cost})
	}
	return out, nil
}

func loadPositions(path string) (positionsFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return positionsFile{}, err
	}
	defer f.Close()
	return readPositions(f)
}

func writePositions(w io.Writer, pf market.Portfolio) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"symbol", "quantity", "cost_basis"}); err != nil {
		return err
	}
	for _, sym := range pf.Held() {
		p := pf.Positions[sym]
		if err := cw.Write([]string{
			sym,
			strconv.FormatFloat(p.Quantity, 'f', -1, 64),
			strconv.FormatFloat(p.CostBasis, 'f', 6, 64),
		}); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{cashSymbol, strconv.FormatFloat(pf.Cash, 'f', 2, 64), ""}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func savePositions(path string, pf market.Portfolio) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writePositions(f, pf); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
