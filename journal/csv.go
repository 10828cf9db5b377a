package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

var (
	orderHeader    = []string{"order_id", "cycle_id", "time", "symbol", "target", "previous", "price", "reason"}
	positionHeader = []string{"time", "symbol", "sector", "quantity", "avg_price", "last_price", "total_change", "pct_total_change", "pct_port"}
)

type CSVJournal struct {
	orders    *csv.Writer
	positions *csv.Writer
	of, pf    *os.File
}

func NewCSV(ordersPath, positionsPath string) (*CSVJournal, error) {
	of, err := os.Create(ordersPath)
	if err != nil {
		return nil, err
	}
	pf, err := os.Create(positionsPath)
	if err != nil {
		of.Close()
		return nil, err
	}

	ow := csv.NewWriter(of)
	pw := csv.NewWriter(pf)

	if err := ow.Write(orderHeader); err != nil {
		return nil, err
	}
	if err := pw.Write(positionHeader); err != nil {
		return nil, err
	}

	ow.Flush()
	if err := ow.Error(); err != nil {
		return nil, err
	}
	pw.Flush()
	if err := pw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{ow, pw, of, pf}, nil
}

func (j *CSVJournal) RecordOrder(o OrderRecord) error {
	err := j.orders.Write([]string{
		o.OrderID,
		o.CycleID,
		o.Time.UTC().Format(time.RFC3339),
		o.Symbol,
		f(o.Target),
		f(o.Previous),
		f(o.Price),
		o.Reason,
	})
	if err != nil {
		return err
	}
	j.orders.Flush()
	return j.orders.Error()
}

func (j *CSVJournal) RecordPosition(p PositionSnapshot) error {
	err := j.positions.Write([]string{
		p.Time.UTC().Format(time.RFC3339),
		p.Symbol,
		p.Sector,
		f(p.Quantity),
		f(p.AvgPrice),
		f(p.LastPrice),
		f(p.TotalChange),
		f(p.PctTotalChange),
		f(p.PctPort),
	})
	if err != nil {
		return err
	}
	j.positions.Flush()
	return j.positions.Error()
}

func (j *CSVJournal) Close() error {
	j.orders.Flush()
	if err := j.orders.Error(); err != nil {
		return err
	}
	j.positions.Flush()
	if err := j.positions.Error(); err != nil {
		return err
	}

	if err := j.of.Close(); err != nil {
		return err
	}
	return j.pf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
