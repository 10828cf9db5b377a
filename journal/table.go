package journal

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// FormatOrdersTable renders orders for terminal output.
func FormatOrdersTable(orders []OrderRecord) string {
	t := table.NewWriter()
	t.SetTitle("ORDERS")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Time", "Symbol", "Reason", "Previous", "Target", "Price"})
	for _, o := range orders {
		t.AppendRow(table.Row{
			o.Time.UTC().Format(time.DateOnly),
			o.Symbol,
			o.Reason,
			fmt.Sprintf("%.0f", o.Previous),
			fmt.Sprintf("%.0f", o.Target),
			fmt.Sprintf("%.2f", o.Price),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "Orders", len(orders)})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	return t.Render()
}

// FormatPositionsTable renders a holdings snapshot.
func FormatPositionsTable(positions []PositionSnapshot) string {
	t := table.NewWriter()
	t.SetTitle("HOLDINGS")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Symbol", "Sector", "Qty", "Avg Price", "Last Price", "Total Chg", "% Chg", "% Port"})
	for _, p := range positions {
		t.AppendRow(table.Row{
			p.Symbol,
			p.Sector,
			fmt.Sprintf("%.0f", p.Quantity),
			fmt.Sprintf("%.2f", p.AvgPrice),
			fmt.Sprintf("%.2f", p.LastPrice),
			fmt.Sprintf("%.2f", p.TotalChange),
			fmt.Sprintf("%.2f", p.PctTotalChange),
			fmt.Sprintf("%.2f", p.PctPort),
		})
	}
	return t.Render()
}
