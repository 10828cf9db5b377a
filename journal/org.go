package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatOrderOrg renders an OrderRecord as an Org-mode heading with the
// structured facts in a PROPERTIES drawer.
func FormatOrderOrg(o OrderRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** %s %s (%s)\n", o.Reason, o.Symbol, shortID(o.OrderID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ORDER_ID: %s\n", o.OrderID)
	fmt.Fprintf(&b, ":CYCLE_ID: %s\n", o.CycleID)
	fmt.Fprintf(&b, ":SYMBOL: %s\n", o.Symbol)
	fmt.Fprintf(&b, ":TIME: %s\n", o.Time.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":PREVIOUS: %.0f\n", o.Previous)
	fmt.Fprintf(&b, ":TARGET: %.0f\n", o.Target)
	fmt.Fprintf(&b, ":PRICE: %.4f\n", o.Price)
	fmt.Fprintf(&b, ":REASON: %s\n", o.Reason)
	b.WriteString(":END:\n")
	return b.String()
}

// FormatCycleOrg renders one cycle's orders under a single heading.
func FormatCycleOrg(cycleID string, orders []OrderRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "* Cycle %s\n", cycleID)
	if len(orders) == 0 {
		b.WriteString("- no orders\n")
		return b.String()
	}
	for i, o := range orders {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatOrderOrg(o))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}
