package fundamentals

import "strconv"

// nasdaqSectors maps the NASDAQ numeric sector codes to names.
var nasdaqSectors = map[int]string{
	0:  "Basic Industries",
	1:  "Capital Goods",
	2:  "Consumer Durables",
	3:  "Consumer Non-Durables",
	4:  "Consumer Services",
	5:  "Energy",
	6:  "Finance",
	7:  "Health Care",
	8:  "Miscellaneous",
	9:  "Public Utilities",
	10: "Technology",
	11: "Transportation",
}

// SectorName resolves a NASDAQ sector code ("10") to its name. Anything that
// is not a known code is returned unchanged; "-1" and "" become "".
func SectorName(s string) string {
	code, err := strconv.Atoi(s)
	if err != nil {
		return s
	}
	if name, ok := nasdaqSectors[code]; ok {
		return name
	}
	if code < 0 {
		return ""
	}
	return s
}
