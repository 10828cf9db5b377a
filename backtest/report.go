package backtest

import (
	"bytes"
	"maps"
	"os"
	"slices"
	"text/template"
	"time"
)

// Report is a Result plus the run's parameters, rendered as an Org document.
type Report struct {
	Result

	Created   time.Time
	Dataset   string
	Benchmark string
	Schedule  Schedule
	Config    []byte

	Notes []string
}

var reportFuncs = template.FuncMap{
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
	"sortedKeys": func(m map[string]int) []string {
		return slices.Sorted(maps.Keys(m))
	},
}

var reportTmpl = template.Must(template.New("backtest").Funcs(reportFuncs).Parse(ReportOrgTemplate))

// Org renders the report.
func (r Report) Org() (string, error) {
	buf := new(bytes.Buffer)
	if err := reportTmpl.Execute(buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteOrg renders the report to path.
func (r Report) WriteOrg(path string) error {
	s, err := r.Org()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s), 0o644)
}

const ReportOrgTemplate = `* BACKTEST: rebalance {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:SCHEDULE:    {{.Schedule}}
:DATASET:     {{.Dataset}}
:BENCHMARK:   {{.Benchmark}}
:START_DATE:  {{.Start.Format "2006-01-02"}}
:END_DATE:    {{.End.Format "2006-01-02"}}
:START_VAL:   {{printf "%.2f" .StartValue}}
:END_VAL:     {{printf "%.2f" .EndValue}}
:RETURN_PCT:  {{printf "%.2f" .ReturnPct}}
:MAX_DD_PCT:  {{printf "%.2f" .MaxDrawdownPct}}
:TURNOVER:    {{.Turnover}}
:REGIME:      {{.FinalRegime}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Performance Summary
- Return:           *{{printf "%.2f" .ReturnPct}}%*
- Max Drawdown:     *{{printf "%.2f" .MaxDrawdownPct}}%*
- Realized P/L:     *{{printf "%.2f" .RealizedPL}}*
- Cycles:           {{.Cycles}} of {{.TradingDays}} trading days
- Regime changes:   {{.Transitions}}

** Orders
| Reason | Count |
|--------+-------|
{{- range sortedKeys .OrdersByReason }}
| {{.}} | {{index $.OrdersByReason .}} |
{{- end }}
| Total  | {{.Turnover}} |
{{- if .Config }}

** Configuration
#+begin_src yaml
{{printf "%s" .Config}}
#+end_src
{{- end }}
{{- if .Notes }}

** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
