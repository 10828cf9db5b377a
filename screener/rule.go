package screener

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/rebalancer/fundamentals"
)

// Op is a comparison operator.
type Op string

const (
	LT Op = "<"
	LE Op = "<="
	GT Op = ">"
	GE Op = ">="
	EQ Op = "=="
	NE Op = "!="
)

func (o Op) Valid() bool {
	switch o {
	case LT, LE, GT, GE, EQ, NE:
		return true
	}
	return false
}

func (o *Op) UnmarshalText(b []byte) error {
	op := Op(strings.TrimSpace(string(b)))
	if op == "=" {
		op = EQ
	}
	if !op.Valid() {
		return fmt.Errorf("screener: unknown operator %q", string(b))
	}
	*o = op
	return nil
}

func (o Op) MarshalText() ([]byte, error) {
	return []byte(o), nil
}

func (o Op) compare(a, b float64) bool {
	switch o {
	case LT:
		return a < b
	case LE:
		return a <= b
	case GT:
		return a > b
	case GE:
		return a >= b
	case EQ:
		return a == b
	case NE:
		return a != b
	}
	return false
}

// AsOfYear is the Ref that makes a rule's threshold relative to the
// screening year, e.g. {ipoyear < as_of_year + -2}.
const AsOfYear = "as_of_year"

// Rule is one predicate of a screen: Metric Op threshold, where threshold is
//
//   - Value, when Ref is empty
//   - asOfYear + Value, when Ref is "as_of_year"
//   - row[Ref] * Value, when Ref names another metric (rnd >= 0.06 * revenue)
//
// A missing metric fails the rule unless OrMissing is set.
type Rule struct {
	Metric    string  `json:"metric" yaml:"metric"`
	Op        Op      `json:"op" yaml:"op"`
	Value     float64 `json:"value" yaml:"value"`
	Ref       string  `json:"ref,omitempty" yaml:"ref,omitempty"`
	OrMissing bool    `json:"or_missing,omitempty" yaml:"or_missing,omitempty"`
}

func (r Rule) String() string {
	rhs := fmt.Sprintf("%g", r.Value)
	switch r.Ref {
	case "":
	case AsOfYear:
		rhs = fmt.Sprintf("%s%+g", AsOfYear, r.Value)
	default:
		rhs = fmt.Sprintf("%g*%s", r.Value, r.Ref)
	}
	s := fmt.Sprintf("%s %s %s", r.Metric, r.Op, rhs)
	if r.OrMissing {
		s += " (or missing)"
	}
	return s
}

func (r Rule) Validate() error {
	if r.Metric == "" {
		return fmt.Errorf("rule: metric is required")
	}
	if !r.Op.Valid() {
		return fmt.Errorf("rule %s: unknown operator %q", r.Metric, r.Op)
	}
	return nil
}

// Match evaluates the rule against row.
func (r Rule) Match(row fundamentals.Row, asOfYear int) bool {
	v, ok := row.Value(r.Metric)
	if !ok {
		return r.OrMissing
	}

	threshold := r.Value
	switch r.Ref {
	case "":
	case AsOfYear:
		threshold = float64(asOfYear) + r.Value
	default:
		ref, ok := row.Value(r.Ref)
		if !ok {
			return false
		}
		threshold = ref * r.Value
	}
	return r.Op.compare(v, threshold)
}
