// Package screener filters a fundamentals universe with declarative rules
// and ranks what is left.
package screener

import (
	"fmt"
	"iter"
	"math"
	"slices"
	"sort"

	"github.com/rustyeddy/rebalancer/fundamentals"
)

// Candidate is one ranked buy candidate.
type Candidate struct {
	Rank  int // 1-based
	Score float64
	Row   fundamentals.Row
}

func (c Candidate) Symbol() string { return c.Row.Symbol }
func (c Candidate) Sector() string { return c.Row.Sector }

// Screener is one reusable screening engine, parameterized per strategy.
type Screener struct {
	Rules []Rule
	// Require lists metrics a row must carry to be considered at all.
	Require []string
	// RankBy is the metric candidates are sorted by, descending.
	RankBy string
	// Exclude lists symbols that are never candidates.
	Exclude []string
}

func (s Screener) Validate() error {
	for _, r := range s.Rules {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	for _, m := range s.Require {
		if m == "" {
			return fmt.Errorf("screener: empty metric in require")
		}
	}
	return nil
}

func (s Screener) rankBy() string {
	if s.RankBy == "" {
		return fundamentals.QoQEarnings
	}
	return s.RankBy
}

// Screen filters universe and ranks the survivors by RankBy, descending,
// breaking ties by universe order. Infinite metric values are treated as
// missing so a divide-by-zero ratio can neither pass a rule nor win the sort.
func (s Screener) Screen(universe fundamentals.Universe, asOfYear int) Ranked {
	rankBy := s.rankBy()

	var kept []Candidate
	for _, row := range universe {
		if slices.Contains(s.Exclude, row.Symbol) {
			continue
		}
		row = finite(row)
		if !s.complete(row, rankBy) {
			continue
		}
		if !s.match(row, asOfYear) {
			continue
		}
		score, _ := row.Value(rankBy)
		kept = append(kept, Candidate{Score: score, Row: row})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	for i := range kept {
		kept[i].Rank = i + 1
	}
	return Ranked{candidates: kept}
}

func (s Screener) complete(row fundamentals.Row, rankBy string) bool {
	if _, ok := row.Value(rankBy); !ok {
		return false
	}
	for _, m := range s.Require {
		if _, ok := row.Value(m); !ok {
			return false
		}
	}
	return true
}

func (s Screener) match(row fundamentals.Row, asOfYear int) bool {
	for _, r := range s.Rules {
		if !r.Match(row, asOfYear) {
			return false
		}
	}
	return true
}

// finite returns row with every infinite metric dropped. The universe row is
// never modified.
func finite(row fundamentals.Row) fundamentals.Row {
	hasInf := false
	for _, v := range row.Metrics {
		if math.IsInf(v, 0) {
			hasInf = true
			break
		}
	}
	if !hasInf {
		return row
	}
	clean := make(map[string]float64, len(row.Metrics))
	for k, v := range row.Metrics {
		if !math.IsInf(v, 0) {
			clean[k] = v
		}
	}
	row.Metrics = clean
	return row
}

// Ranked is the screener's ordered output. It is finite and can be walked
// any number of times; consumers may stop early.
type Ranked struct {
	candidates []Candidate
}

func (r Ranked) Len() int { return len(r.candidates) }

// All yields (rank index, candidate) pairs in rank order.
func (r Ranked) All() iter.Seq2[int, Candidate] {
	return func(yield func(int, Candidate) bool) {
		for i, c := range r.candidates {
			if !yield(i, c) {
				return
			}
		}
	}
}

// Symbols returns the ranked symbols in order.
func (r Ranked) Symbols() []string {
	out := make([]string, len(r.candidates))
	for i, c := range r.candidates {
		out[i] = c.Row.Symbol
	}
	return out
}
