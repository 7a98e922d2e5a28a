package scoring

import (
	"sort"

	"github.com/psyscale/psyscale/internal/domain/scale"
)

// Config tunes the validity/pattern analyzer.
type Config struct {
	// StraightLineRun is the minimum run of identical consecutive
	// answers that flags straight-lining.
	StraightLineRun int
	// ZigZagRun is the minimum run of answers alternating between the
	// two extreme options that flags zig-zagging.
	ZigZagRun int
	// IncompleteRatio is the unanswered-ratio above which the report
	// is marked incomplete.
	IncompleteRatio float64
	// MinAnswerSeconds is the minimum plausible reading time per item.
	MinAnswerSeconds float64
}

func DefaultConfig() Config {
	return Config{
		StraightLineRun:  8,
		ZigZagRun:        8,
		IncompleteRatio:  0.25,
		MinAnswerSeconds: 1.0,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.StraightLineRun <= 0 {
		c.StraightLineRun = d.StraightLineRun
	}
	if c.ZigZagRun <= 0 {
		c.ZigZagRun = d.ZigZagRun
	}
	if c.IncompleteRatio <= 0 {
		c.IncompleteRatio = d.IncompleteRatio
	}
	if c.MinAnswerSeconds <= 0 {
		c.MinAnswerSeconds = d.MinAnswerSeconds
	}
	return c
}

// ValidityReport is the advisory output of the pattern analyzer. It is
// attached to every result but never blocks score computation.
type ValidityReport struct {
	StraightLine  bool    `json:"straight_line"`
	ZigZag        bool    `json:"zig_zag"`
	Incomplete    bool    `json:"incomplete"`
	FastResponses bool    `json:"fast_responses"`
	AnsweredRatio float64 `json:"answered_ratio"`
	Index         float64 `json:"index"`
}

// analyzeValidity inspects the response vector, in item order, for
// implausible answer patterns. All heuristics run on the first factor
// of each visible item; multi-factor severity answers track their
// frequency answer too closely to be useful pattern signals.
//
// Response sets reaching this through the engine have already passed
// validation, so their answered ratio is 1 and the incompleteness
// heuristic is inert there; it applies when the analyzer runs directly
// on a partial, not-yet-validated set.
func analyzeValidity(cfg Config, tpl *scale.Compiled, rs *ResponseSet) ValidityReport {
	cfg = cfg.withDefaults()
	idx := indexAnswers(rs)
	lookup := idx.lookup(tpl)

	var report ValidityReport

	type cell struct {
		answered bool
		value    string
		low      bool
		high     bool
		options  int
	}
	var cells []cell
	required, answered := 0, 0

	for _, n := range tpl.ItemNumbers() {
		if !tpl.Visible(n, lookup) {
			continue
		}
		for f := 0; f < tpl.FactorCount(n); f++ {
			required++
			if _, ok := idx[scale.FactorKey{Item: n, Factor: f}]; ok {
				answered++
			}
		}

		spec, _ := tpl.Factor(n, 0)
		a, ok := idx[scale.FactorKey{Item: n, Factor: 0}]
		c := cell{answered: ok, options: len(spec.Ordered)}
		if ok {
			low, high := spec.Extremes()
			c.value = a.Value
			c.low = a.Value == low
			c.high = a.Value == high
		}
		cells = append(cells, c)
	}

	if required > 0 {
		report.AnsweredRatio = float64(answered) / float64(required)
	} else {
		report.AnsweredRatio = 1
	}
	report.Incomplete = 1-report.AnsweredRatio > cfg.IncompleteRatio

	// Straight-line: same value for >= N consecutive items, only
	// meaningful on items offering at least 3 distinct options.
	run := 0
	var prev string
	for _, c := range cells {
		if !c.answered || c.options < 3 {
			run = 0
			continue
		}
		if run > 0 && c.value == prev {
			run++
		} else {
			run = 1
		}
		prev = c.value
		if run >= cfg.StraightLineRun {
			report.StraightLine = true
		}
	}

	// Zig-zag: alternating between the two extremes.
	run = 0
	prevHigh := false
	for _, c := range cells {
		atExtreme := c.answered && (c.low || c.high) && !(c.low && c.high)
		if !atExtreme {
			run = 0
			continue
		}
		if run > 0 && c.high != prevHigh {
			run++
		} else {
			run = 1
		}
		prevHigh = c.high
		if run >= cfg.ZigZagRun {
			report.ZigZag = true
		}
	}

	report.FastResponses = fastResponses(cfg, rs)

	report.Index = validityIndex(report)
	return report
}

// fastResponses checks inter-answer intervals against the minimum
// plausible reading time. Requires timestamps on the answers; without
// them the heuristic is skipped.
func fastResponses(cfg Config, rs *ResponseSet) bool {
	var stamps []int64
	for _, a := range rs.Answers {
		if a.AnsweredAt != nil {
			stamps = append(stamps, a.AnsweredAt.UnixMilli())
		}
	}
	if len(stamps) < 3 {
		return false
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i] < stamps[j] })

	minGap := int64(cfg.MinAnswerSeconds * 1000)
	fast := 0
	for i := 1; i < len(stamps); i++ {
		if stamps[i]-stamps[i-1] < minGap {
			fast++
		}
	}
	return fast >= 3
}

func validityIndex(r ValidityReport) float64 {
	if r.Incomplete {
		return 0
	}
	index := 1.0
	if r.StraightLine {
		index -= 0.4
	}
	if r.ZigZag {
		index -= 0.4
	}
	if r.FastResponses {
		index -= 0.2
	}
	index -= 0.5 * (1 - r.AnsweredRatio)
	if index < 0 {
		return 0
	}
	return index
}
