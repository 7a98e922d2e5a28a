package scale

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// IntegrityError reports every structural problem found while compiling
// a template. Violated templates are rejected at load time, before any
// scoring can observe them.
type IntegrityError struct {
	TemplateID string
	Version    int
	Problems   []string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("template %s v%d failed integrity checks: %s",
		e.TemplateID, e.Version, strings.Join(e.Problems, "; "))
}

// FactorKey addresses one scored answer slot.
type FactorKey struct {
	Item   int
	Factor int
}

// FactorSpec is the load-time resolution of one item factor: a uniform
// option lookup regardless of shared vs owned option sets, plus the
// aggregation attributes the scorer needs.
type FactorSpec struct {
	Item          int
	Factor        int
	Subscale      string
	Weight        float64
	OmitFromTotal bool
	Ordered       []Option
	byValue       map[string]Option
}

// Option resolves a selected value against this factor's option list.
func (f *FactorSpec) Option(value string) (Option, bool) {
	o, ok := f.byValue[value]
	return o, ok
}

// Extremes returns the lowest- and highest-ordered option values.
func (f *FactorSpec) Extremes() (low, high string) {
	return f.Ordered[0].Value, f.Ordered[len(f.Ordered)-1].Value
}

// Compiled is a validated template with all per-item lookups resolved.
// It is immutable after Compile returns and safe for concurrent use.
type Compiled struct {
	Template *Template

	items    map[int]*Item
	ordered  []int
	factors  map[FactorKey]*FactorSpec
	bands    map[string][]InterpretationRule
	byCode   map[string]*Subscale
	subOrder []string
}

// ItemNumbers returns item numbers in presentation order.
func (c *Compiled) ItemNumbers() []int { return c.ordered }

// Item returns the declared item for a number.
func (c *Compiled) Item(number int) (*Item, bool) {
	it, ok := c.items[number]
	return it, ok
}

// FactorCount returns how many scored answers the item expects.
func (c *Compiled) FactorCount(number int) int {
	it, ok := c.items[number]
	if !ok {
		return 0
	}
	if len(it.Factors) > 0 {
		return len(it.Factors)
	}
	return 1
}

// Factor resolves one answer slot.
func (c *Compiled) Factor(item, factor int) (*FactorSpec, bool) {
	f, ok := c.factors[FactorKey{Item: item, Factor: factor}]
	return f, ok
}

// Bands returns the interpretation rules for a target sorted by Min.
func (c *Compiled) Bands(target string) []InterpretationRule {
	return c.bands[target]
}

// BandTargets returns every target with declared interpretation rules,
// total first.
func (c *Compiled) BandTargets() []string {
	targets := make([]string, 0, len(c.bands))
	if _, ok := c.bands[TargetTotal]; ok {
		targets = append(targets, TargetTotal)
	}
	for _, code := range c.subOrder {
		if _, ok := c.bands[code]; ok {
			targets = append(targets, code)
		}
	}
	return targets
}

// Subscale returns a declared subscale by code.
func (c *Compiled) Subscale(code string) (*Subscale, bool) {
	s, ok := c.byCode[code]
	return s, ok
}

// SubscaleCodes returns declared subscale codes in declaration order.
func (c *Compiled) SubscaleCodes() []string { return c.subOrder }

// AnswerLookup reports the option selected for an item's first factor,
// if any. It is how visibility conditions see the collected answers.
type AnswerLookup func(item int) (Option, bool)

// Visible evaluates an item's visibility condition against collected
// answers. Both the validator and the scorer consult this single
// evaluator so "required" and "counted" semantics never diverge.
func (c *Compiled) Visible(number int, lookup AnswerLookup) bool {
	it, ok := c.items[number]
	if !ok || it.ShowIf == nil {
		return ok
	}
	selected, answered := lookup(it.ShowIf.Item)
	if !answered {
		return false
	}
	switch it.ShowIf.Op {
	case OpEQ:
		return selected.Value == it.ShowIf.Value
	case OpGTE, OpGT, OpLTE, OpLT:
		threshold, err := strconv.Atoi(it.ShowIf.Value)
		if err != nil {
			return false
		}
		return compareInt(selected.Score, it.ShowIf.Op, threshold)
	default:
		return false
	}
}

func compareInt(score int, op Comparator, threshold int) bool {
	switch op {
	case OpGTE:
		return score >= threshold
	case OpGT:
		return score > threshold
	case OpLTE:
		return score <= threshold
	case OpLT:
		return score < threshold
	case OpEQ:
		return score == threshold
	}
	return false
}

// CompareScore applies an alert comparator to a raw score.
func CompareScore(score int, op Comparator, threshold int) bool {
	return compareInt(score, op, threshold)
}

var validMethods = map[ScoringMethod]bool{
	MethodSum: true, MethodMean: true, MethodWeighted: true, MethodConditional: true,
}

var validComparators = map[Comparator]bool{
	OpGTE: true, OpGT: true, OpLTE: true, OpLT: true, OpEQ: true,
}

// Compile validates a template and resolves its lookup tables. All
// problems are collected into a single IntegrityError so authors see
// the full list at once.
func Compile(t *Template) (*Compiled, error) {
	var problems []string
	addf := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if t.ID == "" {
		addf("template id is required")
	}
	if t.Version < 1 {
		addf("version must be positive, got %d", t.Version)
	}
	if !validMethods[t.Method] {
		addf("unknown scoring method %q", t.Method)
	}
	if t.ScoreMax <= t.ScoreMin {
		addf("score range [%d,%d] is empty", t.ScoreMin, t.ScoreMax)
	}
	if len(t.Items) == 0 {
		addf("template has no items")
	}

	c := &Compiled{
		Template: t,
		items:    make(map[int]*Item, len(t.Items)),
		factors:  make(map[FactorKey]*FactorSpec),
		bands:    make(map[string][]InterpretationRule),
		byCode:   make(map[string]*Subscale, len(t.Subscales)),
	}

	for i := range t.Subscales {
		s := &t.Subscales[i]
		if s.Code == "" {
			addf("subscale %d has no code", i)
			continue
		}
		if _, dup := c.byCode[s.Code]; dup {
			addf("duplicate subscale code %q", s.Code)
			continue
		}
		if s.Max <= s.Min {
			addf("subscale %q score range [%d,%d] is empty", s.Code, s.Min, s.Max)
		}
		c.byCode[s.Code] = s
		c.subOrder = append(c.subOrder, s.Code)
	}

	for i := range t.Items {
		it := &t.Items[i]
		if it.Number < 1 {
			addf("item %d: number must be positive, got %d", i, it.Number)
			continue
		}
		if _, dup := c.items[it.Number]; dup {
			addf("duplicate item number %d", it.Number)
			continue
		}
		c.items[it.Number] = it
		c.ordered = append(c.ordered, it.Number)

		for f, spec := range resolveFactors(t, it) {
			if len(spec.Ordered) == 0 {
				addf("item %d factor %d resolves to an empty option list", it.Number, f)
				continue
			}
			seen := make(map[string]bool, len(spec.Ordered))
			for _, o := range spec.Ordered {
				if seen[o.Value] {
					addf("item %d factor %d has duplicate option value %q", it.Number, f, o.Value)
				}
				seen[o.Value] = true
			}
			if spec.Subscale != "" {
				if _, ok := c.byCode[spec.Subscale]; !ok {
					addf("item %d factor %d references undeclared subscale %q", it.Number, f, spec.Subscale)
				}
			}
			c.factors[FactorKey{Item: it.Number, Factor: f}] = spec
		}
	}
	sort.Ints(c.ordered)

	// An item belongs to at most one subscale per declared grouping.
	memberOf := make(map[int]string)
	for _, code := range c.subOrder {
		s := c.byCode[code]
		for _, n := range s.Items {
			if _, ok := c.items[n]; !ok {
				addf("subscale %q references unknown item %d", code, n)
				continue
			}
			if prev, taken := memberOf[n]; taken && prev != code {
				addf("item %d belongs to both subscales %q and %q", n, prev, code)
			}
			memberOf[n] = code
		}
	}

	// Subscale membership is declared twice, on the subscale's item
	// list and on the item/factor refs the scorer reads. The two views
	// must agree exactly; a contradiction would otherwise surface as a
	// wrong subscale sum or a band miss at scoring time.
	for _, code := range c.subOrder {
		s := c.byCode[code]
		declared := make(map[int]bool, len(s.Items))
		for _, n := range s.Items {
			declared[n] = true
		}
		for _, n := range c.ordered {
			refs := false
			for f := 0; f < c.FactorCount(n); f++ {
				if spec, ok := c.factors[FactorKey{Item: n, Factor: f}]; ok && spec.Subscale == code {
					refs = true
				}
			}
			switch {
			case refs && !declared[n]:
				addf("item %d references subscale %q but is missing from its item list", n, code)
			case !refs && declared[n]:
				addf("subscale %q lists item %d but the item does not reference it", code, n)
			}
		}
	}

	for i := range t.Items {
		it := &t.Items[i]
		if it.ShowIf == nil {
			continue
		}
		if it.ShowIf.Item == it.Number {
			addf("item %d visibility condition references itself", it.Number)
		} else if _, ok := c.items[it.ShowIf.Item]; !ok {
			addf("item %d visibility condition references unknown item %d", it.Number, it.ShowIf.Item)
		}
		if !validComparators[it.ShowIf.Op] {
			addf("item %d visibility condition has unknown comparator %q", it.Number, it.ShowIf.Op)
		} else if it.ShowIf.Op != OpEQ {
			if _, err := strconv.Atoi(it.ShowIf.Value); err != nil {
				addf("item %d visibility threshold %q is not numeric", it.Number, it.ShowIf.Value)
			}
		}
	}

	compileBands(t, c, addf)

	for i, a := range t.Alerts {
		if _, ok := c.factors[FactorKey{Item: a.Item, Factor: a.Factor}]; !ok {
			addf("alert %d references unknown item %d factor %d", i, a.Item, a.Factor)
		}
		if !validComparators[a.Op] {
			addf("alert %d has unknown comparator %q", i, a.Op)
		}
		if a.Severity == "" {
			addf("alert %d has no severity tag", i)
		}
	}

	if len(problems) > 0 {
		return nil, &IntegrityError{TemplateID: t.ID, Version: t.Version, Problems: problems}
	}
	return c, nil
}

// resolveFactors normalizes an item into its scored answer slots,
// resolving shared vs owned option sets once so the scorer never
// branches on that distinction.
func resolveFactors(t *Template, it *Item) []*FactorSpec {
	pick := func(owned []Option) []Option {
		if len(owned) > 0 {
			return owned
		}
		return t.SharedOptions
	}
	build := func(factor int, opts []Option, subscale string, weight float64, omit bool) *FactorSpec {
		ordered := make([]Option, len(opts))
		copy(ordered, opts)
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })
		byValue := make(map[string]Option, len(ordered))
		for _, o := range ordered {
			byValue[o.Value] = o
		}
		if weight == 0 {
			weight = 1
		}
		return &FactorSpec{
			Item:          it.Number,
			Factor:        factor,
			Subscale:      subscale,
			Weight:        weight,
			OmitFromTotal: omit,
			Ordered:       ordered,
			byValue:       byValue,
		}
	}

	if len(it.Factors) == 0 {
		return []*FactorSpec{build(0, pick(it.Options), it.Subscale, it.Weight, false)}
	}
	specs := make([]*FactorSpec, 0, len(it.Factors))
	for f := range it.Factors {
		fac := &it.Factors[f]
		specs = append(specs, build(f, pick(fac.Options), fac.Subscale, fac.Weight, fac.OmitFromTotal))
	}
	return specs
}

// compileBands validates that, per target, interpretation ranges
// partition the target's score domain: inclusive on both ends, sorted,
// first.Min at the domain floor, last.Max at the ceiling, and each
// adjacent pair contiguous (a.Max+1 == b.Min) so no score is ambiguous.
func compileBands(t *Template, c *Compiled, addf func(string, ...interface{})) {
	byTarget := make(map[string][]InterpretationRule)
	for i, r := range t.Interpretations {
		if r.Target != TargetTotal {
			if _, ok := c.byCode[r.Target]; !ok {
				addf("interpretation %d targets unknown subscale %q", i, r.Target)
				continue
			}
		}
		if r.Max < r.Min {
			addf("interpretation %d on %q has inverted range [%d,%d]", i, r.Target, r.Min, r.Max)
			continue
		}
		byTarget[r.Target] = append(byTarget[r.Target], r)
	}

	if len(byTarget[TargetTotal]) == 0 {
		addf("no interpretation rules declared for total score")
	}

	for target, rules := range byTarget {
		sort.SliceStable(rules, func(i, j int) bool { return rules[i].Min < rules[j].Min })

		min, max := t.ScoreMin, t.ScoreMax
		if target != TargetTotal {
			s := c.byCode[target]
			min, max = s.Min, s.Max
		}

		if rules[0].Min != min {
			addf("interpretation ranges for %q start at %d, expected %d", target, rules[0].Min, min)
		}
		if rules[len(rules)-1].Max != max {
			addf("interpretation ranges for %q end at %d, expected %d", target, rules[len(rules)-1].Max, max)
		}
		for i := 1; i < len(rules); i++ {
			prev, cur := rules[i-1], rules[i]
			if cur.Min <= prev.Max {
				addf("interpretation ranges for %q overlap at %d (%s/%s)", target, cur.Min, prev.Severity, cur.Severity)
			} else if cur.Min != prev.Max+1 {
				addf("interpretation ranges for %q have a gap between %d and %d", target, prev.Max, cur.Min)
			}
		}

		c.bands[target] = rules
	}
}
