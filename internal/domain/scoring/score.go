package scoring

import (
	"math"

	"github.com/psyscale/psyscale/internal/domain/scale"
)

// FactorScore is the raw score of one answered item factor.
type FactorScore struct {
	Item     int    `json:"item"`
	Factor   int    `json:"factor"`
	Value    string `json:"value"`
	Score    int    `json:"score"`
	Subscale string `json:"subscale,omitempty"`
}

// rawScores computes per-factor raw scores and rolls them up into the
// total and subscale scores.
//
// The option's stored score is used directly: reverse-scored and
// non-linear option sets have their final values baked in at authoring
// time, so no max-value inversion ever happens here. Items hidden by a
// visibility condition contribute zero and are excluded from the
// answered count (but not from the subscale's declared range).
func rawScores(tpl *scale.Compiled, rs *ResponseSet) (total float64, subscales map[string]int, perFactor []FactorScore) {
	idx := indexAnswers(rs)
	lookup := idx.lookup(tpl)

	subscales = make(map[string]int, len(tpl.SubscaleCodes()))
	for _, code := range tpl.SubscaleCodes() {
		subscales[code] = 0
	}

	var sum float64
	counted := 0

	for _, n := range tpl.ItemNumbers() {
		if !tpl.Visible(n, lookup) {
			continue
		}
		for f := 0; f < tpl.FactorCount(n); f++ {
			a, answered := idx[scale.FactorKey{Item: n, Factor: f}]
			if !answered {
				continue
			}
			spec, _ := tpl.Factor(n, f)
			opt, ok := spec.Option(a.Value)
			if !ok {
				continue
			}

			fs := FactorScore{Item: n, Factor: f, Value: a.Value, Score: opt.Score, Subscale: spec.Subscale}
			perFactor = append(perFactor, fs)

			if spec.Subscale != "" {
				subscales[spec.Subscale] += opt.Score
			}
			if spec.OmitFromTotal {
				continue
			}

			switch tpl.Template.Method {
			case scale.MethodWeighted:
				sum += float64(opt.Score) * spec.Weight
			default:
				sum += float64(opt.Score)
			}
			counted++
		}
	}

	if tpl.Template.Method == scale.MethodMean && counted > 0 {
		return sum / float64(counted), subscales, perFactor
	}
	return sum, subscales, perFactor
}

// bandScore converts an aggregate to the integer used for band lookup.
// Only the mean method produces fractional totals; those round to the
// nearest integer since bands are declared on integer ranges.
func bandScore(total float64) int {
	return int(math.Round(total))
}
