package scoring

import (
	"time"

	"github.com/google/uuid"

	"github.com/psyscale/psyscale/internal/domain/scale"
)

// Answer is one selected option for an item factor. AnsweredAt is
// optional; when present across the set it enables response-time
// analysis.
type Answer struct {
	Item       int        `json:"item"`
	Factor     int        `json:"factor,omitempty"`
	Value      string     `json:"value"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
}

// ResponseSet is a frozen set of answers submitted for scoring.
// Appending/overwriting answers during a session is the assessment
// lifecycle's concern; by the time a ResponseSet reaches the engine it
// is immutable.
type ResponseSet struct {
	AssessmentID    uuid.UUID `json:"assessment_id"`
	TemplateID      string    `json:"template_id"`
	TemplateVersion int       `json:"template_version"`
	Answers         []Answer  `json:"answers"`
}

// answerIndex resolves answers by item+factor with last-write-wins
// semantics, matching the session's overwrite behavior.
type answerIndex map[scale.FactorKey]Answer

func indexAnswers(rs *ResponseSet) answerIndex {
	idx := make(answerIndex, len(rs.Answers))
	for _, a := range rs.Answers {
		idx[scale.FactorKey{Item: a.Item, Factor: a.Factor}] = a
	}
	return idx
}

// lookup adapts the index to the template's visibility evaluator:
// conditions inspect the governing item's first-factor selection.
func (idx answerIndex) lookup(tpl *scale.Compiled) scale.AnswerLookup {
	return func(item int) (scale.Option, bool) {
		a, ok := idx[scale.FactorKey{Item: item, Factor: 0}]
		if !ok {
			return scale.Option{}, false
		}
		spec, ok := tpl.Factor(item, 0)
		if !ok {
			return scale.Option{}, false
		}
		return spec.Option(a.Value)
	}
}
