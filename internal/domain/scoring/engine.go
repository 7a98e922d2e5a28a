// Package scoring is the assessment engine: a pure, synchronous
// computation over an immutable compiled template and a frozen
// response set, producing an immutable result. It holds no shared
// state, performs no I/O, and is safe to run from any number of
// goroutines at once.
package scoring

import (
	"time"

	"github.com/google/uuid"

	"github.com/psyscale/psyscale/internal/domain/scale"
)

// Result is one scoring outcome. Created once per submitted response
// set and never mutated; a re-score produces a new Result, preserving
// history.
type Result struct {
	ID              uuid.UUID                  `json:"id"`
	AssessmentID    uuid.UUID                  `json:"assessment_id"`
	TemplateID      string                     `json:"template_id"`
	TemplateVersion int                        `json:"template_version"`
	Total           float64                    `json:"total"`
	Subscales       map[string]int             `json:"subscales,omitempty"`
	Interpretations map[string]*Interpretation `json:"interpretations"`
	Alerts          []Alert                    `json:"alerts,omitempty"`
	Validity        ValidityReport             `json:"validity"`
	ScoredAt        time.Time                  `json:"scored_at"`
}

// Engine orchestrates validation, raw scoring, interpretation, alert
// evaluation and validity analysis. It is the only entry point
// external callers use; the stages are not separately exposed.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// Score runs the full pipeline. Hard validation problems return a
// ValidationFailure and no result; an interpretation gap (a
// template-integrity bug observed at scoring time) returns an error
// and no partial result. Validity findings are advisory and never
// abort scoring.
func (e *Engine) Score(tpl *scale.Compiled, rs *ResponseSet) (*Result, *ValidationFailure, error) {
	if violations := Validate(tpl, rs); len(violations) > 0 {
		return nil, &ValidationFailure{Violations: violations}, nil
	}

	total, subscales, perFactor := rawScores(tpl, rs)

	interpretations := make(map[string]*Interpretation)
	for _, target := range tpl.BandTargets() {
		score := bandScore(total)
		if target != scale.TargetTotal {
			score = subscales[target]
		}
		resolved, err := resolveInterpretation(tpl, target, score)
		if err != nil {
			return nil, nil, err
		}
		interpretations[target] = resolved
	}

	result := &Result{
		ID:              uuid.New(),
		AssessmentID:    rs.AssessmentID,
		TemplateID:      tpl.Template.ID,
		TemplateVersion: tpl.Template.Version,
		Total:           total,
		Subscales:       subscales,
		Interpretations: interpretations,
		Alerts:          evaluateAlerts(tpl, perFactor),
		Validity:        analyzeValidity(e.cfg, tpl, rs),
		ScoredAt:        time.Now().UTC(),
	}
	return result, nil, nil
}
