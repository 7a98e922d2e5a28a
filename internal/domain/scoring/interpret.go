package scoring

import (
	"github.com/psyscale/psyscale/internal/domain/scale"
)

// Interpretation is the resolved severity band for one target.
type Interpretation struct {
	Target         string `json:"target"`
	Score          int    `json:"score"`
	Min            int    `json:"min"`
	Max            int    `json:"max"`
	Severity       string `json:"severity"`
	Description    string `json:"description,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
}

// resolveInterpretation finds the single band containing the score.
// Bands are load-validated to partition the target's domain, so for
// any in-domain score exactly one matches; anything else is an
// InterpretationGapError.
func resolveInterpretation(tpl *scale.Compiled, target string, score int) (*Interpretation, error) {
	for _, r := range tpl.Bands(target) {
		if score >= r.Min && score <= r.Max {
			return &Interpretation{
				Target:         target,
				Score:          score,
				Min:            r.Min,
				Max:            r.Max,
				Severity:       r.Severity,
				Description:    r.Description,
				Recommendation: r.Recommendation,
			}, nil
		}
	}
	return nil, &InterpretationGapError{
		TemplateID: tpl.Template.ID,
		Version:    tpl.Template.Version,
		Target:     target,
		Score:      score,
	}
}
