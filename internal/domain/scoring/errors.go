package scoring

import "fmt"

// ViolationCode classifies one response-validation problem.
type ViolationCode string

const (
	ViolationMissingItem      ViolationCode = "missing_item"
	ViolationUnknownItem      ViolationCode = "unknown_item"
	ViolationUnknownOption    ViolationCode = "unknown_option"
	ViolationFactorMismatch   ViolationCode = "factor_mismatch"
	ViolationTemplateMismatch ViolationCode = "template_mismatch"
)

// Violation is one concrete problem with a submitted response set.
type Violation struct {
	Code    ViolationCode `json:"code"`
	Item    int           `json:"item,omitempty"`
	Factor  int           `json:"factor,omitempty"`
	Message string        `json:"message"`
}

// ValidationFailure carries the full violation list. It is returned as
// data, not raised, so callers can highlight specific items and decide
// whether to re-prompt.
type ValidationFailure struct {
	Violations []Violation `json:"violations"`
}

// InterpretationGapError means a computed score fell outside every
// declared band. Since bands are validated to partition the domain at
// load time, this is a template-integrity bug surfacing at scoring
// time; it aborts the scoring operation and is never coerced to the
// nearest band.
type InterpretationGapError struct {
	TemplateID string
	Version    int
	Target     string
	Score      int
}

func (e *InterpretationGapError) Error() string {
	return fmt.Sprintf("no interpretation range on %s covers score %d (template %s v%d)",
		e.Target, e.Score, e.TemplateID, e.Version)
}
