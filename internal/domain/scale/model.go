package scale

import (
	"time"
)

// ScoringMethod selects how per-item scores aggregate into the total.
type ScoringMethod string

const (
	MethodSum         ScoringMethod = "sum"
	MethodMean        ScoringMethod = "mean"
	MethodWeighted    ScoringMethod = "weighted"
	MethodConditional ScoringMethod = "conditional"
)

// Comparator is the operator used by alert triggers and visibility
// conditions.
type Comparator string

const (
	OpGTE Comparator = "gte"
	OpGT  Comparator = "gt"
	OpLTE Comparator = "lte"
	OpLT  Comparator = "lt"
	OpEQ  Comparator = "eq"
)

// Option is one selectable response. Score is the final score value:
// for reverse-scored items the inversion is baked in at authoring time
// and the engine never recomputes it, so non-linear option sets (e.g.
// BDI-21 item 16) score correctly.
type Option struct {
	Value     string `json:"value"`
	Label     string `json:"label"`
	Score     int    `json:"score"`
	Order     int    `json:"order"`
	RiskLevel string `json:"risk_level,omitempty"`
}

// Condition gates an item's visibility on an earlier answer. For eq the
// selected option value is compared literally; for the ordering
// comparators the selected option's score is compared against the
// numeric threshold in Value.
type Condition struct {
	Item  int        `json:"item"`
	Op    Comparator `json:"op"`
	Value string     `json:"value"`
}

// Factor is one independently scored answer of a multi-factor item
// (e.g. DTS frequency/severity). Options nil means the scale's shared
// option set applies.
type Factor struct {
	Label         string   `json:"label"`
	Options       []Option `json:"options,omitempty"`
	Subscale      string   `json:"subscale,omitempty"`
	Weight        float64  `json:"weight,omitempty"`
	OmitFromTotal bool     `json:"omit_from_total,omitempty"`
}

// Item is a single question. Options nil means the scale's shared
// option set applies. Factors, when present, declare a multi-factor
// item; Options/Subscale/Weight on the item itself are then ignored in
// favor of the per-factor declarations.
type Item struct {
	Number        int        `json:"number"`
	Prompt        string     `json:"prompt"`
	ReverseScored bool       `json:"reverse_scored,omitempty"`
	Subscale      string     `json:"subscale,omitempty"`
	Weight        float64    `json:"weight,omitempty"`
	Options       []Option   `json:"options,omitempty"`
	Factors       []Factor   `json:"factors,omitempty"`
	ShowIf        *Condition `json:"show_if,omitempty"`
}

// Subscale is a named subset of items scored separately from the total.
// Membership is declared, never inferred.
type Subscale struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Items []int  `json:"items"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
}

// TargetTotal is the interpretation target for the aggregate score.
const TargetTotal = "total"

// InterpretationRule maps an inclusive score range on a target (total
// or a subscale code) to a severity band.
type InterpretationRule struct {
	Target         string `json:"target"`
	Min            int    `json:"min"`
	Max            int    `json:"max"`
	Severity       string `json:"severity"`
	Description    string `json:"description,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
}

// AlertRule fires on a single item/factor raw score, independent of
// the aggregate.
type AlertRule struct {
	Item      int        `json:"item"`
	Factor    int        `json:"factor,omitempty"`
	Op        Comparator `json:"op"`
	Threshold int        `json:"threshold"`
	Severity  string     `json:"severity"`
	Message   string     `json:"message,omitempty"`
}

// Template is the declarative definition of one published instrument
// version. Immutable once published; a new revision is a new
// (ID, Version) pair.
type Template struct {
	ID              string               `json:"id"`
	Version         int                  `json:"version"`
	Name            string               `json:"name"`
	Category        string               `json:"category,omitempty"`
	Method          ScoringMethod        `json:"method"`
	ScoreMin        int                  `json:"score_min"`
	ScoreMax        int                  `json:"score_max"`
	SharedOptions   []Option             `json:"shared_options,omitempty"`
	Items           []Item               `json:"items"`
	Subscales       []Subscale           `json:"subscales,omitempty"`
	Interpretations []InterpretationRule `json:"interpretations"`
	Alerts          []AlertRule          `json:"alerts,omitempty"`
}

// Record is a catalog row wrapping a template definition.
type Record struct {
	ID          string    `db:"id" json:"id"`
	Version     int       `db:"version" json:"version"`
	Name        string    `db:"name" json:"name"`
	Category    string    `db:"category" json:"category,omitempty"`
	Definition  *Template `db:"definition" json:"definition,omitempty"`
	Active      bool      `db:"active" json:"active"`
	PublishedAt time.Time `db:"published_at" json:"published_at"`
}
