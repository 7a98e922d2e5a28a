package scale

import (
	"strings"
	"testing"
)

func minimalTemplate() *Template {
	return &Template{
		ID:            "test-scale",
		Version:       1,
		Name:          "Test Scale",
		Method:        MethodSum,
		ScoreMin:      0,
		ScoreMax:      6,
		SharedOptions: []Option{{Value: "0", Score: 0, Order: 0}, {Value: "1", Score: 1, Order: 1}, {Value: "2", Score: 2, Order: 2}},
		Items: []Item{
			{Number: 1, Prompt: "First"},
			{Number: 2, Prompt: "Second"},
			{Number: 3, Prompt: "Third"},
		},
		Interpretations: []InterpretationRule{
			{Target: TargetTotal, Min: 0, Max: 2, Severity: "Low"},
			{Target: TargetTotal, Min: 3, Max: 6, Severity: "High"},
		},
	}
}

func expectProblem(t *testing.T, tpl *Template, fragment string) {
	t.Helper()
	_, err := Compile(tpl)
	if err == nil {
		t.Fatalf("expected integrity error containing %q", fragment)
	}
	ie, ok := err.(*IntegrityError)
	if !ok {
		t.Fatalf("expected *IntegrityError, got %T: %v", err, err)
	}
	for _, p := range ie.Problems {
		if strings.Contains(p, fragment) {
			return
		}
	}
	t.Errorf("problems %v do not mention %q", ie.Problems, fragment)
}

func TestCompileMinimalTemplate(t *testing.T) {
	c, err := Compile(minimalTemplate())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got := c.ItemNumbers(); len(got) != 3 {
		t.Errorf("got %d items, want 3", len(got))
	}
	spec, ok := c.Factor(1, 0)
	if !ok {
		t.Fatal("item 1 factor 0 not resolved")
	}
	if o, ok := spec.Option("2"); !ok || o.Score != 2 {
		t.Errorf("option lookup = %+v ok=%v, want score 2", o, ok)
	}
	low, high := spec.Extremes()
	if low != "0" || high != "2" {
		t.Errorf("extremes = %q,%q", low, high)
	}
}

func TestCompileRejectsBandGap(t *testing.T) {
	tpl := minimalTemplate()
	tpl.Interpretations = []InterpretationRule{
		{Target: TargetTotal, Min: 0, Max: 2, Severity: "Low"},
		{Target: TargetTotal, Min: 4, Max: 6, Severity: "High"},
	}
	expectProblem(t, tpl, "gap")
}

func TestCompileRejectsBandOverlap(t *testing.T) {
	tpl := minimalTemplate()
	tpl.Interpretations = []InterpretationRule{
		{Target: TargetTotal, Min: 0, Max: 3, Severity: "Low"},
		{Target: TargetTotal, Min: 3, Max: 6, Severity: "High"},
	}
	expectProblem(t, tpl, "overlap")
}

func TestCompileRejectsUncoveredDomainEdges(t *testing.T) {
	tpl := minimalTemplate()
	tpl.Interpretations = []InterpretationRule{
		{Target: TargetTotal, Min: 1, Max: 6, Severity: "High"},
	}
	expectProblem(t, tpl, "start at 1")

	tpl = minimalTemplate()
	tpl.Interpretations = []InterpretationRule{
		{Target: TargetTotal, Min: 0, Max: 5, Severity: "Low"},
	}
	expectProblem(t, tpl, "end at 5")
}

func TestCompileRequiresTotalBands(t *testing.T) {
	tpl := minimalTemplate()
	tpl.Interpretations = nil
	expectProblem(t, tpl, "no interpretation rules")
}

func TestCompileRejectsDuplicateItems(t *testing.T) {
	tpl := minimalTemplate()
	tpl.Items[2].Number = 1
	expectProblem(t, tpl, "duplicate item number 1")
}

func TestCompileRejectsDuplicateOptionValues(t *testing.T) {
	tpl := minimalTemplate()
	tpl.Items[0].Options = []Option{
		{Value: "a", Score: 0, Order: 0},
		{Value: "a", Score: 1, Order: 1},
	}
	expectProblem(t, tpl, `duplicate option value "a"`)
}

func TestCompileRejectsUndeclaredSubscaleRef(t *testing.T) {
	tpl := minimalTemplate()
	tpl.Items[0].Subscale = "ghost"
	expectProblem(t, tpl, `undeclared subscale "ghost"`)
}

func TestCompileRejectsSubscaleMembershipMismatch(t *testing.T) {
	// Item 3 feeds subscale "a" per its own ref, but "a" does not list
	// it; the extra item would silently inflate the subscale sum past
	// its declared range.
	tpl := minimalTemplate()
	tpl.Subscales = []Subscale{{Code: "a", Name: "A", Items: []int{1, 2}, Min: 0, Max: 4}}
	for i := range tpl.Items {
		tpl.Items[i].Subscale = "a"
	}
	expectProblem(t, tpl, `item 3 references subscale "a" but is missing from its item list`)
}

func TestCompileRejectsUnreferencedSubscaleItem(t *testing.T) {
	tpl := minimalTemplate()
	tpl.Subscales = []Subscale{{Code: "a", Name: "A", Items: []int{1, 2}, Min: 0, Max: 4}}
	tpl.Items[0].Subscale = "a"
	expectProblem(t, tpl, `subscale "a" lists item 2 but the item does not reference it`)
}

func TestCompileAcceptsAgreeingSubscaleDeclarations(t *testing.T) {
	tpl := minimalTemplate()
	tpl.Subscales = []Subscale{{Code: "a", Name: "A", Items: []int{1, 2}, Min: 0, Max: 4}}
	tpl.Items[0].Subscale = "a"
	tpl.Items[1].Subscale = "a"
	if _, err := Compile(tpl); err != nil {
		t.Fatalf("Compile: %v", err)
	}
}

func TestCompileRejectsItemInTwoSubscales(t *testing.T) {
	tpl := minimalTemplate()
	tpl.Subscales = []Subscale{
		{Code: "a", Name: "A", Items: []int{1, 2}, Min: 0, Max: 4},
		{Code: "b", Name: "B", Items: []int{2, 3}, Min: 0, Max: 4},
	}
	expectProblem(t, tpl, "belongs to both subscales")
}

func TestCompileRejectsSelfReferencingCondition(t *testing.T) {
	tpl := minimalTemplate()
	tpl.Items[1].ShowIf = &Condition{Item: 2, Op: OpEQ, Value: "1"}
	expectProblem(t, tpl, "references itself")
}

func TestCompileRejectsNonNumericThreshold(t *testing.T) {
	tpl := minimalTemplate()
	tpl.Items[1].ShowIf = &Condition{Item: 1, Op: OpGTE, Value: "high"}
	expectProblem(t, tpl, "not numeric")
}

func TestCompileRejectsAlertOnUnknownItem(t *testing.T) {
	tpl := minimalTemplate()
	tpl.Alerts = []AlertRule{{Item: 99, Op: OpGTE, Threshold: 1, Severity: "critical"}}
	expectProblem(t, tpl, "unknown item 99")
}

func TestCompileCollectsAllProblems(t *testing.T) {
	tpl := minimalTemplate()
	tpl.Version = 0
	tpl.Method = "bogus"
	tpl.Items[0].Subscale = "ghost"
	_, err := Compile(tpl)
	ie, ok := err.(*IntegrityError)
	if !ok {
		t.Fatalf("expected *IntegrityError, got %v", err)
	}
	if len(ie.Problems) < 3 {
		t.Errorf("got %d problems, want all three reported at once: %v", len(ie.Problems), ie.Problems)
	}
}

func TestVisibleEvaluatesConditions(t *testing.T) {
	tpl := minimalTemplate()
	tpl.Items[1].ShowIf = &Condition{Item: 1, Op: OpGTE, Value: "1"}
	tpl.Items[2].ShowIf = &Condition{Item: 1, Op: OpEQ, Value: "2"}
	c, err := Compile(tpl)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	answered := func(value string) AnswerLookup {
		return func(item int) (Option, bool) {
			if item != 1 {
				return Option{}, false
			}
			spec, _ := c.Factor(1, 0)
			return spec.Option(value)
		}
	}

	if !c.Visible(1, answered("0")) {
		t.Error("unconditional item should always be visible")
	}
	if c.Visible(2, answered("0")) {
		t.Error("item 2 visible though governing score is below threshold")
	}
	if !c.Visible(2, answered("1")) {
		t.Error("item 2 hidden though governing score meets threshold")
	}
	if c.Visible(3, answered("1")) {
		t.Error("item 3 visible though value does not match eq condition")
	}
	if !c.Visible(3, answered("2")) {
		t.Error("item 3 hidden though value matches eq condition")
	}

	unanswered := func(int) (Option, bool) { return Option{}, false }
	if c.Visible(2, unanswered) {
		t.Error("conditional item visible though governing item unanswered")
	}
}

func TestMultiFactorItemResolution(t *testing.T) {
	tpl := minimalTemplate()
	tpl.Subscales = []Subscale{{Code: "sev", Name: "Severity", Items: []int{1}, Min: 0, Max: 2}}
	tpl.Interpretations = append(tpl.Interpretations,
		InterpretationRule{Target: "sev", Min: 0, Max: 2, Severity: "Any"})
	tpl.Items[0].Factors = []Factor{
		{Label: "frequency"},
		{Label: "severity", Subscale: "sev", Weight: 2, OmitFromTotal: true},
	}
	c, err := Compile(tpl)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if got := c.FactorCount(1); got != 2 {
		t.Fatalf("FactorCount = %d, want 2", got)
	}
	freq, _ := c.Factor(1, 0)
	if freq.Weight != 1 || freq.OmitFromTotal {
		t.Errorf("factor 0 = %+v, want default weight counting toward total", freq)
	}
	sev, _ := c.Factor(1, 1)
	if sev.Subscale != "sev" || sev.Weight != 2 || !sev.OmitFromTotal {
		t.Errorf("factor 1 = %+v, want subscale sev, weight 2, omitted from total", sev)
	}
	// Both factors fall back to the shared option set.
	if o, ok := sev.Option("2"); !ok || o.Score != 2 {
		t.Errorf("shared option fallback broken: %+v ok=%v", o, ok)
	}
}
