package scoring

import (
	"fmt"

	"github.com/psyscale/psyscale/internal/domain/scale"
)

// Validate checks a response set's completeness and shape against a
// template before any scoring happens. Pure function: it returns the
// violation list and never mutates its inputs.
//
// Required items are the visible ones: an item hidden by its
// visibility condition is neither required nor counted, and the same
// evaluator decides both (see Compiled.Visible).
func Validate(tpl *scale.Compiled, rs *ResponseSet) []Violation {
	var violations []Violation

	t := tpl.Template
	if rs.TemplateID != t.ID || rs.TemplateVersion != t.Version {
		violations = append(violations, Violation{
			Code: ViolationTemplateMismatch,
			Message: fmt.Sprintf("response set targets %s v%d, template is %s v%d",
				rs.TemplateID, rs.TemplateVersion, t.ID, t.Version),
		})
		return violations
	}

	idx := indexAnswers(rs)
	lookup := idx.lookup(tpl)

	for _, a := range rs.Answers {
		item, ok := tpl.Item(a.Item)
		if !ok {
			violations = append(violations, Violation{
				Code: ViolationUnknownItem, Item: a.Item,
				Message: fmt.Sprintf("item %d is not part of the scale", a.Item),
			})
			continue
		}
		if a.Factor < 0 || a.Factor >= tpl.FactorCount(item.Number) {
			violations = append(violations, Violation{
				Code: ViolationFactorMismatch, Item: a.Item, Factor: a.Factor,
				Message: fmt.Sprintf("item %d expects %d factor(s), got factor index %d",
					a.Item, tpl.FactorCount(item.Number), a.Factor),
			})
			continue
		}
		spec, _ := tpl.Factor(a.Item, a.Factor)
		if _, ok := spec.Option(a.Value); !ok {
			violations = append(violations, Violation{
				Code: ViolationUnknownOption, Item: a.Item, Factor: a.Factor,
				Message: fmt.Sprintf("value %q is not an option of item %d", a.Value, a.Item),
			})
		}
	}

	for _, n := range tpl.ItemNumbers() {
		if !tpl.Visible(n, lookup) {
			continue
		}
		for f := 0; f < tpl.FactorCount(n); f++ {
			if _, answered := idx[scale.FactorKey{Item: n, Factor: f}]; !answered {
				violations = append(violations, Violation{
					Code: ViolationMissingItem, Item: n, Factor: f,
					Message: fmt.Sprintf("item %d factor %d has no answer", n, f),
				})
			}
		}
	}

	return violations
}
