package scoring

import (
	"github.com/psyscale/psyscale/internal/domain/scale"
)

// Alert sources.
const (
	AlertSourceRule   = "rule"
	AlertSourceOption = "option"
)

// Alert is one fired risk signal. It carries the item, the observed
// raw score and the declared severity so callers can prioritize; the
// evaluator itself never ranks or drops alerts.
type Alert struct {
	Item     int    `json:"item"`
	Factor   int    `json:"factor"`
	Score    int    `json:"score"`
	Severity string `json:"severity"`
	Source   string `json:"source"`
	Message  string `json:"message,omitempty"`
}

// evaluateAlerts scans raw item scores against the template's alert
// rules and option-level risk tags. It runs on per-item scores only,
// never the aggregate, so a critical single-item answer surfaces even
// under a low total. All firing alerts are returned; there is no
// short-circuit on the first or most severe.
func evaluateAlerts(tpl *scale.Compiled, perFactor []FactorScore) []Alert {
	var alerts []Alert

	byKey := make(map[scale.FactorKey]FactorScore, len(perFactor))
	for _, fs := range perFactor {
		byKey[scale.FactorKey{Item: fs.Item, Factor: fs.Factor}] = fs
	}

	for _, rule := range tpl.Template.Alerts {
		fs, answered := byKey[scale.FactorKey{Item: rule.Item, Factor: rule.Factor}]
		if !answered {
			continue
		}
		if scale.CompareScore(fs.Score, rule.Op, rule.Threshold) {
			alerts = append(alerts, Alert{
				Item:     rule.Item,
				Factor:   rule.Factor,
				Score:    fs.Score,
				Severity: rule.Severity,
				Source:   AlertSourceRule,
				Message:  rule.Message,
			})
		}
	}

	for _, fs := range perFactor {
		spec, ok := tpl.Factor(fs.Item, fs.Factor)
		if !ok {
			continue
		}
		opt, ok := spec.Option(fs.Value)
		if !ok || opt.RiskLevel == "" {
			continue
		}
		alerts = append(alerts, Alert{
			Item:     fs.Item,
			Factor:   fs.Factor,
			Score:    fs.Score,
			Severity: opt.RiskLevel,
			Source:   AlertSourceOption,
		})
	}

	return alerts
}
