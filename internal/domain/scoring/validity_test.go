package scoring

import (
	"testing"
	"time"

	"github.com/psyscale/psyscale/internal/domain/scale"
)

func TestValidityCleanResponse(t *testing.T) {
	tpl := scale.PHQ9()
	c := compileT(t, tpl)

	answers := []Answer{
		{Item: 1, Value: "1"}, {Item: 2, Value: "0"}, {Item: 3, Value: "2"},
		{Item: 4, Value: "1"}, {Item: 5, Value: "0"}, {Item: 6, Value: "1"},
		{Item: 7, Value: "2"}, {Item: 8, Value: "0"}, {Item: 9, Value: "0"},
	}
	report := analyzeValidity(DefaultConfig(), c, responseSet(tpl, answers))

	if report.StraightLine || report.ZigZag || report.Incomplete || report.FastResponses {
		t.Errorf("clean response flagged: %+v", report)
	}
	if report.AnsweredRatio != 1 {
		t.Errorf("answered ratio = %v, want 1", report.AnsweredRatio)
	}
	if report.Index != 1 {
		t.Errorf("index = %v, want 1", report.Index)
	}
}

func TestValidityStraightLine(t *testing.T) {
	tpl := scale.PHQ9()
	c := compileT(t, tpl)

	report := analyzeValidity(DefaultConfig(), c, responseSet(tpl, uniformAnswers(c, "2")))
	if !report.StraightLine {
		t.Error("nine identical answers not flagged as straight-lining")
	}
	if report.ZigZag {
		t.Error("straight line misread as zig-zag")
	}
	if report.Index != 0.6 {
		t.Errorf("index = %v, want 0.6", report.Index)
	}
}

func TestValidityStraightLineNeedsFullRun(t *testing.T) {
	tpl := scale.GAD7()
	c := compileT(t, tpl)

	// Seven identical answers stay under the default run of eight.
	report := analyzeValidity(DefaultConfig(), c, responseSet(tpl, uniformAnswers(c, "2")))
	if report.StraightLine {
		t.Error("run shorter than the threshold flagged")
	}
}

func TestValidityZigZag(t *testing.T) {
	tpl := scale.PHQ9()
	c := compileT(t, tpl)

	answers := make([]Answer, 9)
	for i := range answers {
		v := "0"
		if i%2 == 1 {
			v = "3"
		}
		answers[i] = Answer{Item: i + 1, Value: v}
	}
	report := analyzeValidity(DefaultConfig(), c, responseSet(tpl, answers))
	if !report.ZigZag {
		t.Error("alternating extremes not flagged")
	}
	if report.StraightLine {
		t.Error("zig-zag misread as straight line")
	}
}

func TestValidityZigZagRequiresExtremes(t *testing.T) {
	tpl := scale.PHQ9()
	c := compileT(t, tpl)

	// Alternating between interior options is ordinary variance.
	answers := make([]Answer, 9)
	for i := range answers {
		v := "1"
		if i%2 == 1 {
			v = "2"
		}
		answers[i] = Answer{Item: i + 1, Value: v}
	}
	report := analyzeValidity(DefaultConfig(), c, responseSet(tpl, answers))
	if report.ZigZag {
		t.Error("interior alternation flagged as zig-zag")
	}
}

func TestValidityIncompleteZeroesIndex(t *testing.T) {
	tpl := scale.PHQ9()
	c := compileT(t, tpl)

	// Four of nine missing: 44% unanswered, over the 25% threshold.
	report := analyzeValidity(DefaultConfig(), c, responseSet(tpl, uniformAnswers(c, "1")[:5]))
	if !report.Incomplete {
		t.Errorf("report = %+v, want incomplete", report)
	}
	if report.Index != 0 {
		t.Errorf("index = %v, want 0 for incomplete response", report.Index)
	}
}

func TestValidityMildGapsReduceIndex(t *testing.T) {
	tpl := scale.PHQ9()
	c := compileT(t, tpl)

	// One of nine missing stays under the incompleteness threshold but
	// still costs index.
	answers := []Answer{
		{Item: 1, Value: "1"}, {Item: 2, Value: "0"}, {Item: 3, Value: "2"},
		{Item: 4, Value: "1"}, {Item: 5, Value: "0"}, {Item: 6, Value: "1"},
		{Item: 7, Value: "2"}, {Item: 8, Value: "0"},
	}
	report := analyzeValidity(DefaultConfig(), c, responseSet(tpl, answers))
	if report.Incomplete {
		t.Errorf("report = %+v, want not incomplete", report)
	}
	if report.Index >= 1 {
		t.Errorf("index = %v, want below 1 with an unanswered item", report.Index)
	}
}

func TestValidityFastResponses(t *testing.T) {
	tpl := scale.PHQ9()
	c := compileT(t, tpl)

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	answers := make([]Answer, 9)
	for i := range answers {
		ts := base.Add(time.Duration(i) * 200 * time.Millisecond)
		v := "1"
		if i%2 == 1 {
			v = "0"
		}
		answers[i] = Answer{Item: i + 1, Value: v, AnsweredAt: &ts}
	}
	report := analyzeValidity(DefaultConfig(), c, responseSet(tpl, answers))
	if !report.FastResponses {
		t.Error("sub-second answer intervals not flagged")
	}
	if report.Index != 0.8 {
		t.Errorf("index = %v, want 0.8", report.Index)
	}
}

func TestValidityNoTimestampsSkipsTimingCheck(t *testing.T) {
	tpl := scale.PHQ9()
	c := compileT(t, tpl)

	answers := make([]Answer, 9)
	for i := range answers {
		v := "1"
		if i%2 == 1 {
			v = "0"
		}
		answers[i] = Answer{Item: i + 1, Value: v}
	}
	report := analyzeValidity(DefaultConfig(), c, responseSet(tpl, answers))
	if report.FastResponses {
		t.Error("timing flagged without timestamps")
	}
}
