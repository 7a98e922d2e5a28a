package scale

import "fmt"

// BuiltinTemplates returns the instrument definitions shipped with the
// server. Each compiles cleanly; the seed command publishes them
// through the normal catalog path so they get the same integrity
// checks as any other template.
func BuiltinTemplates() []*Template {
	return []*Template{
		GAD7(), PHQ9(), BDI21(), DTS(),
	}
}

func frequencyOptions() []Option {
	return []Option{
		{Value: "0", Label: "Not at all", Score: 0, Order: 0},
		{Value: "1", Label: "Several days", Score: 1, Order: 1},
		{Value: "2", Label: "More than half the days", Score: 2, Order: 2},
		{Value: "3", Label: "Nearly every day", Score: 3, Order: 3},
	}
}

// GAD7 is the 7-item generalized anxiety scale: one shared option set,
// plain sum, four severity bands.
func GAD7() *Template {
	prompts := []string{
		"Feeling nervous, anxious, or on edge",
		"Not being able to stop or control worrying",
		"Worrying too much about different things",
		"Trouble relaxing",
		"Being so restless that it is hard to sit still",
		"Becoming easily annoyed or irritable",
		"Feeling afraid, as if something awful might happen",
	}
	items := make([]Item, len(prompts))
	for i, p := range prompts {
		items[i] = Item{Number: i + 1, Prompt: p}
	}
	return &Template{
		ID:            "gad-7",
		Version:       1,
		Name:          "Generalized Anxiety Disorder 7-item",
		Category:      "anxiety",
		Method:        MethodSum,
		ScoreMin:      0,
		ScoreMax:      21,
		SharedOptions: frequencyOptions(),
		Items:         items,
		Interpretations: []InterpretationRule{
			{Target: TargetTotal, Min: 0, Max: 4, Severity: "Minimal",
				Description: "Minimal anxiety symptoms."},
			{Target: TargetTotal, Min: 5, Max: 9, Severity: "Mild",
				Description: "Mild anxiety symptoms.", Recommendation: "Monitor; repeat at follow-up."},
			{Target: TargetTotal, Min: 10, Max: 14, Severity: "Moderate",
				Description: "Moderate anxiety symptoms.", Recommendation: "Consider further evaluation."},
			{Target: TargetTotal, Min: 15, Max: 21, Severity: "Severe",
				Description: "Severe anxiety symptoms.", Recommendation: "Active treatment is warranted."},
		},
	}
}

// PHQ9 is the 9-item depression scale. Item 9 (suicidal ideation)
// carries an alert rule that fires at any non-zero answer regardless of
// the total score.
func PHQ9() *Template {
	prompts := []string{
		"Little interest or pleasure in doing things",
		"Feeling down, depressed, or hopeless",
		"Trouble falling or staying asleep, or sleeping too much",
		"Feeling tired or having little energy",
		"Poor appetite or overeating",
		"Feeling bad about yourself",
		"Trouble concentrating on things",
		"Moving or speaking slowly, or being fidgety or restless",
		"Thoughts that you would be better off dead or of hurting yourself",
	}
	items := make([]Item, len(prompts))
	for i, p := range prompts {
		items[i] = Item{Number: i + 1, Prompt: p}
	}
	return &Template{
		ID:            "phq-9",
		Version:       1,
		Name:          "Patient Health Questionnaire 9-item",
		Category:      "depression",
		Method:        MethodSum,
		ScoreMin:      0,
		ScoreMax:      27,
		SharedOptions: frequencyOptions(),
		Items:         items,
		Interpretations: []InterpretationRule{
			{Target: TargetTotal, Min: 0, Max: 4, Severity: "Minimal"},
			{Target: TargetTotal, Min: 5, Max: 9, Severity: "Mild"},
			{Target: TargetTotal, Min: 10, Max: 14, Severity: "Moderate"},
			{Target: TargetTotal, Min: 15, Max: 19, Severity: "Moderately severe"},
			{Target: TargetTotal, Min: 20, Max: 27, Severity: "Severe"},
		},
		Alerts: []AlertRule{
			{Item: 9, Op: OpGTE, Threshold: 1, Severity: "critical",
				Message: "Suicidal ideation endorsed; assess risk immediately."},
		},
	}
}

func bdiItem(number int, prompt string, labels ...string) Item {
	opts := make([]Option, len(labels))
	for i, l := range labels {
		opts[i] = Option{Value: fmt.Sprintf("%d", i), Label: l, Score: i, Order: i}
	}
	return Item{Number: number, Prompt: prompt, Options: opts}
}

// BDI21 is the 21-item depression inventory. Every item owns its
// option list; item 16 has eight non-linearly scored options and item 9
// (suicidal thoughts) tags its upper options with risk levels so the
// alert evaluator fires on the option tag alone.
func BDI21() *Template {
	items := []Item{
		bdiItem(1, "Sadness", "I do not feel sad", "I feel sad", "I am sad all the time", "I am so sad I can't stand it"),
		bdiItem(2, "Pessimism", "I am not discouraged about my future", "I feel discouraged", "I do not expect things to work out", "I feel my future is hopeless"),
		bdiItem(3, "Past failure", "I do not feel like a failure", "I have failed more than I should have", "I see many failures behind me", "I feel I am a total failure"),
		bdiItem(4, "Loss of pleasure", "I get as much pleasure as ever", "I do not enjoy things as much", "I get very little pleasure", "I cannot get any pleasure"),
		bdiItem(5, "Guilty feelings", "I do not feel particularly guilty", "I feel guilty over things I have done", "I feel quite guilty most of the time", "I feel guilty all of the time"),
		bdiItem(6, "Punishment feelings", "I do not feel I am being punished", "I feel I may be punished", "I expect to be punished", "I feel I am being punished"),
		bdiItem(7, "Self-dislike", "I feel the same about myself as ever", "I have lost confidence in myself", "I am disappointed in myself", "I dislike myself"),
		bdiItem(8, "Self-criticalness", "I do not criticize myself more than usual", "I am more critical of myself", "I criticize myself for all my faults", "I blame myself for everything bad"),
		{
			Number: 9,
			Prompt: "Suicidal thoughts or wishes",
			Options: []Option{
				{Value: "0", Label: "I do not have any thoughts of killing myself", Score: 0, Order: 0},
				{Value: "1", Label: "I have thoughts of killing myself, but I would not carry them out", Score: 1, Order: 1},
				{Value: "2", Label: "I would like to kill myself", Score: 2, Order: 2, RiskLevel: "elevated"},
				{Value: "3", Label: "I have a plan to kill myself", Score: 2, Order: 3, RiskLevel: "critical"},
				{Value: "4", Label: "I would kill myself if I had the chance", Score: 3, Order: 4, RiskLevel: "critical"},
				{Value: "5", Label: "I intend to kill myself at the first opportunity", Score: 3, Order: 5, RiskLevel: "critical"},
			},
		},
		bdiItem(10, "Crying", "I do not cry any more than I used to", "I cry more than I used to", "I cry over every little thing", "I feel like crying but I can't"),
		bdiItem(11, "Agitation", "I am no more restless than usual", "I feel more restless than usual", "I am so restless it is hard to stay still", "I am so restless I have to keep moving"),
		bdiItem(12, "Loss of interest", "I have not lost interest in people or activities", "I am less interested than before", "I have lost most of my interest", "It is hard to get interested in anything"),
		bdiItem(13, "Indecisiveness", "I make decisions as well as ever", "I find it more difficult to decide", "I have much greater difficulty deciding", "I have trouble making any decisions"),
		bdiItem(14, "Worthlessness", "I do not feel I am worthless", "I do not consider myself as worthwhile as before", "I feel more worthless compared to others", "I feel utterly worthless"),
		bdiItem(15, "Loss of energy", "I have as much energy as ever", "I have less energy than I used to", "I do not have enough energy to do very much", "I do not have enough energy to do anything"),
		{
			// Bidirectional sleep item: increased and decreased sleep
			// score the same severity, so the option values do not map
			// monotonically to scores.
			Number: 16,
			Prompt: "Changes in sleeping pattern",
			Options: []Option{
				{Value: "0", Label: "I have not experienced any change in my sleeping pattern", Score: 0, Order: 0},
				{Value: "1a", Label: "I sleep somewhat more than usual", Score: 1, Order: 1},
				{Value: "1b", Label: "I sleep somewhat less than usual", Score: 1, Order: 2},
				{Value: "2a", Label: "I sleep a lot more than usual", Score: 2, Order: 3},
				{Value: "2b", Label: "I sleep a lot less than usual", Score: 2, Order: 4},
				{Value: "3a", Label: "I sleep most of the day", Score: 3, Order: 5},
				{Value: "3b", Label: "I wake up 1-2 hours early and can't get back to sleep", Score: 3, Order: 6},
				{Value: "3c", Label: "I sleep in fragments of an hour or less", Score: 3, Order: 7},
			},
		},
		bdiItem(17, "Irritability", "I am no more irritable than usual", "I am more irritable than usual", "I am much more irritable than usual", "I am irritable all the time"),
		bdiItem(18, "Changes in appetite", "I have not experienced any change in my appetite", "My appetite is somewhat changed", "My appetite is much changed", "I have no appetite at all, or crave food all the time"),
		bdiItem(19, "Concentration difficulty", "I can concentrate as well as ever", "I can't concentrate as well as usual", "It is hard to keep my mind on anything", "I find I can't concentrate on anything"),
		bdiItem(20, "Tiredness or fatigue", "I am no more tired than usual", "I get tired more easily than usual", "I am too tired to do many things I used to do", "I am too tired to do most things"),
		bdiItem(21, "Loss of interest in sex", "I have not noticed any recent change", "I am less interested in sex than I used to be", "I am much less interested in sex now", "I have lost interest in sex completely"),
	}
	return &Template{
		ID:       "bdi-21",
		Version:  1,
		Name:     "Beck Depression Inventory",
		Category: "depression",
		Method:   MethodSum,
		ScoreMin: 0,
		ScoreMax: 63,
		Items:    items,
		Interpretations: []InterpretationRule{
			{Target: TargetTotal, Min: 0, Max: 9, Severity: "Minimal"},
			{Target: TargetTotal, Min: 10, Max: 18, Severity: "Mild"},
			{Target: TargetTotal, Min: 19, Max: 29, Severity: "Moderate"},
			{Target: TargetTotal, Min: 30, Max: 63, Severity: "Severe"},
		},
		Alerts: []AlertRule{
			{Item: 9, Op: OpGTE, Threshold: 2, Severity: "critical",
				Message: "High suicidality score; assess risk immediately."},
		},
	}
}

// DTS is the 17-item Davidson Trauma Scale. Every item yields two
// independently scored answers (frequency and severity); both feed the
// item's cluster subscale and the total.
func DTS() *Template {
	freq := []Option{
		{Value: "0", Label: "Not at all", Score: 0, Order: 0},
		{Value: "1", Label: "Once only", Score: 1, Order: 1},
		{Value: "2", Label: "2-3 times", Score: 2, Order: 2},
		{Value: "3", Label: "4-6 times", Score: 3, Order: 3},
		{Value: "4", Label: "Every day", Score: 4, Order: 4},
	}
	sev := []Option{
		{Value: "0", Label: "Not at all distressing", Score: 0, Order: 0},
		{Value: "1", Label: "Minimally distressing", Score: 1, Order: 1},
		{Value: "2", Label: "Moderately distressing", Score: 2, Order: 2},
		{Value: "3", Label: "Markedly distressing", Score: 3, Order: 3},
		{Value: "4", Label: "Extremely distressing", Score: 4, Order: 4},
	}
	prompts := []string{
		"Have you had painful images, memories, or thoughts of the event?",
		"Have you had distressing dreams of the event?",
		"Have you felt as though the event was recurring?",
		"Have you been upset by something which reminded you of the event?",
		"Have you been avoiding thoughts or feelings about the event?",
		"Have you been avoiding activities that remind you of the event?",
		"Have you been unable to recall important parts of the event?",
		"Have you had difficulty enjoying things?",
		"Have you felt distant or cut off from other people?",
		"Have you been unable to have sad or loving feelings?",
		"Have you found it hard to imagine a long life span?",
		"Have you had trouble falling or staying asleep?",
		"Have you been irritable or had outbursts of anger?",
		"Have you had difficulty concentrating?",
		"Have you felt on edge or been easily distracted?",
		"Have you been jumpy or easily startled?",
		"Have you been physically upset by reminders of the event?",
	}
	cluster := func(n int) string {
		switch {
		case n <= 4 || n == 17:
			return "intrusion"
		case n <= 11:
			return "avoidance"
		default:
			return "hyperarousal"
		}
	}
	items := make([]Item, len(prompts))
	for i, p := range prompts {
		n := i + 1
		items[i] = Item{
			Number: n,
			Prompt: p,
			Factors: []Factor{
				{Label: "frequency", Options: freq, Subscale: cluster(n)},
				{Label: "severity", Options: sev, Subscale: cluster(n)},
			},
		}
	}
	return &Template{
		ID:       "dts",
		Version:  1,
		Name:     "Davidson Trauma Scale",
		Category: "trauma",
		Method:   MethodSum,
		ScoreMin: 0,
		ScoreMax: 136,
		Items:    items,
		Subscales: []Subscale{
			{Code: "intrusion", Name: "Intrusion", Items: []int{1, 2, 3, 4, 17}, Min: 0, Max: 40},
			{Code: "avoidance", Name: "Avoidance/Numbing", Items: []int{5, 6, 7, 8, 9, 10, 11}, Min: 0, Max: 56},
			{Code: "hyperarousal", Name: "Hyperarousal", Items: []int{12, 13, 14, 15, 16}, Min: 0, Max: 40},
		},
		Interpretations: []InterpretationRule{
			{Target: TargetTotal, Min: 0, Max: 39, Severity: "Mild"},
			{Target: TargetTotal, Min: 40, Max: 84, Severity: "Moderate"},
			{Target: TargetTotal, Min: 85, Max: 136, Severity: "Severe"},
			{Target: "intrusion", Min: 0, Max: 19, Severity: "Low"},
			{Target: "intrusion", Min: 20, Max: 40, Severity: "High"},
			{Target: "avoidance", Min: 0, Max: 27, Severity: "Low"},
			{Target: "avoidance", Min: 28, Max: 56, Severity: "High"},
			{Target: "hyperarousal", Min: 0, Max: 19, Severity: "Low"},
			{Target: "hyperarousal", Min: 20, Max: 40, Severity: "High"},
		},
	}
}
