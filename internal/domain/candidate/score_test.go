package candidate

import "testing"

func TestLabelPoints(t *testing.T) {
	tests := []struct {
		label Label
		want  int
	}{
		{LabelSatisfied, 2},
		{LabelAmbiguous, 1},
		{LabelUnsatisfied, 0},
		{Label("partially"), 0}, // unknown counts as unsatisfied
	}
	for _, tt := range tests {
		if got := tt.label.Points(); got != tt.want {
			t.Errorf("Points(%q) = %d, want %d", tt.label, got, tt.want)
		}
	}
}

func TestLabelValid(t *testing.T) {
	for _, l := range []Label{LabelSatisfied, LabelAmbiguous, LabelUnsatisfied} {
		if !l.Valid() {
			t.Errorf("%q must be valid", l)
		}
	}
	if Label("maybe").Valid() {
		t.Error("unknown label must be invalid")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		verdicts []Verdict
		count    int
		want     float64
	}{
		{
			"all satisfied",
			[]Verdict{{Label: LabelSatisfied}, {Label: LabelSatisfied}, {Label: LabelSatisfied}},
			3, 1.00,
		},
		{
			"all unsatisfied",
			[]Verdict{{Label: LabelUnsatisfied}, {Label: LabelUnsatisfied}, {Label: LabelUnsatisfied}},
			3, 0.00,
		},
		{
			"mixed rounds to two decimals",
			[]Verdict{{Label: LabelSatisfied}, {Label: LabelSatisfied}, {Label: LabelAmbiguous}},
			3, 0.83,
		},
		{
			"single criterion ambiguous",
			[]Verdict{{Label: LabelAmbiguous}},
			1, 0.50,
		},
		{
			"unknown label scores zero",
			[]Verdict{{Label: Label("partially")}, {Label: LabelSatisfied}},
			2, 0.50,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.verdicts, tt.count); got != tt.want {
				t.Errorf("Normalize = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeZeroCriteria(t *testing.T) {
	if got := Normalize(nil, 0); got != 1.0 {
		t.Errorf("Normalize(nil, 0) = %v, want 1.0", got)
	}
}
