package candidate

import "math"

// Label is a per-criterion satisfaction judgment.
type Label string

const (
	LabelSatisfied   Label = "satisfied"
	LabelAmbiguous   Label = "ambiguous"
	LabelUnsatisfied Label = "unsatisfied"
)

// Points maps a label to its score contribution. Unknown labels count as
// unsatisfied, matching the degrade-to-zero policy for unparseable output.
func (l Label) Points() int {
	switch l {
	case LabelSatisfied:
		return 2
	case LabelAmbiguous:
		return 1
	default:
		return 0
	}
}

// Valid reports whether the label is one of the three known values.
func (l Label) Valid() bool {
	return l == LabelSatisfied || l == LabelAmbiguous || l == LabelUnsatisfied
}

// Verdict is one criterion's judgment for one candidate: the label plus the
// explanatory remainder produced alongside it.
type Verdict struct {
	Label  Label
	Remark string
}

const maxRawScore = 20

// Normalize converts per-criterion verdicts into a normalized score in [0, 1]
// rounded to two decimals. The raw sum is clamped to [0, maxRawScore].
// criteriaCount of zero normalizes to 1.0 (nothing to fail).
// len(verdicts) must equal criteriaCount; callers enforce that before scoring.
func Normalize(verdicts []Verdict, criteriaCount int) float64 {
	if criteriaCount == 0 {
		return 1.0
	}

	raw := 0
	for _, v := range verdicts {
		raw += v.Label.Points()
	}
	if raw > maxRawScore {
		raw = maxRawScore
	}
	if raw < 0 {
		raw = 0
	}

	return math.Round(float64(raw)/float64(2*criteriaCount)*100) / 100
}
