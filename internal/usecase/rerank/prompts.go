package rerank

import (
	"fmt"
	"strings"

	"github.com/talentdex/talentdex/internal/domain/candidate"
	"github.com/talentdex/talentdex/internal/domain/criteria"
)

const scorerSystemPrompt = `You judge whether a candidate profile satisfies each evaluation criterion.

Respond with a single JSON array and nothing else, one element per criterion,
in the order the criteria are given:
[{"label": "satisfied" | "ambiguous" | "unsatisfied", "remark": "one short sentence of evidence"}]

Rules:
- "satisfied": the profile clearly demonstrates the criterion.
- "ambiguous": the profile hints at it but does not demonstrate it.
- "unsatisfied": the profile does not support it.
- Judge only from the profile. Never assume unstated experience.`

func scorerUserPrompt(rawQuery string, crit criteria.Set, rec candidate.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search request:\n%s\n\nCriteria:\n", rawQuery)
	for i, item := range crit.Items() {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	b.WriteString("\nCandidate profile:\n")
	b.WriteString(rec.Profile())
	return b.String()
}
