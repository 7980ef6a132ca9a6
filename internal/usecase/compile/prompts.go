package compile

import (
	"fmt"
	"strings"

	"github.com/talentdex/talentdex/internal/domain/criteria"
)

const extractorSystemPrompt = `You turn a recruiter's free-text search request into evaluation criteria.

Respond with a single JSON object and nothing else:
{
  "paraphrase": "one-sentence restatement of what the recruiter wants",
  "rationale": "one sentence on how you chose the criteria",
  "criteria": ["..."]
}

Rules:
- 1 to 4 criteria, each at most 30 characters.
- Each criterion names one independently checkable requirement.
- Do not merge two requirements into one criterion.
- Do not invent requirements the request does not state.`

const compilerSystemPrompt = `You compile a recruiter's search request into a structured condition expression.

Respond with a single JSON object and nothing else:
{
  "groups": [
    {
      "intent": "the single user requirement this group matches",
      "alternatives": [{"field": "...", "term": "..."}]
    }
  ]
}

Rules:
- Allowed fields: position, company, location, skills, education, summary, profile.
- One group per user requirement. Never put two different requirements in one group.
- Within a group, list synonym and bilingual variants of the same requirement
  as separate alternatives. More variants means better recall.
- Terms are plain substrings. No wildcards, no operators.`

const broadSystemPrompt = `You turn a recruiter's search request into weighted full-text term sets for a recall-first search.

Respond with a single JSON object and nothing else:
{
  "term_sets": [{"terms": ["..."], "weight": 1.0}]
}

Rules:
- One term set per concept in the request, synonyms and bilingual variants together.
- Weight 2.0 for must-have concepts, 1.0 for nice-to-have.
- Any single term set alone may qualify a row. Favor recall over precision.`

func extractorUserPrompt(rawQuery string) string {
	return "Search request:\n" + rawQuery
}

func compilerUserPrompt(rawQuery string, crit criteria.Set, repairContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search request:\n%s\n", rawQuery)
	if !crit.IsZero() {
		b.WriteString("\nRequirements to cover:\n")
		for _, item := range crit.Items() {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	if repairContext != "" {
		fmt.Fprintf(&b, "\nPrevious attempt feedback:\n%s\n", repairContext)
	}
	return b.String()
}

func broadUserPrompt(rawQuery string, crit criteria.Set) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search request:\n%s\n", rawQuery)
	if !crit.IsZero() {
		b.WriteString("\nConcepts to cover:\n")
		for _, item := range crit.Items() {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	return b.String()
}
