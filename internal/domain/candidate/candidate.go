// Package candidate holds the candidate records hydrated from the external
// datastore and the scored form produced by the reranking engine.
package candidate

import (
	"sort"
	"strconv"
	"strings"
)

// Record is a hydrated candidate profile (immutable value object). The
// authoritative record lives in the external datastore; this is the slice of
// it the scoring stage needs.
type Record struct {
	id       string
	name     string
	headline string
	location string
	years    float64
	skills   []string
	summary  string
}

// Reconstruct creates a Record from storage fields without validation.
func Reconstruct(id, name, headline, location string, years float64, skills []string, summary string) Record {
	return Record{
		id: id, name: name, headline: headline, location: location,
		years: years, skills: skills, summary: summary,
	}
}

// ID returns the candidate identifier.
func (r Record) ID() string { return r.id }

// Name returns the candidate's display name.
func (r Record) Name() string { return r.name }

// Headline returns the current position headline.
func (r Record) Headline() string { return r.headline }

// Location returns the candidate's location.
func (r Record) Location() string { return r.location }

// Years returns total years of experience.
func (r Record) Years() float64 { return r.years }

// Skills returns a copy of the skill list.
func (r Record) Skills() []string {
	out := make([]string, len(r.skills))
	copy(out, r.skills)
	return out
}

// Summary returns the resume summary snippet.
func (r Record) Summary() string { return r.summary }

// Profile renders the record as the plain-text profile shown to the scorer.
func (r Record) Profile() string {
	var b strings.Builder
	b.WriteString("Name: " + r.name + "\n")
	b.WriteString("Headline: " + r.headline + "\n")
	b.WriteString("Location: " + r.location + "\n")
	if r.years > 0 {
		b.WriteString("Years of experience: ")
		b.WriteString(strconv.FormatFloat(r.years, 'f', -1, 64))
		b.WriteString("\n")
	}
	if len(r.skills) > 0 {
		b.WriteString("Skills: " + strings.Join(r.skills, ", ") + "\n")
	}
	if r.summary != "" {
		b.WriteString("Summary: " + r.summary + "\n")
	}
	return b.String()
}

// Scored is one reranked candidate: identifier, normalized score in [0, 1]
// rounded to two decimals, and the per-criterion explanation text.
type Scored struct {
	id          string
	score       float64
	explanation string
}

// NewScored creates a Scored candidate.
func NewScored(id string, score float64, explanation string) Scored {
	return Scored{id: id, score: score, explanation: explanation}
}

// ID returns the candidate identifier.
func (s Scored) ID() string { return s.id }

// Score returns the normalized score.
func (s Scored) Score() float64 { return s.score }

// Explanation returns the scoring explanation text.
func (s Scored) Explanation() string { return s.explanation }

// SortScored orders candidates by descending score, ties broken by ascending
// identifier. Total order, reproducible across runs.
func SortScored(items []Scored) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].score != items[j].score {
			return items[i].score > items[j].score
		}
		return items[i].id < items[j].id
	})
}
