package predicate

import (
	"errors"
	"strings"
	"testing"

	"github.com/talentdex/talentdex/internal/domain"
)

func mustAlt(t *testing.T, field, term string) Alternative {
	t.Helper()
	a, err := NewAlternative(field, term)
	if err != nil {
		t.Fatalf("NewAlternative(%q, %q): %v", field, term, err)
	}
	return a
}

func mustGroup(t *testing.T, intent string, alts ...Alternative) Group {
	t.Helper()
	g, err := NewGroup(intent, alts)
	if err != nil {
		t.Fatalf("NewGroup(%q): %v", intent, err)
	}
	return g
}

func mustPredicate(t *testing.T, groups ...Group) Predicate {
	t.Helper()
	p, err := New(groups)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func samplePredicate(t *testing.T) Predicate {
	t.Helper()
	return mustPredicate(t,
		mustGroup(t, "golang engineer",
			mustAlt(t, "position", "golang"),
			mustAlt(t, "skills", "go"),
		),
		mustGroup(t, "located in tokyo",
			mustAlt(t, "location", "tokyo"),
			mustAlt(t, "location", "東京"),
		),
	)
}

func TestNewAlternativeValidation(t *testing.T) {
	if _, err := NewAlternative(" ", "go"); !errors.Is(err, domain.ErrInvalidPredicate) {
		t.Errorf("empty field: err = %v", err)
	}
	if _, err := NewAlternative("skills", " "); !errors.Is(err, domain.ErrInvalidPredicate) {
		t.Errorf("empty term: err = %v", err)
	}
}

func TestNewGroupValidation(t *testing.T) {
	alt := mustAlt(t, "skills", "go")
	if _, err := NewGroup("", []Alternative{alt}); !errors.Is(err, domain.ErrInvalidPredicate) {
		t.Errorf("empty intent: err = %v", err)
	}
	if _, err := NewGroup("golang", nil); !errors.Is(err, domain.ErrInvalidPredicate) {
		t.Errorf("no alternatives: err = %v", err)
	}
}

func TestNewPredicateValidation(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, domain.ErrInvalidPredicate) {
		t.Errorf("no groups: err = %v", err)
	}
}

func TestRender(t *testing.T) {
	p := samplePredicate(t)

	got := p.Render()
	want := "(c.position ILIKE '%golang%' OR c.skills ILIKE '%go%') AND " +
		"(c.location ILIKE '%tokyo%' OR c.location ILIKE '%東京%')"
	if got != want {
		t.Errorf("Render:\n got %s\nwant %s", got, want)
	}
}

func TestRenderEscapesQuotes(t *testing.T) {
	p := mustPredicate(t, mustGroup(t, "company", mustAlt(t, "company", "O'Reilly")))

	got := p.Render()
	if !strings.Contains(got, "O''Reilly") {
		t.Errorf("single quote not escaped: %s", got)
	}
}

func TestMatches(t *testing.T) {
	p := samplePredicate(t)

	tests := []struct {
		name   string
		fields map[string]string
		want   bool
	}{
		{
			"both groups satisfied",
			map[string]string{"position": "Senior Golang Engineer", "location": "Tokyo, Japan"},
			true,
		},
		{
			"case-insensitive containment",
			map[string]string{"skills": "GO, Kubernetes", "location": "TOKYO"},
			true,
		},
		{
			"bilingual alternative",
			map[string]string{"position": "golangエンジニア", "location": "東京都"},
			true,
		},
		{
			"one group unsatisfied",
			map[string]string{"position": "Golang Engineer", "location": "Osaka"},
			false,
		},
		{
			"missing fields never match",
			map[string]string{"summary": "golang tokyo"},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Matches(tt.fields); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGroupsReturnsCopy(t *testing.T) {
	p := samplePredicate(t)
	p.Groups()[0] = Group{}
	if p.Groups()[0].Intent() != "golang engineer" {
		t.Error("Groups must return a copy")
	}
}
