package influence

import (
	"testing"

	"github.com/ritzau/influence-graph/pkg/model"
)

type pair struct {
	kind   string
	target string
}

func pairs(rels []model.Relationship) []pair {
	out := make([]pair, 0, len(rels))
	for _, r := range rels {
		out = append(out, pair{r.Kind, r.Target})
	}
	return out
}

func equalPairs(a, b []pair) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []pair
	}{
		{
			name: "two known phrases",
			raw:  "Friends with Bob;Hired Charlie",
			want: []pair{{"Friends with", "Bob"}, {"Hired", "Charlie"}},
		},
		{
			name: "whitespace around items",
			raw:  "  Worked for  Acme Corp ;  ; Donated to Red Cross ",
			want: []pair{{"Worked for", "Acme Corp"}, {"Donated to", "Red Cross"}},
		},
		{
			name: "unknown phrase is dropped",
			raw:  "Married Dana;Founded Acme",
			want: []pair{{"Founded", "Acme"}},
		},
		{
			name: "empty remainder is dropped",
			raw:  "Hired;Appointed ",
			want: []pair{},
		},
		{
			name: "prefix match is case-sensitive",
			raw:  "friends with Bob;Recommended Eve",
			want: []pair{{"Recommended", "Eve"}},
		},
		{
			name: "all vocabulary entries",
			raw:  "Friends with A;Hired B;Appointed C;Worked for D;Donated to E;Founded F;Recommended G;Contributed to H",
			want: []pair{
				{"Friends with", "A"}, {"Hired", "B"}, {"Appointed", "C"}, {"Worked for", "D"},
				{"Donated to", "E"}, {"Founded", "F"}, {"Recommended", "G"}, {"Contributed to", "H"},
			},
		},
		{
			name: "empty field",
			raw:  "",
			want: []pair{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pairs(Extract(tt.raw))
			if !equalPairs(got, tt.want) {
				t.Errorf("Extract(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtractVerbatim(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []pair
	}{
		{
			name: "label with target",
			raw:  "Business partners with Elon Musk",
			want: []pair{{"Business partners", "Elon Musk"}},
		},
		{
			name: "splits on first with",
			raw:  "Friends with Bob with Benefits",
			want: []pair{{"Friends", "Bob with Benefits"}},
		},
		{
			name: "no with uses last word as target",
			raw:  "Invested heavily in Palantir",
			want: []pair{{"Invested heavily in", "Palantir"}},
		},
		{
			name: "single word is dropped",
			raw:  "Mentor;Advised Thiel",
			want: []pair{{"Advised", "Thiel"}},
		},
		{
			name: "empty target after with is dropped",
			raw:  "Friends with ",
			want: []pair{},
		},
		{
			name: "trailing with among other items",
			raw:  "Partnered with;Worked with Musk",
			want: []pair{{"Worked", "Musk"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pairs(ExtractVerbatim(tt.raw))
			if !equalPairs(got, tt.want) {
				t.Errorf("ExtractVerbatim(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCategorize(t *testing.T) {
	tests := map[string]Category{
		"Friends with Bob":       CategoryPersonal,
		"Donated to Red Cross":   CategoryFinancial,
		"Appointed Carol":        CategoryPolitical,
		"Recommended Dave":       CategoryPolitical,
		"Hired Eve":              CategoryProfessional,
		"Contributed to Project": CategoryProfessional,
	}
	for item, want := range tests {
		if got := Categorize(item); got != want {
			t.Errorf("Categorize(%q) = %s, want %s", item, got, want)
		}
	}
}

func TestAmountAndDescription(t *testing.T) {
	rels := Extract("Donated to Tech Corp $5M")
	if len(rels) != 1 {
		t.Fatalf("Expected 1 relationship, got %d", len(rels))
	}
	r := rels[0]
	if r.Amount != "$5M" {
		t.Errorf("Expected amount $5M, got %q", r.Amount)
	}
	if r.Category != string(CategoryFinancial) {
		t.Errorf("Expected financial category, got %q", r.Category)
	}
	if r.Description != "Donated to Tech Corp $5M" {
		t.Errorf("Unexpected description %q", r.Description)
	}
	if Amount("Hired Bob") != "" {
		t.Error("Expected no amount")
	}
}

func TestParseScheme(t *testing.T) {
	if s, err := ParseScheme(""); err != nil || s != SchemeVocabulary {
		t.Errorf("ParseScheme(\"\") = %v, %v", s, err)
	}
	if s, err := ParseScheme("verbatim"); err != nil || s != SchemeVerbatim {
		t.Errorf("ParseScheme(verbatim) = %v, %v", s, err)
	}
	if _, err := ParseScheme("regex"); err == nil {
		t.Error("Expected error for unknown scheme")
	}
	if got := SchemeVerbatim.Extract("Partners with Bob"); len(got) != 1 || got[0].Kind != "Partners" {
		t.Errorf("Scheme.Extract dispatched wrongly: %v", got)
	}
}
