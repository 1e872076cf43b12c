package influence

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ritzau/influence-graph/pkg/model"
)

// Kind is a recognized relationship phrase from the Influence column.
type Kind string

const (
	FriendsWith   Kind = "Friends with"
	Hired         Kind = "Hired"
	Appointed     Kind = "Appointed"
	WorkedFor     Kind = "Worked for"
	DonatedTo     Kind = "Donated to"
	Founded       Kind = "Founded"
	Recommended   Kind = "Recommended"
	ContributedTo Kind = "Contributed to"
)

// Vocabulary lists the recognized phrases in match order. The first phrase an
// item starts with wins.
var Vocabulary = []Kind{
	FriendsWith,
	Hired,
	Appointed,
	WorkedFor,
	DonatedTo,
	Founded,
	Recommended,
	ContributedTo,
}

// Category groups relationships for filtering and coloring.
type Category string

const (
	CategoryPersonal     Category = "personal"
	CategoryFinancial    Category = "financial"
	CategoryPolitical    Category = "political"
	CategoryProfessional Category = "professional"
)

// Scheme selects how Influence items are turned into relationships.
type Scheme string

const (
	// SchemeVocabulary matches items against Vocabulary.
	SchemeVocabulary Scheme = "vocabulary"
	// SchemeVerbatim splits on " with " and keeps the label as written.
	SchemeVerbatim Scheme = "verbatim"
)

// ParseScheme validates a scheme name. The empty string selects SchemeVocabulary.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(s) {
	case "", SchemeVocabulary:
		return SchemeVocabulary, nil
	case SchemeVerbatim:
		return SchemeVerbatim, nil
	}
	return "", fmt.Errorf("unknown extraction scheme %q (want %q or %q)", s, SchemeVocabulary, SchemeVerbatim)
}

// Extract runs the extractor selected by scheme.
func (s Scheme) Extract(raw string) []model.Relationship {
	if s == SchemeVerbatim {
		return ExtractVerbatim(raw)
	}
	return Extract(raw)
}

// ItemSeparator separates items in the Influence column.
const ItemSeparator = ";"

var amountPattern = regexp.MustCompile(`\$[\d.]+[BM]+`)

// Extract parses an Influence field with the fixed vocabulary.
// Items with an unknown phrase or no target are dropped.
func Extract(raw string) []model.Relationship {
	var rels []model.Relationship
	for _, item := range Items(raw) {
		for _, kind := range Vocabulary {
			if !strings.HasPrefix(item, string(kind)) {
				continue
			}
			if target := strings.TrimSpace(item[len(kind):]); target != "" {
				rels = append(rels, newRelationship(string(kind), target, item))
			}
			break
		}
	}
	return rels
}

// ExtractVerbatim parses an Influence field as free-form "Label with Target"
// items. Without " with ", the last word is the target and the rest is the
// label. Items that leave no label or no target are dropped, including a
// trailing " with" whose target was trimmed away.
func ExtractVerbatim(raw string) []model.Relationship {
	var rels []model.Relationship
	for _, item := range Items(raw) {
		if strings.HasSuffix(item, " with") {
			continue
		}
		var label, target string
		if idx := strings.Index(item, " with "); idx >= 0 {
			label = strings.TrimSpace(item[:idx])
			target = strings.TrimSpace(item[idx+len(" with "):])
		} else {
			words := strings.Fields(item)
			if len(words) < 2 {
				continue
			}
			label = strings.Join(words[:len(words)-1], " ")
			target = words[len(words)-1]
		}
		if label == "" || target == "" {
			continue
		}
		rels = append(rels, newRelationship(label, target, item))
	}
	return rels
}

// Items splits an Influence field into trimmed, non-empty items.
func Items(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ItemSeparator) {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Categorize assigns a category from the wording of a relationship item.
func Categorize(item string) Category {
	lower := strings.ToLower(item)
	switch {
	case strings.Contains(lower, "friends with"):
		return CategoryPersonal
	case strings.Contains(lower, "donated"):
		return CategoryFinancial
	case strings.Contains(lower, "appointed"), strings.Contains(lower, "recommended"):
		return CategoryPolitical
	default:
		return CategoryProfessional
	}
}

// Amount returns the first dollar amount such as "$5M" in item, or "".
func Amount(item string) string {
	return amountPattern.FindString(item)
}

func newRelationship(kind, target, item string) model.Relationship {
	return model.Relationship{
		Kind:        kind,
		Target:      target,
		Category:    string(Categorize(item)),
		Amount:      Amount(item),
		Description: item,
	}
}
