package graph

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ritzau/influence-graph/pkg/influence"
)

// EdgeTargetPolicy decides which relationship targets may become edges.
type EdgeTargetPolicy string

const (
	// PrimaryOnly keeps edges whose target has its own row.
	PrimaryOnly EdgeTargetPolicy = "primary-only"
	// AnyNonEmpty keeps every edge and adds placeholder nodes for unknown targets.
	AnyNonEmpty EdgeTargetPolicy = "any-nonempty"
)

// IDScheme decides how node ids are derived from names.
type IDScheme string

const (
	// RawName uses the name exactly as written.
	RawName IDScheme = "raw-name"
	// SanitizedSlug lowercases the name and replaces everything outside [a-z0-9] with '-'.
	SanitizedSlug IDScheme = "sanitized-slug"
)

// Options configures Build. The zero value is not valid; start from DefaultOptions.
type Options struct {
	EdgeTargetPolicy           EdgeTargetPolicy
	DeriveEdgesFromVentures    bool
	DeriveEdgesFromConnections bool
	IDScheme                   IDScheme
	Extraction                 influence.Scheme

	// MatchLastNames resolves a target that is not a primary name through the
	// last word of a primary name, when exactly one primary name has it.
	MatchLastNames bool
}

// DefaultOptions returns the canonical settings: primary-only edges derived
// from the Influence column alone, raw-name ids and the fixed vocabulary.
func DefaultOptions() Options {
	return Options{
		EdgeTargetPolicy: PrimaryOnly,
		IDScheme:         RawName,
		Extraction:       influence.SchemeVocabulary,
	}
}

// Validate reports unknown enum values.
func (o Options) Validate() error {
	switch o.EdgeTargetPolicy {
	case PrimaryOnly, AnyNonEmpty:
	default:
		return fmt.Errorf("unknown edge target policy %q (want %q or %q)", o.EdgeTargetPolicy, PrimaryOnly, AnyNonEmpty)
	}
	switch o.IDScheme {
	case RawName, SanitizedSlug:
	default:
		return fmt.Errorf("unknown id scheme %q (want %q or %q)", o.IDScheme, RawName, SanitizedSlug)
	}
	if _, err := influence.ParseScheme(string(o.Extraction)); err != nil {
		return err
	}
	return nil
}

// ID derives a node id from a name under the scheme.
func (s IDScheme) ID(name string) string {
	if s != SanitizedSlug {
		return name
	}
	return Slug(name)
}

// Slug lowercases name and replaces every rune outside [a-z0-9] with '-'.
func Slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('-')
		}
	}
	return b.String()
}

// lastName returns the final word of name, or "" for single-word names.
func lastName(name string) string {
	words := strings.FieldsFunc(name, unicode.IsSpace)
	if len(words) < 2 {
		return ""
	}
	return words[len(words)-1]
}
