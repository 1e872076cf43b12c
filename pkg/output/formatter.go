package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/ritzau/influence-graph/pkg/analysis"
	"github.com/ritzau/influence-graph/pkg/network"
)

// KindCount is one bar of the relationship histogram.
type KindCount struct {
	Kind  string
	Count int
}

// Histogram counts edges per relationship type, most frequent first.
func Histogram(snap *analysis.Snapshot) []KindCount {
	counts := make(map[string]int)
	for _, e := range snap.Graph.Edges {
		counts[e.Type]++
	}

	out := make([]KindCount, 0, len(counts))
	for kind, n := range counts {
		out = append(out, KindCount{Kind: kind, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// PrintReport prints a nicely formatted summary of a parsed network with
// colors. top limits the ranking section; 0 hides it.
func PrintReport(w io.Writer, snap *analysis.Snapshot, top int) {
	// Color definitions
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	// Header
	bold.Fprintln(w, "Influence Network Report")
	bold.Fprintln(w, "========================")
	fmt.Fprintf(w, "Source: %s\n", snap.Source)
	fmt.Fprintf(w, "Rows: %d\n", snap.Stats.Rows)
	green.Fprintf(w, "Nodes: %d", snap.Stats.Nodes)
	if snap.Stats.Placeholders > 0 {
		fmt.Fprintf(w, " (%d placeholder)", snap.Stats.Placeholders)
	}
	fmt.Fprintln(w)
	green.Fprintf(w, "Edges: %d\n", snap.Stats.Edges)
	fmt.Fprintln(w)

	if hist := Histogram(snap); len(hist) > 0 {
		bold.Fprintln(w, "RELATIONSHIPS:")
		width := 0
		for _, kc := range hist {
			width = max(width, len(kc.Kind))
		}
		for _, kc := range hist {
			fmt.Fprintf(w, "  %-*s %4d ", width, kc.Kind, kc.Count)
			cyan.Fprintln(w, strings.Repeat("#", min(kc.Count, 40)))
		}
		fmt.Fprintln(w)
	}

	if len(snap.Stats.Skipped) > 0 || snap.Stats.UnparsedItems > 0 {
		yellow.Fprintln(w, "SKIPPED:")
		for _, row := range snap.Stats.Skipped {
			yellow.Fprintf(w, "  line %d", row.Line)
			fmt.Fprintf(w, ": %s\n", describe(row.Reason))
		}
		if snap.Stats.UnparsedItems > 0 {
			yellow.Fprintf(w, "  %d influence item(s)", snap.Stats.UnparsedItems)
			fmt.Fprintln(w, ": no recognized relationship")
		}
		if snap.Stats.RejectedTarget > 0 {
			yellow.Fprintf(w, "  %d target(s)", snap.Stats.RejectedTarget)
			fmt.Fprintln(w, ": no row of their own")
		}
		fmt.Fprintln(w)
	}

	if top > 0 && len(snap.Ranking) > 0 {
		bold.Fprintln(w, "MOST INFLUENTIAL:")
		for i, r := range snap.Ranking[:min(top, len(snap.Ranking))] {
			name := r.Name
			if name == "" {
				name = r.ID
			}
			fmt.Fprintf(w, "  %2d. %s ", i+1, name)
			cyan.Fprintf(w, "%.3f\n", r.Score)
		}
		fmt.Fprintln(w)
	}

	if len(snap.Circles) > 0 {
		red.Fprintf(w, "INFLUENCE CIRCLES: %d\n", len(snap.Circles))
		for _, c := range snap.Circles {
			fmt.Fprintf(w, "  %s\n", strings.Join(c.Members, " -> "))
		}
	} else {
		green.Fprintln(w, "✓ No influence circles")
	}
}

func describe(reason network.SkipReason) string {
	if reason == network.SkipMissingName {
		return "row has no name"
	}
	return string(reason)
}
