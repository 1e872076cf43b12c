package model

// Record is one decoded CSV row.
type Record struct {
	Line         int      `json:"line"`         // 1-based physical line the row started on
	Name         string   `json:"name"`         // Name column, never empty
	InfluenceRaw string   `json:"influence"`    // Unparsed Influence column
	Ventures     []string `json:"ventures"`     // Ventures column, split on ';'
	Connections  []string `json:"connections"`  // Connections column, split on ';'
	Quotes       []string `json:"quotes"`       // Quotes column, split on '|'
	Image        string   `json:"image"`        // Image path or URL, as written
}

// Relationship is a typed link extracted from one Influence item.
type Relationship struct {
	Kind        string `json:"kind"`                  // e.g. "Friends with", "Hired"
	Target      string `json:"target"`                // Name of the other party
	Category    string `json:"category,omitempty"`    // personal, financial, political, professional
	Amount      string `json:"amount,omitempty"`      // e.g. "$5M" when the item mentions one
	Description string `json:"description,omitempty"` // The trimmed Influence item
}
