package models

// Enrichment is the structured summary produced by the external analyzer.
type Enrichment struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
	Source  string   `json:"source,omitempty"`
	Link    string   `json:"link,omitempty"`
}

// Item is the full body of a captured scrap.
type Item struct {
	// ID is assigned at capture time and never changes.
	ID string `json:"id"`

	// CreatedAt and UpdatedAt are milliseconds since the epoch.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`

	// RawContent is the captured text.
	RawContent string `json:"raw_info"`
	// Note is free text the user attaches to the scrap.
	Note string `json:"user_note"`

	// Enrichment is nil until the first analysis.
	Enrichment *Enrichment `json:"ai_data,omitempty"`
}
