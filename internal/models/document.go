package models

// DocumentVersion is the format version written into every snapshot.
const DocumentVersion = 1

// Document is the snapshot of the whole local state: the unit that is
// uploaded, downloaded, exported and imported.
type Document struct {
	Version   int      `json:"version"`
	Timestamp int64    `json:"timestamp"`
	Settings  Settings `json:"settings"`
	Index     Index    `json:"index"`
	Articles  []Item   `json:"articles"`

	// HasIndex and HasSettings record whether a decoded document carried
	// those sections; they are not serialized.
	HasIndex    bool `json:"-"`
	HasSettings bool `json:"-"`
}
