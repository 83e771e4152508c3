// Package types provides type definitions for structured data used throughout the document tracker system.
package types

// ContentBlock is a single unit of document content in body order.
type ContentBlock struct {
	Index     int       `json:"index"`      // 0-based position in the document body
	BlockType BlockType `json:"block_type"` // paragraph or table
	Content   string    `json:"content"`    // the actual text
}

// WordChange is a single contiguous word-level edit within a block.
// OldText is empty for additions; NewText is empty for deletions.
type WordChange struct {
	ChangeType string `json:"change_type"` // "added", "deleted", "replaced"
	OldText    string `json:"old_text"`
	NewText    string `json:"new_text"`
	Context    string `json:"context"` // surrounding words with an edit marker
}

// Change is a detected difference between two documents, before classification.
// Original is empty for added blocks; Modified is empty for deleted blocks;
// Similarity is set only for modified blocks.
type Change struct {
	ChangeID    int          `json:"change_id"` // 1-based, assigned in emission order
	ChangeType  ChangeType   `json:"change_type"`
	BlockType   BlockType    `json:"block_type"`
	Location    string       `json:"location"` // human-readable, e.g. "Block 16"
	Original    string       `json:"original,omitempty"`
	Modified    string       `json:"modified,omitempty"`
	Similarity  float64      `json:"similarity,omitempty"` // 0-1, modified blocks only
	DiffText    string       `json:"diff_text,omitempty"`
	WordChanges []WordChange `json:"word_changes,omitempty"`
}

// ClassifiedChange is a Change with its impact classification attached.
type ClassifiedChange struct {
	Change
	Impact       ImpactLevel `json:"impact"`
	Reasoning    string      `json:"reasoning"`
	RiskAnalysis string      `json:"risk_analysis"`
	Source       string      `json:"classification_source"` // SourceRule or SourceReasoning
}

// ClassificationResult holds the classified changes along with timing info
// for the external reasoning-service call.
type ClassificationResult struct {
	Changes       []ClassifiedChange `json:"changes"` // sorted by ChangeID ascending
	ServiceTimeMS int64              `json:"llm_time_ms"`
	ServiceCalls  int                `json:"llm_calls"`
}
