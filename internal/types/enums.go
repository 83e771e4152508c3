package types

// ChangeType represents the kind of change detected between two documents.
type ChangeType string

// Change type constants
const (
	// ChangeAdded means the block exists in v2 but not v1
	ChangeAdded ChangeType = "added"
	// ChangeDeleted means the block exists in v1 but not v2
	ChangeDeleted ChangeType = "deleted"
	// ChangeModified means the block exists in both but its content changed
	ChangeModified ChangeType = "modified"
)

// ImpactLevel represents the business impact severity of a change.
type ImpactLevel string

// Impact level constants, ordered from most to least severe
const (
	ImpactCritical ImpactLevel = "critical"
	ImpactMedium   ImpactLevel = "medium"
	ImpactLow      ImpactLevel = "low"
)

// BlockType represents the kind of content block in a document.
type BlockType string

// Block type constants
const (
	BlockParagraph BlockType = "paragraph"
	BlockTable     BlockType = "table"
)

// Classification source constants identify which layer produced a classification.
const (
	SourceRule      = "rule-based"
	SourceReasoning = "llm"
)
