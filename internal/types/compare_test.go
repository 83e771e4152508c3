package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareRequest_Validate(t *testing.T) {
	for _, docType := range DocumentTypes {
		t.Run(docType, func(t *testing.T) {
			req := CompareRequest{DocumentType: docType}
			assert.NoError(t, req.Validate())
		})
	}
}

func TestCompareRequest_Validate_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		docType string
	}{
		{name: "empty", docType: ""},
		{name: "unknown", docType: "invoice"},
		{name: "case sensitive", docType: "Contract"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := CompareRequest{DocumentType: tt.docType}
			assert.Error(t, req.Validate())
		})
	}
}

func TestSummarize(t *testing.T) {
	changes := []ClassifiedChange{
		{Impact: ImpactCritical},
		{Impact: ImpactCritical},
		{Impact: ImpactMedium},
		{Impact: ImpactLow},
	}

	summary := Summarize(changes)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Critical)
	assert.Equal(t, 1, summary.Medium)
	assert.Equal(t, 1, summary.Low)
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)

	assert.Zero(t, summary.Total)
	assert.Zero(t, summary.Critical)
}

func TestClassifiedChange_JSONShape(t *testing.T) {
	change := ClassifiedChange{
		Change: Change{
			ChangeID:   3,
			ChangeType: ChangeModified,
			BlockType:  BlockParagraph,
			Location:   "Block 3",
			Original:   "cũ",
			Modified:   "mới",
			Similarity: 0.72,
		},
		Impact:       ImpactCritical,
		Reasoning:    "Giá trị phần trăm thay đổi",
		RiskAnalysis: "Cần xác minh",
		Source:       SourceRule,
	}

	data, err := json.Marshal(change)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))

	// The embedded Change flattens into the same object
	assert.Equal(t, float64(3), m["change_id"])
	assert.Equal(t, "modified", m["change_type"])
	assert.Equal(t, "critical", m["impact"])
	assert.Equal(t, "rule-based", m["classification_source"])
	assert.NotContains(t, m, "Change")
}

func TestClassificationResult_JSONFieldNames(t *testing.T) {
	result := ClassificationResult{ServiceTimeMS: 1200, ServiceCalls: 1}

	data, err := json.Marshal(result)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"llm_time_ms":1200`)
	assert.Contains(t, string(data), `"llm_calls":1`)
}
