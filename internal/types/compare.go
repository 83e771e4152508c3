package types

import (
	"github.com/go-playground/validator/v10"
)

// DocumentTypes lists the document types the classifier prompt understands.
var DocumentTypes = []string{"general", "contract", "policy", "report", "research_paper"}

// CompareRequest carries the form fields of a compare call.
type CompareRequest struct {
	DocumentType string `json:"document_type" validate:"required,oneof=general contract policy report research_paper"`
}

// Validate validates the CompareRequest using the validator.
func (r *CompareRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// ChangeSummary counts changes by impact level.
type ChangeSummary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// TimingBreakdown reports processing time per pipeline stage, in milliseconds.
type TimingBreakdown struct {
	TotalMS          int64 `json:"total_ms"`
	ParsingMS        int64 `json:"parsing_ms"`
	DiffingMS        int64 `json:"diffing_ms"`
	ClassificationMS int64 `json:"classification_ms"`
	ServiceMS        int64 `json:"llm_ms"` // subset of classification time spent on the reasoning service
	AnnotationMS     int64 `json:"annotation_ms"`
}

// CompareResponse is the full response of the compare endpoint.
type CompareResponse struct {
	Success          bool               `json:"success"`
	Summary          ChangeSummary      `json:"summary"`
	Changes          []ClassifiedChange `json:"changes"`
	ProcessingTimeMS int64              `json:"processing_time_ms"`
	Timing           *TimingBreakdown   `json:"timing,omitempty"`
	Metadata         map[string]any     `json:"metadata"`
	AnnotatedDocID   string             `json:"annotated_doc_id,omitempty"`
}

// Summarize counts the classified changes by impact level.
func Summarize(changes []ClassifiedChange) ChangeSummary {
	summary := ChangeSummary{Total: len(changes)}
	for _, c := range changes {
		switch c.Impact {
		case ImpactCritical:
			summary.Critical++
		case ImpactMedium:
			summary.Medium++
		case ImpactLow:
			summary.Low++
		}
	}
	return summary
}
