// Package pipeline provides the high-level orchestration for one compare
// request: parse both document sides, detect changes, classify them, and
// produce the annotated document copy.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/huyxdang/doc-tracker-backend/internal/classify"
	"github.com/huyxdang/doc-tracker-backend/internal/diff"
	"github.com/huyxdang/doc-tracker-backend/internal/docx"
	"github.com/huyxdang/doc-tracker-backend/internal/llm"
	"github.com/huyxdang/doc-tracker-backend/internal/types"
)

// ProgressEvent represents a progress update during a compare run
type ProgressEvent struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// ProgressCallback is called as compare stages complete
type ProgressCallback func(event ProgressEvent)

// CompareOptions holds the inputs for one compare run
type CompareOptions struct {
	BytesV1      []byte
	BytesV2      []byte
	FilenameV1   string
	FilenameV2   string
	DocumentType string
	Client       llm.Client // nil when no reasoning service is configured
	OnProgress   ProgressCallback
}

// CompareResult is the outcome of one compare run. AnnotatedBytes is nil when
// there were no changes or annotation failed.
type CompareResult struct {
	Summary        types.ChangeSummary
	Changes        []types.ClassifiedChange
	Timing         types.TimingBreakdown
	Metadata       map[string]any
	AnnotatedBytes []byte
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *CompareOptions, stage, message string) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{Stage: stage, Message: message})
	}
}

// Compare runs the full compare pipeline over two documents. The returned
// change list is always complete and ordered by change id, even when the
// reasoning service is unavailable.
func Compare(ctx context.Context, opts CompareOptions) (*CompareResult, error) {
	if opts.DocumentType == "" {
		opts.DocumentType = "general"
	}
	req := types.CompareRequest{DocumentType: opts.DocumentType}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid document type %q: %w", opts.DocumentType, err)
	}

	start := time.Now()

	// Parse both sides concurrently; they are independent
	emitProgress(&opts, "parsing", "Parsing documents")
	parseStart := time.Now()
	var blocksV1, blocksV2 []types.ContentBlock
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		blocksV1, err = docx.Parse(opts.BytesV1)
		if err != nil {
			return fmt.Errorf("failed to parse original document: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		blocksV2, err = docx.Parse(opts.BytesV2)
		if err != nil {
			return fmt.Errorf("failed to parse modified document: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	parsingMS := time.Since(parseStart).Milliseconds()

	emitProgress(&opts, "diffing", "Detecting changes")
	diffStart := time.Now()
	changes := diff.AlignBlocks(blocksV1, blocksV2)
	diffingMS := time.Since(diffStart).Milliseconds()

	emitProgress(&opts, "classification", fmt.Sprintf("Classifying %d changes", len(changes)))
	classifyStart := time.Now()
	reasoning := classify.NewReasoningClassifier(opts.Client)
	classifier := classify.NewHybridClassifier(reasoning)
	classification := classifier.Classify(ctx, changes, opts.DocumentType)
	classificationMS := time.Since(classifyStart).Milliseconds()

	emitProgress(&opts, "annotation", "Generating annotated document")
	annotateStart := time.Now()
	var annotated []byte
	if len(classification.Changes) > 0 {
		var err error
		annotated, err = docx.Annotate(opts.BytesV2, classification.Changes)
		if err != nil {
			// Annotation is best-effort; the compare result stands without it
			log.Printf("Warning: could not create annotated document: %v", err)
			annotated = nil
		}
	}
	annotationMS := time.Since(annotateStart).Milliseconds()

	return &CompareResult{
		Summary: types.Summarize(classification.Changes),
		Changes: classification.Changes,
		Timing: types.TimingBreakdown{
			TotalMS:          time.Since(start).Milliseconds(),
			ParsingMS:        parsingMS,
			DiffingMS:        diffingMS,
			ClassificationMS: classificationMS,
			ServiceMS:        classification.ServiceTimeMS,
			AnnotationMS:     annotationMS,
		},
		Metadata: map[string]any{
			"file_v1":       opts.FilenameV1,
			"file_v2":       opts.FilenameV2,
			"blocks_v1":     len(blocksV1),
			"blocks_v2":     len(blocksV2),
			"document_type": opts.DocumentType,
			"llm_available": reasoning.Available(),
			"llm_calls":     classification.ServiceCalls,
		},
		AnnotatedBytes: annotated,
	}, nil
}
