package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyxdang/doc-tracker-backend/internal/docx"
	"github.com/huyxdang/doc-tracker-backend/internal/types"
)

// buildTestDocx assembles a minimal in-memory docx with one paragraph per text.
func buildTestDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body bytes.Buffer
	for _, p := range paragraphs {
		fmt.Fprintf(&body, `<w:p><w:r><w:t>%s</w:t></w:r></w:p>`, p)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = fmt.Fprintf(w,
		`<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>%s</w:body></w:document>`,
		body.String())
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestCompare_EndToEnd(t *testing.T) {
	v1 := buildTestDocx(t,
		"Điều 1: Phạm vi áp dụng",
		"Lãi suất cho vay là 3% mỗi năm",
		"Điều 3: Hiệu lực thi hành",
	)
	v2 := buildTestDocx(t,
		"Điều 1: Phạm vi áp dụng",
		"Lãi suất cho vay là 5% mỗi năm",
		"Điều 3: Hiệu lực thi hành",
		"Điều 4: Điều khoản chuyển tiếp",
	)

	var stages []string
	result, err := Compare(context.Background(), CompareOptions{
		BytesV1:      v1,
		BytesV2:      v2,
		FilenameV1:   "v1.docx",
		FilenameV2:   "v2.docx",
		DocumentType: "contract",
		OnProgress: func(event ProgressEvent) {
			stages = append(stages, event.Stage)
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Summary.Total)
	require.Len(t, result.Changes, 2)

	// The percentage change is rule-classified critical; the added block
	// degrades to medium without a reasoning service.
	assert.Equal(t, types.ChangeModified, result.Changes[0].ChangeType)
	assert.Equal(t, types.ImpactCritical, result.Changes[0].Impact)
	assert.Equal(t, types.SourceRule, result.Changes[0].Source)
	assert.Equal(t, types.ChangeAdded, result.Changes[1].ChangeType)
	assert.Equal(t, types.ImpactMedium, result.Changes[1].Impact)
	assert.Equal(t, types.SourceReasoning, result.Changes[1].Source)

	assert.Equal(t, []string{"parsing", "diffing", "classification", "annotation"}, stages)

	assert.Equal(t, "v1.docx", result.Metadata["file_v1"])
	assert.Equal(t, 3, result.Metadata["blocks_v1"])
	assert.Equal(t, 4, result.Metadata["blocks_v2"])
	assert.Equal(t, false, result.Metadata["llm_available"])
	assert.Equal(t, 1, result.Metadata["llm_calls"])
	assert.Zero(t, result.Timing.ServiceMS)

	require.NotNil(t, result.AnnotatedBytes)
	blocks, err := docx.Parse(result.AnnotatedBytes)
	require.NoError(t, err)
	assert.Len(t, blocks, 4)
}

func TestCompare_IdenticalDocuments(t *testing.T) {
	doc := buildTestDocx(t, "giống hệt nhau")

	result, err := Compare(context.Background(), CompareOptions{
		BytesV1: doc,
		BytesV2: doc,
	})
	require.NoError(t, err)

	assert.Zero(t, result.Summary.Total)
	assert.Empty(t, result.Changes)
	assert.Nil(t, result.AnnotatedBytes)
	assert.Equal(t, "general", result.Metadata["document_type"])
}

func TestCompare_InvalidDocumentType(t *testing.T) {
	doc := buildTestDocx(t, "text")

	_, err := Compare(context.Background(), CompareOptions{
		BytesV1:      doc,
		BytesV2:      doc,
		DocumentType: "invoice",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid document type")
}

func TestCompare_CorruptOriginal(t *testing.T) {
	doc := buildTestDocx(t, "text")

	_, err := Compare(context.Background(), CompareOptions{
		BytesV1: []byte("junk"),
		BytesV2: doc,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "original document")
}

func TestCompare_CorruptModified(t *testing.T) {
	doc := buildTestDocx(t, "text")

	_, err := Compare(context.Background(), CompareOptions{
		BytesV1: doc,
		BytesV2: []byte("junk"),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "modified document")
}
