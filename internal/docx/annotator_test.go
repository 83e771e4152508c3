package docx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyxdang/doc-tracker-backend/internal/types"
)

func classifiedChange(location string, impact types.ImpactLevel, original, modified string) types.ClassifiedChange {
	return types.ClassifiedChange{
		Change: types.Change{
			ChangeID:   1,
			ChangeType: types.ChangeModified,
			BlockType:  types.BlockParagraph,
			Location:   location,
			Original:   original,
			Modified:   modified,
			WordChanges: []types.WordChange{
				{ChangeType: "replaced", OldText: original, NewText: modified},
			},
		},
		Impact: impact,
	}
}

// annotatedXML runs Annotate and returns the rewritten document part as a string.
func annotatedXML(t *testing.T, doc []byte, changes []types.ClassifiedChange) string {
	t.Helper()

	out, err := Annotate(doc, changes)
	require.NoError(t, err)

	docXML, err := readDocumentPart(out)
	require.NoError(t, err)
	return string(docXML)
}

func TestAnnotate_ParagraphShadedAndMarked(t *testing.T) {
	doc := buildDocx(t, para("Điều 1: Phạm vi áp dụng")+para("Lãi suất 5% mỗi năm"))
	changes := []types.ClassifiedChange{
		classifiedChange("Block 2", types.ImpactCritical, "Lãi suất 3% mỗi năm", "Lãi suất 5% mỗi năm"),
	}

	xmlOut := annotatedXML(t, doc, changes)

	assert.Contains(t, xmlOut, `w:fill="FF6666"`)
	assert.Contains(t, xmlOut, "NGHIÊM TRỌNG")
	assert.Contains(t, xmlOut, "Gốc: Lãi suất 3% mỗi năm")
	assert.Contains(t, xmlOut, "Mới: Lãi suất 5% mỗi năm")

	// The untouched first paragraph stays unshaded
	first := xmlOut[:strings.Index(xmlOut, "Phạm vi")]
	assert.NotContains(t, first, "w:fill")
}

func TestAnnotate_ImpactColors(t *testing.T) {
	tests := []struct {
		impact types.ImpactLevel
		color  string
		label  string
	}{
		{impact: types.ImpactCritical, color: "FF6666", label: "NGHIÊM TRỌNG"},
		{impact: types.ImpactMedium, color: "FFFF66", label: "TRUNG BÌNH"},
		{impact: types.ImpactLow, color: "C8C8C8", label: "THẤP"},
	}

	for _, tt := range tests {
		t.Run(string(tt.impact), func(t *testing.T) {
			doc := buildDocx(t, para("some changed text"))
			changes := []types.ClassifiedChange{
				classifiedChange("Block 1", tt.impact, "some original text", "some changed text"),
			}

			xmlOut := annotatedXML(t, doc, changes)

			assert.Contains(t, xmlOut, `w:fill="`+tt.color+`"`)
			assert.Contains(t, xmlOut, tt.label)
		})
	}
}

func TestAnnotate_UnknownImpactFallsBack(t *testing.T) {
	doc := buildDocx(t, para("text"))
	changes := []types.ClassifiedChange{
		classifiedChange("Block 1", types.ImpactLevel("unknown"), "old", "text"),
	}

	xmlOut := annotatedXML(t, doc, changes)

	assert.Contains(t, xmlOut, `w:fill="FFFF00"`)
	assert.Contains(t, xmlOut, "UNKNOWN")
}

func TestAnnotate_OutOfRangeLocationSkipped(t *testing.T) {
	doc := buildDocx(t, para("only paragraph"))
	changes := []types.ClassifiedChange{
		classifiedChange("Block 9", types.ImpactCritical, "a", "b"),
		{Change: types.Change{ChangeID: 2, Location: "somewhere"}, Impact: types.ImpactLow},
	}

	xmlOut := annotatedXML(t, doc, changes)

	assert.NotContains(t, xmlOut, "w:fill")
	assert.NotContains(t, xmlOut, "Gốc:")
}

func TestAnnotate_EmptyParagraphsDoNotShiftIndexing(t *testing.T) {
	// The reader skips empty paragraphs, so Block 2 is the second
	// non-empty paragraph even with an empty one in between.
	doc := buildDocx(t, para("first")+`<w:p/>`+para("second"))
	changes := []types.ClassifiedChange{
		classifiedChange("Block 2", types.ImpactMedium, "old second", "second"),
	}

	xmlOut := annotatedXML(t, doc, changes)

	shadedIdx := strings.Index(xmlOut, `w:fill="FFFF66"`)
	secondIdx := strings.Index(xmlOut, "second")
	require.Greater(t, shadedIdx, 0)
	assert.Less(t, shadedIdx, secondIdx)

	firstPart := xmlOut[:strings.Index(xmlOut, "first")]
	assert.NotContains(t, firstPart, "w:fill")
}

func TestAnnotate_TableMatchedCellShaded(t *testing.T) {
	doc := buildDocx(t, table(
		[2]string{"Sản phẩm", "Lãi suất"},
		[2]string{"Vay mua nhà", "5%"},
	))
	change := classifiedChange("Block 1", types.ImpactCritical, "3%", "5%")
	change.BlockType = types.BlockTable

	xmlOut := annotatedXML(t, doc, []types.ClassifiedChange{change})

	// Only the cell holding the changed value gets shaded
	require.Equal(t, 1, strings.Count(xmlOut, `w:fill="FF6666"`))
	shadedCell := xmlOut[strings.Index(xmlOut, `w:fill="FF6666"`):]
	shadedCell = shadedCell[:strings.Index(shadedCell, "</w:tc>")]
	assert.Contains(t, shadedCell, ">5%<")

	// Marker lands in the first cell
	assert.Contains(t, xmlOut, "NGHIÊM TRỌNG")
}

func TestAnnotate_TableNoMatchShadesAllCells(t *testing.T) {
	doc := buildDocx(t, table(
		[2]string{"a", "b"},
		[2]string{"c", "d"},
	))
	change := classifiedChange("Block 1", types.ImpactMedium, "completely different", "nothing in common")
	change.BlockType = types.BlockTable

	xmlOut := annotatedXML(t, doc, []types.ClassifiedChange{change})

	assert.Equal(t, 4, strings.Count(xmlOut, `w:fill="FFFF66"`))
}

func TestAnnotate_OutputStillParses(t *testing.T) {
	doc := buildDocx(t, para("unchanged intro")+para("modified content here")+table([2]string{"x", "y"}))
	changes := []types.ClassifiedChange{
		classifiedChange("Block 2", types.ImpactCritical, "original content here", "modified content here"),
	}

	out, err := Annotate(doc, changes)
	require.NoError(t, err)

	blocks, err := Parse(out)
	require.NoError(t, err)

	require.Len(t, blocks, 3)
	assert.Equal(t, "unchanged intro", blocks[0].Content)
	// The marker run is appended to the annotated paragraph's text
	assert.Contains(t, blocks[1].Content, "modified content here")
	assert.Contains(t, blocks[1].Content, "NGHIÊM TRỌNG")
}

func TestAnnotate_MarkerEscapesXML(t *testing.T) {
	doc := buildDocx(t, para("b"))
	changes := []types.ClassifiedChange{
		classifiedChange("Block 1", types.ImpactLow, "phí < 5% & lệ phí", "b"),
	}

	xmlOut := annotatedXML(t, doc, changes)

	assert.Contains(t, xmlOut, "phí &lt; 5% &amp; lệ phí")
}

func TestAnnotate_LongMarkerTruncated(t *testing.T) {
	long := strings.Repeat("nội dung rất dài ", 20)
	doc := buildDocx(t, para("b"))
	changes := []types.ClassifiedChange{
		classifiedChange("Block 1", types.ImpactLow, long, "b"),
	}

	xmlOut := annotatedXML(t, doc, changes)

	assert.Contains(t, xmlOut, "...")
	assert.NotContains(t, xmlOut, "Gốc: "+long)
}

func TestAnnotate_PreservesOtherParts(t *testing.T) {
	doc := buildDocx(t, para("text"))
	changes := []types.ClassifiedChange{
		classifiedChange("Block 1", types.ImpactLow, "old", "text"),
	}

	out, err := Annotate(doc, changes)
	require.NoError(t, err)

	// The content-types part survives the rewrite untouched
	assert.NotEqual(t, doc, out)
	blocks, err := Parse(out)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
}

func TestExtractBlockIndex(t *testing.T) {
	assert.Equal(t, 0, extractBlockIndex("Block 1"))
	assert.Equal(t, 15, extractBlockIndex("Block 16"))
	assert.Equal(t, -1, extractBlockIndex("somewhere else"))
	assert.Equal(t, -1, extractBlockIndex(""))
}
