package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/huyxdang/doc-tracker-backend/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	summary := types.ChangeSummary{
		Total:    5,
		Critical: 2,
		Medium:   2,
		Low:      1,
	}

	p.PrintSummary(summary)
	output := buf.String()

	assert.Contains(t, output, "CHANGE SUMMARY")
	assert.Contains(t, output, "Total changes: 5")
	assert.Contains(t, output, "2 critical")
	assert.Contains(t, output, "1 low")
}

func TestPrintSummary_NoChanges(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSummary(types.ChangeSummary{})
	output := buf.String()

	assert.Contains(t, output, "NO CHANGES FOUND")
}

func TestPrintChanges(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	changes := []types.ClassifiedChange{
		{
			Change: types.Change{
				ChangeID:   1,
				ChangeType: types.ChangeModified,
				Location:   "Block 3",
			},
			Impact:    types.ImpactCritical,
			Reasoning: "Thay đổi lãi suất",
		},
		{
			Change: types.Change{
				ChangeID:   2,
				ChangeType: types.ChangeAdded,
				Location:   "Block 5",
			},
			Impact:    types.ImpactLow,
			Reasoning: "Sửa lỗi chính tả",
		},
	}

	p.PrintChanges(changes)
	output := buf.String()

	assert.Contains(t, output, "CLASSIFIED CHANGES")
	assert.Contains(t, output, "Block 3")
	assert.Contains(t, output, "modified")
	assert.Contains(t, output, "Thay đổi lãi suất")
}

func TestPrintChanges_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintChanges(nil)

	assert.Empty(t, buf.String())
}

func TestPrintChanges_Overflow(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	changes := make([]types.ClassifiedChange, 8)
	for i := range changes {
		changes[i] = types.ClassifiedChange{
			Change: types.Change{ChangeID: i + 1, Location: "Block 1"},
			Impact: types.ImpactMedium,
		}
	}

	p.PrintChanges(changes)
	output := buf.String()

	assert.Contains(t, output, "and 3 more changes")
}

func TestPrintTiming(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintTiming(types.TimingBreakdown{
		TotalMS:          1200,
		ParsingMS:        100,
		DiffingMS:        50,
		ClassificationMS: 900,
		ServiceMS:        850,
		AnnotationMS:     150,
	})
	output := buf.String()

	assert.Contains(t, output, "TIMING")
	assert.Contains(t, output, "1200 ms")
	assert.Contains(t, output, "LLM: 850 ms")
}

func TestPrintBox_LongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	changes := []types.ClassifiedChange{
		{
			Change: types.Change{
				ChangeID:   1,
				ChangeType: types.ChangeModified,
				Location:   "Block 1",
			},
			Impact:    types.ImpactMedium,
			Reasoning: strings.Repeat("nội dung rất dài ", 10),
		},
	}

	p.PrintChanges(changes)
	output := buf.String()

	// Should contain box characters
	assert.True(t, strings.Contains(output, "┌"))
	assert.True(t, strings.Contains(output, "└"))
	assert.True(t, strings.Contains(output, "│"))
}
