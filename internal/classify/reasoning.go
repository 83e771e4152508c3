package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/huyxdang/doc-tracker-backend/internal/llm"
	"github.com/huyxdang/doc-tracker-backend/internal/prompts"
	"github.com/huyxdang/doc-tracker-backend/internal/schemas"
	"github.com/huyxdang/doc-tracker-backend/internal/types"
)

// contextMaxChars caps the original/modified excerpts included per change in
// the batch prompt.
const contextMaxChars = 300

// ReasoningClassifier classifies changes by business impact through the
// external reasoning service. A nil client means the service is not
// configured; every change then degrades to medium severity.
type ReasoningClassifier struct {
	client llm.Client
}

// NewReasoningClassifier creates a classifier backed by the given client.
// Pass nil when no service credential is configured.
func NewReasoningClassifier(client llm.Client) *ReasoningClassifier {
	return &ReasoningClassifier{client: client}
}

// Available reports whether the external service is configured.
func (rc *ReasoningClassifier) Available() bool {
	return rc.client != nil
}

// ClassifyBatch classifies all changes in a single service call and returns a
// verdict for every change id passed in, along with the measured call duration
// in milliseconds. The call never fails past this boundary: transport and
// parse errors degrade every change to medium with zero reported duration, and
// ids missing from a partial reply are degraded individually.
func (rc *ReasoningClassifier) ClassifyBatch(ctx context.Context, changes []types.Change, documentType string) (map[int]Verdict, int64) {
	if len(changes) == 0 {
		return map[int]Verdict{}, 0
	}

	if rc.client == nil {
		return degradeAll(changes, "LLM không khả dụng - mặc định mức trung bình"), 0
	}

	systemPrompt := prompts.MustGet("classification.json", "system")
	userPrompt := buildBatchPrompt(changes, documentType)

	start := time.Now()
	reply, err := rc.client.GenerateJSON(ctx, systemPrompt, userPrompt)
	if err != nil {
		log.Printf("LLM classification failed: %v", err)
		return degradeAll(changes, fmt.Sprintf("Lỗi LLM: %s", truncateRunes(err.Error(), 50))), 0
	}
	elapsedMS := time.Since(start).Milliseconds()

	log.Printf("LLM response received in %dms: %s...", elapsedMS, truncateRunes(reply, 200))

	parsed, err := parseVerdicts(reply)
	if err != nil {
		log.Printf("LLM response rejected: %v", err)
		return degradeAll(changes, fmt.Sprintf("Lỗi LLM: %s", truncateRunes(err.Error(), 50))), 0
	}
	log.Printf("Parsed %d classifications from LLM", len(parsed))

	// Fill in ids the reply did not cover; a partial reply is not a failure.
	results := make(map[int]Verdict, len(changes))
	for _, c := range changes {
		if v, ok := parsed[c.ChangeID]; ok {
			results[c.ChangeID] = v
			continue
		}
		log.Printf("Warning: change_id %d not found in LLM results", c.ChangeID)
		results[c.ChangeID] = Verdict{
			Impact:       types.ImpactMedium,
			Reasoning:    "Không thể phân loại",
			RiskAnalysis: "Cần xem xét thủ công",
		}
	}

	return results, elapsedMS
}

// degradeAll returns a medium verdict for every change with the given reasoning.
func degradeAll(changes []types.Change, reasoning string) map[int]Verdict {
	results := make(map[int]Verdict, len(changes))
	for _, c := range changes {
		results[c.ChangeID] = Verdict{
			Impact:       types.ImpactMedium,
			Reasoning:    reasoning,
			RiskAnalysis: "Cần xem xét thủ công",
		}
	}
	return results
}

var documentTypeNames = map[string]string{
	"general":        "tài liệu chung",
	"contract":       "hợp đồng",
	"policy":         "chính sách",
	"report":         "báo cáo",
	"research_paper": "bài nghiên cứu",
}

// buildBatchPrompt renders the per-change summaries into the batch template.
func buildBatchPrompt(changes []types.Change, documentType string) string {
	docTypeName, ok := documentTypeNames[documentType]
	if !ok {
		docTypeName = documentType
	}

	changeLines := make([]string, 0, len(changes))
	for _, c := range changes {
		var diffSummary string
		if len(c.WordChanges) > 0 {
			parts := make([]string, 0, len(c.WordChanges))
			for _, wc := range c.WordChanges {
				switch wc.ChangeType {
				case "replaced":
					parts = append(parts, fmt.Sprintf("THAY ĐỔI: '%s' → '%s'", wc.OldText, wc.NewText))
				case "added":
					parts = append(parts, fmt.Sprintf("THÊM: '%s'", wc.NewText))
				case "deleted":
					parts = append(parts, fmt.Sprintf("XÓA: '%s'", wc.OldText))
				}
			}
			diffSummary = strings.Join(parts, "; ")
		} else if c.DiffText != "" {
			diffSummary = c.DiffText
		} else {
			diffSummary = "Thay đổi không xác định"
		}

		var contextInfo strings.Builder
		if c.Original != "" {
			contextInfo.WriteString("\nNội dung gốc: ")
			contextInfo.WriteString(truncateRunes(c.Original, contextMaxChars))
		}
		if c.Modified != "" {
			contextInfo.WriteString("\nNội dung mới: ")
			contextInfo.WriteString(truncateRunes(c.Modified, contextMaxChars))
		}

		changeLines = append(changeLines, fmt.Sprintf("#%d [%s, %s]:\n%s%s",
			c.ChangeID, c.BlockType, c.Location, diffSummary, contextInfo.String()))
	}

	return prompts.Format(prompts.MustGet("classification.json", "batch"), map[string]string{
		"DocumentType": docTypeName,
		"Changes":      strings.Join(changeLines, "\n\n"),
	})
}

// rawVerdict is one element of the reply array. The id tolerates both integer
// and numeric-string forms.
type rawVerdict struct {
	ID     flexID `json:"id"`
	Impact string `json:"impact"`
}

// flexID is an integer that also accepts a quoted numeric string when decoding.
type flexID int

func (f *flexID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid change id %s: %w", string(data), err)
	}
	*f = flexID(n)
	return nil
}

var impactNames = map[string]types.ImpactLevel{
	"critical": types.ImpactCritical,
	"medium":   types.ImpactMedium,
	"low":      types.ImpactLow,
	"high":     types.ImpactCritical,
}

var defaultReasons = map[types.ImpactLevel][2]string{
	types.ImpactCritical: {"Thay đổi quan trọng", "Cần xem xét kỹ"},
	types.ImpactMedium:   {"Thay đổi có ý nghĩa", "Cần xem xét"},
	types.ImpactLow:      {"Thay đổi nhỏ", "Ảnh hưởng thấp"},
}

// parseVerdicts normalizes a raw service reply, validates its shape, and maps
// it to per-id verdicts. Normalization (code-fence stripping, string ids) is
// deliberately separate from the shape contract itself.
func parseVerdicts(reply string) (map[int]Verdict, error) {
	text := llm.CleanJSONBlock(reply)

	if err := schemas.ValidateVerdicts(text); err != nil {
		return nil, err
	}

	var raw []rawVerdict
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	results := make(map[int]Verdict, len(raw))
	for _, item := range raw {
		impact, ok := impactNames[strings.ToLower(item.Impact)]
		if !ok {
			impact = types.ImpactMedium
		}
		reasons := defaultReasons[impact]
		results[int(item.ID)] = Verdict{
			Impact:       impact,
			Reasoning:    reasons[0],
			RiskAnalysis: reasons[1],
		}
	}

	return results, nil
}

// truncateRunes shortens s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
