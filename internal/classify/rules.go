// Package classify implements the hybrid change classifier: a deterministic
// rule pass for numeric changes and a batched reasoning-service pass for
// everything the rules cannot resolve.
package classify

import (
	"regexp"
	"strings"

	"github.com/huyxdang/doc-tracker-backend/internal/types"
)

// Verdict is one classification outcome: a severity with its explanation.
type Verdict struct {
	Impact       types.ImpactLevel
	Reasoning    string
	RiskAnalysis string
}

// criticalPattern pairs a compiled pattern with its reasoning text.
// Order is significant: a currency value is also a grouped number, so the
// currency patterns must be checked before the generic number patterns.
type criticalPattern struct {
	re     *regexp.Regexp
	reason string
}

var criticalPatterns = []criticalPattern{
	// Percentages
	{regexp.MustCompile(`(?i)\d+[.,]?\d*\s*%`), "Giá trị phần trăm thay đổi"},

	// Currency - USD
	{regexp.MustCompile(`(?i)\$\s*[\d,]+\.?\d*`), "Giá trị tiền tệ thay đổi (USD)"},

	// Currency - VND (various formats)
	{regexp.MustCompile(`(?i)[\d.,]+\s*(VND|đồng|vnđ|VNĐ)`), "Giá trị tiền tệ thay đổi (VND)"},
	{regexp.MustCompile(`(?i)[\d.,]+\s*(triệu|tỷ|nghìn|ngàn)`), "Giá trị tiền tệ thay đổi (VND)"},

	// General numbers (grouped and decimal)
	{regexp.MustCompile(`(?i)\b\d{1,3}([.,]\d{3})+\b`), "Giá trị số thay đổi"},
	{regexp.MustCompile(`(?i)\b\d+[.,]\d+\b`), "Giá trị số thay đổi"},
}

var riskStatements = map[string]string{
	"Giá trị phần trăm thay đổi":     "Có thể ảnh hưởng đến các tính toán tài chính - cần xác minh",
	"Giá trị tiền tệ thay đổi (USD)": "Sai lệch giá trị tiền tệ - có thể ảnh hưởng tài chính",
	"Giá trị tiền tệ thay đổi (VND)": "Sai lệch giá trị tiền tệ - có thể ảnh hưởng tài chính",
	"Giá trị số thay đổi":            "Thay đổi dữ liệu số - cần kiểm tra với nguồn gốc",
}

// nonWordRe strips everything that is not a letter, digit, or underscore.
var nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}_]`)

// ClassifyByRules applies the deterministic classification rules to a change.
// Returns nil when no rule fires and the change needs semantic classification.
func ClassifyByRules(change *types.Change) *Verdict {
	var textToAnalyze string
	if len(change.WordChanges) > 0 {
		var texts []string
		for _, wc := range change.WordChanges {
			if wc.OldText != "" {
				texts = append(texts, wc.OldText)
			}
			if wc.NewText != "" {
				texts = append(texts, wc.NewText)
			}
		}
		textToAnalyze = strings.Join(texts, " ")
	} else {
		textToAnalyze = change.DiffText
	}

	if isTrivialChange(change) {
		return &Verdict{
			Impact:       types.ImpactLow,
			Reasoning:    "Thay đổi không đáng kể",
			RiskAnalysis: "Không ảnh hưởng đến nghiệp vụ - chỉ thay đổi định dạng",
		}
	}

	for _, p := range criticalPatterns {
		if p.re.MatchString(textToAnalyze) {
			risk, ok := riskStatements[p.reason]
			if !ok {
				risk = "Phát hiện thay đổi - cần xem xét"
			}
			return &Verdict{
				Impact:       types.ImpactCritical,
				Reasoning:    p.reason,
				RiskAnalysis: risk,
			}
		}
	}

	// No rule matched; defer to the reasoning service
	return nil
}

// isTrivialChange reports whether every word change is whitespace, punctuation,
// or casing only.
func isTrivialChange(change *types.Change) bool {
	if len(change.WordChanges) == 0 {
		return false
	}

	for _, wc := range change.WordChanges {
		oldWords := nonWordRe.ReplaceAllString(strings.TrimSpace(wc.OldText), "")
		newWords := nonWordRe.ReplaceAllString(strings.TrimSpace(wc.NewText), "")
		if !strings.EqualFold(oldWords, newWords) {
			return false
		}
	}

	return true
}
