package classify

import (
	"context"
	"log"
	"sort"

	"github.com/huyxdang/doc-tracker-backend/internal/types"
)

// HybridClassifier layers the deterministic rules over the reasoning service:
// rules resolve what they can for free, and everything else goes to the
// service in a single batched call.
type HybridClassifier struct {
	reasoning *ReasoningClassifier
}

// NewHybridClassifier creates a hybrid classifier. The reasoning classifier
// may be backed by a nil client, in which case unresolved changes degrade to
// medium severity.
func NewHybridClassifier(reasoning *ReasoningClassifier) *HybridClassifier {
	return &HybridClassifier{reasoning: reasoning}
}

// Classify assigns an impact level to every change. The returned list is
// always complete and sorted ascending by change id, regardless of how the
// reasoning service behaved.
func (h *HybridClassifier) Classify(ctx context.Context, changes []types.Change, documentType string) types.ClassificationResult {
	classified := make([]types.ClassifiedChange, 0, len(changes))
	var needsReasoning []types.Change

	// Layer 1: rule-based classification
	for i := range changes {
		if verdict := ClassifyByRules(&changes[i]); verdict != nil {
			classified = append(classified, types.ClassifiedChange{
				Change:       changes[i],
				Impact:       verdict.Impact,
				Reasoning:    verdict.Reasoning,
				RiskAnalysis: verdict.RiskAnalysis,
				Source:       types.SourceRule,
			})
		} else {
			needsReasoning = append(needsReasoning, changes[i])
		}
	}

	// Layer 2: one batched reasoning-service call for the ambiguous remainder
	var serviceTimeMS int64
	serviceCalls := 0
	if len(needsReasoning) > 0 {
		log.Printf("Sending %d changes to LLM...", len(needsReasoning))
		var verdicts map[int]Verdict
		verdicts, serviceTimeMS = h.reasoning.ClassifyBatch(ctx, needsReasoning, documentType)
		serviceCalls = 1

		for _, change := range needsReasoning {
			verdict, ok := verdicts[change.ChangeID]
			if !ok {
				verdict = Verdict{
					Impact:       types.ImpactMedium,
					Reasoning:    "Không thể phân loại",
					RiskAnalysis: "Cần xem xét thủ công",
				}
			}
			classified = append(classified, types.ClassifiedChange{
				Change:       change,
				Impact:       verdict.Impact,
				Reasoning:    verdict.Reasoning,
				RiskAnalysis: verdict.RiskAnalysis,
				Source:       types.SourceReasoning,
			})
		}
	}

	sort.Slice(classified, func(i, j int) bool {
		return classified[i].ChangeID < classified[j].ChangeID
	})

	return types.ClassificationResult{
		Changes:       classified,
		ServiceTimeMS: serviceTimeMS,
		ServiceCalls:  serviceCalls,
	}
}
