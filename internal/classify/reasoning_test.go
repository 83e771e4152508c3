package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyxdang/doc-tracker-backend/internal/types"
)

// fakeClient is a canned llm.Client for tests.
type fakeClient struct {
	reply      string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (f *fakeClient) GenerateJSON(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	return f.reply, f.err
}

func (f *fakeClient) ModelName() string { return "fake-model" }
func (f *fakeClient) Close() error      { return nil }

func semanticChange(id int, oldText, newText string) types.Change {
	return types.Change{
		ChangeID:   id,
		ChangeType: types.ChangeModified,
		BlockType:  types.BlockParagraph,
		Location:   "Block 1",
		Original:   oldText,
		Modified:   newText,
		WordChanges: []types.WordChange{
			{ChangeType: "replaced", OldText: oldText, NewText: newText},
		},
	}
}

func TestReasoningClassifier_Available(t *testing.T) {
	assert.False(t, NewReasoningClassifier(nil).Available())
	assert.True(t, NewReasoningClassifier(&fakeClient{}).Available())
}

func TestClassifyBatch_EmptyInput(t *testing.T) {
	rc := NewReasoningClassifier(&fakeClient{})

	verdicts, elapsed := rc.ClassifyBatch(context.Background(), nil, "general")

	assert.Empty(t, verdicts)
	assert.Zero(t, elapsed)
}

func TestClassifyBatch_NoClient(t *testing.T) {
	rc := NewReasoningClassifier(nil)
	changes := []types.Change{semanticChange(1, "a", "b"), semanticChange(2, "c", "d")}

	verdicts, elapsed := rc.ClassifyBatch(context.Background(), changes, "general")

	assert.Zero(t, elapsed)
	require.Len(t, verdicts, 2)
	for _, v := range verdicts {
		assert.Equal(t, types.ImpactMedium, v.Impact)
		assert.Contains(t, v.Reasoning, "LLM không khả dụng")
	}
}

func TestClassifyBatch_ValidReply(t *testing.T) {
	client := &fakeClient{reply: `[{"id":1,"impact":"critical"},{"id":2,"impact":"low"}]`}
	rc := NewReasoningClassifier(client)
	changes := []types.Change{semanticChange(1, "a", "b"), semanticChange(2, "c", "d")}

	verdicts, _ := rc.ClassifyBatch(context.Background(), changes, "contract")

	require.Len(t, verdicts, 2)
	assert.Equal(t, types.ImpactCritical, verdicts[1].Impact)
	assert.Equal(t, types.ImpactLow, verdicts[2].Impact)
	assert.Equal(t, 1, client.calls)
}

func TestClassifyBatch_FencedReply(t *testing.T) {
	client := &fakeClient{reply: "```json\n[{\"id\":1,\"impact\":\"medium\"}]\n```"}
	rc := NewReasoningClassifier(client)
	changes := []types.Change{semanticChange(1, "a", "b")}

	verdicts, _ := rc.ClassifyBatch(context.Background(), changes, "general")

	require.Len(t, verdicts, 1)
	assert.Equal(t, types.ImpactMedium, verdicts[1].Impact)
}

func TestClassifyBatch_StringIDs(t *testing.T) {
	client := &fakeClient{reply: `[{"id":"7","impact":"critical"}]`}
	rc := NewReasoningClassifier(client)
	changes := []types.Change{semanticChange(7, "a", "b")}

	verdicts, _ := rc.ClassifyBatch(context.Background(), changes, "general")

	require.Len(t, verdicts, 1)
	assert.Equal(t, types.ImpactCritical, verdicts[7].Impact)
}

func TestClassifyBatch_HighMapsToCritical(t *testing.T) {
	client := &fakeClient{reply: `[{"id":1,"impact":"HIGH"}]`}
	rc := NewReasoningClassifier(client)
	changes := []types.Change{semanticChange(1, "a", "b")}

	verdicts, _ := rc.ClassifyBatch(context.Background(), changes, "general")

	assert.Equal(t, types.ImpactCritical, verdicts[1].Impact)
}

func TestClassifyBatch_UnknownImpactDefaultsToMedium(t *testing.T) {
	client := &fakeClient{reply: `[{"id":1,"impact":"severe"}]`}
	rc := NewReasoningClassifier(client)
	changes := []types.Change{semanticChange(1, "a", "b")}

	verdicts, _ := rc.ClassifyBatch(context.Background(), changes, "general")

	assert.Equal(t, types.ImpactMedium, verdicts[1].Impact)
}

func TestClassifyBatch_PartialReplyDegradesMissing(t *testing.T) {
	client := &fakeClient{reply: `[{"id":1,"impact":"low"}]`}
	rc := NewReasoningClassifier(client)
	changes := []types.Change{semanticChange(1, "a", "b"), semanticChange(2, "c", "d")}

	verdicts, _ := rc.ClassifyBatch(context.Background(), changes, "general")

	require.Len(t, verdicts, 2)
	assert.Equal(t, types.ImpactLow, verdicts[1].Impact)
	assert.Equal(t, types.ImpactMedium, verdicts[2].Impact)
	assert.Equal(t, "Không thể phân loại", verdicts[2].Reasoning)
}

func TestClassifyBatch_TransportErrorDegradesAll(t *testing.T) {
	client := &fakeClient{err: errors.New("connection refused")}
	rc := NewReasoningClassifier(client)
	changes := []types.Change{semanticChange(1, "a", "b"), semanticChange(2, "c", "d")}

	verdicts, elapsed := rc.ClassifyBatch(context.Background(), changes, "general")

	assert.Zero(t, elapsed)
	require.Len(t, verdicts, 2)
	for _, v := range verdicts {
		assert.Equal(t, types.ImpactMedium, v.Impact)
		assert.Contains(t, v.Reasoning, "Lỗi LLM")
	}
}

func TestClassifyBatch_MalformedReplyDegradesAll(t *testing.T) {
	client := &fakeClient{reply: "I cannot classify these changes."}
	rc := NewReasoningClassifier(client)
	changes := []types.Change{semanticChange(1, "a", "b")}

	verdicts, elapsed := rc.ClassifyBatch(context.Background(), changes, "general")

	assert.Zero(t, elapsed)
	require.Len(t, verdicts, 1)
	assert.Equal(t, types.ImpactMedium, verdicts[1].Impact)
	assert.Contains(t, verdicts[1].Reasoning, "Lỗi LLM")
}

func TestClassifyBatch_NonArrayReplyDegradesAll(t *testing.T) {
	client := &fakeClient{reply: `{"id":1,"impact":"low"}`}
	rc := NewReasoningClassifier(client)
	changes := []types.Change{semanticChange(1, "a", "b")}

	verdicts, elapsed := rc.ClassifyBatch(context.Background(), changes, "general")

	assert.Zero(t, elapsed)
	assert.Equal(t, types.ImpactMedium, verdicts[1].Impact)
}

func TestBuildBatchPrompt(t *testing.T) {
	changes := []types.Change{
		semanticChange(1, "khách hàng cá nhân", "khách hàng doanh nghiệp"),
		{
			ChangeID:   2,
			ChangeType: types.ChangeAdded,
			BlockType:  types.BlockParagraph,
			Location:   "Block 5",
			Modified:   "Điều khoản mới",
			WordChanges: []types.WordChange{
				{ChangeType: "added", NewText: "Điều khoản mới"},
			},
		},
	}

	prompt := buildBatchPrompt(changes, "contract")

	assert.Contains(t, prompt, "hợp đồng")
	assert.Contains(t, prompt, "#1 [paragraph, Block 1]")
	assert.Contains(t, prompt, "THAY ĐỔI: 'khách hàng cá nhân' → 'khách hàng doanh nghiệp'")
	assert.Contains(t, prompt, "THÊM: 'Điều khoản mới'")
	assert.Contains(t, prompt, "Nội dung gốc: khách hàng cá nhân")
}

func TestBuildBatchPrompt_UnknownDocumentType(t *testing.T) {
	prompt := buildBatchPrompt([]types.Change{semanticChange(1, "a", "b")}, "memo")

	assert.Contains(t, prompt, "memo")
}

func TestBuildBatchPrompt_TruncatesLongContent(t *testing.T) {
	long := ""
	for i := 0; i < 500; i++ {
		long += "x"
	}
	change := semanticChange(1, long, long+"y")

	prompt := buildBatchPrompt([]types.Change{change}, "general")

	assert.NotContains(t, prompt, "Nội dung gốc: "+long)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "ab", truncateRunes("abcd", 2))
	assert.Equal(t, "Lỗi", truncateRunes("Lỗi LLM nghiêm trọng", 3))
}
