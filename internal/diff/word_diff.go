// Package diff implements the change-detection engine: block-level alignment
// of two parsed documents and word-level diffing of modified blocks.
package diff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/huyxdang/doc-tracker-backend/internal/types"
)

// WordDiff compares two texts word by word and returns a human-readable diff
// string ("word [-deleted-] [+added+] word") plus the list of word-level changes.
// Context around each change carries up to two surrounding words and an edit marker.
func WordDiff(original, modified string) (string, []types.WordChange) {
	origWords := strings.Fields(original)
	modWords := strings.Fields(modified)

	matcher := difflib.NewMatcher(origWords, modWords)

	var diffParts []string
	var wordChanges []types.WordChange

	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			diffParts = append(diffParts, origWords[op.I1:op.I2]...)

		case 'd':
			deleted := strings.Join(origWords[op.I1:op.I2], " ")
			diffParts = append(diffParts, fmt.Sprintf("[-%s-]", deleted))
			wordChanges = append(wordChanges, types.WordChange{
				ChangeType: "deleted",
				OldText:    deleted,
				NewText:    "",
				Context:    buildContext(origWords, op.I1, op.I2, "[DELETED]"),
			})

		case 'i':
			added := strings.Join(modWords[op.J1:op.J2], " ")
			diffParts = append(diffParts, fmt.Sprintf("[+%s+]", added))
			wordChanges = append(wordChanges, types.WordChange{
				ChangeType: "added",
				OldText:    "",
				NewText:    added,
				Context:    buildContext(modWords, op.J1, op.J2, "[ADDED]"),
			})

		case 'r':
			old := strings.Join(origWords[op.I1:op.I2], " ")
			updated := strings.Join(modWords[op.J1:op.J2], " ")
			diffParts = append(diffParts, fmt.Sprintf("[-%s-]", old))
			diffParts = append(diffParts, fmt.Sprintf("[+%s+]", updated))
			wordChanges = append(wordChanges, types.WordChange{
				ChangeType: "replaced",
				OldText:    old,
				NewText:    updated,
				Context:    buildContext(origWords, op.I1, op.I2, "[REPLACED]"),
			})
		}
	}

	return strings.Join(diffParts, " "), wordChanges
}

// buildContext renders up to two words before and after the affected span of
// words, with a marker token at the edit point.
func buildContext(words []string, start, end int, marker string) string {
	before := start - 2
	if before < 0 {
		before = 0
	}
	after := end + 2
	if after > len(words) {
		after = len(words)
	}
	contextBefore := strings.Join(words[before:start], " ")
	contextAfter := strings.Join(words[end:after], " ")
	return strings.TrimSpace(fmt.Sprintf("%s %s %s", contextBefore, marker, contextAfter))
}

// Similarity returns the character-level match ratio between two texts,
// in [0,1]. Identical texts score 1.0; disjoint texts score 0.0.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}
