package diff

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/huyxdang/doc-tracker-backend/internal/types"
)

// similarityThreshold is the minimum character-level ratio for two blocks in a
// replace run to be paired as one modified block rather than a delete plus an add.
const similarityThreshold = 0.5

// AlignBlocks compares two parsed documents and returns the ordered list of
// detected changes. Blocks are aligned as opaque text tokens; equal runs
// produce no change, delete and insert runs produce whole-block changes, and
// replace runs are resolved pairwise by text similarity.
func AlignBlocks(blocksV1, blocksV2 []types.ContentBlock) []types.Change {
	contentsV1 := make([]string, len(blocksV1))
	for i, b := range blocksV1 {
		contentsV1[i] = b.Content
	}
	contentsV2 := make([]string, len(blocksV2))
	for j, b := range blocksV2 {
		contentsV2[j] = b.Content
	}

	matcher := difflib.NewMatcher(contentsV1, contentsV2)

	var changes []types.Change
	changeID := 1

	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			continue

		case 'd':
			for i := op.I1; i < op.I2; i++ {
				changes = append(changes, deletedBlockChange(changeID, blocksV1[i]))
				changeID++
			}

		case 'i':
			for j := op.J1; j < op.J2; j++ {
				changes = append(changes, addedBlockChange(changeID, blocksV2[j]))
				changeID++
			}

		case 'r':
			for _, change := range matchSimilarBlocks(blocksV1[op.I1:op.I2], blocksV2[op.J1:op.J2]) {
				change.ChangeID = changeID
				changes = append(changes, change)
				changeID++
			}
		}
	}

	return changes
}

// matchSimilarBlocks resolves a replace run. Each v1 block is greedily paired
// with the still-unconsumed v2 block of highest similarity; pairs at or above
// the threshold become modified changes, unpaired v1 blocks become deletions,
// and leftover v2 blocks become additions. The greedy per-v1-block matching is
// deliberately not a globally optimal assignment.
func matchSimilarBlocks(v1Blocks, v2Blocks []types.ContentBlock) []types.Change {
	var results []types.Change
	usedV2 := make([]bool, len(v2Blocks))

	for _, b1 := range v1Blocks {
		bestIdx := -1
		bestSim := 0.0

		for idx, b2 := range v2Blocks {
			if usedV2[idx] {
				continue
			}
			if sim := Similarity(b1.Content, b2.Content); sim > bestSim {
				bestSim = sim
				bestIdx = idx
			}
		}

		if bestIdx >= 0 && bestSim >= similarityThreshold {
			usedV2[bestIdx] = true
			b2 := v2Blocks[bestIdx]
			diffText, wordChanges := WordDiff(b1.Content, b2.Content)
			results = append(results, types.Change{
				ChangeType:  types.ChangeModified,
				BlockType:   b1.BlockType,
				Location:    blockLocation(b1),
				Original:    b1.Content,
				Modified:    b2.Content,
				Similarity:  bestSim,
				DiffText:    diffText,
				WordChanges: wordChanges,
			})
		} else {
			results = append(results, deletedBlockChange(0, b1))
		}
	}

	for idx, b2 := range v2Blocks {
		if !usedV2[idx] {
			results = append(results, addedBlockChange(0, b2))
		}
	}

	return results
}

func deletedBlockChange(changeID int, block types.ContentBlock) types.Change {
	return types.Change{
		ChangeID:   changeID,
		ChangeType: types.ChangeDeleted,
		BlockType:  block.BlockType,
		Location:   blockLocation(block),
		Original:   block.Content,
		DiffText:   fmt.Sprintf("[-%s-]", block.Content),
		WordChanges: []types.WordChange{{
			ChangeType: "deleted",
			OldText:    block.Content,
			NewText:    "",
			Context:    "Entire block deleted",
		}},
	}
}

func addedBlockChange(changeID int, block types.ContentBlock) types.Change {
	return types.Change{
		ChangeID:   changeID,
		ChangeType: types.ChangeAdded,
		BlockType:  block.BlockType,
		Location:   blockLocation(block),
		Modified:   block.Content,
		DiffText:   fmt.Sprintf("[+%s+]", block.Content),
		WordChanges: []types.WordChange{{
			ChangeType: "added",
			OldText:    "",
			NewText:    block.Content,
			Context:    "Entire block added",
		}},
	}
}

// blockLocation renders a 1-based human-readable reference to a block's
// position in its home document.
func blockLocation(block types.ContentBlock) string {
	return fmt.Sprintf("Block %d", block.Index+1)
}
