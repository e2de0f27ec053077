package navigator

import (
	"convfs/internal/model"
)

// WalkMessagePath follows a 1-based positional message path (as produced by
// vfspath.Parse's MessagePath) down a conversation tree, returning the
// message it lands on along with the full chain of ancestors walked
// (root-first). An empty path is invalid: MessageNode paths are always
// non-empty by construction.
func WalkMessagePath(tree *model.ConversationTree, path []int) (*model.Message, []*model.Message, error) {
	if len(path) == 0 {
		return nil, nil, invalid("empty message path")
	}

	var chain []*model.Message
	children := tree.RootMessageIDs
	var current *model.Message

	for _, idx := range path {
		if idx < 1 || idx > len(children) {
			return nil, nil, invalid("Message node m%d out of range (1-%d)", idx, len(children))
		}
		childID := children[idx-1]
		current = tree.Messages[childID]
		if current == nil {
			return nil, nil, invalid("dangling message reference: %s", childID)
		}
		chain = append(chain, current)
		children = tree.Children(current.ID)
	}

	return current, chain, nil
}
