package commands

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"convfs/internal/dispatch"
	"convfs/internal/model"
)

// Tree implements the tree handler: an ASCII rendering of a
// conversation's message tree with a marker on the cwd's position.
func Tree(hc *dispatch.HandlerContext, args []string, stdin string) any {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	id, err := resolveConversationRef(hc, arg)
	if err != nil {
		return fmt.Errorf("tree: %s", err.Error())
	}
	tree, err := loadTree(hc, id)
	if err != nil {
		return fmt.Errorf("tree: %s", err.Error())
	}

	current := currentPositionKey(hc, id)

	var sb strings.Builder
	count := 0
	var walk func(msgID string, prefix string, isLast bool, positions []int)
	walk = func(msgID string, prefix string, isLast bool, positions []int) {
		msg := tree.Messages[msgID]
		if msg == nil {
			return
		}
		count++
		connector := "├─ "
		nextPrefix := prefix + "│  "
		if isLast {
			connector = "└─ "
			nextPrefix = prefix + "   "
		}
		marker := ""
		if messagePathKey(positions) == current {
			marker = "  <-- here"
		}
		sb.WriteString(fmt.Sprintf("%s%s%s %s %s%s\n", prefix, connector, roleGlyph(msg.Role), shortID(msg.ID), truncate(msg.Content, 50), marker))

		children := tree.Children(msgID)
		for i, childID := range children {
			walk(childID, nextPrefix, i == len(children)-1, append(append([]int{}, positions...), i+1))
		}
	}
	for i, rootID := range tree.RootMessageIDs {
		walk(rootID, "", i == len(tree.RootMessageIDs)-1, []int{i + 1})
	}

	paths := tree.AllPaths()
	sb.WriteString(fmt.Sprintf("\n%d messages, %d paths, updated %s\n", count, len(paths), humanize.Time(tree.Metadata.UpdatedAt)))
	return sb.String()
}

// Paths implements the paths handler: every root-to-leaf path of a
// conversation, one block per path.
func Paths(hc *dispatch.HandlerContext, args []string, stdin string) any {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	id, err := resolveConversationRef(hc, arg)
	if err != nil {
		return fmt.Errorf("paths: %s", err.Error())
	}
	tree, err := loadTree(hc, id)
	if err != nil {
		return fmt.Errorf("paths: %s", err.Error())
	}

	allPaths := tree.AllPaths()
	var sb strings.Builder
	messageCount := 0
	for i, path := range allPaths {
		sb.WriteString(fmt.Sprintf("Path %d:\n", i+1))
		for _, msg := range path {
			messageCount++
			sb.WriteString(fmt.Sprintf("  %s: %s\n", capitalize(string(msg.Role)), truncate(msg.Content, 50)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("%d messages, %d paths, updated %s\n", messageCount, len(allPaths), humanize.Time(tree.Metadata.UpdatedAt)))
	return sb.String()
}

func roleGlyph(r model.Role) string {
	switch r {
	case model.RoleUser:
		return "U"
	case model.RoleAssistant:
		return "A"
	case model.RoleSystem:
		return "S"
	case model.RoleTool:
		return "T"
	default:
		return "?"
	}
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func messagePathKey(positions []int) string {
	return messagePathSegments(positions)
}

// currentPositionKey returns the cwd's message-path key when cwd is inside
// the same conversation id, so tree can mark the "you are here" node.
func currentPositionKey(hc *dispatch.HandlerContext, id string) string {
	p, err := resolvePath(hc, cwd(hc))
	if err != nil || p.ConversationID != id {
		return ""
	}
	return messagePathSegments(p.MessagePath)
}
