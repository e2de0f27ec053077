package commands

import (
	"context"
	"fmt"
	"strings"

	"convfs/internal/dispatch"
	"convfs/internal/model"
	"convfs/internal/navigator"
	"convfs/internal/repo"
	"convfs/internal/vfspath"
)

// Cat implements the cat handler: message metadata files, single
// messages, or a whole conversation rendered along its longest path.
// With no arguments it passes stdin through.
func Cat(hc *dispatch.HandlerContext, args []string, stdin string) any {
	if len(args) == 0 {
		if stdin != "" {
			return stdin
		}
		return fmt.Errorf("cat: missing operand")
	}

	var out strings.Builder
	for _, arg := range args {
		content, err := catOne(hc, arg)
		if err != nil {
			return err
		}
		out.WriteString(content)
	}
	return out.String()
}

func catOne(hc *dispatch.HandlerContext, arg string) (string, error) {
	p, err := resolvePath(hc, arg)
	if err != nil {
		return "", fmt.Errorf("cat: %s", err.Error())
	}

	switch p.Kind {
	case vfspath.KindMessageFile:
		return catMessageFile(hc, p)
	case vfspath.KindMessageNode:
		return catMessageNode(hc, p)
	case vfspath.KindConversation, vfspath.KindConversationRoot:
		return catConversation(hc, p)
	default:
		return "", fmt.Errorf("cat: %s: Not a message or conversation", arg)
	}
}

func catMessageFile(hc *dispatch.HandlerContext, p *vfspath.Path) (string, error) {
	out, err := RenderMessageFile(hc.Ctx, hc.Repo, p)
	if err != nil {
		return "", fmt.Errorf("cat: %s", err.Error())
	}
	return out, nil
}

// RenderMessageFile renders a vfspath.KindMessageFile leaf's bytes the
// same way `cat` does, without requiring a full dispatch.HandlerContext.
// pkg/fusebridge calls this directly so the kernel-mounted view of a
// message field and the in-process shell's view of it never diverge.
func RenderMessageFile(ctx context.Context, r repo.Repository, p *vfspath.Path) (string, error) {
	tree, err := r.LoadConversation(ctx, p.ConversationID)
	if err != nil {
		return "", fmt.Errorf("Conversation not found: %s", p.ConversationID)
	}
	msg, _, err := navigator.WalkMessagePath(tree, p.MessagePath)
	if err != nil {
		return "", err
	}

	switch p.FileName {
	case vfspath.MetaText:
		if msg.Content == "" {
			return "[empty]", nil
		}
		return msg.Content, nil
	case vfspath.MetaRole:
		return string(msg.Role), nil
	case vfspath.MetaTimestamp:
		return msg.Timestamp.String(), nil
	case vfspath.MetaID:
		return msg.ID, nil
	default:
		return "", fmt.Errorf("unknown metadata file %s", p.FileName)
	}
}

func catMessageNode(hc *dispatch.HandlerContext, p *vfspath.Path) (string, error) {
	tree, err := loadTree(hc, p.ConversationID)
	if err != nil {
		return "", fmt.Errorf("cat: %s", err.Error())
	}
	msg, _, err := navigator.WalkMessagePath(tree, p.MessagePath)
	if err != nil {
		return "", fmt.Errorf("cat: %s", err.Error())
	}
	return formatMessage(msg), nil
}

func catConversation(hc *dispatch.HandlerContext, p *vfspath.Path) (string, error) {
	tree, err := loadTree(hc, p.ConversationID)
	if err != nil {
		return "", fmt.Errorf("cat: %s", err.Error())
	}
	longest := tree.LongestPath()

	parts := make([]string, len(longest))
	for i, msg := range longest {
		parts[i] = formatMessage(msg)
	}
	return strings.Join(parts, "\n\n"), nil
}

func formatMessage(msg *model.Message) string {
	return fmt.Sprintf("%s: %s", capitalize(string(msg.Role)), msg.Content)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
