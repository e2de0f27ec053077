// Package commands implements the POSIX-style command handlers that
// operate over the VFS: cd, ls, pwd, cat, head, tail, echo, grep, find,
// tree, paths, the star/pin/archive/title mutation commands, and the
// ln/cp/mv/rm/mkdir tag-graph operations. One dispatch.Handler function
// per command, reading through the Navigator's cache-backed listings.
package commands

import (
	"fmt"
	"strings"

	"convfs/internal/dispatch"
	"convfs/internal/env"
	"convfs/internal/model"
	"convfs/internal/navigator"
	"convfs/internal/vfspath"
)

// cwd returns the handler context's current VFS working directory.
func cwd(hc *dispatch.HandlerContext) string {
	c := hc.Env.Get(env.VarCWD)
	if c == "" {
		return "/"
	}
	return c
}

// resolvePath parses raw relative to hc's cwd.
func resolvePath(hc *dispatch.HandlerContext, raw string) (*vfspath.Path, error) {
	return vfspath.Parse(raw, cwd(hc))
}

// resolveTargetID finds the conversation id a mutation command should act
// on: an explicit VFS path (leading "/"), a bare conversation id or
// prefix resolved against /chats, or (when arg is empty) the conversation
// the cwd is currently inside.
func resolveTargetID(hc *dispatch.HandlerContext, arg string) (string, error) {
	if arg == "" {
		id := hc.Env.Get(env.VarConvID)
		if id == "" {
			return "", fmt.Errorf("not inside a conversation")
		}
		return id, nil
	}

	if strings.HasPrefix(arg, "/") {
		p, err := resolvePath(hc, arg)
		if err != nil {
			return "", err
		}
		if p.ConversationID == "" {
			return "", fmt.Errorf("not a conversation path: %s", arg)
		}
		return p.ConversationID, nil
	}

	if !vfspath.IsConversationID(arg) {
		return "", fmt.Errorf("not a conversation id: %s", arg)
	}

	chats, _ := vfspath.Parse("/chats", "/")
	return hc.Nav.ResolvePrefix(hc.Ctx, chats, arg)
}

// loadTree loads the conversation id refers to through the Repository,
// bypassing the Navigator's directory-listing cache since commands that
// need the whole tree (cat, tree, paths, find) read message content
// directly rather than one listing at a time.
func loadTree(hc *dispatch.HandlerContext, id string) (*model.ConversationTree, error) {
	tree, err := hc.Repo.LoadConversation(hc.Ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Conversation not found: %s", id)
	}
	return tree, nil
}

// resolveConversationRef locates the conversation id that tree, paths, and
// related commands should operate against: an explicit argument (VFS path
// or bare id/prefix) or, if absent, the one the cwd is currently inside.
func resolveConversationRef(hc *dispatch.HandlerContext, arg string) (string, error) {
	return resolveTargetID(hc, arg)
}

// entriesByFlag partitions entries into directories and files; ls prints
// directories before files.
func entriesByFlag(entries []navigator.Entry) (dirs, files []navigator.Entry) {
	for _, e := range entries {
		if e.IsDirectory {
			dirs = append(dirs, e)
		} else {
			files = append(files, e)
		}
	}
	return dirs, files
}

func flagMarkers(e navigator.Entry) string {
	var sb strings.Builder
	if e.Starred {
		sb.WriteString("*")
	}
	if e.Pinned {
		sb.WriteString("p")
	}
	if e.Archived {
		sb.WriteString("a")
	}
	return sb.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func tagsPreview(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	shown := tags
	overflow := 0
	if len(tags) > 3 {
		shown = tags[:3]
		overflow = len(tags) - 3
	}
	s := strings.Join(shown, ",")
	if overflow > 0 {
		s += fmt.Sprintf("+%d", overflow)
	}
	return s
}
