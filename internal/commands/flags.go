package commands

import (
	"context"
	"fmt"

	"convfs/internal/dispatch"
)

// Star/Unstar, Pin/Unpin, Archive/Unarchive implement the flag-mutation
// handlers: resolve a target conversation id from an explicit argument or
// the current path, invoke the matching Repository mutation, and
// invalidate the Navigator's listing cache so the next ls/find/tree
// observes the write.

type flagMutator func(ctx context.Context, id string, flag bool) error

func Star(hc *dispatch.HandlerContext, args []string, stdin string) any {
	return setFlag(hc, "star", args, true, hc.Repo.Star)
}

func Unstar(hc *dispatch.HandlerContext, args []string, stdin string) any {
	return setFlag(hc, "unstar", args, false, hc.Repo.Star)
}

func Pin(hc *dispatch.HandlerContext, args []string, stdin string) any {
	return setFlag(hc, "pin", args, true, hc.Repo.Pin)
}

func Unpin(hc *dispatch.HandlerContext, args []string, stdin string) any {
	return setFlag(hc, "unpin", args, false, hc.Repo.Pin)
}

func Archive(hc *dispatch.HandlerContext, args []string, stdin string) any {
	return setFlag(hc, "archive", args, true, hc.Repo.Archive)
}

func Unarchive(hc *dispatch.HandlerContext, args []string, stdin string) any {
	return setFlag(hc, "unarchive", args, false, hc.Repo.Archive)
}

func setFlag(hc *dispatch.HandlerContext, name string, args []string, flag bool, mutate flagMutator) any {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}

	id, err := resolveTargetID(hc, arg)
	if err != nil {
		return fmt.Errorf("%s: %s", name, err.Error())
	}

	if err := mutate(hc.Ctx, id, flag); err != nil {
		return fmt.Errorf("%s: %s", name, err.Error())
	}
	hc.Nav.ClearCache()
	return dispatch.CommandResult{Success: true}
}

// Title implements the title handler: the first argument is the target id
// only when it looks like a path or a long-enough id that resolves to a
// real conversation; otherwise every argument is part of the new title
// and the target is the conversation the cwd is currently inside.
func Title(hc *dispatch.HandlerContext, args []string, stdin string) any {
	if len(args) == 0 {
		return fmt.Errorf("title: missing title")
	}

	id := ""
	titleArgs := args
	if candidate, ok := titleTargetCandidate(hc, args[0]); ok {
		id = candidate
		titleArgs = args[1:]
	} else {
		cur, err := resolveTargetID(hc, "")
		if err != nil {
			return fmt.Errorf("title: %s", err.Error())
		}
		id = cur
	}

	if len(titleArgs) == 0 {
		return fmt.Errorf("title: missing title")
	}
	newTitle := joinArgs(titleArgs)

	ok, err := hc.Repo.UpdateConversationMetadata(hc.Ctx, id, &newTitle, nil)
	if err != nil {
		return fmt.Errorf("title: %s", err.Error())
	}
	if !ok {
		return fmt.Errorf("title: Conversation not found")
	}
	hc.Nav.ClearCache()
	return dispatch.CommandResult{Success: true}
}

// titleTargetCandidate reports whether first looks like an explicit
// conversation target: a "/"-prefixed VFS path, or an id/prefix of at
// least 8 characters, that resolves to a real conversation.
func titleTargetCandidate(hc *dispatch.HandlerContext, first string) (string, bool) {
	if len(first) == 0 {
		return "", false
	}
	if first[0] != '/' && len(first) < 8 {
		return "", false
	}
	id, err := resolveTargetID(hc, first)
	if err != nil {
		return "", false
	}
	return id, true
}

func joinArgs(args []string) string {
	out := args[0]
	for _, a := range args[1:] {
		out += " " + a
	}
	return out
}
