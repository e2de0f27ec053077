package commands

import (
	"fmt"
	"strings"

	"convfs/internal/dispatch"
	"convfs/internal/vfspath"
)

// Ln, Cp, Mv, Rm, Mkdir implement the tag-graph operations: the only
// commands that mutate the namespace, and then only through the tag
// hierarchy (plus rm's hard delete under /chats).

// Ln implements `ln src dest`: src must resolve to a conversation, dest
// must be a tag directory; the conversation gains dest's tag path.
//
// Bulk form: when no src positional argument is given and stdin is
// non-empty, each non-empty stdin line is treated as a src and tagged
// with the same dest, so a find result can be piped straight in. The
// loop stops at the first failure and reports how many succeeded.
func Ln(hc *dispatch.HandlerContext, args []string, stdin string) any {
	if len(args) == 0 {
		return fmt.Errorf("ln: missing operand")
	}
	if len(args) == 1 && strings.TrimSpace(stdin) != "" {
		return lnBulk(hc, args[0], stdin)
	}
	if len(args) != 2 {
		return fmt.Errorf("ln: usage: ln src dest")
	}
	if err := lnOne(hc, args[0], args[1]); err != nil {
		return fmt.Errorf("ln: %s", err.Error())
	}
	hc.Nav.ClearCache()
	return dispatch.CommandResult{Success: true}
}

func lnBulk(hc *dispatch.HandlerContext, dest, stdin string) any {
	succeeded := 0
	for _, line := range strings.Split(stdin, "\n") {
		src := strings.TrimSpace(line)
		if src == "" {
			continue
		}
		if err := lnOne(hc, src, dest); err != nil {
			hc.Nav.ClearCache()
			return fmt.Errorf("ln: %s (after %d succeeded)", err.Error(), succeeded)
		}
		succeeded++
	}
	hc.Nav.ClearCache()
	return dispatch.CommandResult{Success: true, Output: fmt.Sprintf("%d linked\n", succeeded)}
}

func lnOne(hc *dispatch.HandlerContext, srcArg, destArg string) error {
	srcID, err := resolveTargetID(hc, srcArg)
	if err != nil {
		return err
	}
	destPath, err := resolvePath(hc, destArg)
	if err != nil {
		return err
	}
	if destPath.Kind != vfspath.KindTagDir {
		return fmt.Errorf("destination is not a tag directory: %s", destArg)
	}
	ok, err := hc.Repo.AddTags(hc.Ctx, srcID, []string{destPath.TagPath})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("Conversation not found: %s", srcID)
	}
	return nil
}

// Cp implements `cp src dest`: duplicate_conversation(src.id) to a new id;
// if dest is a TagDir, the new id is also tagged with dest.tag_path.
func Cp(hc *dispatch.HandlerContext, args []string, stdin string) any {
	if len(args) != 2 {
		return fmt.Errorf("cp: usage: cp src dest")
	}
	srcID, err := resolveTargetID(hc, args[0])
	if err != nil {
		return fmt.Errorf("cp: %s", err.Error())
	}

	newID, err := hc.Repo.DuplicateConversation(hc.Ctx, srcID, "")
	if err != nil {
		return fmt.Errorf("cp: %s", err.Error())
	}

	if destPath, perr := resolvePath(hc, args[1]); perr == nil && destPath.Kind == vfspath.KindTagDir {
		if _, err := hc.Repo.AddTags(hc.Ctx, newID, []string{destPath.TagPath}); err != nil {
			return fmt.Errorf("cp: %s", err.Error())
		}
	}

	hc.Nav.ClearCache()
	return dispatch.CommandResult{Success: true, Output: newID + "\n"}
}

// Mv implements `mv src dest`: src must be inside /tags/...; removes
// src.tag_path and adds dest.tag_path, restoring the original tag if the
// add fails.
func Mv(hc *dispatch.HandlerContext, args []string, stdin string) any {
	if len(args) != 2 {
		return fmt.Errorf("mv: usage: mv src dest")
	}

	srcPath, err := resolvePath(hc, args[0])
	if err != nil {
		return fmt.Errorf("mv: %s", err.Error())
	}
	if len(srcPath.Segments) == 0 || strings.ToLower(srcPath.Segments[0]) != "tags" || srcPath.ConversationID == "" {
		return fmt.Errorf("mv: src must be a conversation under /tags/...")
	}
	destPath, err := resolvePath(hc, args[1])
	if err != nil {
		return fmt.Errorf("mv: %s", err.Error())
	}
	if destPath.Kind != vfspath.KindTagDir {
		return fmt.Errorf("mv: destination is not a tag directory: %s", args[1])
	}

	if _, err := hc.Repo.RemoveTag(hc.Ctx, srcPath.ConversationID, srcPath.TagPath); err != nil {
		return fmt.Errorf("mv: %s", err.Error())
	}
	if _, err := hc.Repo.AddTags(hc.Ctx, srcPath.ConversationID, []string{destPath.TagPath}); err != nil {
		// restore the original tag before surfacing the failure
		hc.Repo.AddTags(hc.Ctx, srcPath.ConversationID, []string{srcPath.TagPath})
		hc.Nav.ClearCache()
		return fmt.Errorf("mv: %s", err.Error())
	}

	hc.Nav.ClearCache()
	return dispatch.CommandResult{Success: true}
}

// Rm implements `rm [-f] path`: under /chats/<id> it hard-deletes the
// conversation, which requires the explicit -f confirmation; under
// /tags/.../<id> it removes that one tag, no confirmation needed.
//
// Bulk form, same convention as Ln: with no positional argument and
// non-empty stdin, each stdin line is removed in turn.
func Rm(hc *dispatch.HandlerContext, args []string, stdin string) any {
	force := false
	var positional []string
	for _, a := range args {
		if a == "-f" {
			force = true
			continue
		}
		positional = append(positional, a)
	}

	if len(positional) == 0 {
		if strings.TrimSpace(stdin) == "" {
			return fmt.Errorf("rm: missing operand")
		}
		return rmBulk(hc, stdin, force)
	}
	if err := rmOne(hc, positional[0], force); err != nil {
		return fmt.Errorf("rm: %s", err.Error())
	}
	hc.Nav.ClearCache()
	return dispatch.CommandResult{Success: true}
}

func rmBulk(hc *dispatch.HandlerContext, stdin string, force bool) any {
	succeeded := 0
	for _, line := range strings.Split(stdin, "\n") {
		target := strings.TrimSpace(line)
		if target == "" {
			continue
		}
		if err := rmOne(hc, target, force); err != nil {
			hc.Nav.ClearCache()
			return fmt.Errorf("rm: %s (after %d succeeded)", err.Error(), succeeded)
		}
		succeeded++
	}
	hc.Nav.ClearCache()
	return dispatch.CommandResult{Success: true, Output: fmt.Sprintf("%d removed\n", succeeded)}
}

func rmOne(hc *dispatch.HandlerContext, arg string, force bool) error {
	p, err := resolvePath(hc, arg)
	if err != nil {
		return err
	}
	if p.ConversationID == "" || len(p.Segments) == 0 {
		return fmt.Errorf("%s: not a conversation path", arg)
	}

	switch strings.ToLower(p.Segments[0]) {
	case "chats":
		if !force {
			return fmt.Errorf("deleting %s is permanent; pass -f to confirm", p.ConversationID)
		}
		ok, err := hc.Repo.DeleteConversation(hc.Ctx, p.ConversationID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("Conversation not found: %s", p.ConversationID)
		}
		return nil
	case "tags":
		ok, err := hc.Repo.RemoveTag(hc.Ctx, p.ConversationID, p.TagPath)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("tag not found on %s", p.ConversationID)
		}
		return nil
	default:
		return fmt.Errorf("%s: cannot remove outside /chats or /tags", arg)
	}
}

// Mkdir implements `mkdir /tags/...`: purely conceptual — tags have no
// standalone existence beyond conversations that carry them, so this only
// validates the path and acknowledges the intent.
func Mkdir(hc *dispatch.HandlerContext, args []string, stdin string) any {
	if len(args) != 1 {
		return fmt.Errorf("mkdir: usage: mkdir /tags/...")
	}
	p, err := resolvePath(hc, args[0])
	if err != nil {
		return fmt.Errorf("mkdir: %s", err.Error())
	}
	if p.Kind != vfspath.KindTagDir && p.Kind != vfspath.KindTags {
		return fmt.Errorf("mkdir: can only create tag directories under /tags")
	}
	return dispatch.CommandResult{Success: true}
}
