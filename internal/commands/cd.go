package commands

import (
	"fmt"
	"regexp"
	"strings"

	"convfs/internal/dispatch"
	"convfs/internal/navigator"
	"convfs/internal/vfspath"
)

var idCandidatePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Cd implements the cd handler.
func Cd(hc *dispatch.HandlerContext, args []string, stdin string) any {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}

	if arg == "" {
		hc.Env.SetCWD("/")
		hc.Env.SetConversation("", 0)
		return dispatch.CommandResult{Success: true}
	}

	if arg == ".." {
		return cdUp(hc)
	}

	return cdTo(hc, arg)
}

func cdUp(hc *dispatch.HandlerContext) any {
	cur := cwd(hc)
	if cur == "/" {
		return dispatch.CommandResult{Success: true, Output: "Already at root\n"}
	}
	segments := splitSegments(cur)
	segments = segments[:len(segments)-1]
	newCwd := joinSegments(segments)

	// Parse with a trailing slash so a conversation id parent is the
	// ConversationRoot directory, not the bare Conversation reference.
	p, err := vfspath.Parse(strings.TrimRight(newCwd, "/")+"/", "/")
	if err != nil {
		return fmt.Errorf("cd: %s", err.Error())
	}
	return settleCwd(hc, p, "")
}

func cdTo(hc *dispatch.HandlerContext, arg string) any {
	joined := arg
	if !strings.HasPrefix(arg, "/") {
		joined = joinSegments(append(splitSegments(cwd(hc)), splitSegments(arg)...))
	}
	segments := splitSegments(joined)

	if len(segments) > 0 {
		last := segments[len(segments)-1]
		parentRaw := joinSegments(segments[:len(segments)-1])

		if idCandidatePattern.MatchString(last) && len(last) >= navigator.MinPrefixLength {
			if parentPath, perr := vfspath.Parse(parentRaw, "/"); perr == nil && navigator.IsIDBearingKind(parentPath.Kind) {
				resolvedID, rerr := hc.Nav.ResolvePrefix(hc.Ctx, parentPath, last)
				if rerr == nil {
					corrected := joinSegments(append(append([]string{}, segments[:len(segments)-1]...), resolvedID)) + "/"
					p, err := vfspath.Parse(corrected, "/")
					if err != nil {
						return fmt.Errorf("cd: %s", err.Error())
					}
					message := ""
					if resolvedID != last {
						message = fmt.Sprintf("Resolved '%s' to: %s\n", last, resolvedID)
					}
					return settleCwd(hc, p, message)
				}
				if navigator.IDOnlyKinds[parentPath.Kind] {
					return fmt.Errorf("cd: %s", rerr.Error())
				}
				// Not an id-only parent: fall through to the literal path below.
			}
		}
	}

	p, err := vfspath.Parse(arg, cwd(hc))
	if err != nil {
		return fmt.Errorf("cd: %s", err.Error())
	}
	return settleCwd(hc, p, "")
}

// settleCwd validates p (directory-ness, Navigator listability) and, if
// valid, updates cwd and conversation-scoped environment variables.
func settleCwd(hc *dispatch.HandlerContext, p *vfspath.Path, message string) any {
	if !p.IsDirectory {
		return fmt.Errorf("cd: Not a directory: %s", p.Normalized)
	}
	if _, err := hc.Nav.ListDirectory(hc.Ctx, p); err != nil {
		return fmt.Errorf("cd: %s", err.Error())
	}

	hc.Env.SetCWD(p.Normalized)
	if p.ConversationID != "" {
		hc.Env.SetConversation(p.ConversationID, len(p.MessagePath))
	} else {
		hc.Env.SetConversation("", 0)
	}

	return dispatch.CommandResult{Success: true, Output: message}
}

func splitSegments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func joinSegments(segments []string) string {
	if len(segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(segments, "/")
}
