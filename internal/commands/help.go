package commands

import (
	"sort"
	"strings"

	"convfs/internal/dispatch"
)

// descriptions is the one-line-per-command registry Help renders.
var descriptions = map[string]string{
	"cd":        "change the current VFS directory",
	"ls":        "list directory entries",
	"pwd":       "print the current VFS directory",
	"cat":       "print message or conversation content",
	"head":      "print the first lines of input",
	"tail":      "print the last lines of input",
	"echo":      "print arguments",
	"grep":      "filter lines by a pattern",
	"find":      "search the conversation namespace",
	"tree":      "render a conversation's message tree",
	"paths":     "list a conversation's root-to-leaf paths",
	"star":      "flag a conversation as starred",
	"unstar":    "remove the starred flag",
	"pin":       "flag a conversation as pinned",
	"unpin":     "remove the pinned flag",
	"archive":   "flag a conversation as archived",
	"unarchive": "remove the archived flag",
	"title":     "rename a conversation",
	"ln":        "add a conversation to a tag",
	"cp":        "duplicate a conversation",
	"mv":        "move a conversation between tags",
	"rm":        "delete a conversation or remove a tag",
	"mkdir":     "acknowledge a new tag path",
	"help":      "list available commands",
	"exit":      "leave the shell",
	"quit":      "leave the shell",
}

// Help implements the help handler: a one-line-per-command table,
// sorted by name.
func Help(hc *dispatch.HandlerContext, args []string, stdin string) any {
	names := make([]string, 0, len(descriptions))
	for name := range descriptions {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(name)
		sb.WriteString("  ")
		sb.WriteString(descriptions[name])
		sb.WriteString("\n")
	}
	return sb.String()
}

// Exit and Quit both print nothing; the REPL loop detects these two
// command names itself before dispatch and stops reading afterward.
func Exit(hc *dispatch.HandlerContext, args []string, stdin string) any {
	return dispatch.CommandResult{Success: true, Error: "", ExitCode: 0}
}

func Quit(hc *dispatch.HandlerContext, args []string, stdin string) any {
	return Exit(hc, args, stdin)
}
