package commands

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"convfs/internal/dispatch"
	"convfs/internal/navigator"
)

// Ls implements the ls handler.
func Ls(hc *dispatch.HandlerContext, args []string, stdin string) any {
	long := false
	var target string
	for _, a := range args {
		if a == "-l" {
			long = true
			continue
		}
		target = a
	}
	if target == "" {
		// The cwd is stored without a trailing slash; a conversation root
		// cwd must still list as a directory.
		target = strings.TrimRight(cwd(hc), "/") + "/"
	}

	p, err := resolvePath(hc, target)
	if err != nil {
		return fmt.Errorf("ls: %s", err.Error())
	}
	if !p.IsDirectory {
		return fmt.Errorf("ls: Not a directory: %s", p.Normalized)
	}

	entries, err := hc.Nav.ListDirectory(hc.Ctx, p)
	if err != nil {
		return fmt.Errorf("ls: %s", err.Error())
	}

	if long {
		return lsLong(entries)
	}
	return lsDefault(entries)
}

func lsDefault(entries []navigator.Entry) string {
	dirs, files := entriesByFlag(entries)
	var names []string
	for _, e := range dirs {
		names = append(names, e.Name+"/"+flagMarkers(e))
	}
	for _, e := range files {
		names = append(names, e.Name)
	}
	if len(names) == 0 {
		return ""
	}
	return strings.Join(names, "  ") + "\n"
}

func lsLong(entries []navigator.Entry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(lsLongRow(e))
		sb.WriteString("\n")
	}
	return sb.String()
}

func lsLongRow(e navigator.Entry) string {
	typ := "f"
	if e.IsDirectory {
		typ = "d"
	}

	switch {
	case e.MessageID != "":
		return fmt.Sprintf("%-10s %s %-9s %-50s %s (%s)", e.Name, typ, e.Role, e.ContentPreview, e.Timestamp.Format("2006-01-02 15:04"), humanize.Time(e.Timestamp))
	case e.ConversationID != "":
		name := e.Name + flagMarkers(e)
		return fmt.Sprintf("%-10s %s %-40s %-20s %s (%s)", name, typ, truncate(e.Title, 40), tagsPreview(e.Tags), e.UpdatedAt.Format("2006-01-02 15:04"), humanize.Time(e.UpdatedAt))
	default:
		return fmt.Sprintf("%-10s %s", e.Name, typ)
	}
}
