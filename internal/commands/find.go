package commands

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"convfs/internal/dispatch"
	"convfs/internal/model"
	"convfs/internal/navigator"
	"convfs/internal/vfspath"
)

type findOptions struct {
	name            string
	content         string
	role            string
	typeFilter      string // "d", "f", or ""
	caseInsensitive bool
	limit           int
	limitSet        bool // -limit 0 means "emit nothing", not "unlimited"
	long            bool
}

func (o findOptions) atLimit(have int) bool {
	return o.limitSet && have >= o.limit
}

// Find implements the find handler: recursive search over the
// conversation namespace by name glob, content regex, role, and type.
func Find(hc *dispatch.HandlerContext, args []string, stdin string) any {
	opts := findOptions{}
	var startArg string

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch a {
		case "-name":
			i++
			opts.name = args[i]
		case "-content":
			i++
			opts.content = args[i]
		case "-role":
			i++
			opts.role = args[i]
		case "-type":
			i++
			opts.typeFilter = args[i]
		case "-i":
			opts.caseInsensitive = true
		case "-l":
			opts.long = true
		case "-limit":
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil {
				return fmt.Errorf("find: -limit requires an integer")
			}
			opts.limit = n
			opts.limitSet = true
		default:
			if startArg == "" {
				startArg = a
			}
		}
	}

	if startArg == "" {
		startArg = cwd(hc)
	}
	start, err := resolvePath(hc, startArg)
	if err != nil {
		return fmt.Errorf("find: %s", err.Error())
	}

	var nameRe, contentRe *regexp.Regexp
	if opts.name != "" {
		nameRe, err = regexp.Compile(globToRegex(opts.name, opts.caseInsensitive))
		if err != nil {
			return fmt.Errorf("find: invalid -name pattern")
		}
	}
	if opts.content != "" {
		expr := opts.content
		if opts.caseInsensitive {
			expr = "(?i)" + expr
		}
		contentRe, err = regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("find: invalid -content pattern")
		}
	}

	candidates := collectCandidates(hc, start)

	type hit struct {
		path    string
		isDir   bool
		title   string
		tags    []string
		updated time.Time
	}
	var hits []hit

	for _, id := range candidates {
		if opts.atLimit(len(hits)) {
			break
		}
		tree, err := hc.Repo.LoadConversation(hc.Ctx, id)
		if err != nil {
			continue
		}

		if opts.content == "" && opts.role == "" {
			if nameRe != nil && !nameRe.MatchString(tree.Title) {
				continue
			}
			updated := tree.Metadata.UpdatedAt
			if updated.IsZero() {
				updated = tree.Metadata.CreatedAt
			}
			hits = append(hits, hit{
				path:    fmt.Sprintf("/chats/%s/", id),
				isDir:   true,
				title:   tree.Title,
				tags:    tree.Metadata.Tags,
				updated: updated,
			})
			continue
		}

		walkMessages(tree, func(msg *model.Message, positions []int) {
			if opts.role != "" && !strings.EqualFold(string(msg.Role), opts.role) {
				return
			}
			if contentRe != nil && !contentRe.MatchString(msg.Content) {
				return
			}
			if nameRe != nil && !nameRe.MatchString(msg.ID) {
				return
			}
			if opts.atLimit(len(hits)) {
				return
			}
			hits = append(hits, hit{
				path:  fmt.Sprintf("/chats/%s/%s", id, messagePathSegments(positions)),
				isDir: false,
			})
		})
	}

	if opts.typeFilter != "" {
		var filtered []hit
		for _, h := range hits {
			if opts.typeFilter == "d" && h.isDir || opts.typeFilter == "f" && !h.isDir {
				filtered = append(filtered, h)
			}
		}
		hits = filtered
	}

	if opts.limitSet && len(hits) > opts.limit {
		hits = hits[:opts.limit]
	}

	var sb strings.Builder
	for _, h := range hits {
		if opts.long && h.isDir {
			sb.WriteString(fmt.Sprintf("%-40s %-40s %s (%s)\n", h.path, truncate(h.title, 40), h.updated.Format("2006-01-02 15:04"), humanize.Time(h.updated)))
		} else {
			sb.WriteString(h.path)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// collectCandidates returns the conversation ids find should consider,
// starting from p: a single id if p already denotes one specific
// conversation, otherwise every id reachable from p's listing (recursing
// into literal subdirectories with no conversation entries of their own,
// e.g. tag hierarchies).
func collectCandidates(hc *dispatch.HandlerContext, p *vfspath.Path) []string {
	if p.ConversationID != "" {
		return []string{p.ConversationID}
	}
	if !p.IsDirectory {
		return nil
	}

	entries, err := hc.Nav.ListDirectory(hc.Ctx, p)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var ids []string
	var recurse func(dirPath *vfspath.Path, entries []navigator.Entry, depth int)
	recurse = func(dirPath *vfspath.Path, entries []navigator.Entry, depth int) {
		if depth > 6 {
			return
		}
		for _, e := range entries {
			if e.ConversationID != "" {
				if !seen[e.ConversationID] {
					seen[e.ConversationID] = true
					ids = append(ids, e.ConversationID)
				}
				continue
			}
			if !e.IsDirectory {
				continue
			}
			childRaw := strings.TrimRight(dirPath.Normalized, "/") + "/" + e.Name
			childPath, err := vfspath.Parse(childRaw, "/")
			if err != nil || !childPath.IsDirectory {
				continue
			}
			childEntries, err := hc.Nav.ListDirectory(hc.Ctx, childPath)
			if err != nil {
				continue
			}
			recurse(childPath, childEntries, depth+1)
		}
	}
	recurse(p, entries, 0)
	return ids
}

// walkMessages visits every message in tree, calling fn with the message
// and its 1-based positional path from the conversation root.
func walkMessages(tree *model.ConversationTree, fn func(msg *model.Message, positions []int)) {
	var walk func(id string, path []int)
	walk = func(id string, path []int) {
		msg := tree.Messages[id]
		if msg == nil {
			return
		}
		fn(msg, path)
		for i, childID := range tree.Children(id) {
			walk(childID, append(append([]int{}, path...), i+1))
		}
	}
	for i, rootID := range tree.RootMessageIDs {
		walk(rootID, []int{i + 1})
	}
}

func messagePathSegments(positions []int) string {
	segs := make([]string, len(positions))
	for i, n := range positions {
		segs[i] = fmt.Sprintf("m%d", n)
	}
	return strings.Join(segs, "/")
}

// globToRegex translates a shell glob (* and ?) into an anchored regular
// expression for -name matching.
func globToRegex(glob string, caseInsensitive bool) string {
	var sb strings.Builder
	if caseInsensitive {
		sb.WriteString("(?i)")
	}
	sb.WriteString("^")
	for _, r := range glob {
		switch r {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return sb.String()
}
