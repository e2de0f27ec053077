package vfspath

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	idPattern    = regexp.MustCompile(`^[a-fA-F0-9_\-]{5,100}$`)
	mnodePattern = regexp.MustCompile(`^[mM](\d+)$`)
)

// IsConversationID reports whether seg syntactically looks like a
// conversation id: hex digits, underscores, and dashes, 5-100 chars.
func IsConversationID(seg string) bool {
	return idPattern.MatchString(seg)
}

// isMessageNode reports whether seg is a message-node coordinate and, if
// so, returns its 1-based index.
func isMessageNode(seg string) (int, bool) {
	m := mnodePattern.FindStringSubmatch(seg)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func isMetaFile(seg string) (MetaFile, bool) {
	switch MetaFile(seg) {
	case MetaText, MetaRole, MetaTimestamp, MetaID:
		return MetaFile(seg), true
	default:
		return "", false
	}
}

// Parse normalizes raw relative to cwd (defaulting cwd to "/") and
// classifies the result into a Path. It performs no I/O: all information
// needed to classify a path is syntactic.
func Parse(raw string, cwd string) (*Path, error) {
	if cwd == "" {
		cwd = "/"
	}
	normalized, segments := normalize(raw, cwd)
	trailingSlash := hasTrailingSlash(raw)

	p := &Path{
		Raw:        raw,
		Normalized: normalized,
		Segments:   segments,
	}

	if len(segments) == 0 {
		p.Kind = KindRoot
		p.IsDirectory = true
		return p, nil
	}

	root := strings.ToLower(segments[0])
	switch root {
	case "chats":
		return parseConversationFamily(p, segments, KindChats, trailingSlash, true)
	case "starred":
		return parseConversationFamily(p, segments, KindStarred, trailingSlash, false)
	case "pinned":
		return parseConversationFamily(p, segments, KindPinned, trailingSlash, false)
	case "archived":
		return parseConversationFamily(p, segments, KindArchived, trailingSlash, false)
	case "tags":
		return parseTagFamily(p, segments)
	case "recent":
		return parseScannedFamily(p, segments, KindRecent)
	case "source":
		return parseScannedFamily(p, segments, KindSource)
	case "model":
		return parseScannedFamily(p, segments, KindModel)
	case "views":
		return parseViewsFamily(p, segments)
	default:
		return nil, invalid("unknown filesystem root")
	}
}

// parseConversationFamily handles /chats, /starred, /pinned, /archived: a
// bare family root, or family/<id>[/message-portion]. respectsTrailing
// decides whether a bare id without trailing slash stays a non-directory
// Conversation reference (true, only for /chats) or is always a directory
// ConversationRoot (false, for the flag families).
func parseConversationFamily(p *Path, segments []string, bareKind Kind, trailingSlash, respectsTrailing bool) (*Path, error) {
	if len(segments) == 1 {
		p.Kind = bareKind
		p.IsDirectory = true
		return p, nil
	}

	id := segments[1]
	if !IsConversationID(id) {
		return nil, invalid("invalid conversation id: " + id)
	}
	p.ConversationID = id

	rest := segments[2:]
	if len(rest) == 0 {
		if respectsTrailing && !trailingSlash {
			p.Kind = KindConversation
			p.IsDirectory = false
		} else {
			p.Kind = KindConversationRoot
			p.IsDirectory = true
		}
		return p, nil
	}

	return parseMessagePortion(p, rest)
}

// parseMessagePortion classifies the segments following a conversation id
// as either a MessageNode path or, when the last segment names one of the
// synthetic metadata files, a MessageFile reference.
func parseMessagePortion(p *Path, rest []string) (*Path, error) {
	if meta, ok := isMetaFile(rest[len(rest)-1]); ok {
		var path []int
		for _, seg := range rest[:len(rest)-1] {
			n, ok := isMessageNode(seg)
			if !ok {
				return nil, invalid("Invalid message node: " + seg)
			}
			path = append(path, n)
		}
		p.Kind = KindMessageFile
		p.FileName = meta
		p.MessagePath = path
		p.IsDirectory = false
		return p, nil
	}

	var path []int
	for _, seg := range rest {
		n, ok := isMessageNode(seg)
		if !ok {
			return nil, invalid("Invalid message node: " + seg)
		}
		path = append(path, n)
	}
	p.Kind = KindMessageNode
	p.MessagePath = path
	p.IsDirectory = true
	return p, nil
}

// parseTagFamily walks segments after "tags", splitting at the first
// segment that syntactically looks like a conversation id; everything
// before it is the tag path.
func parseTagFamily(p *Path, segments []string) (*Path, error) {
	if len(segments) == 1 {
		p.Kind = KindTags
		p.IsDirectory = true
		return p, nil
	}
	return scanForConversationID(p, segments, 1, KindTagDir)
}

// parseScannedFamily handles /recent, /source, /model the same way the
// tag family is handled: any segment after the family name may terminate
// the family-specific prefix once a conversation id appears.
func parseScannedFamily(p *Path, segments []string, bareKind Kind) (*Path, error) {
	if len(segments) == 1 {
		p.Kind = bareKind
		p.IsDirectory = true
		return p, nil
	}
	return scanForConversationID(p, segments, 1, bareKind)
}

// scanForConversationID scans segments[from:] for the first id-shaped
// segment. If found, everything before it becomes the family's TagPath (for
// tags) and everything after feeds into message-portion parsing; if not
// found, the whole remainder is the family's own directory (TagDir, or the
// bareKind family for recent/source/model).
func scanForConversationID(p *Path, segments []string, from int, noIDKind Kind) (*Path, error) {
	for i := from; i < len(segments); i++ {
		if IsConversationID(segments[i]) {
			p.TagPath = strings.Join(segments[from:i], "/")
			p.ConversationID = segments[i]
			rest := segments[i+1:]
			if len(rest) == 0 {
				p.Kind = KindConversationRoot
				p.IsDirectory = true
				return p, nil
			}
			return parseMessagePortion(p, rest)
		}
	}
	p.Kind = noIDKind
	p.TagPath = strings.Join(segments[from:], "/")
	p.IsDirectory = true
	return p, nil
}

// parseViewsFamily handles /views, /views/<name>, and
// /views/<name>/<id>[/message-portion].
func parseViewsFamily(p *Path, segments []string) (*Path, error) {
	if len(segments) == 1 {
		p.Kind = KindViews
		p.IsDirectory = true
		return p, nil
	}
	p.ViewName = segments[1]
	if len(segments) == 2 {
		p.Kind = KindViewDir
		p.IsDirectory = true
		return p, nil
	}

	id := segments[2]
	if !IsConversationID(id) {
		return nil, invalid("invalid conversation id: " + id)
	}
	p.ConversationID = id
	rest := segments[3:]
	if len(rest) == 0 {
		p.Kind = KindConversationRoot
		p.IsDirectory = true
		return p, nil
	}
	return parseMessagePortion(p, rest)
}

// IsReadOnly reports whether p's kind forbids create/link/move mutations;
// only the tag hierarchy is mutable.
func IsReadOnly(p *Path) bool {
	return p.Kind != KindTagDir && p.Kind != KindTags
}

// CanDelete reports whether p denotes something deletable: a conversation
// reference under /chats/<id> (hard delete) or under /tags/.../<id> (tag
// removal).
func CanDelete(p *Path) bool {
	if p.ConversationID == "" {
		return false
	}
	if p.Kind != KindConversationRoot && p.Kind != KindConversation {
		return false
	}
	if len(p.Segments) == 0 {
		return false
	}
	switch strings.ToLower(p.Segments[0]) {
	case "chats", "tags":
		return true
	default:
		return false
	}
}
