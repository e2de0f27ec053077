package navigator

import (
	"context"
	"strings"

	"convfs/internal/vfspath"
)

// MinPrefixLength is the shortest segment that may be resolved as a
// conversation-id prefix; shorter segments are never attempted.
const MinPrefixLength = 3

// idBearingKinds are the PathKinds whose listings may contain
// conversation-carrying entries. The cd handler consults this, via
// IsIDBearingKind, to decide whether a final path segment is even
// eligible for prefix resolution.
var idBearingKinds = map[vfspath.Kind]bool{
	vfspath.KindChats:    true,
	vfspath.KindStarred:  true,
	vfspath.KindPinned:   true,
	vfspath.KindArchived: true,
	vfspath.KindTagDir:   true,
	vfspath.KindRecent:   true,
	vfspath.KindSource:   true,
	vfspath.KindModel:    true,
}

// IsIDBearingKind reports whether listings of kind k may contain entries
// with a ConversationID, and are therefore a valid parent for
// ResolvePrefix.
func IsIDBearingKind(k vfspath.Kind) bool { return idBearingKinds[k] }

// IDOnlyKinds are the PathKinds whose listings contain nothing but
// conversation ids, so a failed prefix resolution during cd surfaces as
// an error rather than silently falling back to the literal segment.
var IDOnlyKinds = map[vfspath.Kind]bool{
	vfspath.KindChats:    true,
	vfspath.KindStarred:  true,
	vfspath.KindPinned:   true,
	vfspath.KindArchived: true,
}

// maxAmbiguousCandidates bounds how many candidate ids an ambiguous-match
// error names.
const maxAmbiguousCandidates = 5

// ResolvePrefix lists parent and gathers entries whose ConversationID
// starts with prefix. Exactly one match resolves to that id; zero matches
// or a prefix shorter than MinPrefixLength report not-found; two or more
// matches report ambiguity, naming up to five candidates.
//
// ResolvePrefix itself has no notion of "id-only" vs "falls through to
// literal" parents — that policy belongs to the cd command, which decides
// whether to surface this function's error or silently keep the literal
// segment depending on which family it was resolving against.
func (n *Navigator) ResolvePrefix(ctx context.Context, parent *vfspath.Path, prefix string) (string, error) {
	if len(prefix) < MinPrefixLength {
		return "", invalid("No conversation found matching prefix %s", prefix)
	}

	entries, err := n.ListDirectory(ctx, parent)
	if err != nil {
		return "", err
	}

	var matches []string
	for _, e := range entries {
		if e.ConversationID != "" && strings.HasPrefix(e.ConversationID, prefix) {
			matches = append(matches, e.ConversationID)
		}
	}

	switch len(matches) {
	case 0:
		return "", invalid("No conversation found matching prefix %s", prefix)
	case 1:
		return matches[0], nil
	default:
		if len(matches) > maxAmbiguousCandidates {
			matches = matches[:maxAmbiguousCandidates]
		}
		return "", invalid("Ambiguous prefix %s matches: %s", prefix, strings.Join(matches, ", "))
	}
}
