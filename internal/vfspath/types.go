// Package vfspath implements the VFS path model: a pure, I/O-free parser
// that normalizes and classifies path strings mixing literal directory
// roots, opaque conversation identifiers, tag hierarchies, message-tree
// coordinates, and per-message metadata files. Classification is data,
// not behavior: Parse returns a single tagged Path value and callers
// switch on its Kind.
package vfspath

// Kind is the closed set of path classifications.
type Kind int

const (
	KindRoot Kind = iota
	KindChats
	KindStarred
	KindPinned
	KindArchived
	KindTags
	KindTagDir
	KindRecent
	KindSource
	KindModel
	KindViews
	KindViewDir
	KindConversation     // /chats/<id>  (no trailing slash, non-directory reference)
	KindConversationRoot // /chats/<id>/ (trailing slash, directory)
	KindMessageNode
	KindMessageFile
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "Root"
	case KindChats:
		return "Chats"
	case KindStarred:
		return "Starred"
	case KindPinned:
		return "Pinned"
	case KindArchived:
		return "Archived"
	case KindTags:
		return "Tags"
	case KindTagDir:
		return "TagDir"
	case KindRecent:
		return "Recent"
	case KindSource:
		return "Source"
	case KindModel:
		return "Model"
	case KindViews:
		return "Views"
	case KindViewDir:
		return "ViewDir"
	case KindConversation:
		return "Conversation"
	case KindConversationRoot:
		return "ConversationRoot"
	case KindMessageNode:
		return "MessageNode"
	case KindMessageFile:
		return "MessageFile"
	default:
		return "Unknown"
	}
}

// MetaFile is the closed set of synthetic metadata file names exposed at a
// MessageNode.
type MetaFile string

const (
	MetaText      MetaFile = "text"
	MetaRole      MetaFile = "role"
	MetaTimestamp MetaFile = "timestamp"
	MetaID        MetaFile = "id"
)

// Path is the parsed, classified representation of a raw path string.
type Path struct {
	Raw            string
	Normalized     string
	Segments       []string
	Kind           Kind
	ConversationID string
	TagPath        string // slash-joined tag segments, set for Tags/TagDir
	ViewName       string
	MessagePath    []int // 1-based message-node indices, in tree-walk order
	FileName       MetaFile
	IsDirectory    bool
}

// Error is the typed failure mode returned by Parse.
type Error struct {
	Reason string
}

func (e *Error) Error() string { return e.Reason }

func invalid(reason string) error { return &Error{Reason: reason} }
