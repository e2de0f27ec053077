// Package navigator maps a parsed vfspath.Path to an ordered list of
// directory entries: one listing strategy per path kind, walking
// branching conversation trees via positional message indices, resolving
// identifier prefixes, and caching listings behind a short TTL. The
// strategies are plain functions over vfspath.Path; the VFS itself is
// never mounted, pkg/fusebridge adapts it when a kernel mount is wanted.
package navigator

import "time"

// Entry is one directory entry produced by a listing. Conversation and
// message fields are both optional; which one is populated depends on
// what kind of listing produced the entry.
type Entry struct {
	Name        string
	IsDirectory bool

	// Conversation fields, set for entries representing a conversation.
	ConversationID string
	Title          string
	UpdatedAt      time.Time
	Starred        bool
	Pinned         bool
	Archived       bool
	Source         string
	Model          string
	Tags           []string

	// Message fields, set for entries representing a message node.
	MessageID      string
	Role           string
	ContentPreview string
	Timestamp      time.Time
	HasChildren    bool
}
