// Package model defines the conversation data model shared by the
// Repository interface and everything built on top of it: summaries used
// for listings, full message trees, and the individual messages within a
// tree.
package model

import "time"

// Role identifies who produced a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// ConversationSummary is the lightweight record used for listings. It is a
// read-only snapshot: callers must not mutate a summary and expect the
// change to propagate back to the Repository.
type ConversationSummary struct {
	ID        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Tags      []string
	Source    string
	Model     string
	Project   string
	Starred   bool
	Pinned    bool
	Archived  bool
}

// MessageMetadata is the optional metadata bag attached to a Message.
type MessageMetadata struct {
	Model string
	User  string
}

// Message is a single node in a ConversationTree.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time
	ParentID  string // empty for root messages
	Metadata  *MessageMetadata
}

// ConversationMetadata holds the non-message fields of a ConversationTree.
type ConversationMetadata struct {
	Source    string
	Model     string
	Project   string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ConversationTree is the full message DAG (in practice, a forest) for one
// conversation. Messages are stored as a flat map keyed by ID; the tree
// shape is recovered from each Message's ParentID plus the ordered list of
// root IDs. Children are derived on demand from ParentID rather than stored
// as their own list on Message, so there is exactly one source of truth for
// the parent/child edge.
type ConversationTree struct {
	ID             string
	Title          string
	Metadata       ConversationMetadata
	Messages       map[string]*Message
	RootMessageIDs []string // insertion order, 1-based in VFS numbering

	childOrder []string            // insertion order of non-root messages
	childrenOf map[string][]string // lazily derived from childOrder, ParentID -> child IDs
}

// NewConversationTree creates an empty tree ready for AddMessage calls.
func NewConversationTree(id, title string, meta ConversationMetadata) *ConversationTree {
	return &ConversationTree{
		ID:       id,
		Title:    title,
		Metadata: meta,
		Messages: make(map[string]*Message),
	}
}

// AddMessage inserts msg into the tree. If msg.ParentID is empty the message
// is appended to RootMessageIDs; otherwise it is recorded in insertion order
// for deterministic child listings regardless of map iteration order.
func (t *ConversationTree) AddMessage(msg *Message) {
	t.Messages[msg.ID] = msg
	if msg.ParentID == "" {
		t.RootMessageIDs = append(t.RootMessageIDs, msg.ID)
	} else {
		t.childOrder = append(t.childOrder, msg.ID)
	}
	t.childrenOf = nil // invalidate the derived index
}

// Children returns the ordered child message IDs of parentID, or the root
// message IDs when parentID is empty. The result must not be mutated.
func (t *ConversationTree) Children(parentID string) []string {
	if parentID == "" {
		return t.RootMessageIDs
	}
	if t.childrenOf == nil {
		t.buildChildIndex()
	}
	return t.childrenOf[parentID]
}

func (t *ConversationTree) buildChildIndex() {
	t.childrenOf = make(map[string][]string, len(t.Messages))
	for _, id := range t.childOrder {
		msg := t.Messages[id]
		if msg == nil || msg.ParentID == "" {
			continue
		}
		t.childrenOf[msg.ParentID] = append(t.childrenOf[msg.ParentID], id)
	}
}

// MessagePath is a root-to-leaf sequence of messages.
type MessagePath []*Message

// AllPaths enumerates every root-to-leaf sequence in the tree.
func (t *ConversationTree) AllPaths() []MessagePath {
	var paths []MessagePath
	var walk func(id string, acc MessagePath)
	walk = func(id string, acc MessagePath) {
		msg := t.Messages[id]
		if msg == nil {
			return
		}
		acc = append(acc, msg)
		children := t.Children(id)
		if len(children) == 0 {
			pathCopy := make(MessagePath, len(acc))
			copy(pathCopy, acc)
			paths = append(paths, pathCopy)
			return
		}
		for _, childID := range children {
			walk(childID, acc)
		}
	}
	for _, rootID := range t.RootMessageIDs {
		walk(rootID, nil)
	}
	return paths
}

// LongestPath returns any maximum-length root-to-leaf path, tie-broken by
// taking the first one encountered in traversal order.
func (t *ConversationTree) LongestPath() MessagePath {
	var longest MessagePath
	for _, p := range t.AllPaths() {
		if len(p) > len(longest) {
			longest = p
		}
	}
	return longest
}
