// Package repo defines the data access interface the VFS core consumes:
// one synchronous method per read query plus a small mutation surface,
// returning the domain's own types directly. The core calls these
// methods and nothing else; storage is the implementation's business.
package repo

import (
	"context"

	"convfs/internal/model"
)

// OrderBy is the set of keys list_conversations may sort by.
type OrderBy string

const (
	OrderByUpdatedAt OrderBy = "updated_at"
	OrderByCreatedAt OrderBy = "created_at"
	OrderByTitle     OrderBy = "title"
)

// Filter narrows a ListConversations call. A zero Filter lists everything
// except archived conversations, ordered by UpdatedAt descending.
type Filter struct {
	Starred         *bool
	Pinned          *bool
	Archived        *bool
	IncludeArchived bool
	Source          string
	Project         string
	Model           string
	Tags            []string
	Limit           int
	OrderBy         OrderBy
}

// Repository is the read-mostly, small-mutation-surface interface the VFS
// core requires. Implementations own all ConversationTree storage; the
// Navigator holds nothing from a call beyond the listing it builds.
type Repository interface {
	ListConversations(ctx context.Context, filter Filter) ([]model.ConversationSummary, error)
	LoadConversation(ctx context.Context, id string) (*model.ConversationTree, error)
	SaveConversation(ctx context.Context, tree *model.ConversationTree) error

	ListConversationsByTag(ctx context.Context, tagPath string) ([]model.ConversationSummary, error)
	ListTagChildren(ctx context.Context, parentTag string) ([]string, error)

	SearchConversations(ctx context.Context, query string, filter Filter, titleOnly, contentOnly bool, limit int) ([]model.ConversationSummary, error)

	Star(ctx context.Context, id string, flag bool) error
	Pin(ctx context.Context, id string, flag bool) error
	Archive(ctx context.Context, id string, flag bool) error

	UpdateConversationMetadata(ctx context.Context, id string, title, project *string) (bool, error)

	AddTags(ctx context.Context, id string, tags []string) (bool, error)
	RemoveTag(ctx context.Context, id string, tag string) (bool, error)

	DuplicateConversation(ctx context.Context, id string, newTitle string) (string, error)
	DeleteConversation(ctx context.Context, id string) (bool, error)
}

// ErrNotFound is returned by Repository implementations when a
// conversation id does not exist.
type ErrNotFound struct {
	ID string
}

func (e *ErrNotFound) Error() string {
	return "conversation not found: " + e.ID
}
