package repo

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"convfs/internal/model"
)

// MockRepository implements Repository with in-memory data for testing and
// for the `convfs shell --fixture` demo mode. All data lives in plain maps
// and can be populated directly by tests through Seed.
type MockRepository struct {
	summaries map[string]*model.ConversationSummary
	trees     map[string]*model.ConversationTree
	tags      map[string][]string // conversation id -> tags
}

// NewMockRepository creates an empty fixture repository.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		summaries: make(map[string]*model.ConversationSummary),
		trees:     make(map[string]*model.ConversationTree),
		tags:      make(map[string][]string),
	}
}

// Seed registers a conversation tree and derives its summary. Tests call
// this to populate the fixture before exercising the VFS on top of it.
func (m *MockRepository) Seed(tree *model.ConversationTree) {
	m.trees[tree.ID] = tree
	updated := tree.Metadata.UpdatedAt
	if updated.IsZero() {
		updated = tree.Metadata.CreatedAt
	}
	summary := &model.ConversationSummary{
		ID:        tree.ID,
		Title:     tree.Title,
		CreatedAt: tree.Metadata.CreatedAt,
		UpdatedAt: updated,
		Tags:      append([]string(nil), tree.Metadata.Tags...),
		Source:    tree.Metadata.Source,
		Model:     tree.Metadata.Model,
		Project:   tree.Metadata.Project,
	}
	m.summaries[tree.ID] = summary
	m.tags[tree.ID] = append([]string(nil), tree.Metadata.Tags...)
}

func (m *MockRepository) ListConversations(ctx context.Context, filter Filter) ([]model.ConversationSummary, error) {
	var out []model.ConversationSummary
	for _, s := range m.summaries {
		if !matchesFilter(*s, filter) {
			continue
		}
		out = append(out, *s)
	}
	sortSummaries(out, filter.OrderBy)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matchesFilter(s model.ConversationSummary, f Filter) bool {
	if f.Starred != nil && s.Starred != *f.Starred {
		return false
	}
	if f.Pinned != nil && s.Pinned != *f.Pinned {
		return false
	}
	if f.Archived != nil {
		if s.Archived != *f.Archived {
			return false
		}
	} else if !f.IncludeArchived && s.Archived {
		return false
	}
	if f.Source != "" && s.Source != f.Source {
		return false
	}
	if f.Project != "" && s.Project != f.Project {
		return false
	}
	if f.Model != "" && s.Model != f.Model {
		return false
	}
	for _, tag := range f.Tags {
		if !containsString(s.Tags, tag) {
			return false
		}
	}
	return true
}

func containsString(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func sortSummaries(list []model.ConversationSummary, orderBy OrderBy) {
	switch orderBy {
	case OrderByCreatedAt:
		sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	case OrderByTitle:
		sort.Slice(list, func(i, j int) bool { return list[i].Title < list[j].Title })
	default:
		sort.Slice(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
	}
}

func (m *MockRepository) LoadConversation(ctx context.Context, id string) (*model.ConversationTree, error) {
	tree, ok := m.trees[id]
	if !ok {
		return nil, &ErrNotFound{ID: id}
	}
	return tree, nil
}

func (m *MockRepository) SaveConversation(ctx context.Context, tree *model.ConversationTree) error {
	m.trees[tree.ID] = tree
	return nil
}

func (m *MockRepository) ListConversationsByTag(ctx context.Context, tagPath string) ([]model.ConversationSummary, error) {
	var out []model.ConversationSummary
	for id, tags := range m.tags {
		if containsString(tags, tagPath) {
			out = append(out, *m.summaries[id])
		}
	}
	sortSummaries(out, OrderByUpdatedAt)
	return out, nil
}

func (m *MockRepository) ListTagChildren(ctx context.Context, parentTag string) ([]string, error) {
	seen := make(map[string]bool)
	for _, tags := range m.tags {
		for _, tag := range tags {
			child, ok := immediateChild(tag, parentTag)
			if ok {
				seen[child] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// immediateChild returns the path segment of tag that sits immediately
// below parent (e.g. tag="a/b/c", parent="a" -> "b", true), or false if tag
// is not a strict descendant of parent.
func immediateChild(tag, parent string) (string, bool) {
	if parent == "" {
		parts := strings.SplitN(tag, "/", 2)
		return parts[0], true
	}
	prefix := parent + "/"
	if !strings.HasPrefix(tag, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(tag, prefix)
	parts := strings.SplitN(rest, "/", 2)
	return parts[0], true
}

func (m *MockRepository) SearchConversations(ctx context.Context, query string, filter Filter, titleOnly, contentOnly bool, limit int) ([]model.ConversationSummary, error) {
	query = strings.ToLower(query)
	var out []model.ConversationSummary
	for id, s := range m.summaries {
		if !matchesFilter(*s, filter) {
			continue
		}
		if !contentOnly && strings.Contains(strings.ToLower(s.Title), query) {
			out = append(out, *s)
			continue
		}
		if titleOnly {
			continue
		}
		if tree, ok := m.trees[id]; ok {
			for _, msg := range tree.Messages {
				if strings.Contains(strings.ToLower(msg.Content), query) {
					out = append(out, *s)
					break
				}
			}
		}
	}
	sortSummaries(out, OrderByUpdatedAt)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockRepository) Star(ctx context.Context, id string, flag bool) error {
	s, ok := m.summaries[id]
	if !ok {
		return &ErrNotFound{ID: id}
	}
	s.Starred = flag
	return nil
}

func (m *MockRepository) Pin(ctx context.Context, id string, flag bool) error {
	s, ok := m.summaries[id]
	if !ok {
		return &ErrNotFound{ID: id}
	}
	s.Pinned = flag
	return nil
}

func (m *MockRepository) Archive(ctx context.Context, id string, flag bool) error {
	s, ok := m.summaries[id]
	if !ok {
		return &ErrNotFound{ID: id}
	}
	s.Archived = flag
	return nil
}

func (m *MockRepository) UpdateConversationMetadata(ctx context.Context, id string, title, project *string) (bool, error) {
	s, ok := m.summaries[id]
	if !ok {
		return false, nil
	}
	if title != nil {
		s.Title = *title
		if tree, ok := m.trees[id]; ok {
			tree.Title = *title
		}
	}
	if project != nil {
		s.Project = *project
	}
	return true, nil
}

func (m *MockRepository) AddTags(ctx context.Context, id string, tags []string) (bool, error) {
	s, ok := m.summaries[id]
	if !ok {
		return false, nil
	}
	for _, tag := range tags {
		if !containsString(m.tags[id], tag) {
			m.tags[id] = append(m.tags[id], tag)
		}
	}
	s.Tags = m.tags[id]
	return true, nil
}

func (m *MockRepository) RemoveTag(ctx context.Context, id string, tag string) (bool, error) {
	tags, ok := m.tags[id]
	if !ok {
		return false, nil
	}
	out := tags[:0]
	removed := false
	for _, t := range tags {
		if t == tag {
			removed = true
			continue
		}
		out = append(out, t)
	}
	m.tags[id] = out
	if s, ok := m.summaries[id]; ok {
		s.Tags = out
	}
	return removed, nil
}

func (m *MockRepository) DuplicateConversation(ctx context.Context, id string, newTitle string) (string, error) {
	tree, ok := m.trees[id]
	if !ok {
		return "", &ErrNotFound{ID: id}
	}
	newID := uuid.NewString()
	title := tree.Title
	if newTitle != "" {
		title = newTitle
	}
	clone := model.NewConversationTree(newID, title, tree.Metadata)
	for _, rootID := range tree.RootMessageIDs {
		cloneSubtree(tree, clone, rootID, "")
	}
	clone.Metadata.CreatedAt = time.Now()
	clone.Metadata.UpdatedAt = clone.Metadata.CreatedAt
	m.Seed(clone)
	return newID, nil
}

// cloneSubtree copies the subtree rooted at id into dst, minting a fresh
// id per message so a clone never shares message ids with its source.
func cloneSubtree(src, dst *model.ConversationTree, id, newParentID string) {
	msg := src.Messages[id]
	if msg == nil {
		return
	}
	clonedMsg := *msg
	clonedMsg.ID = uuid.NewString()
	clonedMsg.ParentID = newParentID
	dst.AddMessage(&clonedMsg)
	for _, childID := range src.Children(id) {
		cloneSubtree(src, dst, childID, clonedMsg.ID)
	}
}

func (m *MockRepository) DeleteConversation(ctx context.Context, id string) (bool, error) {
	if _, ok := m.summaries[id]; !ok {
		return false, nil
	}
	delete(m.summaries, id)
	delete(m.trees, id)
	delete(m.tags, id)
	return true, nil
}
