package navigator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"convfs/internal/cache"
	"convfs/internal/model"
	"convfs/internal/repo"
	"convfs/internal/vfspath"
)

// DefaultTTL is the Navigator's default cache lifetime. Listings may be
// up to this stale; any mutation command clears the cache outright.
const DefaultTTL = 2 * time.Second

// Navigator maps a parsed vfspath.Path to an ordered list of Entry values.
// One Navigator owns one cache; there is no cross-instance sharing.
type Navigator struct {
	repo     repo.Repository
	cache    *cache.Cache[[]Entry]
	group    singleflight.Group // collapses concurrent recomputes of the same key
	hasViews bool
	now      func() time.Time
}

// New creates a Navigator backed by r, caching listings for ttl.
func New(r repo.Repository, ttl time.Duration) *Navigator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Navigator{
		repo:  r,
		cache: cache.New[[]Entry](ttl, 0),
		now:   time.Now,
	}
}

// EnableViews marks a view store as configured; otherwise Views/ViewDir
// listings are always empty and "views" is absent from the root.
func (n *Navigator) EnableViews(enabled bool) { n.hasViews = enabled }

// ClearCache empties the listing cache. Called after every mutating
// command so the next ls/find/tree observes the write.
func (n *Navigator) ClearCache() { n.cache.Clear() }

func cacheKey(p *vfspath.Path) string {
	if len(p.MessagePath) == 0 {
		return p.Normalized
	}
	parts := make([]string, len(p.MessagePath))
	for i, n := range p.MessagePath {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return p.Normalized + "::msg::" + strings.Join(parts, ",")
}

// ListDirectory produces the ordered entry list for p, consulting the
// cache first.
func (n *Navigator) ListDirectory(ctx context.Context, p *vfspath.Path) ([]Entry, error) {
	if !p.IsDirectory {
		return nil, invalid("Not a directory: %s", p.Normalized)
	}

	key := cacheKey(p)
	if cached, ok := n.cache.Get(key); ok {
		return cached, nil
	}

	resultAny, err, _ := n.group.Do(key, func() (any, error) {
		if cached, ok := n.cache.Get(key); ok {
			return cached, nil
		}
		entries, err := n.compute(ctx, p)
		if err != nil {
			return nil, err
		}
		n.cache.Set(key, entries)
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return resultAny.([]Entry), nil
}

func (n *Navigator) compute(ctx context.Context, p *vfspath.Path) ([]Entry, error) {
	switch p.Kind {
	case vfspath.KindRoot:
		return n.listRoot(), nil
	case vfspath.KindChats:
		return n.listConversations(ctx, repo.Filter{})
	case vfspath.KindStarred:
		t := true
		return n.listConversations(ctx, repo.Filter{Starred: &t})
	case vfspath.KindPinned:
		t := true
		return n.listConversations(ctx, repo.Filter{Pinned: &t})
	case vfspath.KindArchived:
		t := true
		return n.listConversations(ctx, repo.Filter{Archived: &t, IncludeArchived: true})
	case vfspath.KindTags:
		return n.listTagChildren(ctx, "")
	case vfspath.KindTagDir:
		return n.listTagDir(ctx, p.TagPath)
	case vfspath.KindRecent:
		return n.listRecent(ctx, p.Segments)
	case vfspath.KindSource:
		return n.listSourceOrModel(ctx, p.Segments, true)
	case vfspath.KindModel:
		return n.listSourceOrModel(ctx, p.Segments, false)
	case vfspath.KindViews:
		return n.listViews(), nil
	case vfspath.KindViewDir:
		return nil, nil
	case vfspath.KindConversationRoot:
		return n.listConversationRoot(ctx, p.ConversationID)
	case vfspath.KindMessageNode:
		return n.listMessageNode(ctx, p.ConversationID, p.MessagePath)
	default:
		return nil, invalid("Not a directory: %s", p.Normalized)
	}
}

func (n *Navigator) listRoot() []Entry {
	names := []string{"chats", "tags", "starred", "pinned", "archived", "recent", "source", "model"}
	if n.hasViews {
		names = append(names, "views")
	}
	entries := make([]Entry, len(names))
	for i, name := range names {
		entries[i] = Entry{Name: name, IsDirectory: true}
	}
	return entries
}

func (n *Navigator) listViews() []Entry {
	if !n.hasViews {
		return nil
	}
	return nil
}

func summaryEntry(s model.ConversationSummary) Entry {
	return Entry{
		Name:           s.ID,
		IsDirectory:    true,
		ConversationID: s.ID,
		Title:          s.Title,
		UpdatedAt:      s.UpdatedAt,
		Starred:        s.Starred,
		Pinned:         s.Pinned,
		Archived:       s.Archived,
		Source:         s.Source,
		Model:          s.Model,
		Tags:           s.Tags,
	}
}

func (n *Navigator) listConversations(ctx context.Context, filter repo.Filter) ([]Entry, error) {
	summaries, err := n.repo.ListConversations(ctx, filter)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(summaries))
	for i, s := range summaries {
		entries[i] = summaryEntry(s)
	}
	return entries, nil
}

func (n *Navigator) listTagChildren(ctx context.Context, parent string) ([]Entry, error) {
	children, err := n.repo.ListTagChildren(ctx, parent)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(children))
	for i, c := range children {
		entries[i] = Entry{Name: c, IsDirectory: true}
	}
	return entries, nil
}

func (n *Navigator) listTagDir(ctx context.Context, tagPath string) ([]Entry, error) {
	children, err := n.listTagChildren(ctx, tagPath)
	if err != nil {
		return nil, err
	}
	summaries, err := n.repo.ListConversationsByTag(ctx, tagPath)
	if err != nil {
		return nil, err
	}
	entries := append([]Entry{}, children...)
	for _, s := range summaries {
		entries = append(entries, summaryEntry(s))
	}
	return entries, nil
}

var recentPeriods = []string{"today", "this-week", "this-month", "older"}

func (n *Navigator) listRecent(ctx context.Context, segments []string) ([]Entry, error) {
	if len(segments) == 1 {
		entries := make([]Entry, len(recentPeriods))
		for i, p := range recentPeriods {
			entries[i] = Entry{Name: p, IsDirectory: true}
		}
		return entries, nil
	}

	period := segments[1]
	summaries, err := n.repo.ListConversations(ctx, repo.Filter{})
	if err != nil {
		return nil, err
	}

	now := n.now()
	var entries []Entry
	for _, s := range summaries {
		when := s.CreatedAt
		if when.IsZero() {
			when = s.UpdatedAt
		}
		if recentBucket(when, now) == period {
			entries = append(entries, summaryEntry(s))
		}
	}
	return entries, nil
}

// recentBucket classifies a timestamp into one of the fixed recent
// periods, using Monday as the start of the week.
func recentBucket(when, now time.Time) string {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !when.Before(startOfDay) {
		return "today"
	}

	weekday := int(now.Weekday())
	if weekday == 0 { // Sunday -> 7, so Monday is day 1 of the ISO week
		weekday = 7
	}
	startOfWeek := startOfDay.AddDate(0, 0, -(weekday - 1))
	if !when.Before(startOfWeek) {
		return "this-week"
	}

	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if !when.Before(startOfMonth) {
		return "this-month"
	}

	return "older"
}

func (n *Navigator) listSourceOrModel(ctx context.Context, segments []string, bySource bool) ([]Entry, error) {
	summaries, err := n.repo.ListConversations(ctx, repo.Filter{})
	if err != nil {
		return nil, err
	}

	if len(segments) == 1 {
		seen := make(map[string]bool)
		for _, s := range summaries {
			v := s.Source
			if !bySource {
				v = s.Model
			}
			if v != "" {
				seen[v] = true
			}
		}
		values := make([]string, 0, len(seen))
		for v := range seen {
			values = append(values, v)
		}
		sort.Strings(values)
		entries := make([]Entry, len(values))
		for i, v := range values {
			entries[i] = Entry{Name: v, IsDirectory: true}
		}
		return entries, nil
	}

	value := segments[1]
	var entries []Entry
	for _, s := range summaries {
		v := s.Source
		if !bySource {
			v = s.Model
		}
		if v == value {
			entries = append(entries, summaryEntry(s))
		}
	}
	return entries, nil
}

func (n *Navigator) listConversationRoot(ctx context.Context, id string) ([]Entry, error) {
	tree, err := n.repo.LoadConversation(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, id)
	}
	entries := make([]Entry, len(tree.RootMessageIDs))
	for i, msgID := range tree.RootMessageIDs {
		msg := tree.Messages[msgID]
		entries[i] = messageEntry(tree, i+1, msg)
	}
	return entries, nil
}

func (n *Navigator) listMessageNode(ctx context.Context, id string, path []int) ([]Entry, error) {
	tree, err := n.repo.LoadConversation(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, id)
	}

	msg, _, err := WalkMessagePath(tree, path)
	if err != nil {
		return nil, err
	}

	entries := []Entry{
		{Name: string(vfspath.MetaText)},
		{Name: string(vfspath.MetaRole)},
		{Name: string(vfspath.MetaTimestamp)},
		{Name: string(vfspath.MetaID)},
	}

	children := tree.Children(msg.ID)
	for i, childID := range children {
		child := tree.Messages[childID]
		entries = append(entries, messageEntry(tree, i+1, child))
	}
	return entries, nil
}

func messageEntry(tree *model.ConversationTree, position int, msg *model.Message) Entry {
	if msg == nil {
		return Entry{}
	}
	return Entry{
		Name:           fmt.Sprintf("m%d", position),
		IsDirectory:    true,
		MessageID:      msg.ID,
		Role:           string(msg.Role),
		ContentPreview: preview(msg.Content, 50),
		Timestamp:      msg.Timestamp,
		HasChildren:    len(tree.Children(msg.ID)) > 0,
	}
}

func preview(content string, limit int) string {
	r := []rune(content)
	if len(r) <= limit {
		return content
	}
	return string(r[:limit]) + "…"
}

func translateRepoError(err error, id string) error {
	if _, ok := err.(*repo.ErrNotFound); ok {
		return invalid("Conversation not found: %s", id)
	}
	return err
}
