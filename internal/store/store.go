// Package store is the concrete implementation of the repo.Repository
// interface that backs `convfs shell`/`convfs mount` outside of tests: a
// Store wrapping *sql.DB over a SQLite database, with an embedded schema
// and hand-written queries.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"convfs/internal/model"
	"convfs/internal/repo"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps a SQLite-backed conversation database and implements
// repo.Repository.
type Store struct {
	db *sql.DB
}

// Open opens or creates a SQLite database at dbPath, initializing the
// schema if needed. An incompatible existing schema is deleted and
// recreated rather than migrated; the store is a rebuildable cache of
// conversation data, not the system of record for anything else.
func Open(dbPath string) (*Store, error) {
	s, err := openDB(dbPath)
	if err != nil {
		if strings.Contains(err.Error(), "no such column") ||
			strings.Contains(err.Error(), "no such table") ||
			strings.Contains(err.Error(), "SQL logic error") {
			if removeErr := os.Remove(dbPath); removeErr != nil && !os.IsNotExist(removeErr) {
				return nil, fmt.Errorf("remove incompatible cache: %w", removeErr)
			}
			os.Remove(dbPath + "-wal")
			os.Remove(dbPath + "-shm")
			return openDB(dbPath)
		}
		return nil, err
	}
	return s, nil
}

func openDB(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	connStr := "file:" + strings.ReplaceAll(dbPath, " ", "%20") + "?_time_format=sqlite"
	if dbPath == ":memory:" {
		// A plain in-memory database is private to one connection; shared
		// cache lets every pooled connection see the same database.
		connStr = "file::memory:?cache=shared&_time_format=sqlite"
	}
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

// DB returns the underlying connection for callers that need raw access
// (migrations, admin tooling).
func (s *Store) DB() *sql.DB { return s.db }

var _ repo.Repository = (*Store)(nil)

func (s *Store) ListConversations(ctx context.Context, filter repo.Filter) ([]model.ConversationSummary, error) {
	where, args := filterClause(filter)
	order := orderClause(filter.OrderBy)
	query := fmt.Sprintf(`SELECT id, title, source, model, project, created_at, updated_at, starred, pinned, archived
		FROM conversations %s %s`, where, order)
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []model.ConversationSummary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		if len(filter.Tags) > 0 {
			tags, err := s.tagsFor(ctx, summary.ID)
			if err != nil {
				return nil, err
			}
			summary.Tags = tags
			if !hasAllTags(tags, filter.Tags) {
				continue
			}
		} else {
			tags, err := s.tagsFor(ctx, summary.ID)
			if err != nil {
				return nil, err
			}
			summary.Tags = tags
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

func hasAllTags(have, want []string) bool {
	set := make(map[string]bool, len(have))
	for _, t := range have {
		set[t] = true
	}
	for _, w := range want {
		if !set[w] {
			return false
		}
	}
	return true
}

func filterClause(f repo.Filter) (string, []any) {
	var conds []string
	var args []any

	if f.Starred != nil {
		conds = append(conds, "starred = ?")
		args = append(args, boolToInt(*f.Starred))
	}
	if f.Pinned != nil {
		conds = append(conds, "pinned = ?")
		args = append(args, boolToInt(*f.Pinned))
	}
	if f.Archived != nil {
		conds = append(conds, "archived = ?")
		args = append(args, boolToInt(*f.Archived))
	} else if !f.IncludeArchived {
		conds = append(conds, "archived = 0")
	}
	if f.Source != "" {
		conds = append(conds, "source = ?")
		args = append(args, f.Source)
	}
	if f.Project != "" {
		conds = append(conds, "project = ?")
		args = append(args, f.Project)
	}
	if f.Model != "" {
		conds = append(conds, "model = ?")
		args = append(args, f.Model)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(orderBy repo.OrderBy) string {
	switch orderBy {
	case repo.OrderByCreatedAt:
		return "ORDER BY created_at DESC"
	case repo.OrderByTitle:
		return "ORDER BY title ASC"
	default:
		return "ORDER BY updated_at DESC"
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *Store) tagsFor(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tag FROM tags WHERE conversation_id = ? ORDER BY tag`, id)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (s *Store) LoadConversation(ctx context.Context, id string) (*model.ConversationTree, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, source, model, project, created_at, updated_at FROM conversations WHERE id = ?`, id)

	var tid, title, source, modelName, project string
	var createdAt, updatedAt int64
	if err := row.Scan(&tid, &title, &source, &modelName, &project, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, &repo.ErrNotFound{ID: id}
		}
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	tags, err := s.tagsFor(ctx, id)
	if err != nil {
		return nil, err
	}

	tree := model.NewConversationTree(tid, title, model.ConversationMetadata{
		Source:    source,
		Model:     modelName,
		Project:   project,
		Tags:      tags,
		CreatedAt: unixToTime(createdAt),
		UpdatedAt: unixToTime(updatedAt),
	})

	rows, err := s.db.QueryContext(ctx, `SELECT id, parent_id, role, content, timestamp, meta_model, meta_user
		FROM messages WHERE conversation_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		tree.AddMessage(msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tree, nil
}

func (s *Store) SaveConversation(ctx context.Context, tree *model.ConversationTree) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO conversations (id, title, source, model, project, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, source = excluded.source,
			model = excluded.model, project = excluded.project, updated_at = excluded.updated_at`,
		tree.ID, tree.Title, tree.Metadata.Source, tree.Metadata.Model, tree.Metadata.Project,
		timeToUnix(tree.Metadata.CreatedAt), timeToUnix(tree.Metadata.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE conversation_id = ?`, tree.ID); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	for _, tag := range tree.Metadata.Tags {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO tags (conversation_id, tag) VALUES (?, ?)`, tree.ID, tag); err != nil {
			return fmt.Errorf("save tag: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, tree.ID); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	seq := 0
	var insertAll func(id string)
	insertAll = func(id string) {
		msg := tree.Messages[id]
		if msg == nil || err != nil {
			return
		}
		metaModel, metaUser := "", ""
		if msg.Metadata != nil {
			metaModel, metaUser = msg.Metadata.Model, msg.Metadata.User
		}
		_, execErr := tx.ExecContext(ctx, `INSERT INTO messages
			(id, conversation_id, parent_id, role, content, timestamp, seq, meta_model, meta_user)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			msg.ID, tree.ID, msg.ParentID, string(msg.Role), msg.Content, timeToUnix(msg.Timestamp), seq, metaModel, metaUser)
		if execErr != nil {
			err = fmt.Errorf("save message: %w", execErr)
			return
		}
		seq++
		for _, childID := range tree.Children(id) {
			insertAll(childID)
		}
	}
	for _, rootID := range tree.RootMessageIDs {
		insertAll(rootID)
	}
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) ListConversationsByTag(ctx context.Context, tagPath string) ([]model.ConversationSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT c.id, c.title, c.source, c.model, c.project, c.created_at, c.updated_at, c.starred, c.pinned, c.archived
		FROM conversations c JOIN tags t ON t.conversation_id = c.id
		WHERE t.tag = ? ORDER BY c.updated_at DESC`, tagPath)
	if err != nil {
		return nil, fmt.Errorf("list conversations by tag: %w", err)
	}
	defer rows.Close()

	var out []model.ConversationSummary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		tags, err := s.tagsFor(ctx, summary.ID)
		if err != nil {
			return nil, err
		}
		summary.Tags = tags
		out = append(out, summary)
	}
	return out, rows.Err()
}

func (s *Store) ListTagChildren(ctx context.Context, parentTag string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT tag FROM tags`)
	if err != nil {
		return nil, fmt.Errorf("list tag children: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		if child, ok := immediateTagChild(tag, parentTag); ok {
			seen[child] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	return out, nil
}

func immediateTagChild(tag, parent string) (string, bool) {
	if parent == "" {
		parts := strings.SplitN(tag, "/", 2)
		return parts[0], true
	}
	prefix := parent + "/"
	if !strings.HasPrefix(tag, prefix) {
		return "", false
	}
	parts := strings.SplitN(strings.TrimPrefix(tag, prefix), "/", 2)
	return parts[0], true
}

func (s *Store) SearchConversations(ctx context.Context, query string, filter repo.Filter, titleOnly, contentOnly bool, limit int) ([]model.ConversationSummary, error) {
	all, err := s.ListConversations(ctx, filter)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	var out []model.ConversationSummary
	for _, summary := range all {
		if !contentOnly && strings.Contains(strings.ToLower(summary.Title), q) {
			out = append(out, summary)
			continue
		}
		if titleOnly {
			continue
		}
		matched, err := s.conversationContains(ctx, summary.ID, q)
		if err != nil {
			return nil, err
		}
		if matched {
			out = append(out, summary)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) conversationContains(ctx context.Context, id, lowerQuery string) (bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT 1 FROM messages WHERE conversation_id = ? AND LOWER(content) LIKE ? LIMIT 1`,
		id, "%"+lowerQuery+"%")
	var one int
	err := row.Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("search content: %w", err)
	}
	return true, nil
}

func (s *Store) Star(ctx context.Context, id string, flag bool) error {
	return s.setFlag(ctx, "starred", id, flag)
}

func (s *Store) Pin(ctx context.Context, id string, flag bool) error {
	return s.setFlag(ctx, "pinned", id, flag)
}

func (s *Store) Archive(ctx context.Context, id string, flag bool) error {
	return s.setFlag(ctx, "archived", id, flag)
}

func (s *Store) setFlag(ctx context.Context, column, id string, flag bool) error {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`UPDATE conversations SET %s = ? WHERE id = ?`, column), boolToInt(flag), id)
	if err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &repo.ErrNotFound{ID: id}
	}
	return nil
}

func (s *Store) UpdateConversationMetadata(ctx context.Context, id string, title, project *string) (bool, error) {
	if title == nil && project == nil {
		return true, nil
	}
	set, args := []string{}, []any{}
	if title != nil {
		set = append(set, "title = ?")
		args = append(args, *title)
	}
	if project != nil {
		set = append(set, "project = ?")
		args = append(args, *project)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`UPDATE conversations SET %s WHERE id = ?`, strings.Join(set, ", ")), args...)
	if err != nil {
		return false, fmt.Errorf("update metadata: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) AddTags(ctx context.Context, id string, tags []string) (bool, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM conversations WHERE id = ?`, id).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check conversation: %w", err)
	}

	for _, tag := range tags {
		if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO tags (conversation_id, tag) VALUES (?, ?)`, id, tag); err != nil {
			return false, fmt.Errorf("add tag: %w", err)
		}
	}
	return true, nil
}

func (s *Store) RemoveTag(ctx context.Context, id string, tag string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE conversation_id = ? AND tag = ?`, id, tag)
	if err != nil {
		return false, fmt.Errorf("remove tag: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) DuplicateConversation(ctx context.Context, id string, newTitle string) (string, error) {
	tree, err := s.LoadConversation(ctx, id)
	if err != nil {
		return "", err
	}

	newID := newConversationID()
	title := tree.Title
	if newTitle != "" {
		title = newTitle
	}
	clone := model.NewConversationTree(newID, title, tree.Metadata)
	for _, rootID := range tree.RootMessageIDs {
		cloneSubtree(tree, clone, rootID, "")
	}
	clone.Metadata.CreatedAt = nowFunc()
	clone.Metadata.UpdatedAt = clone.Metadata.CreatedAt

	if err := s.SaveConversation(ctx, clone); err != nil {
		return "", err
	}
	return newID, nil
}

// cloneSubtree copies the subtree rooted at id into dst. Message ids are
// globally unique across conversations (messages.id is the table's primary
// key), so each copy gets a fresh id and children are re-parented onto
// their parent's new id.
func cloneSubtree(src, dst *model.ConversationTree, id, newParentID string) {
	msg := src.Messages[id]
	if msg == nil {
		return
	}
	clonedMsg := *msg
	clonedMsg.ID = newMessageID()
	clonedMsg.ParentID = newParentID
	dst.AddMessage(&clonedMsg)
	for _, childID := range src.Children(id) {
		cloneSubtree(src, dst, childID, clonedMsg.ID)
	}
}

func (s *Store) DeleteConversation(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete conversation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
