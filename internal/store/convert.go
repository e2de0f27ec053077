package store

import (
	"time"

	"github.com/google/uuid"

	"convfs/internal/model"
)

// nowFunc is the package clock, overridable in tests.
var nowFunc = time.Now

// newConversationID mints an id for DuplicateConversation, the same
// github.com/google/uuid generator the in-memory repo.MockRepository uses.
func newConversationID() string { return uuid.NewString() }

// newMessageID mints an id for a cloned message. messages.id is a global
// primary key, so clones can never reuse the source conversation's ids.
func newMessageID() string { return uuid.NewString() }

func unixToTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

func timeToUnix(t time.Time) int64 {
	if t.IsZero() {
		return nowFunc().Unix()
	}
	return t.Unix()
}

// summaryScanner is satisfied by both *sql.Row and *sql.Rows, so
// scanSummary can be shared between single-row and multi-row queries.
type summaryScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row summaryScanner) (model.ConversationSummary, error) {
	var s model.ConversationSummary
	var createdAt, updatedAt int64
	var starred, pinned, archived int
	if err := row.Scan(&s.ID, &s.Title, &s.Source, &s.Model, &s.Project, &createdAt, &updatedAt, &starred, &pinned, &archived); err != nil {
		return s, err
	}
	s.CreatedAt = unixToTime(createdAt)
	s.UpdatedAt = unixToTime(updatedAt)
	s.Starred = starred != 0
	s.Pinned = pinned != 0
	s.Archived = archived != 0
	return s, nil
}

func scanMessage(row summaryScanner) (*model.Message, error) {
	msg := &model.Message{}
	var timestamp int64
	var metaModel, metaUser string
	if err := row.Scan(&msg.ID, &msg.ParentID, &msg.Role, &msg.Content, &timestamp, &metaModel, &metaUser); err != nil {
		return nil, err
	}
	msg.Timestamp = unixToTime(timestamp)
	if metaModel != "" || metaUser != "" {
		msg.Metadata = &model.MessageMetadata{Model: metaModel, User: metaUser}
	}
	return msg, nil
}
