package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"chat-backend/internal/models"
	"chat-backend/internal/pagination"
)

var ErrMessageNotFound = errors.New("message not found")

const messageColumns = `id, room_id, sender_id, sender_name, receiver_ids, content, is_edited, deleted_by, metadata, created_at`

// MessageRepository defines interactions for messages, including the per-user
// soft-delete path and the inbox aggregation.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg models.Message) (models.Message, error)
	EditMessage(ctx context.Context, messageID string, content string) (models.Message, error)
	DeleteMessage(ctx context.Context, messageID string) error
	HideRoomForUser(ctx context.Context, roomID string, userID string) error
	ListRoomMessages(ctx context.Context, roomID string, userID string, page pagination.Params) (models.MessagePage, error)
	ListConversations(ctx context.Context, userID string, page pagination.Params) (models.ConversationPage, error)
}

// MessageRepo is a sqlx-backed implementation.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage persists a message and returns the stored record. Sender and
// recipients are not checked against room membership; that is the caller's
// responsibility.
func (r *MessageRepo) CreateMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	msg.ID = uuid.NewString()
	var created models.Message
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (id, room_id, sender_id, sender_name, receiver_ids, content, metadata)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         RETURNING `+messageColumns,
		msg.ID, msg.RoomID, msg.SenderID, msg.SenderName,
		pq.Array([]string(msg.ReceiverIDs)), msg.Content, msg.Metadata).
		StructScan(&created)
	return created, err
}

// EditMessage replaces the content and marks the message edited.
func (r *MessageRepo) EditMessage(ctx context.Context, messageID string, content string) (models.Message, error) {
	var updated models.Message
	err := r.db.QueryRowxContext(ctx,
		`UPDATE messages SET content=$2, is_edited=TRUE WHERE id=$1 RETURNING `+messageColumns,
		messageID, content).
		StructScan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return updated, err
}

// DeleteMessage physically removes a single message (delete for everyone).
// A missing id is not an error.
func (r *MessageRepo) DeleteMessage(ctx context.Context, messageID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id=$1`, messageID)
	return err
}

// HideRoomForUser adds the user to the deleted-by set of every message in the
// room. Set-add semantics: calling it repeatedly is safe.
func (r *MessageRepo) HideRoomForUser(ctx context.Context, roomID string, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE messages SET deleted_by = array_append(deleted_by, $2)
         WHERE room_id=$1 AND NOT ($2=ANY(deleted_by))`,
		roomID, userID)
	return err
}

// ListRoomMessages returns the room history visible to the user, newest first.
func (r *MessageRepo) ListRoomMessages(ctx context.Context, roomID string, userID string, page pagination.Params) (models.MessagePage, error) {
	const filter = `room_id=$1 AND (sender_id=$2 OR $2=ANY(receiver_ids)) AND NOT ($2=ANY(deleted_by))`

	var totalCount int
	err := r.db.GetContext(ctx, &totalCount,
		`SELECT COUNT(*) FROM messages WHERE `+filter, roomID, userID)
	if err != nil {
		return models.MessagePage{}, err
	}

	msgs := []models.Message{}
	err = r.db.SelectContext(ctx, &msgs,
		`SELECT `+messageColumns+` FROM messages
         WHERE `+filter+`
         ORDER BY created_at DESC, id DESC
         OFFSET $3 LIMIT $4`,
		roomID, userID, page.Offset(), page.PageSize)
	if err != nil {
		return models.MessagePage{}, err
	}

	return models.MessagePage{
		TotalCount:  totalCount,
		TotalPages:  pagination.TotalPages(totalCount, page.PageSize),
		CurrentPage: page.Page,
		Messages:    msgs,
	}, nil
}

// ListConversations computes the inbox: per room the user has sent to or been
// addressed in, the latest message not hidden for the user, joined with the
// room record and sorted by that message's recency. Total count is the number
// of distinct qualifying rooms.
func (r *MessageRepo) ListConversations(ctx context.Context, userID string, page pagination.Params) (models.ConversationPage, error) {
	const filter = `(sender_id=$1 OR $1=ANY(receiver_ids)) AND NOT ($1=ANY(deleted_by))`

	var totalCount int
	err := r.db.GetContext(ctx, &totalCount,
		`SELECT COUNT(DISTINCT room_id) FROM messages WHERE `+filter, userID)
	if err != nil {
		return models.ConversationPage{}, err
	}

	conversations := []models.Conversation{}
	err = r.db.SelectContext(ctx, &conversations,
		`SELECT latest.*, COALESCE(r.room_title, '') AS room_title, COALESCE(r.room_type, '') AS room_type
         FROM (
             SELECT DISTINCT ON (room_id) `+messageColumns+`
             FROM messages
             WHERE `+filter+`
             ORDER BY room_id, created_at DESC, id DESC
         ) latest
         LEFT JOIN rooms r ON r.id = latest.room_id
         ORDER BY latest.created_at DESC, latest.id DESC
         OFFSET $2 LIMIT $3`,
		userID, page.Offset(), page.PageSize)
	if err != nil {
		return models.ConversationPage{}, err
	}

	return models.ConversationPage{
		TotalCount:    totalCount,
		TotalPages:    pagination.TotalPages(totalCount, page.PageSize),
		CurrentPage:   page.Page,
		Conversations: conversations,
	}, nil
}
