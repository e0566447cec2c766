package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// Message is a stored chat message. Content is immutable except via an
// explicit edit, which also flips IsEdited. DeletedBy is the per-user
// soft-delete set: listed users no longer see the message, everyone else does.
type Message struct {
	ID          string         `db:"id" json:"id"`
	RoomID      string         `db:"room_id" json:"room_id"`
	SenderID    string         `db:"sender_id" json:"sender_id"`
	SenderName  string         `db:"sender_name" json:"sender_name,omitempty"`
	ReceiverIDs pq.StringArray `db:"receiver_ids" json:"receiver_ids"`
	Content     string         `db:"content" json:"content"`
	IsEdited    bool           `db:"is_edited" json:"is_edited"`
	DeletedBy   pq.StringArray `db:"deleted_by" json:"deleted_by"`
	Metadata    types.JSONText `db:"metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// MessagePage is one page of a room's message history.
type MessagePage struct {
	TotalCount  int       `json:"total_count"`
	TotalPages  int       `json:"total_pages"`
	CurrentPage int       `json:"current_page"`
	Messages    []Message `json:"messages"`
}

// Conversation is one inbox row: the latest message a user can still see in a
// room, joined with the room record.
type Conversation struct {
	Message
	RoomTitle string `db:"room_title" json:"room_title"`
	RoomType  string `db:"room_type" json:"room_type"`
}

// ConversationPage is one page of a user's inbox.
type ConversationPage struct {
	TotalCount    int            `json:"total_count"`
	TotalPages    int            `json:"total_pages"`
	CurrentPage   int            `json:"current_page"`
	Conversations []Conversation `json:"conversations"`
}
