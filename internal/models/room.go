package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// Room types. A one-to-one room holds exactly one member besides its creator
// and is unique per unordered pair; group rooms carry no uniqueness constraint.
const (
	RoomTypeOneToOne = "one_to_one"
	RoomTypeGroup    = "group"
)

// Room is a named channel with a member set.
type Room struct {
	ID              string         `db:"id" json:"id"`
	CreatedBy       string         `db:"created_by" json:"created_by"`
	RoomType        string         `db:"room_type" json:"room_type"`
	RoomTitle       string         `db:"room_title" json:"room_title"`
	RoomDescription string         `db:"room_description" json:"room_description"`
	Members         pq.StringArray `db:"members" json:"members"`
	Metadata        types.JSONText `db:"metadata" json:"metadata,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
	DeletedAt       *time.Time     `db:"deleted_at" json:"deleted_at,omitempty"`
}

// RoomPatch carries the mutable room fields for an update.
type RoomPatch struct {
	RoomTitle       *string `json:"room_title"`
	RoomDescription *string `json:"room_description"`
}

// RoomPage is one page of a user's room listing.
type RoomPage struct {
	TotalCount  int    `json:"total_count"`
	TotalPages  int    `json:"total_pages"`
	CurrentPage int    `json:"current_page"`
	Rooms       []Room `json:"rooms"`
}
