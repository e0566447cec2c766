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

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomExists     = errors.New("room already exists for this pair")
	ErrRoomNotUpdated = errors.New("room not updated")
	ErrMemberExists   = errors.New("member already exists")
	ErrMemberMissing  = errors.New("member not removed")
	ErrTooManyMembers = errors.New("one to one room cannot have more than one member")
)

const roomColumns = `id, created_by, room_type, room_title, room_description, members, metadata, created_at, updated_at, deleted_at`

// RoomRepository abstracts room persistence and membership mutation.
//
// Membership mutations are single conditional statements: the WHERE clause is
// the compare, the row count is the swap verdict. No application-level locking.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room models.Room) (models.Room, error)
	UpdateRoom(ctx context.Context, roomID string, patch models.RoomPatch) (models.Room, error)
	AddMembers(ctx context.Context, roomID string, members []string) (models.Room, error)
	RemoveMembers(ctx context.Context, roomID string, members []string) (models.Room, error)
	GetRoom(ctx context.Context, roomID string) (models.Room, error)
	ListRooms(ctx context.Context, userID string, page pagination.Params) (models.RoomPage, error)
	DeleteRoom(ctx context.Context, roomID string) error
}

// RoomRepo is a sqlx implementation of RoomRepository.
type RoomRepo struct {
	db *sqlx.DB
}

// NewRoomRepo constructs a RoomRepo.
func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// CreateRoom persists a new room. One-to-one rooms take exactly one member and
// are unique per unordered (creator, member) pair; the duplicate probe matches
// the pair in either role assignment. Group rooms insert unconditionally.
func (r *RoomRepo) CreateRoom(ctx context.Context, room models.Room) (models.Room, error) {
	if room.RoomType == models.RoomTypeOneToOne {
		if len(room.Members) > 1 {
			return models.Room{}, ErrTooManyMembers
		}
		var member string
		if len(room.Members) == 1 {
			member = room.Members[0]
		}
		var exists bool
		err := r.db.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM rooms
                WHERE (created_by=$1 AND $2=ANY(members))
                   OR (created_by=$2 AND $1=ANY(members)))`,
			room.CreatedBy, member)
		if err != nil {
			return models.Room{}, err
		}
		if exists {
			return models.Room{}, ErrRoomExists
		}
	}

	room.ID = uuid.NewString()
	var created models.Room
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO rooms (id, created_by, room_type, room_title, room_description, members, metadata)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         RETURNING `+roomColumns,
		room.ID, room.CreatedBy, room.RoomType, room.RoomTitle, room.RoomDescription,
		pq.Array([]string(room.Members)), room.Metadata).
		StructScan(&created)
	return created, err
}

// UpdateRoom applies the patch to a group room. The update is filtered on the
// group type, so a one-to-one room surfaces as ErrRoomNotUpdated rather than a
// type error.
func (r *RoomRepo) UpdateRoom(ctx context.Context, roomID string, patch models.RoomPatch) (models.Room, error) {
	if err := r.probeRoom(ctx, roomID); err != nil {
		return models.Room{}, err
	}

	var updated models.Room
	err := r.db.QueryRowxContext(ctx,
		`UPDATE rooms
         SET room_title = COALESCE($2, room_title),
             room_description = COALESCE($3, room_description),
             updated_at = NOW()
         WHERE id=$1 AND room_type=$4
         RETURNING `+roomColumns,
		roomID, patch.RoomTitle, patch.RoomDescription, models.RoomTypeGroup).
		StructScan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotUpdated
	}
	return updated, err
}

// AddMembers appends the given members atomically. The filter rejects the
// whole update if the room is not a group or if any proposed member is
// already present; both causes surface as ErrMemberExists.
func (r *RoomRepo) AddMembers(ctx context.Context, roomID string, members []string) (models.Room, error) {
	if err := r.probeRoom(ctx, roomID); err != nil {
		return models.Room{}, err
	}

	var updated models.Room
	err := r.db.QueryRowxContext(ctx,
		`UPDATE rooms
         SET members = members || $2, updated_at = NOW()
         WHERE id=$1 AND room_type=$3 AND NOT (members && $2)
         RETURNING `+roomColumns,
		roomID, pq.Array(members), models.RoomTypeGroup).
		StructScan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrMemberExists
	}
	return updated, err
}

// RemoveMembers drops the given members as a set difference. Targets that were
// never members are silently ignored; only a group-type filter miss fails.
func (r *RoomRepo) RemoveMembers(ctx context.Context, roomID string, members []string) (models.Room, error) {
	if err := r.probeRoom(ctx, roomID); err != nil {
		return models.Room{}, err
	}

	var updated models.Room
	err := r.db.QueryRowxContext(ctx,
		`UPDATE rooms
         SET members = ARRAY(SELECT m FROM unnest(members) AS m WHERE m <> ALL($2)),
             updated_at = NOW()
         WHERE id=$1 AND room_type=$3
         RETURNING `+roomColumns,
		roomID, pq.Array(members), models.RoomTypeGroup).
		StructScan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrMemberMissing
	}
	return updated, err
}

// GetRoom fetches a room by id.
func (r *RoomRepo) GetRoom(ctx context.Context, roomID string) (models.Room, error) {
	var room models.Room
	err := r.db.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM rooms WHERE id=$1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, err
}

// ListRooms returns rooms where the user is creator or member, newest first.
func (r *RoomRepo) ListRooms(ctx context.Context, userID string, page pagination.Params) (models.RoomPage, error) {
	var totalCount int
	err := r.db.GetContext(ctx, &totalCount,
		`SELECT COUNT(*) FROM rooms WHERE created_by=$1 OR $1=ANY(members)`, userID)
	if err != nil {
		return models.RoomPage{}, err
	}

	rooms := []models.Room{}
	err = r.db.SelectContext(ctx, &rooms,
		`SELECT `+roomColumns+` FROM rooms
         WHERE created_by=$1 OR $1=ANY(members)
         ORDER BY created_at DESC
         OFFSET $2 LIMIT $3`,
		userID, page.Offset(), page.PageSize)
	if err != nil {
		return models.RoomPage{}, err
	}

	return models.RoomPage{
		TotalCount:  totalCount,
		TotalPages:  pagination.TotalPages(totalCount, page.PageSize),
		CurrentPage: page.Page,
		Rooms:       rooms,
	}, nil
}

// DeleteRoom purges every message scoped to the room and then the room row,
// in one transaction. It succeeds whether or not the room existed.
func (r *RoomRepo) DeleteRoom(ctx context.Context, roomID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM messages WHERE room_id=$1`, roomID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM rooms WHERE id=$1`, roomID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *RoomRepo) probeRoom(ctx context.Context, roomID string) error {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM rooms WHERE id=$1)`, roomID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrRoomNotFound
	}
	return nil
}
