package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	database, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(database); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return database, nil
}

func runMigrations(database *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS rooms (
            id TEXT PRIMARY KEY,
            created_by TEXT NOT NULL,
            room_type TEXT NOT NULL,
            room_title TEXT NOT NULL DEFAULT '',
            room_description TEXT NOT NULL DEFAULT '',
            members TEXT[] NOT NULL DEFAULT '{}',
            metadata JSONB,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            deleted_at TIMESTAMPTZ
        );`,
		`CREATE TABLE IF NOT EXISTS messages (
            id TEXT PRIMARY KEY,
            room_id TEXT NOT NULL,
            sender_id TEXT NOT NULL,
            sender_name TEXT NOT NULL DEFAULT '',
            receiver_ids TEXT[] NOT NULL DEFAULT '{}',
            content TEXT NOT NULL,
            is_edited BOOLEAN NOT NULL DEFAULT FALSE,
            deleted_by TEXT[] NOT NULL DEFAULT '{}',
            metadata JSONB,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_messages_room_id ON messages (room_id);`,
		`CREATE TABLE IF NOT EXISTS subscriptions (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            subscription_type TEXT NOT NULL,
            start_date TIMESTAMPTZ,
            end_date TIMESTAMPTZ,
            status TEXT NOT NULL DEFAULT '',
            payment_info JSONB,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_subscriptions_user_id ON subscriptions (user_id);`,
		`CREATE TABLE IF NOT EXISTS user_message_counts (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            count BIGINT NOT NULL DEFAULT 0,
            start_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_user_message_counts_user_id ON user_message_counts (user_id);`,
	}

	for _, m := range migrations {
		if _, err := database.Exec(m); err != nil {
			return err
		}
	}
	log.Info().Msg("database migrations applied")
	return nil
}
