package database

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS games (
		id                 UUID PRIMARY KEY,
		status             TEXT NOT NULL DEFAULT 'in_progress',
		variant            TEXT,
		initial_game_state JSONB,
		final_game_state   JSONB,
		start_time         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		end_time           TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS game_results (
		game_id     UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
		player_id   UUID NOT NULL,
		score       INT NOT NULL,
		hand_points INT NOT NULL DEFAULT 0,
		did_win     BOOLEAN NOT NULL,
		PRIMARY KEY (game_id, player_id)
	)`,
	`CREATE TABLE IF NOT EXISTS game_actions (
		game_id        UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
		turn_version   BIGINT NOT NULL,
		actor_id       UUID,
		action_type    TEXT NOT NULL,
		action_payload JSONB,
		recorded_at    TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (game_id, turn_version, action_type)
	)`,
}

// EnsureSchema creates the tables this service writes to if they are missing.
func EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := DB.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
