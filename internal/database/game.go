// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/game"
)

// resultRow is one game_results row.
type resultRow struct {
	PlayerID   uuid.UUID
	Score      int
	HandPoints int
	DidWin     bool
}

func resultRows(s *game.GameState) []resultRow {
	if s.Result == nil {
		return nil
	}
	rows := make([]resultRow, 0, len(s.Players))
	for _, p := range s.Players {
		rows = append(rows, resultRow{
			PlayerID:   p,
			Score:      s.Result.ScoresByPlayer[p],
			HandPoints: s.Result.HandPoints[p],
			DidWin:     p == s.Result.WinnerID,
		})
	}
	return rows
}

// finalSnapshot is what lands in games.final_game_state: every hand as it was
// when the game ended, plus the active card.
func finalSnapshot(s *game.GameState) map[string]interface{} {
	hands := make(map[string]interface{}, len(s.Hands))
	for id, h := range s.Hands {
		hands[id.String()] = h.Cards
	}
	return map[string]interface{}{
		"turn_version": s.TurnVersion,
		"winner_id":    s.Result.WinnerID,
		"hands":        hands,
		"discard_top":  s.TopDiscard(),
	}
}

// RecordGameResult persists the final outcome of a finished game.
func RecordGameResult(ctx context.Context, s *game.GameState) error {
	if !s.GameOver || s.Result == nil {
		return fmt.Errorf("game %s has not finished", s.ID)
	}
	snap, err := json.Marshal(finalSnapshot(s))
	if err != nil {
		return fmt.Errorf("failed to marshal final snapshot: %w", err)
	}

	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsertGame := `
			INSERT INTO games (id, status, variant, final_game_state, end_time)
			VALUES ($1, 'completed', $2, $3, NOW())
			ON CONFLICT (id) DO UPDATE
			SET status = 'completed', final_game_state = $3, end_time = NOW()
		`
		if _, e := tx.Exec(ctx, upsertGame, s.ID, s.Variant, snap); e != nil {
			return e
		}

		q := `
			INSERT INTO game_results (game_id, player_id, score, hand_points, did_win)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (game_id, player_id)
			DO UPDATE SET score=$3, hand_points=$4, did_win=$5
		`
		for _, row := range resultRows(s) {
			if _, e := tx.Exec(ctx, q, s.ID, row.PlayerID, row.Score, row.HandPoints, row.DidWin); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx upsert game or results: %w", err)
	}
	return nil
}

// StoreInitialGameState records the deal so a game can be replayed from its
// seed and action log.
func StoreInitialGameState(ctx context.Context, s *game.GameState) error {
	js, err := json.Marshal(map[string]interface{}{
		"players":     s.Players,
		"variant":     s.Variant,
		"house_rules": s.HouseRules,
		"seed":        s.Seed,
		"discard_top": s.TopDiscard(),
	})
	if err != nil {
		return err
	}
	q := `
		INSERT INTO games (id, status, variant, initial_game_state, start_time)
		VALUES ($1, 'in_progress', $2, $3, NOW())
		ON CONFLICT (id)
		DO UPDATE SET initial_game_state = EXCLUDED.initial_game_state, variant = EXCLUDED.variant
	`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, q, s.ID, s.Variant, js)
		return e
	})
}

// InsertGameActions writes a batch of action records in one transaction. A
// game row is created on first sight, and an end_game record completes it.
func InsertGameActions(ctx context.Context, records []cache.GameActionRecord) error {
	if len(records) == 0 {
		return nil
	}
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range records {
			if err := insertGameActionTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insertGameActionTx: %w", err)
			}
		}
		return nil
	})
}

func insertGameActionTx(ctx context.Context, tx pgx.Tx, rec cache.GameActionRecord) error {
	upsertGameQ := `
		INSERT INTO games (id, status, start_time)
		VALUES ($1, 'in_progress', NOW())
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, upsertGameQ, rec.GameID); err != nil {
		return err
	}

	jsonPayload, err := json.Marshal(rec.ActionPayload)
	if err != nil {
		return err
	}
	var actor *uuid.UUID
	if rec.ActorID != uuid.Nil {
		actor = &rec.ActorID
	}
	actionInsertQ := `
		INSERT INTO game_actions (
			game_id, turn_version, actor_id, action_type, action_payload, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING
	`
	_, err = tx.Exec(ctx, actionInsertQ,
		rec.GameID, rec.TurnVersion, actor, rec.ActionType, jsonPayload, time.UnixMilli(rec.Timestamp),
	)
	if err != nil {
		return err
	}

	if rec.ActionType == cache.ActionEndGame {
		finalizeQ := `
			UPDATE games
			SET status = 'completed', end_time = COALESCE(end_time, NOW())
			WHERE id = $1 AND status = 'in_progress'
		`
		if _, err := tx.Exec(ctx, finalizeQ, rec.GameID); err != nil {
			return err
		}
	}
	return nil
}

// MarkGameAbandoned flags an unfinished game as abandoned. It reports whether
// a row changed.
func MarkGameAbandoned(ctx context.Context, gameID uuid.UUID) (bool, error) {
	var changed bool
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			UPDATE games
			SET status = 'abandoned', end_time = NOW()
			WHERE id = $1 AND status = 'in_progress'
		`
		tag, e := tx.Exec(ctx, q, gameID)
		if e != nil {
			return e
		}
		changed = tag.RowsAffected() > 0
		return nil
	})
	return changed, err
}
