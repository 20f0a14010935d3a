// Package commit runs rule-engine actions against the shared store with
// optimistic concurrency: read, validate, then compare-and-swap on the turn
// version, retrying a bounded number of times when another writer wins.
package commit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/jason-s-yu/uno/internal/store"
	"github.com/sirupsen/logrus"
)

const (
	DefaultMaxAttempts = 3
	DefaultTimeout     = 2 * time.Second
)

// ErrGameInProgress is returned by Result while the game has no winner yet.
var ErrGameInProgress = errors.New("game still in progress")

// ActionPublisher receives a record of every committed action.
type ActionPublisher interface {
	Publish(ctx context.Context, record cache.GameActionRecord) error
}

// Committer is the only writer of game documents.
type Committer struct {
	Store  store.Store
	Logger *logrus.Logger

	// MaxAttempts bounds read-validate-swap cycles per action.
	MaxAttempts int

	// Timeout bounds each individual store round-trip.
	Timeout time.Duration

	// History, if set, gets a record of every commit. Failures are logged only.
	History ActionPublisher

	// OnGameStart, if set, runs after a new game has been stored.
	OnGameStart func(ctx context.Context, s *game.GameState)

	// OnGameEnd, if set, runs once after the commit that finished a game.
	OnGameEnd func(ctx context.Context, s *game.GameState)

	// SpecialChance overrides each variant's special card odds when >= 0.
	SpecialChance float64
}

// New returns a Committer with default limits.
func New(st store.Store, logger *logrus.Logger) *Committer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Committer{
		Store:         st,
		Logger:        logger,
		MaxAttempts:   DefaultMaxAttempts,
		Timeout:       DefaultTimeout,
		SpecialChance: -1,
	}
}

// IsRetryable reports whether resubmitting the action against a fresh state
// could succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, game.ErrStaleAction)
}

// StartGame deals a new game and stores it at turn version 1.
func (c *Committer) StartGame(ctx context.Context, playerIDs []uuid.UUID, variantName string, rules models.HouseRules, seed int64) (*game.GameState, error) {
	variant, err := game.LookupVariant(variantName)
	if err != nil {
		return nil, err
	}
	if c.SpecialChance >= 0 {
		variant = variant.WithSpecialChance(c.SpecialChance)
	}

	s, err := game.NewGame(uuid.New(), playerIDs, variant, rules, seed)
	if err != nil {
		return nil, err
	}
	s.TurnVersion = 1

	opCtx, cancel := c.opContext(ctx)
	defer cancel()
	if err := c.Store.Create(opCtx, s); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	c.Logger.WithFields(logrus.Fields{
		"game_id": s.ID,
		"variant": s.Variant,
		"players": len(s.Players),
		"seed":    seed,
	}).Info("game started")

	c.publish(ctx, cache.GameActionRecord{
		GameID:      s.ID,
		TurnVersion: s.TurnVersion,
		ActionType:  "start_game",
		ActionPayload: map[string]interface{}{
			"variant":     s.Variant,
			"players":     s.Players,
			"house_rules": s.HouseRules,
		},
		Timestamp: time.Now().UnixMilli(),
	})
	if c.OnGameStart != nil {
		c.OnGameStart(context.WithoutCancel(ctx), s)
	}
	return s, nil
}

// SubmitAction applies action on behalf of playerID and commits the result.
//
// Rule violations are returned without writing anything. If another writer
// commits first, the action is re-validated against the fresh state; a rule
// violation found then, a change to the hand an UNO call or challenge is
// judged on, or running out of attempts, yields an error wrapping
// game.ErrStaleAction. A false UNO call is the one rejection that is still
// committed: the penalised state is returned together with the error.
func (c *Committer) SubmitAction(ctx context.Context, gameID, playerID uuid.UUID, action models.Action) (*game.GameState, error) {
	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = DefaultMaxAttempts
	}

	log := c.Logger.WithFields(logrus.Fields{
		"game_id":   gameID,
		"player_id": playerID,
		"action":    action.Type,
	})

	var (
		claim  unoClaim
		judged bool
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cur, err := c.load(ctx, gameID)
		if err != nil {
			return nil, err
		}

		if action.ExpectedVersion != 0 && action.ExpectedVersion != cur.TurnVersion {
			log.WithField("version", cur.TurnVersion).Debug("client acted on an old version")
			return nil, fmt.Errorf("%w: acted on version %d, current is %d", game.ErrStaleAction, action.ExpectedVersion, cur.TurnVersion)
		}

		// UNO calls and challenges are judged on the hand the client saw.
		// If a racing commit changed it, the verdict would flip.
		if attempt == 1 {
			claim, judged = claimFor(cur, action, playerID)
		} else if judged {
			if now, _ := claimFor(cur, action, playerID); now != claim {
				log.WithField("version", cur.TurnVersion).Debug("uno claim changed under a retry")
				return nil, fmt.Errorf("%w: hand of %s changed after it was read", game.ErrStaleAction, claim.player)
			}
		}

		next, ruleErr := game.Apply(cur, action, playerID)
		if next == nil {
			if attempt > 1 {
				return nil, fmt.Errorf("%w: %w", game.ErrStaleAction, ruleErr)
			}
			log.WithError(ruleErr).Debug("action rejected")
			return nil, ruleErr
		}
		next.TurnVersion = cur.TurnVersion + 1

		err = c.swap(ctx, gameID, cur.TurnVersion, next)
		if errors.Is(err, store.ErrVersionConflict) {
			log.WithFields(logrus.Fields{"version": cur.TurnVersion, "attempt": attempt}).Debug("commit conflict, retrying")
			continue
		}
		if err != nil {
			return nil, err
		}

		log.WithField("version", next.TurnVersion).Info("action committed")
		c.afterCommit(ctx, cur, next, playerID, action)
		return next, ruleErr
	}

	log.WithField("attempt", attempts).Warn("giving up after repeated commit conflicts")
	return nil, fmt.Errorf("%w: still conflicting after %d attempts", game.ErrStaleAction, attempts)
}

// unoClaim is the hand state an UNO call or challenge is decided on.
type unoClaim struct {
	player uuid.UUID
	size   int
	called bool
}

// claimFor returns the claim action depends on. ok is false for actions
// that do not depend on one.
func claimFor(s *game.GameState, action models.Action, actor uuid.UUID) (claim unoClaim, ok bool) {
	switch action.Type {
	case models.ActionCallUno:
		claim.player = actor
	case models.ActionChallengeUno:
		claim.player = action.TargetPlayerID
	default:
		return unoClaim{}, false
	}
	claim.size = -1
	if hand, found := s.Hands[claim.player]; found {
		claim.size = hand.Size()
		claim.called = hand.HasCalledUno
	}
	return claim, true
}

// Load returns the latest committed state.
func (c *Committer) Load(ctx context.Context, gameID uuid.UUID) (*game.GameState, error) {
	return c.load(ctx, gameID)
}

// View returns the redacted snapshot viewer is allowed to see.
func (c *Committer) View(ctx context.Context, gameID, viewer uuid.UUID) (game.PlayerView, error) {
	s, err := c.load(ctx, gameID)
	if err != nil {
		return game.PlayerView{}, err
	}
	return game.ProjectFor(s, viewer), nil
}

// Result returns the final result, or ErrGameInProgress.
func (c *Committer) Result(ctx context.Context, gameID uuid.UUID) (*game.GameResult, error) {
	s, err := c.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !s.GameOver || s.Result == nil {
		return nil, ErrGameInProgress
	}
	res := *s.Result
	return &res, nil
}

// Watch streams viewer's redacted view after every commit, starting with the
// current one. The channel closes when ctx is done.
func (c *Committer) Watch(ctx context.Context, gameID, viewer uuid.UUID) (<-chan game.PlayerView, error) {
	ctx, cancel := context.WithCancel(ctx)
	updates, err := c.Store.Subscribe(ctx, gameID)
	if err != nil {
		cancel()
		return nil, err
	}
	cur, err := c.load(ctx, gameID)
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan game.PlayerView, 1)
	out <- game.ProjectFor(cur, viewer)
	go func() {
		defer close(out)
		defer cancel()
		last := cur.TurnVersion
		for s := range updates {
			// the initial load may already include the first few commits
			if s.TurnVersion <= last {
				continue
			}
			last = s.TurnVersion
			select {
			case out <- game.ProjectFor(s, viewer):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (c *Committer) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (c *Committer) load(ctx context.Context, gameID uuid.UUID) (*game.GameState, error) {
	opCtx, cancel := c.opContext(ctx)
	defer cancel()
	return c.Store.Load(opCtx, gameID)
}

func (c *Committer) swap(ctx context.Context, gameID uuid.UUID, expected int64, next *game.GameState) error {
	opCtx, cancel := c.opContext(ctx)
	defer cancel()
	return c.Store.CompareAndSwap(opCtx, gameID, expected, next)
}

func (c *Committer) afterCommit(ctx context.Context, prev, next *game.GameState, playerID uuid.UUID, action models.Action) {
	// the commit has landed; side effects must not be cut short by the caller leaving
	ctx = context.WithoutCancel(ctx)

	c.publish(ctx, cache.GameActionRecord{
		GameID:        next.ID,
		TurnVersion:   next.TurnVersion,
		ActorID:       playerID,
		ActionType:    string(action.Type),
		ActionPayload: actionPayload(action, next.LastAction),
		Timestamp:     time.Now().UnixMilli(),
	})

	if !next.GameOver || prev.GameOver {
		return
	}

	c.Logger.WithFields(logrus.Fields{
		"game_id": next.ID,
		"winner":  next.Result.WinnerID,
		"version": next.TurnVersion,
	}).Info("game over")

	c.publish(ctx, cache.GameActionRecord{
		GameID:      next.ID,
		TurnVersion: next.TurnVersion,
		ActorID:     playerID,
		ActionType:  cache.ActionEndGame,
		ActionPayload: map[string]interface{}{
			"winner_id": next.Result.WinnerID,
			"scores":    next.Result.ScoresByPlayer,
		},
		Timestamp: time.Now().UnixMilli(),
	})

	if c.OnGameEnd != nil {
		c.OnGameEnd(ctx, next)
	}
}

func (c *Committer) publish(ctx context.Context, record cache.GameActionRecord) {
	if c.History == nil {
		return
	}
	opCtx, cancel := c.opContext(ctx)
	defer cancel()
	if err := c.History.Publish(opCtx, record); err != nil {
		c.Logger.WithError(err).WithFields(logrus.Fields{
			"game_id": record.GameID,
			"version": record.TurnVersion,
		}).Warn("failed to publish action record")
	}
}

func actionPayload(action models.Action, last *game.LastAction) map[string]interface{} {
	payload := make(map[string]interface{})
	if action.CardID != uuid.Nil {
		payload["card_id"] = action.CardID
	}
	if action.ChosenColor != models.ColorNone {
		payload["chosen_color"] = action.ChosenColor
	}
	if action.TargetPlayerID != uuid.Nil {
		payload["target_player_id"] = action.TargetPlayerID
	}
	if last != nil {
		if last.Drawn > 0 {
			payload["drawn"] = last.Drawn
		}
		if last.PenalizedID != uuid.Nil {
			payload["penalized_id"] = last.PenalizedID
		}
	}
	return payload
}
