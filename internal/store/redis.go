package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisStore keeps each game as one JSON document. CompareAndSwap uses
// WATCH/MULTI so the version check and the write happen atomically, and the
// new document is PUBLISHed in the same transaction.
type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	logger *logrus.Logger
}

// NewRedisStore wraps a connected client. ttl 0 keeps documents forever.
func NewRedisStore(rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *RedisStore {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RedisStore{rdb: rdb, ttl: ttl, prefix: "uno:game:", logger: logger}
}

func (r *RedisStore) key(id uuid.UUID) string {
	return r.prefix + id.String()
}

func (r *RedisStore) channel(id uuid.UUID) string {
	return r.prefix + id.String() + ":state"
}

func (r *RedisStore) Create(ctx context.Context, s *game.GameState) error {
	data, err := game.EncodeState(s)
	if err != nil {
		return err
	}
	ok, err := r.rdb.SetNX(ctx, r.key(s.ID), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to create game %s: %w", s.ID, err)
	}
	if !ok {
		return ErrGameExists
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, id uuid.UUID) (*game.GameState, error) {
	data, err := r.rdb.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", id, err)
	}
	return game.DecodeState(data)
}

func (r *RedisStore) CompareAndSwap(ctx context.Context, id uuid.UUID, expected int64, next *game.GameState) error {
	data, err := game.EncodeState(next)
	if err != nil {
		return err
	}
	key := r.key(id)

	err = r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrGameNotFound
		}
		if err != nil {
			return err
		}
		curState, err := game.DecodeState(cur)
		if err != nil {
			return err
		}
		if curState.TurnVersion != expected {
			return ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			pipe.Publish(ctx, r.channel(id), data)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		// the key changed between WATCH and EXEC
		return ErrVersionConflict
	}
	return err
}

func (r *RedisStore) Subscribe(ctx context.Context, id uuid.UUID) (<-chan *game.GameState, error) {
	exists, err := r.rdb.Exists(ctx, r.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check game %s: %w", id, err)
	}
	if exists == 0 {
		return nil, ErrGameNotFound
	}

	pubsub := r.rdb.Subscribe(ctx, r.channel(id))
	// wait for the subscription to be confirmed so no commit is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to game %s: %w", id, err)
	}

	out := make(chan *game.GameState, subscriberBuffer)
	go func() {
		defer close(out)
		defer pubsub.Close()
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				s, err := game.DecodeState([]byte(msg.Payload))
				if err != nil {
					r.logger.WithError(err).WithField("game_id", id).Warn("dropping undecodable state message")
					continue
				}
				select {
				case out <- s:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (r *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	return r.rdb.Del(ctx, r.key(id)).Err()
}
