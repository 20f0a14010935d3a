package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/sirupsen/logrus"
)

// subscriberBuffer is how many unread snapshots a slow subscriber may lag behind.
const subscriberBuffer = 16

// MemoryStore keeps game documents in process. Documents are stored encoded
// so every Load hands out an independent copy.
type MemoryStore struct {
	mu     sync.Mutex
	games  map[uuid.UUID][]byte
	subs   map[uuid.UUID]map[chan *game.GameState]struct{}
	logger *logrus.Logger
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore(logger *logrus.Logger) *MemoryStore {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &MemoryStore{
		games:  make(map[uuid.UUID][]byte),
		subs:   make(map[uuid.UUID]map[chan *game.GameState]struct{}),
		logger: logger,
	}
}

func (m *MemoryStore) Create(ctx context.Context, s *game.GameState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := game.EncodeState(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.games[s.ID]; exists {
		return ErrGameExists
	}
	m.games[s.ID] = data
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, id uuid.UUID) (*game.GameState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	data, ok := m.games[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrGameNotFound
	}
	return game.DecodeState(data)
}

func (m *MemoryStore) CompareAndSwap(ctx context.Context, id uuid.UUID, expected int64, next *game.GameState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := game.EncodeState(next)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.games[id]
	if !ok {
		return ErrGameNotFound
	}
	curState, err := game.DecodeState(cur)
	if err != nil {
		return err
	}
	if curState.TurnVersion != expected {
		return ErrVersionConflict
	}
	m.games[id] = data

	for ch := range m.subs[id] {
		snap, err := game.DecodeState(data)
		if err != nil {
			return err
		}
		select {
		case ch <- snap:
			continue
		default:
		}
		// a lagging subscriber loses its oldest snapshot, never the newest
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
		m.logger.WithFields(logrus.Fields{"game_id": id, "version": next.TurnVersion}).
			Warn("subscriber lagging, dropped oldest state snapshot")
	}
	return nil
}

func (m *MemoryStore) Subscribe(ctx context.Context, id uuid.UUID) (<-chan *game.GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return nil, ErrGameNotFound
	}
	ch := make(chan *game.GameState, subscriberBuffer)
	if m.subs[id] == nil {
		m.subs[id] = make(map[chan *game.GameState]struct{})
	}
	m.subs[id][ch] = struct{}{}

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs[id], ch)
		if len(m.subs[id]) == 0 {
			delete(m.subs, id)
		}
		m.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	return nil
}
