// Package historian drains the action queue into Postgres and marks games
// abandoned once they have been quiet for too long.
package historian

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/database"
	"github.com/sirupsen/logrus"
)

// Sink is where drained records end up.
type Sink interface {
	InsertGameActions(ctx context.Context, records []cache.GameActionRecord) error
	MarkGameAbandoned(ctx context.Context, gameID uuid.UUID) (bool, error)
}

// postgresSink writes through the database package's global pool.
type postgresSink struct{}

func (postgresSink) InsertGameActions(ctx context.Context, records []cache.GameActionRecord) error {
	return database.InsertGameActions(ctx, records)
}

func (postgresSink) MarkGameAbandoned(ctx context.Context, gameID uuid.UUID) (bool, error) {
	return database.MarkGameAbandoned(ctx, gameID)
}

// PostgresSink returns the Sink backed by database.DB.
func PostgresSink() Sink {
	return postgresSink{}
}

// Options tune batching and abandonment.
type Options struct {
	BatchSize  int
	FlushDelay time.Duration
	Inactivity time.Duration // quiet time after which a game counts as abandoned
	SweepEvery time.Duration

	// MaxFlushAttempts bounds how often a failing batch is retried before
	// it is dropped.
	MaxFlushAttempts int
}

// Service accumulates queued records and flushes them in batches.
type Service struct {
	queue  *cache.ActionQueue
	sink   Sink
	opts   Options
	logger *logrus.Logger

	lastActivity sync.Map // map[uuid.UUID]time.Time

	batchMu   sync.Mutex
	batch     []cache.GameActionRecord
	lastFlush time.Time
	failures  int // consecutive failed flushes of the buffered batch
}

func New(queue *cache.ActionQueue, sink Sink, opts Options, logger *logrus.Logger) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.FlushDelay <= 0 {
		opts.FlushDelay = 500 * time.Millisecond
	}
	if opts.Inactivity <= 0 {
		opts.Inactivity = 10 * time.Minute
	}
	if opts.SweepEvery <= 0 {
		opts.SweepEvery = time.Minute
	}
	if opts.MaxFlushAttempts <= 0 {
		opts.MaxFlushAttempts = 5
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		queue:     queue,
		sink:      sink,
		opts:      opts,
		logger:    logger,
		batch:     make([]cache.GameActionRecord, 0, opts.BatchSize),
		lastFlush: time.Now(),
	}
}

// Run blocks until ctx is done, then flushes whatever is still buffered.
func (s *Service) Run(ctx context.Context) {
	s.logger.WithField("queue", s.queue.Name()).Info("historian started")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.inactivityLoop(ctx)
	}()

	s.readLoop(ctx)
	wg.Wait()

	s.flush(context.Background())
	s.logger.Info("historian stopped")
}

func (s *Service) readLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		rec, err := s.queue.Pop(ctx, s.opts.FlushDelay)
		if err != nil && ctx.Err() == nil {
			s.logger.WithError(err).Warn("failed to pop action record")
		}
		if rec != nil {
			s.record(*rec)
		}

		s.batchMu.Lock()
		due := len(s.batch) >= s.opts.BatchSize || time.Since(s.lastFlush) >= s.opts.FlushDelay
		s.batchMu.Unlock()
		if due {
			s.flush(ctx)
		}
	}
}

func (s *Service) record(rec cache.GameActionRecord) {
	if rec.ActionType == cache.ActionEndGame {
		s.lastActivity.Delete(rec.GameID)
	} else {
		s.lastActivity.Store(rec.GameID, time.Now())
	}

	s.batchMu.Lock()
	s.batch = append(s.batch, rec)
	s.batchMu.Unlock()
}

// flush writes the current batch in one transaction. A failed batch is put
// back so the next flush retries it, up to MaxFlushAttempts times; after that
// it is logged and dropped.
func (s *Service) flush(ctx context.Context) {
	s.batchMu.Lock()
	s.lastFlush = time.Now()
	if len(s.batch) == 0 {
		s.batchMu.Unlock()
		return
	}
	pending := s.batch
	s.batch = make([]cache.GameActionRecord, 0, s.opts.BatchSize)
	s.batchMu.Unlock()

	if err := s.sink.InsertGameActions(ctx, pending); err != nil {
		s.batchMu.Lock()
		defer s.batchMu.Unlock()
		s.failures++
		log := s.logger.WithError(err).WithFields(logrus.Fields{"count": len(pending), "attempt": s.failures})
		if s.failures >= s.opts.MaxFlushAttempts {
			s.failures = 0
			log.WithField("games", gameIDs(pending)).Error("dropping actions after repeated flush failures")
			return
		}
		log.Error("failed to flush actions")
		s.batch = append(pending, s.batch...)
		return
	}
	s.batchMu.Lock()
	s.failures = 0
	s.batchMu.Unlock()
	s.logger.WithField("count", len(pending)).Debug("flushed actions")
}

func gameIDs(records []cache.GameActionRecord) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, rec := range records {
		if !seen[rec.GameID] {
			seen[rec.GameID] = true
			out = append(out, rec.GameID)
		}
	}
	return out
}

func (s *Service) inactivityLoop(ctx context.Context) {
	ticker := time.NewTicker(s.opts.SweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.sweep(ctx, now)
		}
	}
}

// sweep marks every game idle since before now-Inactivity as abandoned.
func (s *Service) sweep(ctx context.Context, now time.Time) {
	s.lastActivity.Range(func(key, val interface{}) bool {
		gameID, ok1 := key.(uuid.UUID)
		last, ok2 := val.(time.Time)
		if !ok1 || !ok2 || now.Sub(last) <= s.opts.Inactivity {
			return true
		}
		changed, err := s.sink.MarkGameAbandoned(ctx, gameID)
		if err != nil {
			s.logger.WithError(err).WithField("game_id", gameID).Warn("failed to mark game abandoned")
			return true
		}
		s.lastActivity.Delete(gameID)
		if changed {
			s.logger.WithField("game_id", gameID).Info("marked game abandoned due to inactivity")
		}
		return true
	})
}
