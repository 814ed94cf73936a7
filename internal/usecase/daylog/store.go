// Package daylog owns the current day's in-memory chat log and its on-disk
// mirror. Rollover, periodic checkpointing and restore all live here.
package daylog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"goonzette-automation/internal/domain"
	"goonzette-automation/internal/infra/metrics"
)

const defaultCheckpointEvery = 50

// Store accumulates one calendar day of chat messages grouped by channel and
// mirrors them to a JSON snapshot file. All methods are safe for concurrent
// use; discordgo dispatches handlers on separate goroutines.
type Store struct {
	log             zerolog.Logger
	now             func() time.Time
	path            string
	checkpointEvery int

	mu      sync.Mutex
	current domain.DailyLog
}

// Option configures a Store.
type Option func(*Store)

// WithClock injects the wall clock. Tests use a fake.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithCheckpointEvery overrides the flush cadence in accepted messages.
func WithCheckpointEvery(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.checkpointEvery = n
		}
	}
}

// NewStore creates a store writing snapshots to path.
func NewStore(logger zerolog.Logger, path string, opts ...Option) *Store {
	s := &Store{
		log:             logger,
		now:             time.Now,
		path:            path,
		checkpointEvery: defaultCheckpointEvery,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current = domain.NewDailyLog(s.today())
	return s
}

// Record appends the message to the channel's sequence in today's log. When
// the wall-clock date has advanced, the prior day is flushed and replaced by
// an empty log before appending. Record never fails from the caller's view;
// snapshot I/O problems are logged and retried at the next checkpoint.
func (s *Store) Record(channel string, msg domain.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if today := s.today(); s.current.Date != today {
		if err := s.flushLocked(); err != nil {
			s.log.Error().Err(err).Str("date", s.current.Date).Msg("daylog: flush on rollover failed")
		}
		s.current = domain.NewDailyLog(today)
	}

	s.current.Channels[channel] = append(s.current.Channels[channel], msg)
	s.current.TotalMessages++
	metrics.MessagesRecorded.WithLabelValues(channel).Inc()

	if s.current.TotalMessages%s.checkpointEvery == 0 {
		if err := s.flushLocked(); err != nil {
			s.log.Error().Err(err).Msg("daylog: checkpoint flush failed")
		} else {
			s.log.Debug().Int("total", s.current.TotalMessages).Msg("daylog: checkpoint saved")
		}
	}
}

// Snapshot returns a deep copy of the current log. Readers that suspend on
// network calls work against the copy so a concurrent rollover cannot be
// observed mid-run.
func (s *Store) Snapshot() domain.DailyLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := domain.NewDailyLog(s.current.Date)
	copied.TotalMessages = s.current.TotalMessages
	for name, msgs := range s.current.Channels {
		copied.Channels[name] = append([]domain.ChatMessage(nil), msgs...)
	}
	return copied
}

// Flush writes the current log to the snapshot file, replacing the previous
// copy wholesale. Idempotent within a day.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

// Restore loads the on-disk snapshot and adopts it only if it belongs to
// today; a stale or unreadable file just means the day starts empty.
func (s *Store) Restore() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Error().Err(err).Str("path", s.path).Msg("daylog: read snapshot failed")
		}
		return
	}
	var loaded domain.DailyLog
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("daylog: decode snapshot failed")
		return
	}
	if loaded.Date != s.today() {
		s.log.Info().Str("snapshot_date", loaded.Date).Msg("daylog: discarding stale snapshot")
		return
	}
	if loaded.Channels == nil {
		loaded.Channels = make(map[string][]domain.ChatMessage)
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	s.log.Info().Int("total", loaded.TotalMessages).Msg("daylog: restored today's snapshot")
}

func (s *Store) flushLocked() error {
	data, err := json.MarshalIndent(s.current, "", "  ")
	if err != nil {
		metrics.SnapshotFlushErrors.Inc()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			metrics.SnapshotFlushErrors.Inc()
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		metrics.SnapshotFlushErrors.Inc()
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// today returns the UTC calendar date. Every date in the system (summary
// rows, article_date, the PDF trigger) is UTC; the log partitions on the
// same clock so rollover and the yesterday lookups agree.
func (s *Store) today() string {
	return s.now().UTC().Format(domain.DateFormat)
}
