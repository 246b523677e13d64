package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/models"
)

const (
	defaultBatchSize     = 50
	defaultFlushInterval = 5 * time.Second
)

// DBHandler buffers ERROR+ records and writes them to system_logs in
// batches, on a timer or when the buffer fills.
type DBHandler struct {
	sink  *dbSink
	attrs []slog.Attr
}

// dbSink is shared by a handler and everything derived via WithAttrs.
type dbSink struct {
	db        *gorm.DB
	batchSize int
	mu        sync.Mutex
	buffer    []models.SystemLog
	stop      chan struct{}
	wg        sync.WaitGroup
	stopOnce  sync.Once
}

func NewDBHandler(db *gorm.DB, flushInterval time.Duration) *DBHandler {
	if flushInterval <= 0 {
		flushInterval = defaultFlushInterval
	}
	s := &dbSink{
		db:        db,
		batchSize: defaultBatchSize,
		buffer:    make([]models.SystemLog, 0, defaultBatchSize),
		stop:      make(chan struct{}),
	}
	s.wg.Add(1)
	go s.loop(flushInterval)
	return &DBHandler{sink: s}
}

func (s *dbSink) loop(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.flush()
		case <-s.stop:
			s.flush()
			return
		}
	}
}

func (s *dbSink) flush() {
	s.mu.Lock()
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.buffer
	s.buffer = make([]models.SystemLog, 0, s.batchSize)
	s.mu.Unlock()

	if err := s.db.CreateInBatches(batch, s.batchSize).Error; err != nil {
		// Not through slog: this handler is usually part of the default logger.
		fmt.Fprintf(os.Stderr, "system_logs flush failed (%d records): %v\n", len(batch), err)
	}
}

func (s *dbSink) add(entry models.SystemLog) {
	s.mu.Lock()
	s.buffer = append(s.buffer, entry)
	full := len(s.buffer) >= s.batchSize
	s.mu.Unlock()
	if full {
		go s.flush()
	}
}

// Stop flushes what is buffered and waits for the writer to exit.
func (h *DBHandler) Stop() {
	h.sink.stopOnce.Do(func() { close(h.sink.stop) })
	h.sink.wg.Wait()
}

func (h *DBHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *DBHandler) Handle(_ context.Context, record slog.Record) error {
	entry := models.SystemLog{
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}
	extra := map[string]any{}
	apply := func(a slog.Attr) bool {
		v := a.Value.Resolve()
		switch a.Key {
		case "request_id":
			entry.RequestID = v.String()
		case "user_id":
			s := v.String()
			entry.UserID = &s
		case "method":
			entry.Method = v.String()
		case "path":
			entry.Path = v.String()
		case "error":
			entry.Error = v.String()
		default:
			extra[a.Key] = v.Any()
		}
		return true
	}
	for _, a := range h.attrs {
		apply(a)
	}
	record.Attrs(apply)

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}
	h.sink.add(entry)
	return nil
}

func (h *DBHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &DBHandler{sink: h.sink, attrs: merged}
}

// WithGroup is a no-op; stored records are flat.
func (h *DBHandler) WithGroup(string) slog.Handler {
	return h
}
