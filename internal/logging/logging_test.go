package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/testutil"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := logging.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDBHandlerPersistsErrors(t *testing.T) {
	b := testutil.NewBackend(t)
	dbh := logging.NewDBHandler(b.DB, time.Hour)

	var out bytes.Buffer
	logger := slog.New(logging.NewMultiHandler(
		logging.NewJSONHandler(&out, slog.LevelInfo),
		dbh,
	)).With("request_id", "req-1")

	logger.Info("just info")
	logger.Error("request failed", "method", "POST", "path", "/creations", "error", "boom", "status", 500)
	dbh.Stop()

	var rows []models.SystemLog
	if err := b.DB.Find(&rows).Error; err != nil {
		t.Fatalf("load logs: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want only the error record", len(rows))
	}
	got := rows[0]
	if got.Level != "ERROR" || got.RequestID != "req-1" || got.Method != "POST" || got.Path != "/creations" || got.Error != "boom" {
		t.Errorf("row = %+v", got)
	}
	var extra map[string]any
	if err := json.Unmarshal(got.Extra, &extra); err != nil || extra["status"] != float64(500) {
		t.Errorf("extra = %s (%v)", got.Extra, err)
	}

	if lines := bytes.Count(out.Bytes(), []byte("\n")); lines != 2 {
		t.Errorf("stdout lines = %d, want 2", lines)
	}
}

func TestPurge(t *testing.T) {
	b := testutil.NewBackend(t)
	now := time.Now()
	b.MustCreate(t,
		&models.SystemLog{Timestamp: now.AddDate(0, 0, -40), Level: "ERROR", Message: "old"},
		&models.SystemLog{Timestamp: now, Level: "ERROR", Message: "new"},
	)

	n, err := logging.Purge(context.Background(), b.DB, now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
	if left := b.Count(t, &models.SystemLog{}, "message = ?", "new"); left != 1 {
		t.Errorf("recent record removed")
	}
}
