// Package sqlite persists the narrative event journal and initial
// snapshots in SQLite, keyed by chat id so one database can back many
// transcripts.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	apperrors "github.com/marisbel/chronicle/internal/errors"
	"github.com/marisbel/chronicle/internal/narrative/event"
	"github.com/marisbel/chronicle/internal/narrative/snapshot"
	sqlitemigrate "github.com/marisbel/chronicle/internal/platform/storage/sqlitemigrate"
	"github.com/marisbel/chronicle/internal/storage/sqlite/migrations"
)

// Store persists narrative state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite narrative store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready() error {
	if s == nil || s.sqlDB == nil {
		return apperrors.New(apperrors.CodeStorageNotConfigured, "storage is not configured")
	}
	return nil
}

// AppendEvents inserts events for a chat. Events must already carry
// ids and sequence numbers; payloads are serialized through the event
// registry.
func (s *Store) AppendEvents(ctx context.Context, chatID string, events []event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return fmt.Errorf("chat id is required")
	}
	if len(events) == 0 {
		return nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, evt := range events {
		payload, err := event.EncodePayload(evt.Payload)
		if err != nil {
			return fmt.Errorf("encode payload for %s: %w", evt.ID, err)
		}
		deleted := 0
		if evt.Deleted {
			deleted = 1
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO narrative_events (
			   chat_id, id, seq, type, message_id, swipe_id, timestamp_ms, deleted, payload
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			chatID,
			evt.ID,
			evt.Seq,
			string(evt.Type),
			evt.Source.MessageID,
			evt.Source.SwipeID,
			toMillis(evt.Timestamp),
			deleted,
			string(payload),
		); err != nil {
			return fmt.Errorf("insert event %s: %w", evt.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Events loads a chat's full journal, tombstones included, in sequence
// order.
func (s *Store) Events(ctx context.Context, chatID string) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, seq, type, message_id, swipe_id, timestamp_ms, deleted, payload
		 FROM narrative_events WHERE chat_id = ? ORDER BY seq`,
		strings.TrimSpace(chatID),
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []event.Event
	for rows.Next() {
		var (
			evt         event.Event
			eventType   string
			timestampMS int64
			deleted     int
			payload     string
		)
		if err := rows.Scan(&evt.ID, &evt.Seq, &eventType, &evt.Source.MessageID, &evt.Source.SwipeID, &timestampMS, &deleted, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evt.Type = event.Type(eventType)
		evt.Timestamp = fromMillis(timestampMS)
		evt.Deleted = deleted != 0
		decoded, err := event.DecodePayload(evt.Type, []byte(payload))
		if err != nil {
			return nil, fmt.Errorf("decode payload for %s: %w", evt.ID, err)
		}
		evt.Payload = decoded
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// SetDeleted flips an event's tombstone flag.
func (s *Store) SetDeleted(ctx context.Context, chatID, eventID string, deleted bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	value := 0
	if deleted {
		value = 1
	}
	res, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE narrative_events SET deleted = ? WHERE chat_id = ? AND id = ?`,
		value, strings.TrimSpace(chatID), eventID,
	)
	if err != nil {
		return fmt.Errorf("update event %s: %w", eventID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("event %s not found", eventID))
	}
	return nil
}

// SaveInitialSnapshot stores or replaces the replay base for a chat.
func (s *Store) SaveInitialSnapshot(ctx context.Context, chatID string, base snapshot.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return fmt.Errorf("chat id is required")
	}
	blob, err := json.Marshal(base)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO initial_snapshots (chat_id, snapshot, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (chat_id) DO UPDATE SET snapshot = excluded.snapshot, updated_at = excluded.updated_at`,
		chatID, string(blob), toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// InitialSnapshot loads the replay base for a chat. The second return
// reports whether one was ever saved.
func (s *Store) InitialSnapshot(ctx context.Context, chatID string) (snapshot.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return snapshot.Snapshot{}, false, err
	}
	if err := s.ready(); err != nil {
		return snapshot.Snapshot{}, false, err
	}
	var blob string
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT snapshot FROM initial_snapshots WHERE chat_id = ?`,
		strings.TrimSpace(chatID),
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return snapshot.Snapshot{}, false, nil
	}
	if err != nil {
		return snapshot.Snapshot{}, false, fmt.Errorf("query snapshot: %w", err)
	}
	base := snapshot.New()
	if err := json.Unmarshal([]byte(blob), &base); err != nil {
		return snapshot.Snapshot{}, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return base, true, nil
}
