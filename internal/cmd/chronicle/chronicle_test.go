package chronicle

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/marisbel/chronicle/internal/narrative/store"
	"github.com/marisbel/chronicle/internal/storage/sqlite"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig returned error: %v", err)
	}
	if cfg.DBPath != "chronicle.db" {
		t.Fatalf("db path = %q, want chronicle.db", cfg.DBPath)
	}
	if cfg.ReplayAt != -1 {
		t.Fatalf("replay = %d, want -1 (extract mode)", cfg.ReplayAt)
	}
	if cfg.To != -1 {
		t.Fatalf("to = %d, want -1 (last message)", cfg.To)
	}
}

func TestParseConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("CHRONICLE_DB_PATH", "/tmp/env.db")
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-db", "/tmp/flag.db", "-replay", "12"})
	if err != nil {
		t.Fatalf("ParseConfig returned error: %v", err)
	}
	if cfg.DBPath != "/tmp/flag.db" {
		t.Fatalf("db path = %q, want flag value", cfg.DBPath)
	}
	if cfg.ReplayAt != 12 {
		t.Fatalf("replay = %d, want 12", cfg.ReplayAt)
	}
}

func TestEnsureInitialSnapshotPersistsBaselineOnce(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "chronicle.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = db.Close() }()

	eventStore := store.New()
	if err := ensureInitialSnapshot(ctx, db, "chat-1", eventStore); err != nil {
		t.Fatalf("ensureInitialSnapshot returned error: %v", err)
	}
	if !eventStore.HasInitialSnapshot() {
		t.Fatal("baseline not supplied to the event store")
	}

	base, ok, err := db.InitialSnapshot(ctx, "chat-1")
	if err != nil {
		t.Fatalf("load persisted baseline: %v", err)
	}
	if !ok {
		t.Fatal("baseline not persisted")
	}
	if base.CurrentChapter != 1 {
		t.Fatalf("persisted baseline chapter = %d, want 1", base.CurrentChapter)
	}

	// A rehydrated store already carrying the baseline is left alone.
	if err := ensureInitialSnapshot(ctx, db, "chat-1", eventStore); err != nil {
		t.Fatalf("second ensureInitialSnapshot returned error: %v", err)
	}
}

func TestLoadChat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.jsonl")
	content := `{"mes": "hello", "is_user": true, "name": "Sam"}

{"mes": "hi there", "name": "Mira"}
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write chat file: %v", err)
	}

	chat, err := loadChat(path)
	if err != nil {
		t.Fatalf("loadChat returned error: %v", err)
	}
	if len(chat.Messages) != 2 {
		t.Fatalf("loaded %d messages, want 2", len(chat.Messages))
	}
	if !chat.Messages[0].IsUser || chat.Messages[0].Text != "hello" {
		t.Fatalf("first message = %+v", chat.Messages[0])
	}
	if chat.Messages[1].Name != "Mira" {
		t.Fatalf("second message = %+v", chat.Messages[1])
	}
}

func TestLoadChatRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.jsonl")
	if err := os.WriteFile(path, []byte("not json\n"), 0o600); err != nil {
		t.Fatalf("write chat file: %v", err)
	}
	if _, err := loadChat(path); err == nil {
		t.Fatal("expected error for malformed transcript")
	}
	if _, err := loadChat(""); err == nil {
		t.Fatal("expected error for missing path")
	}
}
