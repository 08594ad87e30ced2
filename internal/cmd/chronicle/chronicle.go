// Package chronicle parses command flags and runs the extraction
// engine against a chat transcript.
package chronicle

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/marisbel/chronicle/internal/chatctx"
	"github.com/marisbel/chronicle/internal/extract"
	"github.com/marisbel/chronicle/internal/extract/extractors"
	"github.com/marisbel/chronicle/internal/extract/orchestrator"
	"github.com/marisbel/chronicle/internal/generate"
	"github.com/marisbel/chronicle/internal/lore"
	"github.com/marisbel/chronicle/internal/narrative/event"
	"github.com/marisbel/chronicle/internal/narrative/snapshot"
	"github.com/marisbel/chronicle/internal/narrative/store"
	"github.com/marisbel/chronicle/internal/platform/config"
	"github.com/marisbel/chronicle/internal/platform/otel"
	"github.com/marisbel/chronicle/internal/storage/bbolt"
	"github.com/marisbel/chronicle/internal/storage/sqlite"
	"github.com/marisbel/chronicle/internal/telemetry"
)

// Config holds chronicle command configuration.
type Config struct {
	DBPath    string `env:"CHRONICLE_DB_PATH" envDefault:"chronicle.db"`
	CachePath string `env:"CHRONICLE_CACHE_PATH"`
	ChatFile  string `env:"CHRONICLE_CHAT_FILE"`
	ChatID    string `env:"CHRONICLE_CHAT_ID" envDefault:"default"`
	LoreFile  string `env:"CHRONICLE_LORE_FILE"`

	APIKey  string `env:"CHRONICLE_API_KEY"`
	Model   string `env:"CHRONICLE_MODEL" envDefault:"gpt-4o-mini"`
	BaseURL string `env:"CHRONICLE_BASE_URL"`
	RPM     int    `env:"CHRONICLE_REQUESTS_PER_MINUTE" envDefault:"20"`

	MaxMessages        int `env:"CHRONICLE_MAX_MESSAGES" envDefault:"40"`
	MaxChapterMessages int `env:"CHRONICLE_MAX_CHAPTER_MESSAGES" envDefault:"120"`

	// ReplayAt prints the projected snapshot at the given message and
	// exits; negative means extract mode.
	ReplayAt int
	// From and To bound the transcript turns to extract; negative To
	// means the last message.
	From int
	To   int
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{ReplayAt: -1, To: -1}
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.CachePath, "cache", cfg.CachePath, "BoltDB snapshot cache path (empty disables caching)")
	fs.StringVar(&cfg.ChatFile, "chat", cfg.ChatFile, "Chat transcript file (JSON lines)")
	fs.StringVar(&cfg.ChatID, "chat-id", cfg.ChatID, "Chat id the journal is keyed by")
	fs.StringVar(&cfg.LoreFile, "lore", cfg.LoreFile, "World info file (JSON)")
	fs.IntVar(&cfg.ReplayAt, "replay", cfg.ReplayAt, "Print the snapshot at this message id and exit")
	fs.IntVar(&cfg.From, "from", cfg.From, "First message id to extract")
	fs.IntVar(&cfg.To, "to", cfg.To, "Last message id to extract (-1 means last)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run loads the journal, then either replays a snapshot or processes
// transcript turns through the extraction roster.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "chronicle")
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	chat, err := loadChat(cfg.ChatFile)
	if err != nil {
		return err
	}

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	eventStore, err := rehydrate(ctx, db, cfg.ChatID, chat)
	if err != nil {
		return err
	}

	var cache *bbolt.Cache
	if cfg.CachePath != "" {
		cache, err = bbolt.Open(cfg.CachePath)
		if err != nil {
			return err
		}
		defer func() { _ = cache.Close() }()
	}

	if cfg.ReplayAt >= 0 {
		return printSnapshot(ctx, cache, eventStore, cfg.ChatID, cfg.ReplayAt)
	}
	return runExtraction(ctx, cfg, db, cache, eventStore, chat)
}

func runExtraction(ctx context.Context, cfg Config, db *sqlite.Store, cache *bbolt.Cache, eventStore *store.Store, chat *chatctx.Context) error {
	if cfg.APIKey == "" {
		return fmt.Errorf("CHRONICLE_API_KEY is required for extraction")
	}
	if len(chat.Messages) == 0 {
		return fmt.Errorf("chat transcript is empty")
	}

	book, err := loadLore(cfg.LoreFile)
	if err != nil {
		return err
	}
	if err := ensureInitialSnapshot(ctx, db, cfg.ChatID, eventStore); err != nil {
		return err
	}

	gen := generate.NewGate(generate.NewOpenAI(cfg.APIKey, cfg.Model, cfg.BaseURL), cfg.RPM)
	settings := extract.Settings{
		MaxMessagesToSend:        cfg.MaxMessages,
		MaxChapterMessagesToSend: cfg.MaxChapterMessages,
	}
	diag := telemetry.NewEmitter(telemetry.LogSink{})
	orch := orchestrator.New(gen, eventStore, chat, settings, extractors.All(),
		orchestrator.WithLore(book),
		orchestrator.WithDiagnostics(diag),
	)

	last := cfg.To
	if last < 0 || last >= len(chat.Messages) {
		last = len(chat.Messages) - 1
	}
	for messageID := cfg.From; messageID <= last; messageID++ {
		current := event.Source{MessageID: messageID, SwipeID: chat.SwipeFor(messageID)}
		result, err := orch.ProcessTurn(ctx, current)
		if err != nil {
			return fmt.Errorf("process message %d: %w", messageID, err)
		}
		if err := persistTurn(ctx, db, cfg.ChatID, result); err != nil {
			return err
		}
		cacheTurn(ctx, cache, cfg.ChatID, messageID, eventStore, result)
		log.Printf("message %d: %d events, %d retracted", messageID, len(result.Events), len(result.Retracted))
	}
	return nil
}

func persistTurn(ctx context.Context, db *sqlite.Store, chatID string, result orchestrator.TurnResult) error {
	if err := db.AppendEvents(ctx, chatID, result.Events); err != nil {
		return fmt.Errorf("persist events: %w", err)
	}
	for _, id := range result.Retracted {
		if err := db.SetDeleted(ctx, chatID, id, true); err != nil {
			return fmt.Errorf("persist retraction: %w", err)
		}
	}
	return nil
}

// cacheTurn records the turn's projection. A retraction tombstones an
// earlier event, so everything cached after this message is stale.
func cacheTurn(ctx context.Context, cache *bbolt.Cache, chatID string, messageID int, eventStore *store.Store, result orchestrator.TurnResult) {
	if cache == nil {
		return
	}
	if len(result.Retracted) > 0 {
		if err := cache.InvalidateFrom(ctx, chatID, messageID); err != nil {
			log.Printf("cache invalidate: %v", err)
			return
		}
	}
	if err := cache.Put(ctx, chatID, messageID, eventStore.ProjectAt(messageID)); err != nil {
		log.Printf("cache put: %v", err)
	}
}

// ensureInitialSnapshot supplies and persists the baseline state the
// first time a chat is extracted. Later runs load the persisted
// baseline during rehydration instead.
func ensureInitialSnapshot(ctx context.Context, db *sqlite.Store, chatID string, eventStore *store.Store) error {
	if eventStore.HasInitialSnapshot() {
		return nil
	}
	base := snapshot.New()
	eventStore.ReplaceInitialSnapshot(base)
	if err := db.SaveInitialSnapshot(ctx, chatID, base); err != nil {
		return fmt.Errorf("persist initial snapshot: %w", err)
	}
	return nil
}

// rehydrate rebuilds the in-memory event store from the journal.
func rehydrate(ctx context.Context, db *sqlite.Store, chatID string, chat *chatctx.Context) (*store.Store, error) {
	eventStore := store.New()
	eventStore.SetSwipeResolver(chat.SwipeFor)

	base, ok, err := db.InitialSnapshot(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if ok {
		eventStore.ReplaceInitialSnapshot(base)
	}

	events, err := db.Events(ctx, chatID)
	if err != nil {
		return nil, err
	}
	eventStore.AppendEvents(events)
	return eventStore, nil
}

func printSnapshot(ctx context.Context, cache *bbolt.Cache, eventStore *store.Store, chatID string, messageID int) error {
	projected, ok := cachedProjection(ctx, cache, chatID, messageID)
	if !ok {
		projected = eventStore.ProjectAt(messageID)
		if cache != nil {
			if err := cache.Put(ctx, chatID, messageID, projected); err != nil {
				log.Printf("cache put: %v", err)
			}
		}
	}
	out, err := json.MarshalIndent(projected, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func cachedProjection(ctx context.Context, cache *bbolt.Cache, chatID string, messageID int) (snapshot.Snapshot, bool) {
	if cache == nil {
		return snapshot.Snapshot{}, false
	}
	projected, ok, err := cache.Get(ctx, chatID, messageID)
	if err != nil {
		log.Printf("cache get: %v", err)
		return snapshot.Snapshot{}, false
	}
	return projected, ok
}

// loadChat reads a transcript file with one JSON message per line.
func loadChat(path string) (*chatctx.Context, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("chat transcript file is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chat file: %w", err)
	}
	defer func() { _ = f.Close() }()

	chat := &chatctx.Context{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var msg chatctx.Message
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			return nil, fmt.Errorf("parse chat line %d: %w", len(chat.Messages)+1, err)
		}
		chat.Messages = append(chat.Messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read chat file: %w", err)
	}
	return chat, nil
}

func loadLore(path string) (lore.Book, error) {
	if strings.TrimSpace(path) == "" {
		return lore.Book{}, nil
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return lore.Book{}, fmt.Errorf("read lore file: %w", err)
	}
	var book lore.Book
	if err := json.Unmarshal(blob, &book); err != nil {
		return lore.Book{}, fmt.Errorf("parse lore file: %w", err)
	}
	return book, nil
}
