// Package bbolt provides a BoltDB-backed snapshot cache.
package bbolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/marisbel/chronicle/internal/narrative/snapshot"
)

const snapshotBucket = "snapshot"

// Cache stores projected snapshots keyed by chat id and message id.
type Cache struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed cache at the provided path.
func Open(path string) (*Cache, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("cache path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	cache := &Cache{db: db}
	if err := cache.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// Close closes the underlying BoltDB database.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Put stores the projection for a chat and message, replacing any
// previous entry.
func (c *Cache) Put(ctx context.Context, chatID string, messageID int, projected snapshot.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c == nil || c.db == nil {
		return fmt.Errorf("cache is not configured")
	}
	if strings.TrimSpace(chatID) == "" {
		return fmt.Errorf("chat id is required")
	}
	if messageID < 0 {
		return fmt.Errorf("message id must not be negative")
	}

	payload, err := json.Marshal(projected)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	return c.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(snapshotBucket))
		if bucket == nil {
			return fmt.Errorf("snapshot bucket is missing")
		}
		return bucket.Put(snapshotKey(chatID, messageID), payload)
	})
}

// Get fetches the cached projection for a chat and message. A miss
// returns ok=false, never an error.
func (c *Cache) Get(ctx context.Context, chatID string, messageID int) (snapshot.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return snapshot.Snapshot{}, false, err
	}
	if c == nil || c.db == nil {
		return snapshot.Snapshot{}, false, fmt.Errorf("cache is not configured")
	}

	var payload []byte
	err := c.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(snapshotBucket))
		if bucket == nil {
			return fmt.Errorf("snapshot bucket is missing")
		}
		if value := bucket.Get(snapshotKey(chatID, messageID)); value != nil {
			payload = append([]byte(nil), value...)
		}
		return nil
	})
	if err != nil {
		return snapshot.Snapshot{}, false, err
	}
	if payload == nil {
		return snapshot.Snapshot{}, false, nil
	}

	projected := snapshot.New()
	if err := json.Unmarshal(payload, &projected); err != nil {
		return snapshot.Snapshot{}, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return projected, true, nil
}

// InvalidateFrom drops every cached entry for the chat at or after the
// given message. Called when the journal changes behind a cached
// point: a tombstoned event makes every later projection stale.
func (c *Cache) InvalidateFrom(ctx context.Context, chatID string, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c == nil || c.db == nil {
		return fmt.Errorf("cache is not configured")
	}
	if messageID < 0 {
		messageID = 0
	}

	prefix := []byte(chatID + "/")
	from := snapshotKey(chatID, messageID)
	return c.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(snapshotBucket))
		if bucket == nil {
			return fmt.Errorf("snapshot bucket is missing")
		}
		cur := bucket.Cursor()
		for key, _ := cur.Seek(from); key != nil && strings.HasPrefix(string(key), string(prefix)); key, _ = cur.Next() {
			if err := cur.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *Cache) ensureBuckets() error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(snapshotBucket))
		if err != nil {
			return fmt.Errorf("create snapshot bucket: %w", err)
		}
		return nil
	})
}

// snapshotKey orders entries per chat by message id; the big-endian
// suffix keeps cursor scans in message order.
func snapshotKey(chatID string, messageID int) []byte {
	key := make([]byte, 0, len(chatID)+9)
	key = append(key, chatID...)
	key = append(key, '/')
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], uint64(messageID))
	return append(key, seq[:]...)
}
