package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/mmcdole/reel/internal/domain"
)

// Bucket names
var (
	bucketSession = []byte("session")
	bucketDevice  = []byte("device")
)

// Keys
const (
	keyToken    = "token"
	keyUser     = "user"
	keyDeviceID = "id"
)

// BoltStorage implements domain.SessionStorage using BoltDB.
type BoltStorage struct {
	db     *bolt.DB
	mu     sync.RWMutex // Protects memory cache
	logger *slog.Logger

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewBoltStorage opens (or creates) the session database for serverURL under
// baseDir. An empty baseDir gives a memory-only storage.
func NewBoltStorage(baseDir, serverURL string, logger *slog.Logger) (*BoltStorage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if baseDir == "" {
		// Memory-only mode (no persistence)
		return &BoltStorage{cache: make(map[string][]byte), logger: logger}, nil
	}

	dir := baseDir
	if serverURL != "" {
		dir = filepath.Join(baseDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "session.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSession, bucketDevice} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStorage{db: db, cache: make(map[string][]byte), logger: logger}, nil
}

// hashServerURL keeps sessions of different backends apart.
func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *BoltStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *BoltStorage) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to read session storage", "error", err, "key", cacheKey)
		return false
	}
	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *BoltStorage) set(bucket []byte, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("failed to encode session value", "error", err, "key", key)
		return
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
	if err != nil {
		s.logger.Error("failed to write session storage", "error", err, "key", cacheKey)
	}
}

func (s *BoltStorage) delete(bucket []byte, key string) {
	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucket); b != nil {
			return b.Delete([]byte(key))
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to delete from session storage", "error", err, "key", cacheKey)
	}
}

// === Token ===

func (s *BoltStorage) Token() string {
	var token string
	s.get(bucketSession, keyToken, &token)
	return token
}

func (s *BoltStorage) SetToken(token string) {
	s.set(bucketSession, keyToken, token)
}

func (s *BoltStorage) RemoveToken() {
	s.delete(bucketSession, keyToken)
}

// === User ===

func (s *BoltStorage) CachedUser() (domain.User, bool) {
	var user domain.User
	ok := s.get(bucketSession, keyUser, &user)
	return user, ok
}

func (s *BoltStorage) SetCachedUser(user domain.User) {
	s.set(bucketSession, keyUser, user)
}

func (s *BoltStorage) RemoveCachedUser() {
	s.delete(bucketSession, keyUser)
}

// === Device ===

// DeviceID lives in its own bucket so Clear leaves it alone.
func (s *BoltStorage) DeviceID() string {
	var id string
	if s.get(bucketDevice, keyDeviceID, &id) && id != "" {
		return id
	}
	id = uuid.NewString()
	s.set(bucketDevice, keyDeviceID, id)
	return id
}

func (s *BoltStorage) Clear() {
	s.RemoveToken()
	s.RemoveCachedUser()
}
