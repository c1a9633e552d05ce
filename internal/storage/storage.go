// Package storage persists shelf state as JSON values in a durable
// key-value backend. Durability is best effort: read corruption is healed
// by dropping the key and write failures are logged while the caller's
// in-memory state stays authoritative.
package storage

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// KV is a synchronous byte-oriented key-value backend
type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
	Keys(prefix string) ([]string, error)
	Close() error
}

// Storage is the JSON persistence adapter used by every engine
type Storage struct {
	kv  KV
	log *zap.Logger
}

// New wraps a backend. A nil logger discards output.
func New(kv KV, log *zap.Logger) *Storage {
	if log == nil {
		log = zap.NewNop()
	}
	return &Storage{kv: kv, log: log.Named("storage")}
}

// Close closes the backend
func (s *Storage) Close() error {
	return s.kv.Close()
}

// Load decodes the JSON stored under key into v. It reports false when
// the key is absent, unreadable or corrupt; corrupt keys are removed.
func (s *Storage) Load(key string, v interface{}) bool {
	data, ok := s.LoadRaw(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.log.Warn("discarding corrupt value", zap.String("key", key), zap.Error(err))
		s.Remove(key)
		return false
	}
	return true
}

// LoadRaw returns the bytes stored under key
func (s *Storage) LoadRaw(key string) ([]byte, bool) {
	data, ok, err := s.kv.Get(key)
	if err != nil {
		s.log.Error("read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return data, ok
}

// Save encodes v as JSON under key
func (s *Storage) Save(key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error("encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.SaveRaw(key, data)
}

// SaveRaw stores data under key
func (s *Storage) SaveRaw(key string, data []byte) {
	if err := s.kv.Set(key, data); err != nil {
		s.log.Error("write failed", zap.String("key", key), zap.Int("bytes", len(data)), zap.Error(err))
	}
}

// Remove deletes key
func (s *Storage) Remove(key string) {
	if err := s.kv.Remove(key); err != nil {
		s.log.Error("remove failed", zap.String("key", key), zap.Error(err))
	}
}

// Keys lists the keys starting with prefix; failures yield no keys
func (s *Storage) Keys(prefix string) []string {
	keys, err := s.kv.Keys(prefix)
	if err != nil {
		s.log.Error("key scan failed", zap.String("prefix", prefix), zap.Error(err))
		return nil
	}
	return keys
}

// SaveList writes items under key, or removes the key when empty
func SaveList[T any](s *Storage, key string, items []T) {
	if len(items) == 0 {
		s.Remove(key)
		return
	}
	s.Save(key, items)
}

// LoadList reads a JSON array stored under key. Anything that is not an
// array of T is treated as corrupt.
func LoadList[T any](s *Storage, key string) []T {
	var items []T
	if !s.Load(key, &items) {
		return nil
	}
	return items
}

// Options selects and configures a backend for Open
type Options struct {
	Driver         string
	Path           string
	RedisAddress   string
	RedisPassword  string
	RedisDB        int
	RedisNamespace string
}

// Open builds the backend named by opts.Driver
func Open(opts Options) (KV, error) {
	switch opts.Driver {
	case "", "sqlite":
		return NewSQLite(opts.Path)
	case "gorm":
		return NewGorm(opts.Path)
	case "redis":
		return NewRedis(opts.RedisAddress, opts.RedisPassword, opts.RedisDB, opts.RedisNamespace)
	case "memory":
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
}
