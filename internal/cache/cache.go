package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey builds a key from an operation name and its call parameters
func CacheKey(op string, params ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(params, "\x00")))
	return "webmanager:v1:" + op + ":" + hex.EncodeToString(hash[:])
}
