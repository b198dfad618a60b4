package cache

import (
	"encoding/json"
	"time"
)

// Memo returns the cached value for key, or calls load and caches its result.
// Values round-trip through JSON. Load errors are never cached, and a nil
// cache disables memoization.
func Memo[T any](c Cache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if c == nil {
		return load()
	}

	if data, ok := c.Get(key); ok {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		_ = c.Delete(key)
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	if data, err := json.Marshal(value); err == nil {
		_ = c.Set(key, data, ttl)
	}
	return value, nil
}
