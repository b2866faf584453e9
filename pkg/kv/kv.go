package kv

import (
	"errors"
	"fmt"
	"io"
	"sort"
)

// ErrQuotaExceeded is returned by Set when the backend has no room left for
// the value. The previous value under the key is left untouched.
var ErrQuotaExceeded = errors.New("kv: quota exceeded")

// Backend is a synchronous string key-value store with whole-value writes.
// It offers no multi-key transactions.
type Backend interface {
	// Get returns the value stored under key. ok is false if the key is absent.
	Get(key string) (value string, ok bool, err error)
	// Set replaces the value under key, or fails with ErrQuotaExceeded.
	Set(key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error
}

// Store is a Backend that owns resources and can enumerate its keys
type Store interface {
	Backend
	io.Closer
	Keys() ([]string, error)
}

// entrySize is the quota cost of one key/value pair
func entrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}

// checkQuota fails when storing value under key would push usage past quota.
// used must not include the current entry for key.
func checkQuota(quota, used int64, key, value string) error {
	if quota <= 0 {
		return nil
	}
	if used+entrySize(key, value) > quota {
		return fmt.Errorf("%w: %d of %d bytes in use, %q needs %d", ErrQuotaExceeded, used, quota, key, entrySize(key, value))
	}
	return nil
}

// Copy writes every key of src into dst, returning the number of keys copied
func Copy(dst Backend, src Store) (int, error) {
	keys, err := src.Keys()
	if err != nil {
		return 0, fmt.Errorf("list source keys: %w", err)
	}
	sort.Strings(keys)

	copied := 0
	for _, key := range keys {
		value, ok, err := src.Get(key)
		if err != nil {
			return copied, fmt.Errorf("read %s: %w", key, err)
		}
		if !ok {
			continue
		}
		if err := dst.Set(key, value); err != nil {
			return copied, fmt.Errorf("write %s: %w", key, err)
		}
		copied++
	}
	return copied, nil
}
