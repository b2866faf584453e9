package kv

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketState = []byte("state")

// DefaultBoltFile is the database file name created inside the data directory
const DefaultBoltFile = "cybershield.db"

// Bolt implements Backend using BoltDB, one bucket holding every collection key
type Bolt struct {
	db    *bolt.DB
	quota int64
}

// NewBolt opens (or creates) <dataDir>/cybershield.db
func NewBolt(dataDir string, quota int64) (*Bolt, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, DefaultBoltFile)

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketState); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketState, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Bolt{db: db, quota: quota}, nil
}

// Close closes the database
func (s *Bolt) Close() error {
	return s.db.Close()
}

func (s *Bolt) Get(key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketState).Get([]byte(key))
		if data == nil {
			return nil
		}
		// string() copies, BoltDB data is only valid during the transaction
		value = string(data)
		found = true
		return nil
	})
	return value, found, err
}

func (s *Bolt) Set(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketState)
		if s.quota > 0 {
			var used int64
			err := b.ForEach(func(k, v []byte) error {
				if string(k) != key {
					used += int64(len(k) + len(v))
				}
				return nil
			})
			if err != nil {
				return err
			}
			if err := checkQuota(s.quota, used, key, value); err != nil {
				return err
			}
		}
		return b.Put([]byte(key), []byte(value))
	})
}

func (s *Bolt) Remove(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketState).Delete([]byte(key))
	})
}

// Keys lists every stored key in byte order
func (s *Bolt) Keys() ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketState).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	return keys, err
}
