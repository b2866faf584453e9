package kv

import (
	"fmt"
	"path/filepath"
)

// Kind names a Backend implementation
type Kind string

const (
	KindMemory Kind = "memory"
	KindBolt   Kind = "bolt"
	KindRedis  Kind = "redis"
	KindSQLite Kind = "sqlite"
)

// DefaultSQLiteFile is the database file name created inside the data directory
const DefaultSQLiteFile = "cybershield.sqlite"

// Options selects and configures a backend
type Options struct {
	Kind       Kind
	DataDir    string
	RedisURL   string
	QuotaBytes int64
}

// Open creates the backend described by opts
func Open(opts Options) (Store, error) {
	switch opts.Kind {
	case KindMemory, "":
		return NewMemory(opts.QuotaBytes), nil
	case KindBolt:
		return NewBolt(opts.DataDir, opts.QuotaBytes)
	case KindRedis:
		return NewRedis(opts.RedisURL, opts.QuotaBytes)
	case KindSQLite:
		return NewSQLite(filepath.Join(opts.DataDir, DefaultSQLiteFile), opts.QuotaBytes)
	default:
		return nil, fmt.Errorf("unknown backend %q", opts.Kind)
	}
}
