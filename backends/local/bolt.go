// Package local persists snapshots in a single bbolt file on disk.
package local

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opencontainers/go-digest"
	"go.etcd.io/bbolt"

	"github.com/botirk38/podcastsim/codec"
	"github.com/botirk38/podcastsim/types"
)

const defaultTimeout = time.Second

var (
	snapshotsBucket = []byte("snapshots")
	metaBucket      = []byte("meta")
	latestKey       = []byte("latest")
)

// ErrNoPath indicates the store was configured without a database file
var ErrNoPath = errors.New("bolt store requires a path")

// BoltStore implements SnapshotStore on a bbolt database.
// Snapshots are keyed by version in one bucket; a meta bucket holds the
// latest pointer.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (or creates) the database at config.Path
func NewBoltStore(config types.BackendConfig) (*BoltStore, error) {
	if config.Path == "" {
		return nil, ErrNoPath
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	db, err := bbolt.Open(config.Path, 0o600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", config.Path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{snapshotsBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize bolt database: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Path returns the database file
func (b *BoltStore) Path() string {
	return b.db.Path()
}

// Save stores a snapshot and marks it as the latest one
func (b *BoltStore) Save(ctx context.Context, s *types.Snapshot) error {
	data, err := codec.Marshal(s)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		key := []byte(s.Version.String())
		if err := tx.Bucket(snapshotsBucket).Put(key, data); err != nil {
			return err
		}
		return tx.Bucket(metaBucket).Put(latestKey, key)
	})
}

// Load retrieves a snapshot by version
func (b *BoltStore) Load(ctx context.Context, version digest.Digest) (*types.Snapshot, bool, error) {
	var s *types.Snapshot
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(snapshotsBucket).Get([]byte(version.String()))
		if data == nil {
			return nil
		}
		// data is only valid inside the transaction; decoding copies it out.
		var err error
		s, err = codec.Unmarshal(data)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return s, s != nil, nil
}

// Latest follows the latest pointer
func (b *BoltStore) Latest(ctx context.Context) (*types.Snapshot, bool, error) {
	var version digest.Digest
	err := b.db.View(func(tx *bbolt.Tx) error {
		version = digest.Digest(tx.Bucket(metaBucket).Get(latestKey))
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if version == "" {
		return nil, false, nil
	}
	return b.Load(ctx, version)
}

// Versions lists stored versions in key order
func (b *BoltStore) Versions(ctx context.Context) ([]digest.Digest, error) {
	var versions []digest.Digest
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(snapshotsBucket).ForEach(func(k, _ []byte) error {
			versions = append(versions, digest.Digest(k))
			return nil
		})
	})
	return versions, err
}

// Delete removes a snapshot and clears the latest pointer if it named it
func (b *BoltStore) Delete(ctx context.Context, version digest.Digest) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		key := []byte(version.String())
		if err := tx.Bucket(snapshotsBucket).Delete(key); err != nil {
			return err
		}
		meta := tx.Bucket(metaBucket)
		if string(meta.Get(latestKey)) == version.String() {
			return meta.Delete(latestKey)
		}
		return nil
	})
}

// Close closes the database file
func (b *BoltStore) Close() error {
	return b.db.Close()
}
