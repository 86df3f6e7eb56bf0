/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/Seednode/homebet/internal/models"
)

var sessionBucket = []byte("sessions")

// Bolt persists sessions as JSON values in a BoltDB bucket.
type Bolt struct {
	db  *bbolt.DB
	now Clock
}

// OpenBolt opens (creating if needed) the BoltDB file at path. A nil clock
// uses time.Now.
func OpenBolt(path string, now Clock) (*Bolt, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if now == nil {
		now = time.Now
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &Bolt{db: db, now: now}, nil
}

func (b *Bolt) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *Bolt) decodeLive(data []byte) (models.Session, error) {
	if data == nil {
		return models.Session{}, ErrNotFound
	}
	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return models.Session{}, fmt.Errorf("decode session: %w", err)
	}
	if session.Expired(b.now()) {
		return models.Session{}, ErrNotFound
	}
	return session, nil
}

func put(bucket *bbolt.Bucket, session models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return bucket.Put([]byte(session.ID), payload)
}

func (b *Bolt) Get(ctx context.Context, id string) (models.Session, error) {
	if err := ctx.Err(); err != nil {
		return models.Session{}, err
	}

	var session models.Session
	err := b.db.View(func(tx *bbolt.Tx) error {
		var err error
		session, err = b.decodeLive(tx.Bucket(sessionBucket).Get([]byte(id)))
		return err
	})
	return session, err
}

func (b *Bolt) Set(ctx context.Context, session models.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(session.ID) == "" {
		return fmt.Errorf("session id is required")
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return put(tx.Bucket(sessionBucket), session)
	})
}

func (b *Bolt) Create(ctx context.Context, session models.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(session.ID) == "" {
		return fmt.Errorf("session id is required")
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(sessionBucket)
		if _, err := b.decodeLive(bucket.Get([]byte(session.ID))); err == nil {
			return ErrExists
		}
		return put(bucket, session)
	})
}

func (b *Bolt) Update(ctx context.Context, id string, fn UpdateFunc) (models.Session, error) {
	if err := ctx.Err(); err != nil {
		return models.Session{}, err
	}

	var out models.Session
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(sessionBucket)
		session, err := b.decodeLive(bucket.Get([]byte(id)))
		if err != nil {
			return err
		}
		if err := fn(&session); err != nil {
			return err
		}
		session.ID = id
		if err := put(bucket, session); err != nil {
			return err
		}
		out = session
		return nil
	})
	if err != nil {
		return models.Session{}, err
	}
	return out, nil
}

func (b *Bolt) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionBucket).Delete([]byte(id))
	})
}

func (b *Bolt) Sweep(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	removed := 0
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(sessionBucket)

		var expired [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			if _, err := b.decodeLive(v); err != nil {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range expired {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		removed = len(expired)
		return nil
	})
	return removed, err
}
