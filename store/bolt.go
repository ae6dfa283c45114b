// Package store keeps dehydrated accounts as JSON documents in a BoltDB
// file, one key per account id.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/proptrack/account"
	"github.com/rustyeddy/proptrack/codec"
	"go.etcd.io/bbolt"
)

const accountsBucket = "accounts"

var ErrNotFound = errors.New("store: account not found")

// Bolt is a tracker.Repository backed by BoltDB.
type Bolt struct {
	db    *bbolt.DB
	codec *codec.Codec
	log   zerolog.Logger
}

type Option func(*Bolt)

// WithLogger receives warnings about documents that cannot be decoded.
func WithLogger(l zerolog.Logger) Option { return func(s *Bolt) { s.log = l } }

// Open opens (or creates) the database at path.
func Open(path string, c *codec.Codec, opts ...Option) (*Bolt, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(accountsBucket)); err != nil {
			return fmt.Errorf("create accounts bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	if c == nil {
		c = codec.Default
	}
	s := &Bolt{db: db, codec: c, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Bolt) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Bolt) Save(ctx context.Context, a account.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := s.codec.EncodeAccount(a)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(accountsBucket)).Put([]byte(a.ID), data)
	})
}

func (s *Bolt) Load(ctx context.Context, id string) (account.Account, error) {
	if err := ctx.Err(); err != nil {
		return account.Account{}, err
	}
	var a account.Account
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(accountsBucket)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		var err error
		a, err = s.codec.DecodeAccount(data)
		return err
	})
	return a, err
}

// List returns every stored account in key order. Documents that fail to
// decode are logged and skipped.
func (s *Bolt) List(ctx context.Context) ([]account.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []account.Account
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(accountsBucket)).ForEach(func(k, v []byte) error {
			a, err := s.codec.DecodeAccount(v)
			if err != nil {
				s.log.Warn().Err(err).Str("key", string(k)).Msg("skipping undecodable account document")
				return nil
			}
			out = append(out, a)
			return nil
		})
	})
	return out, err
}

func (s *Bolt) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(accountsBucket)).Delete([]byte(id))
	})
}
