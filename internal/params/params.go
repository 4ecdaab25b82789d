// Package params persists tuned evaluation parameters and an opening-move
// cache in a BadgerDB store, repurposing the teacher's own storage
// package (originally used for UI preferences/stats) for engine-facing
// data instead.
package params

import (
	"bytes"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"dysprosium/internal/engine"
)

const (
	keyEvalParams = "eval_params"
	openingKeyPfx = "opening:"
)

// Store wraps a BadgerDB database holding the engine's persisted tuning
// state: the current eval-parameter blob (written offline by the tuner)
// and a cache of FEN -> best move pairs built the same way.
type Store struct {
	db *badger.DB
}

// Open opens (creating if absent) a Store rooted at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open params store at %s", dir)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveParams writes p as the engine's active eval-parameter blob.
func (s *Store) SaveParams(p *engine.EvalParams) error {
	var buf bytes.Buffer
	if err := engine.SaveParams(&buf, p); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyEvalParams), buf.Bytes())
	})
}

// LoadParams reads the stored eval-parameter blob, falling back to
// engine.DefaultParams() if none has been saved yet.
func (s *Store) LoadParams() (*engine.EvalParams, error) {
	var p *engine.EvalParams

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyEvalParams))
		if errors.Is(err, badger.ErrKeyNotFound) {
			p = engine.DefaultParams()
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			loaded, err := engine.LoadParams(bytes.NewReader(val))
			if err != nil {
				return err
			}
			p = loaded
			return nil
		})
	})

	return p, err
}

// SaveOpeningMove records uci (e.g. "e2e4") as the tuner-derived reply to
// fen.
func (s *Store) SaveOpeningMove(fen, uci string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(openingKeyPfx+fen), []byte(uci))
	})
}

// LookupOpeningMove returns the cached reply to fen, if any.
func (s *Store) LookupOpeningMove(fen string) (uci string, ok bool) {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(openingKeyPfx + fen))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			uci = string(val)
			ok = true
			return nil
		})
	})
	if err != nil {
		return "", false
	}
	return uci, ok
}
