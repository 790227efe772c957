// Package store provides Badger DB-backed persistence for the file index:
// roots, file records, the append-only alias ledger, and index run records.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Key prefixes for the different record types.
const (
	prefixRoot     = "r:"  // Root by id
	prefixRootPath = "rp:" // canonical path -> root id (uniqueness index)
	prefixFile     = "f:"  // FileRecord by root id + rel path
	prefixFileID   = "fi:" // file id -> location (root id + rel path)
	prefixAlias    = "a:"  // FileAlias by id
	prefixAliasOld = "ao:" // old canonical path -> alias id (lookup index)
	prefixRun      = "x:"  // IndexRun by id
	prefixMeta     = "m:"  // Metadata (schema, active run pointer)
)

const activeRunKey = prefixMeta + "active_run"

// keySep separates the root id from the rel path in file keys. Rel paths are
// slash-normalized and never contain a NUL.
const keySep = "\x00"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrRunActive is returned when a run is started while another is running.
var ErrRunActive = errors.New("an index run is already active")

// Store is the file index storage backed by Badger DB. Badger's snapshot
// isolation lets readers (search, filetree) iterate concurrently with an
// in-progress scan writer.
type Store struct {
	db *badger.DB
}

// Open opens or creates a store at the given directory.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

func fileKey(rootID, relPath string) []byte {
	return []byte(prefixFile + rootID + keySep + relPath)
}

// relUnder returns the slash-normalized rel path of canon under root, or
// false when canon is not a descendant of root.
func relUnder(root, canon string) (string, bool) {
	if canon == root {
		return ".", true
	}
	prefix := root + string(filepath.Separator)
	if !strings.HasPrefix(canon, prefix) {
		return "", false
	}
	return filepath.ToSlash(canon[len(prefix):]), true
}

// getJSON loads and unmarshals the value at key inside txn.
func getJSON(txn *badger.Txn, key []byte, out any) error {
	item, err := txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

// setJSON marshals v and writes it at key inside txn.
func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

func unmarshalInto(val []byte, out any) error {
	return json.Unmarshal(val, out)
}

// viewJSON loads a single JSON value in a read-only transaction.
func (s *Store) viewJSON(key []byte, out any) error {
	return s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, key, out)
	})
}
