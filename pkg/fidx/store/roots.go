package store

import (
	"errors"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// EnsureRoot returns the Root for canonicalPath, creating it (enabled) if no
// root exists for that path yet. The canonical-path uniqueness invariant is
// enforced through the rp: index inside a single transaction.
func (s *Store) EnsureRoot(canonicalPath string) (*Root, error) {
	var root Root
	err := s.db.Update(func(txn *badger.Txn) error {
		pathKey := []byte(prefixRootPath + canonicalPath)

		var existingID string
		err := getJSON(txn, pathKey, &existingID)
		if err == nil {
			return getJSON(txn, []byte(prefixRoot+existingID), &root)
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}

		root = Root{
			ID:            uuid.NewString(),
			CanonicalPath: canonicalPath,
			Enabled:       true,
		}
		if err := setJSON(txn, []byte(prefixRoot+root.ID), &root); err != nil {
			return err
		}
		return setJSON(txn, pathKey, root.ID)
	})
	if err != nil {
		return nil, err
	}
	return &root, nil
}

// GetRoot retrieves a root by id.
func (s *Store) GetRoot(id string) (*Root, error) {
	var root Root
	if err := s.viewJSON([]byte(prefixRoot+id), &root); err != nil {
		return nil, err
	}
	return &root, nil
}

// RootByPath retrieves a root by its canonical path.
func (s *Store) RootByPath(canonicalPath string) (*Root, error) {
	var id string
	if err := s.viewJSON([]byte(prefixRootPath+canonicalPath), &id); err != nil {
		return nil, err
	}
	return s.GetRoot(id)
}

// ListRoots returns all roots sorted by canonical path.
func (s *Store) ListRoots() ([]*Root, error) {
	var roots []*Root
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixRoot)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var root Root
			err := it.Item().Value(func(val []byte) error {
				return unmarshalInto(val, &root)
			})
			if err != nil {
				return err
			}
			roots = append(roots, &root)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(roots, func(i, j int) bool {
		return roots[i].CanonicalPath < roots[j].CanonicalPath
	})
	return roots, nil
}

// SetRootEnabled flips the enabled flag on a root.
func (s *Store) SetRootEnabled(id string, enabled bool) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var root Root
		if err := getJSON(txn, []byte(prefixRoot+id), &root); err != nil {
			return err
		}
		root.Enabled = enabled
		return setJSON(txn, []byte(prefixRoot+id), &root)
	})
}
