package store

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
)

// maxAliasChain bounds ResolvePath chain following. A legitimate ledger walk
// is as long as the file's rename history; the bound only guards against a
// corrupted ledger forming a cycle.
const maxAliasChain = 64

// AppendAlias adds a row to the rename ledger. The ledger is append-only;
// rows are never mutated or deleted.
func (s *Store) AppendAlias(alias *FileAlias) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := setJSON(txn, []byte(prefixAlias+alias.AliasID), alias); err != nil {
			return err
		}
		idxKey := []byte(prefixAliasOld + alias.OldCanonicalPath + keySep + alias.AliasID)
		return txn.Set(idxKey, []byte(alias.AliasID))
	})
}

// AliasesByFile returns every ledger row for a file id, oldest first.
func (s *Store) AliasesByFile(fileID string) ([]*FileAlias, error) {
	var aliases []*FileAlias
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixAlias)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			a := &FileAlias{}
			err := it.Item().Value(func(val []byte) error {
				return unmarshalInto(val, a)
			})
			if err != nil {
				return err
			}
			if a.FileID == fileID {
				aliases = append(aliases, a)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(aliases, func(i, j int) bool {
		return aliases[i].CreatedAt.Before(aliases[j].CreatedAt)
	})
	return aliases, nil
}

// aliasesByOldPath returns ledger rows whose old path matches, newest first.
func (s *Store) aliasesByOldPath(oldCanonicalPath string) ([]*FileAlias, error) {
	var aliases []*FileAlias
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixAliasOld + oldCanonicalPath + keySep)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var id []byte
			var err error
			if id, err = it.Item().ValueCopy(nil); err != nil {
				return err
			}
			a := &FileAlias{}
			if err := getJSON(txn, []byte(prefixAlias+string(id)), a); err != nil {
				return err
			}
			aliases = append(aliases, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(aliases, func(i, j int) bool {
		return aliases[i].CreatedAt.After(aliases[j].CreatedAt)
	})
	return aliases, nil
}

// ResolvePath resolves a canonical path to its live record, following the
// alias ledger when the path is a historical name. A lookup keyed on any
// link of a rename chain A→B→C lands on C's record.
func (s *Store) ResolvePath(canonicalPath string) (*FileRecord, error) {
	seen := make(map[string]bool)
	path := canonicalPath

	for i := 0; i < maxAliasChain; i++ {
		if seen[path] {
			break
		}
		seen[path] = true

		if rec, err := s.fileByCanonicalPath(path); err == nil {
			return rec, nil
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		aliases, err := s.aliasesByOldPath(path)
		if err != nil {
			return nil, err
		}
		if len(aliases) == 0 {
			break
		}
		path = aliases[0].NewCanonicalPath
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, canonicalPath)
}

// fileByCanonicalPath scans roots for the one owning the path, then looks the
// record up by rel path. Root count is small; the scan is two key reads deep.
func (s *Store) fileByCanonicalPath(canonicalPath string) (*FileRecord, error) {
	roots, err := s.ListRoots()
	if err != nil {
		return nil, err
	}
	for _, root := range roots {
		rel, ok := relUnder(root.CanonicalPath, canonicalPath)
		if !ok {
			continue
		}
		rec, err := s.GetFileByPath(root.ID, rel)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, canonicalPath)
}
