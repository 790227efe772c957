package store

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
)

// fileRef locates a file record from its file id.
type fileRef struct {
	RootID  string `json:"root_id"`
	RelPath string `json:"rel_path"`
}

// PutFile upserts a file record and maintains the file-id and canonical-path
// indexes. (root_id, rel_path) is the primary key; writing an existing key
// replaces the record in place. When the replacement carries a different file
// id, the previous identity's index entry is dropped so no fi: key outlives
// its record.
func (s *Store) PutFile(rec *FileRecord) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := fileKey(rec.RootID, rec.RelPath)

		var prev FileRecord
		err := getJSON(txn, key, &prev)
		switch {
		case err == nil:
			if prev.FileID != rec.FileID {
				if err := txn.Delete([]byte(prefixFileID + prev.FileID)); err != nil {
					return err
				}
			}
		case !errors.Is(err, ErrNotFound):
			return err
		}

		if err := setJSON(txn, key, rec); err != nil {
			return err
		}
		ref := fileRef{RootID: rec.RootID, RelPath: rec.RelPath}
		return setJSON(txn, []byte(prefixFileID+rec.FileID), &ref)
	})
}

// GetFileByPath retrieves a record by its root id and rel path.
func (s *Store) GetFileByPath(rootID, relPath string) (*FileRecord, error) {
	var rec FileRecord
	if err := s.viewJSON(fileKey(rootID, relPath), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetFileByID retrieves a record by its stable file id.
func (s *Store) GetFileByID(fileID string) (*FileRecord, error) {
	var ref fileRef
	if err := s.viewJSON([]byte(prefixFileID+fileID), &ref); err != nil {
		return nil, err
	}
	return s.GetFileByPath(ref.RootID, ref.RelPath)
}

// DeleteFile removes a record and its file-id index entry. Deleting a path
// with no record is not an error.
func (s *Store) DeleteFile(rootID, relPath string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var rec FileRecord
		err := getJSON(txn, fileKey(rootID, relPath), &rec)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			return err
		}
		if err := txn.Delete(fileKey(rootID, relPath)); err != nil {
			return err
		}
		return txn.Delete([]byte(prefixFileID + rec.FileID))
	})
}

// FilesByRoot materializes every record of a root keyed by rel path. This is
// the scanner's preload: diffing needs the complete comparison set, a bounded
// exception to the stream-don't-materialize rule.
func (s *Store) FilesByRoot(rootID string) (map[string]*FileRecord, error) {
	files := make(map[string]*FileRecord)
	err := s.StreamByRoot(rootID, func(rec *FileRecord) error {
		files[rec.RelPath] = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// StreamByRoot iterates every record of a root without materializing the
// whole set. fn is called in rel-path order (badger iterates keys sorted).
func (s *Store) StreamByRoot(rootID string, fn func(*FileRecord) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixFile + rootID + keySep)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rec := &FileRecord{}
			err := it.Item().Value(func(val []byte) error {
				return unmarshalInto(val, rec)
			})
			if err != nil {
				return err
			}
			if err := fn(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// CountByRoot returns per-root aggregate stats.
func (s *Store) CountByRoot(rootID string) (RootStats, error) {
	var stats RootStats
	err := s.StreamByRoot(rootID, func(rec *FileRecord) error {
		if rec.IsDir {
			stats.Dirs++
		} else {
			stats.Files++
			stats.TotalSize += rec.Size
		}
		return nil
	})
	return stats, err
}
