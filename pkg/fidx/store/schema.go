package store

import (
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Schema versions:
// 1 - Initial version (roots, file records, alias ledger, runs)
const CurrentSchemaVersion = 1

const schemaKey = prefixMeta + "__schema__"

// Schema holds database schema information.
type Schema struct {
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetSchema returns the stored schema, or nil if not set.
func (s *Store) GetSchema() *Schema {
	var schema Schema
	if err := s.viewJSON([]byte(schemaKey), &schema); err != nil {
		return nil
	}
	return &schema
}

// SetSchema stores the schema version.
func (s *Store) SetSchema(schema *Schema) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, []byte(schemaKey), schema)
	})
}

// ensureSchema stamps a fresh database with the current version. Future
// versions hook their migrations in here before the stamp moves forward.
func (s *Store) ensureSchema() error {
	var schema Schema
	err := s.viewJSON([]byte(schemaKey), &schema)
	switch {
	case err == nil:
		if schema.Version > CurrentSchemaVersion {
			return errors.New("store schema is newer than this binary supports")
		}
		return nil
	case errors.Is(err, ErrNotFound):
		return s.SetSchema(&Schema{Version: CurrentSchemaVersion, UpdatedAt: time.Now()})
	default:
		return err
	}
}
