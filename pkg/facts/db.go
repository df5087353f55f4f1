package facts

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/arthur-debert/stratum/pkg/errors"
	"github.com/arthur-debert/stratum/pkg/item"
	"github.com/arthur-debert/stratum/pkg/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS item (
	layer TEXT NOT NULL,
	kind  TEXT NOT NULL,
	key   TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (layer, kind, key)
);
`

// DB is a SQLite-backed facts database. Each row is one item provided by a
// named layer, stored as its JSON wire encoding. Use ":memory:" as the path
// for an ephemeral database in tests.
type DB struct {
	db   *sql.DB
	path string
}

// OpenDB opens (and if necessary initializes) a facts database.
func OpenDB(path string) (*DB, error) {
	logger := logging.GetLogger("facts.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFactsOpen, "failed to open facts database at %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, errors.ErrFactsOpen, "failed to initialize facts schema at %s", path)
	}
	logger.Debug().Str("path", path).Msg("Facts database opened")
	return &DB{db: db, path: path}, nil
}

// Close releases the underlying database handle.
func (d *DB) Close() error {
	return d.db.Close()
}

// SaveLayer replaces the stored item set of a layer with the given items,
// in one transaction.
func (d *DB) SaveLayer(label string, items []item.Item) error {
	logger := logging.GetLogger("facts.db")
	tx, err := d.db.Begin()
	if err != nil {
		return errors.Wrap(err, errors.ErrFactsWrite, "failed to begin facts transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM item WHERE layer = ?`, label); err != nil {
		return errors.Wrapf(err, errors.ErrFactsWrite, "failed to clear facts for layer %s", label)
	}
	for _, it := range items {
		encoded, err := item.Marshal(it)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFactsWrite, "failed to encode item %s", it.Key())
		}
		key := it.Key()
		_, err = tx.Exec(
			`INSERT OR REPLACE INTO item (layer, kind, key, value) VALUES (?, ?, ?, ?)`,
			label, string(key.Kind), key.Value, string(encoded),
		)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFactsWrite, "failed to store item %s", key)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrFactsWrite, "failed to commit facts transaction")
	}
	logger.Debug().
		Str("layer", label).
		Int("items", len(items)).
		Msg("Layer facts saved")
	return nil
}

// LoadLayer reads a layer's item set into a MemoryStore. Compiles run
// against the in-memory snapshot, keeping the core free of I/O.
func (d *DB) LoadLayer(label string) (*MemoryStore, error) {
	rows, err := d.db.Query(`SELECT value FROM item WHERE layer = ? ORDER BY kind, key`, label)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFactsRead, "failed to read facts for layer %s", label)
	}
	defer func() { _ = rows.Close() }()

	store := NewMemoryStore()
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, errors.Wrapf(err, errors.ErrFactsRead, "failed to scan facts row for layer %s", label)
		}
		it, err := item.Unmarshal([]byte(value))
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFactsRead, "corrupt item in facts for layer %s", label)
		}
		store.Insert(it)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFactsRead, "failed to iterate facts for layer %s", label)
	}
	return store, nil
}

// Get looks up a single item of a layer without loading the whole set.
func (d *DB) Get(label string, key item.Key) (item.Item, error) {
	var value string
	err := d.db.QueryRow(
		`SELECT value FROM item WHERE layer = ? AND kind = ? AND key = ?`,
		label, string(key.Kind), key.Value,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFactsRead, "failed to look up %s in layer %s", key, label)
	}
	return item.Unmarshal([]byte(value))
}

// Layers lists the layer labels present in the database.
func (d *DB) Layers() ([]string, error) {
	rows, err := d.db.Query(`SELECT DISTINCT layer FROM item ORDER BY layer`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFactsRead, "failed to list layers")
	}
	defer func() { _ = rows.Close() }()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, errors.Wrap(err, errors.ErrFactsRead, "failed to scan layer label")
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

// String identifies the database for logs.
func (d *DB) String() string { return fmt.Sprintf("facts(%s)", d.path) }
