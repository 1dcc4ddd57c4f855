package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/harrisonrobin/arrange/pkg/model"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// ErrNotIndexed is returned by Resolve when ref matches no stored item.
var ErrNotIndexed = errors.New("item not in the local index")

// ItemIndex keeps the last known-good board of each calendar in SQLite so
// that commands can address items by their listed position.
type ItemIndex struct {
	db   *sql.DB
	Path string
}

// Open opens (creating if needed) the index at path.
func Open(path string) (*ItemIndex, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS items (
		calendar TEXT NOT NULL,
		position INTEGER NOT NULL,
		id TEXT NOT NULL,
		payload BLOB NOT NULL,
		PRIMARY KEY (calendar, position)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create items table: %w", err)
	}
	return &ItemIndex{db: db, Path: path}, nil
}

func (idx *ItemIndex) Close() error {
	return idx.db.Close()
}

// Save replaces the stored board of calendar with items, in order.
func (idx *ItemIndex) Save(ctx context.Context, calendar string, items []model.Item) (retErr error) {
	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE calendar = ?`, calendar); err != nil {
		return fmt.Errorf("clear %s: %w", calendar, err)
	}
	for i, it := range items {
		data, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("encode item %s: %w", it.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO items(calendar, position, id, payload) VALUES(?,?,?,?)`,
			calendar, i+1, it.ID, data); err != nil {
			return fmt.Errorf("insert item %s: %w", it.ID, err)
		}
	}
	return tx.Commit()
}

// Put stores it in place of the indexed item with the same id, keeping its
// position.
func (idx *ItemIndex) Put(ctx context.Context, calendar string, it model.Item) error {
	data, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("encode item %s: %w", it.ID, err)
	}
	res, err := idx.db.ExecContext(ctx, `UPDATE items SET payload = ? WHERE calendar = ? AND id = ?`,
		data, calendar, it.ID)
	if err != nil {
		return fmt.Errorf("update item %s: %w", it.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotIndexed, it.ID)
	}
	return nil
}

// Remove drops the item with the given id. The positions of the remaining
// items are left as listed, so a removed position no longer resolves.
func (idx *ItemIndex) Remove(ctx context.Context, calendar, id string) error {
	if _, err := idx.db.ExecContext(ctx, `DELETE FROM items WHERE calendar = ? AND id = ?`, calendar, id); err != nil {
		return fmt.Errorf("remove item %s: %w", id, err)
	}
	return nil
}

// Load returns the stored board of calendar in listed order.
func (idx *ItemIndex) Load(ctx context.Context, calendar string) ([]model.Item, error) {
	rows, err := idx.db.QueryContext(ctx, `SELECT payload FROM items WHERE calendar = ? ORDER BY position`, calendar)
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []model.Item{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var it model.Item
		if err := json.Unmarshal(data, &it); err != nil {
			return nil, fmt.Errorf("decode item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Resolve finds an item by its 1-based listed position or by its id.
func (idx *ItemIndex) Resolve(ctx context.Context, calendar, ref string) (model.Item, error) {
	ref = strings.TrimSpace(ref)
	query := `SELECT payload FROM items WHERE calendar = ? AND id = ?`
	args := []any{calendar, ref}
	if n, err := strconv.Atoi(ref); err == nil {
		query = `SELECT payload FROM items WHERE calendar = ? AND (position = ? OR id = ?)`
		args = []any{calendar, n, ref}
	}

	var data []byte
	if err := idx.db.QueryRowContext(ctx, query, args...).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Item{}, fmt.Errorf("%w: %s", ErrNotIndexed, ref)
		}
		return model.Item{}, err
	}
	var it model.Item
	if err := json.Unmarshal(data, &it); err != nil {
		return model.Item{}, fmt.Errorf("decode item: %w", err)
	}
	return it, nil
}
