package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
)

// Index derives a secondary-index value from a record.
type Index[T any] struct {
	Name  string
	Value func(*T) string
}

// Collection is a typed view over one named collection. It holds no state
// besides its schema, so a single value can be used with any Store.
type Collection[T any] struct {
	name    string
	key     func(*T) string
	indexes []Index[T]
}

func NewCollection[T any](name string, key func(*T) string, indexes ...Index[T]) *Collection[T] {
	return &Collection[T]{name: name, key: key, indexes: indexes}
}

func (c *Collection[T]) Name() string { return c.name }

// GetAll returns every record in insertion order. Updating a record keeps
// its position.
func (c *Collection[T]) GetAll(ctx context.Context, s *Store) ([]T, error) {
	if !s.IsAvailable() {
		return nil, ErrUnavailable
	}
	rows, err := s.q.QueryContext(ctx,
		`SELECT value FROM records WHERE collection = ? ORDER BY rowid`, c.name)
	if err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", c.name, err)
	}
	return c.scan(rows)
}

// GetByID returns the record stored under key or common.ErrNotFound.
func (c *Collection[T]) GetByID(ctx context.Context, s *Store, key string) (*T, error) {
	if !s.IsAvailable() {
		return nil, ErrUnavailable
	}
	var raw []byte
	err := s.q.QueryRowContext(ctx,
		`SELECT value FROM records WHERE collection = ? AND key = ?`, c.name, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s[%s]: %w", c.name, key, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s[%s]: %w", c.name, key, err)
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("failed to decode %s[%s]: %w", c.name, key, err)
	}
	return v, nil
}

// FindBy returns the records whose index has the given value, in insertion
// order.
func (c *Collection[T]) FindBy(ctx context.Context, s *Store, index, value string) ([]T, error) {
	if !s.IsAvailable() {
		return nil, ErrUnavailable
	}
	rows, err := s.q.QueryContext(ctx, `
		SELECT r.value FROM records r
		JOIN record_indexes i ON i.collection = r.collection AND i.key = r.key
		WHERE i.collection = ? AND i.index_name = ? AND i.index_value = ?
		ORDER BY r.rowid
	`, c.name, index, value)
	if err != nil {
		return nil, fmt.Errorf("failed to select %s by %s: %w", c.name, index, err)
	}
	return c.scan(rows)
}

// CountBy counts records whose index has the given value.
func (c *Collection[T]) CountBy(ctx context.Context, s *Store, index, value string) (int, error) {
	if !s.IsAvailable() {
		return 0, ErrUnavailable
	}
	var n int
	err := s.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM record_indexes
		WHERE collection = ? AND index_name = ? AND index_value = ?
	`, c.name, index, value).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s by %s: %w", c.name, index, err)
	}
	return n, nil
}

// Put inserts or replaces v and returns its key.
func (c *Collection[T]) Put(ctx context.Context, s *Store, v *T) (string, error) {
	if !s.IsAvailable() {
		return "", ErrUnavailable
	}
	key := c.key(v)
	if key == "" {
		return "", fmt.Errorf("put %s: empty key", c.name)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s[%s]: %w", c.name, key, err)
	}

	err = s.atomic(ctx, func(q dbx.DBTX) error {
		_, err := q.ExecContext(ctx, `
			INSERT INTO records (collection, key, value) VALUES (?, ?, ?)
			ON CONFLICT(collection, key) DO UPDATE SET value = excluded.value
		`, c.name, key, raw)
		if err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx,
			`DELETE FROM record_indexes WHERE collection = ? AND key = ?`, c.name, key); err != nil {
			return err
		}
		for _, idx := range c.indexes {
			_, err := q.ExecContext(ctx, `
				INSERT INTO record_indexes (collection, index_name, index_value, key)
				VALUES (?, ?, ?, ?)
			`, c.name, idx.Name, idx.Value(v), key)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to put %s[%s]: %w", c.name, key, err)
	}
	return key, nil
}

// Delete removes the record stored under key. Missing keys are not an error.
func (c *Collection[T]) Delete(ctx context.Context, s *Store, key string) error {
	if !s.IsAvailable() {
		return ErrUnavailable
	}
	err := s.atomic(ctx, func(q dbx.DBTX) error {
		if _, err := q.ExecContext(ctx,
			`DELETE FROM records WHERE collection = ? AND key = ?`, c.name, key); err != nil {
			return err
		}
		_, err := q.ExecContext(ctx,
			`DELETE FROM record_indexes WHERE collection = ? AND key = ?`, c.name, key)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s[%s]: %w", c.name, key, err)
	}
	return nil
}

// Clear removes every record of the collection.
func (c *Collection[T]) Clear(ctx context.Context, s *Store) error {
	if !s.IsAvailable() {
		return ErrUnavailable
	}
	err := s.atomic(ctx, func(q dbx.DBTX) error {
		if _, err := q.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, c.name); err != nil {
			return err
		}
		_, err := q.ExecContext(ctx, `DELETE FROM record_indexes WHERE collection = ?`, c.name)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to clear %s: %w", c.name, err)
	}
	return nil
}

func (c *Collection[T]) scan(rows *sql.Rows) ([]T, error) {
	defer rows.Close()

	var result []T
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", c.name, err)
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("failed to decode %s row: %w", c.name, err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", c.name, err)
	}
	return result, nil
}
