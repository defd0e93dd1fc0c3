package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

// PostgresStore is the SQL-backed alternative to FileStore. Ordering is
// materialized in a position column; row transactions take the place of
// the file store's mutex.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Initialize(ctx context.Context) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS products (
				id          TEXT PRIMARY KEY,
				title       TEXT NOT NULL,
				category    TEXT NOT NULL DEFAULT '',
				price       DOUBLE PRECISION NOT NULL DEFAULT 0,
				image       TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				position    BIGINT NOT NULL
			)
		`)
		if err != nil {
			return fmt.Errorf("%w: create products table: %v", ErrStorageUnavailable, err)
		}
		return nil
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) LoadAll(ctx context.Context) ([]Product, error) {
	var out []Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, title, category, price, image, description
			FROM products
			ORDER BY position ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Product, 0, 16)
		for rows.Next() {
			var p Product
			if err := rows.Scan(&p.ID, &p.Title, &p.Category, &p.Price, &p.Image, &p.Description); err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return out, nil
}

func (s *PostgresStore) ReplaceAll(ctx context.Context, products []Product) error {
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.inTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
				return err
			}
			for i, p := range products {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO products (id, title, category, price, image, description, position)
					VALUES ($1, $2, $3, $4, $5, $6, $7)
				`, p.ID, p.Title, p.Category, p.Price, p.Image, p.Description, i); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) Upsert(ctx context.Context, p Product) (Product, error) {
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.inTx(ctx, func(tx *sql.Tx) error {
			if p.ID == "" {
				id, err := newIDTx(ctx, tx)
				if err != nil {
					return err
				}
				p.ID = id
			}

			res, err := tx.ExecContext(ctx, `
				UPDATE products
				SET title = $2, category = $3, price = $4, image = $5, description = $6
				WHERE id = $1
			`, p.ID, p.Title, p.Category, p.Price, p.Image, p.Description)
			if err != nil {
				return err
			}
			if n, err := res.RowsAffected(); err != nil {
				return err
			} else if n > 0 {
				return nil
			}

			// New product: front of the collection.
			_, err = tx.ExecContext(ctx, `
				INSERT INTO products (id, title, category, price, image, description, position)
				SELECT $1, $2, $3, $4, $5, $6, COALESCE(MIN(position), 1) - 1
				FROM products
			`, p.ID, p.Title, p.Category, p.Price, p.Image, p.Description)
			return err
		})
	})
	if err != nil {
		return Product{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return p, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func newIDTx(ctx context.Context, tx *sql.Tx) (string, error) {
	base := "p" + strconv.FormatInt(nowMillis(), 10)

	candidate := base
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, candidate,
		).Scan(&exists)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "-" + uuid.NewString()[:8]
	}
	return "", fmt.Errorf("could not allocate a unique product id after %d attempts", maxIDAttempts)
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
