package db

import (
	"context"
	"errors"
	"log/slog"

	"fieldexplorer/internal/storage"
)

const createFavoritesTable = `
	CREATE TABLE IF NOT EXISTS fav_keywords (
		name VARCHAR(512) NOT NULL,
		PRIMARY KEY (name)
	)
`

// EnsureSchema creates the favorite keyword table if it does not exist.
func (d *DB) EnsureSchema(ctx context.Context) error {
	_, err := run(ctx, d, "ensure_schema", func(ctx context.Context) (struct{}, error) {
		_, err := d.Pool.Exec(ctx, createFavoritesTable)
		return struct{}{}, err
	})
	if err == nil {
		slog.Debug("favorite keyword table ensured")
	}
	return err
}

// ListFavorites returns every favorite keyword ordered by name.
// A missing table is created and reported as an empty list.
func (d *DB) ListFavorites(ctx context.Context) ([]string, error) {
	names, err := d.listFavorites(ctx)
	if errors.Is(err, storage.ErrSchemaMissing) {
		if err := d.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return []string{}, nil
	}
	return names, err
}

func (d *DB) listFavorites(ctx context.Context) ([]string, error) {
	return run(ctx, d, "list_favorites", func(ctx context.Context) ([]string, error) {
		rows, err := d.Pool.Query(ctx, `SELECT name FROM fav_keywords ORDER BY name`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		names := []string{}
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return nil, err
			}
			names = append(names, name)
		}
		return names, rows.Err()
	})
}

// AddFavorite inserts keyword unless it is already a favorite.
// It reports whether a row was inserted.
func (d *DB) AddFavorite(ctx context.Context, keyword string) (bool, error) {
	added, err := d.addFavorite(ctx, keyword)
	if errors.Is(err, storage.ErrSchemaMissing) {
		if err := d.EnsureSchema(ctx); err != nil {
			return false, err
		}
		added, err = d.addFavorite(ctx, keyword)
	}
	if err != nil {
		return false, err
	}
	if added {
		slog.Info("favorite keyword added", "keyword", keyword)
	}
	return added, nil
}

func (d *DB) addFavorite(ctx context.Context, keyword string) (bool, error) {
	return run(ctx, d, "add_favorite", func(ctx context.Context) (bool, error) {
		tag, err := d.Pool.Exec(ctx, `
			INSERT INTO fav_keywords (name)
			VALUES ($1)
			ON CONFLICT (name) DO NOTHING
		`, keyword)
		if err != nil {
			return false, err
		}
		return tag.RowsAffected() == 1, nil
	})
}

// RemoveFavorites deletes every keyword in keywords in a single statement.
// It returns the number of rows deleted; a missing table is a logged no-op.
func (d *DB) RemoveFavorites(ctx context.Context, keywords []string) (int64, error) {
	if len(keywords) == 0 {
		return 0, nil
	}

	n, err := run(ctx, d, "remove_favorites", func(ctx context.Context) (int64, error) {
		tag, err := d.Pool.Exec(ctx, `DELETE FROM fav_keywords WHERE name = ANY($1)`, keywords)
		if err != nil {
			return 0, err
		}
		return tag.RowsAffected(), nil
	})
	if errors.Is(err, storage.ErrSchemaMissing) {
		slog.Error("favorite keyword table does not exist", "keywords", keywords)
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.Info("favorite keywords deleted", "keywords", keywords, "count", n)
	}
	return n, nil
}

// CountFavorites returns the number of favorite keywords.
func (d *DB) CountFavorites(ctx context.Context) (int64, error) {
	n, err := run(ctx, d, "count_favorites", func(ctx context.Context) (int64, error) {
		var n int64
		err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM fav_keywords`).Scan(&n)
		return n, err
	})
	if errors.Is(err, storage.ErrSchemaMissing) {
		return 0, nil
	}
	return n, err
}
