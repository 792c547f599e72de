package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spacesedan/paperboy/internal/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS favorites (
	seq BIGSERIAL PRIMARY KEY,
	id TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	summary TEXT NOT NULL DEFAULT '',
	url TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	author TEXT NOT NULL DEFAULT '',
	published_at TIMESTAMPTZ NOT NULL,
	saved_at TIMESTAMPTZ NOT NULL
)`

type PostgresFavorites struct {
	pool *pgxpool.Pool
}

// NewPostgresFavorites creates the favorites table if needed. The pool stays
// owned by the caller.
func NewPostgresFavorites(ctx context.Context, pool *pgxpool.Pool) (*PostgresFavorites, error) {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("[DB] create favorites table: %w", err)
	}
	slog.Info("[DB] Favorites table ready")
	return &PostgresFavorites{pool: pool}, nil
}

func (p *PostgresFavorites) Insert(ctx context.Context, fav models.Favorite) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO favorites (id, title, summary, url, image_url, source, author, published_at, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`,
		fav.ID, fav.Title, fav.Summary, fav.URL, fav.ImageURL, fav.Source, fav.Author,
		fav.PublishedAt.UTC(), fav.SavedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("[DB] insert favorite: %w", err)
	}
	return nil
}

func (p *PostgresFavorites) Delete(ctx context.Context, id string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM favorites WHERE id = $1`, id); err != nil {
		return fmt.Errorf("[DB] delete favorite: %w", err)
	}
	return nil
}

func (p *PostgresFavorites) All(ctx context.Context) ([]models.Favorite, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, title, summary, url, image_url, source, author, published_at, saved_at
		FROM favorites ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("[DB] query favorites: %w", err)
	}
	defer rows.Close()

	favs := []models.Favorite{}
	for rows.Next() {
		var f models.Favorite
		if err := rows.Scan(&f.ID, &f.Title, &f.Summary, &f.URL, &f.ImageURL, &f.Source, &f.Author, &f.PublishedAt, &f.SavedAt); err != nil {
			return nil, fmt.Errorf("[DB] scan favorite: %w", err)
		}
		f.PublishedAt = f.PublishedAt.UTC()
		f.SavedAt = f.SavedAt.UTC()
		favs = append(favs, f)
	}
	return favs, rows.Err()
}
