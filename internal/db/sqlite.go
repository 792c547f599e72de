package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/paperboy/internal/models"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS favorites (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	summary TEXT NOT NULL DEFAULT '',
	url TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	author TEXT NOT NULL DEFAULT '',
	published_at TEXT NOT NULL,
	saved_at TEXT NOT NULL
);`

// SQLiteFavorites keeps favorites in a local SQLite file.
type SQLiteFavorites struct {
	conn *sql.DB
}

func NewSQLiteFavorites(path string) (*SQLiteFavorites, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("[SQLite] open %s: %w", path, err)
	}
	// modernc serializes writers per connection
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		slog.Warn("[SQLite] Could not enable WAL", slog.String("error", err.Error()))
	}
	if _, err := conn.Exec(sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("[SQLite] init schema: %w", err)
	}

	slog.Info("[SQLite] Favorites database ready", slog.String("path", path))
	return &SQLiteFavorites{conn: conn}, nil
}

func (s *SQLiteFavorites) Close() error {
	return s.conn.Close()
}

func (s *SQLiteFavorites) Insert(ctx context.Context, fav models.Favorite) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO favorites (id, title, summary, url, image_url, source, author, published_at, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		fav.ID, fav.Title, fav.Summary, fav.URL, fav.ImageURL, fav.Source, fav.Author,
		fav.PublishedAt.UTC().Format(time.RFC3339Nano),
		fav.SavedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("[SQLite] insert favorite: %w", err)
	}
	return nil
}

func (s *SQLiteFavorites) Delete(ctx context.Context, id string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM favorites WHERE id = ?`, id); err != nil {
		return fmt.Errorf("[SQLite] delete favorite: %w", err)
	}
	return nil
}

func (s *SQLiteFavorites) All(ctx context.Context) ([]models.Favorite, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, title, summary, url, image_url, source, author, published_at, saved_at
		FROM favorites ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("[SQLite] query favorites: %w", err)
	}
	defer rows.Close()

	favs := []models.Favorite{}
	for rows.Next() {
		var (
			f                  models.Favorite
			published, savedAt string
		)
		if err := rows.Scan(&f.ID, &f.Title, &f.Summary, &f.URL, &f.ImageURL, &f.Source, &f.Author, &published, &savedAt); err != nil {
			return nil, fmt.Errorf("[SQLite] scan favorite: %w", err)
		}
		if f.PublishedAt, err = time.Parse(time.RFC3339Nano, published); err != nil {
			return nil, fmt.Errorf("[SQLite] parse published_at for %s: %w", f.ID, err)
		}
		if f.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt); err != nil {
			return nil, fmt.Errorf("[SQLite] parse saved_at for %s: %w", f.ID, err)
		}
		favs = append(favs, f)
	}
	return favs, rows.Err()
}
