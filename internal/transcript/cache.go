package transcript

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yildizm/vidsynth/internal/logger"
)

const cacheSchema = `CREATE TABLE IF NOT EXISTS transcripts (
    video_id TEXT NOT NULL,
    language TEXT NOT NULL,
    text TEXT NOT NULL,
    fetched_at TEXT NOT NULL,
    PRIMARY KEY (video_id, language)
);`

// CachedProvider serves transcripts from a SQLite cache and falls back to
// the wrapped provider on a miss
type CachedProvider struct {
	next   Provider
	db     *sql.DB
	logger *logger.Logger
}

// NewCachedProvider opens (or creates) the cache database at path
func NewCachedProvider(next Provider, path string, log *logger.Logger) (*CachedProvider, error) {
	if next == nil {
		return nil, errors.New("cached provider needs an underlying provider")
	}
	if path == "" {
		return nil, errors.New("sqlite cache path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript cache: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(cacheSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate transcript cache: %w", err)
	}

	return &CachedProvider{next: next, db: db, logger: log.WithComponent("transcript-cache")}, nil
}

// Fetch implements Provider
func (c *CachedProvider) Fetch(ctx context.Context, videoID, language string) (string, error) {
	if language == "" {
		language = DefaultLanguage
	}

	var text string
	err := c.db.QueryRowContext(ctx,
		`SELECT text FROM transcripts WHERE video_id = ? AND language = ?`,
		videoID, language).Scan(&text)
	switch {
	case err == nil:
		c.logger.DebugWithFields("cache hit", []logger.Field{logger.VideoID(videoID), logger.F("language", language)})
		return text, nil
	case !errors.Is(err, sql.ErrNoRows):
		c.logger.WarnWithFields("cache read failed", []logger.Field{logger.VideoID(videoID), logger.Error(err)})
	}

	text, err = c.next.Fetch(ctx, videoID, language)
	if err != nil {
		return "", err
	}

	if err := c.Store(ctx, videoID, language, text); err != nil {
		c.logger.WarnWithFields("cache write failed", []logger.Field{logger.VideoID(videoID), logger.Error(err)})
	}
	return text, nil
}

// Store saves a transcript, replacing any cached copy
func (c *CachedProvider) Store(ctx context.Context, videoID, language, text string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO transcripts (video_id, language, text, fetched_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(video_id, language) DO UPDATE SET text = excluded.text, fetched_at = excluded.fetched_at`,
		videoID, language, text, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Evict removes the cached transcripts of a video in every language
func (c *CachedProvider) Evict(ctx context.Context, videoID string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM transcripts WHERE video_id = ?`, videoID)
	return err
}

// Close releases the database
func (c *CachedProvider) Close() error {
	return c.db.Close()
}
