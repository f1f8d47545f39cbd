// Package store is the persistent store for feeds, categories, videos and
// their category associations, backed by an embedded SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// Feed is a tracked content channel.
type Feed struct {
	Username    string
	DisplayName string
}

// Category is one operator-defined classification label. LLMCategory is the
// literal string presented to and expected back from the model.
type Category struct {
	LLMCategory     string
	DisplayCategory string
}

// Video is one ingested video row.
type Video struct {
	VideoID     string
	Username    string
	URL         string
	Title       string
	UploadDate  string
	Thumbnail   []byte
	Tags        string
	Description string
	Transcript  string
}

// ErrNotFound indicates a lookup matched no row.
var ErrNotFound = errors.New("store: not found")

// Store wraps the SQLite connection. It is not safe for concurrent writers;
// each worker context should own its own Store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path, bootstraps the schema on
// first use, and seeds default settings.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable foreign keys: %w", err)
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// initSchema creates tables if absent and seeds default settings once.
func (s *Store) initSchema() error {
	var name string
	err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='feeds'").Scan(&name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS settings (setting TEXT PRIMARY KEY, setting_value ANY NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS feeds (username TEXT PRIMARY KEY, display_name TEXT)`,
		`CREATE TABLE IF NOT EXISTS categories (llm_category TEXT PRIMARY KEY, display_category TEXT NOT NULL UNIQUE)`,
		`CREATE TABLE IF NOT EXISTS videos (
			video_id TEXT PRIMARY KEY NOT NULL UNIQUE,
			username TEXT,
			url TEXT NOT NULL,
			title TEXT NOT NULL,
			upload_date DATE,
			thumbnail BLOB,
			tags TEXT,
			description TEXT,
			transcript TEXT,
			FOREIGN KEY (username) REFERENCES feeds(username) ON DELETE CASCADE)`,
		`CREATE TABLE IF NOT EXISTS video_categories (
			video_id TEXT,
			llm_category TEXT,
			FOREIGN KEY (video_id) REFERENCES videos(video_id),
			FOREIGN KEY (llm_category) REFERENCES categories(llm_category))`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return s.seedDefaultSettings()
}

// AddFeed registers a channel to track.
func (s *Store) AddFeed(ctx context.Context, username, displayName string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO feeds (username, display_name) VALUES (?, ?)", username, displayName)
	return err
}

// DeleteFeed removes a feed, its videos, and their category associations.
func (s *Store) DeleteFeed(ctx context.Context, username string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM video_categories WHERE video_id IN
			(SELECT video_id FROM videos WHERE username = ?)`, username); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM videos WHERE username = ?", username); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM feeds WHERE username = ?", username); err != nil {
		return err
	}
	return tx.Commit()
}

// Feeds returns all feeds ordered by display name.
func (s *Store) Feeds(ctx context.Context) ([]Feed, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT username, display_name FROM feeds ORDER BY display_name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		var f Feed
		if err := rows.Scan(&f.Username, &f.DisplayName); err != nil {
			return nil, err
		}
		feeds = append(feeds, f)
	}
	return feeds, rows.Err()
}

// ChannelUsernames returns the usernames of all tracked feeds.
func (s *Store) ChannelUsernames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT username FROM feeds")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// AddCategory registers a classification label.
func (s *Store) AddCategory(ctx context.Context, llmCategory, displayCategory string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (llm_category, display_category) VALUES (?, ?)",
		llmCategory, displayCategory)
	return err
}

// DeleteCategory removes a category and its video associations.
func (s *Store) DeleteCategory(ctx context.Context, llmCategory string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM video_categories WHERE llm_category = ?", llmCategory); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM categories WHERE llm_category = ?", llmCategory); err != nil {
		return err
	}
	return tx.Commit()
}

// Categories returns all categories ordered by display name.
func (s *Store) Categories(ctx context.Context) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT llm_category, display_category FROM categories ORDER BY display_category ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.LLMCategory, &c.DisplayCategory); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// LLMCategoryKeys returns the live set of llm_category keys.
func (s *Store) LLMCategoryKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT llm_category FROM categories")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// AddVideo persists a video row and its category associations as one
// transaction: the video insert precedes the association inserts and both
// commit together.
func (s *Store) AddVideo(ctx context.Context, v Video, categories []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO videos (video_id, username, url, title, upload_date, thumbnail, tags, description, transcript)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.VideoID, v.Username, v.URL, v.Title, v.UploadDate, v.Thumbnail, v.Tags, v.Description, v.Transcript); err != nil {
		return fmt.Errorf("insert video %s: %w", v.VideoID, err)
	}
	for _, cat := range categories {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO video_categories (video_id, llm_category) VALUES (?, ?)",
			v.VideoID, cat); err != nil {
			return fmt.Errorf("insert association %s/%s: %w", v.VideoID, cat, err)
		}
	}
	return tx.Commit()
}

// VideoIDsAndTitles returns the id→title map of all stored videos, used for
// dedup and rename detection during sync.
func (s *Store) VideoIDsAndTitles(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT video_id, title FROM videos")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	titles := make(map[string]string)
	for rows.Next() {
		var id, title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, err
		}
		titles[id] = title
	}
	return titles, rows.Err()
}

// VideoTitle returns the stored title for a video id.
func (s *Store) VideoTitle(ctx context.Context, videoID string) (string, error) {
	var title string
	err := s.db.QueryRowContext(ctx,
		"SELECT title FROM videos WHERE video_id = ?", videoID).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return title, err
}

// UpdateVideoTitle updates a stored title in place (rename detection).
func (s *Store) UpdateVideoTitle(ctx context.Context, videoID, title string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE videos SET title = ? WHERE video_id = ?", title, videoID)
	return err
}

// FullVideos returns every stored video with its transcript, for
// reclassification runs.
func (s *Store) FullVideos(ctx context.Context) ([]Video, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT video_id, username, url, title, upload_date, tags, description,
		        COALESCE(transcript, '')
		 FROM videos`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []Video
	for rows.Next() {
		var v Video
		if err := rows.Scan(&v.VideoID, &v.Username, &v.URL, &v.Title,
			&v.UploadDate, &v.Tags, &v.Description, &v.Transcript); err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// VideoByID returns a single stored video with its transcript.
func (s *Store) VideoByID(ctx context.Context, videoID string) (*Video, error) {
	var v Video
	err := s.db.QueryRowContext(ctx,
		`SELECT video_id, username, url, title, upload_date, tags, description,
		        COALESCE(transcript, '')
		 FROM videos WHERE video_id = ?`, videoID).
		Scan(&v.VideoID, &v.Username, &v.URL, &v.Title, &v.UploadDate,
			&v.Tags, &v.Description, &v.Transcript)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// UncategorizedVideos returns videos with no category associations.
func (s *Store) UncategorizedVideos(ctx context.Context) ([]Video, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT v.video_id, v.username, v.url, v.title, v.upload_date, v.tags,
		        v.description, COALESCE(v.transcript, '')
		 FROM videos v
		 LEFT JOIN video_categories vc ON v.video_id = vc.video_id
		 WHERE vc.video_id IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []Video
	for rows.Next() {
		var v Video
		if err := rows.Scan(&v.VideoID, &v.Username, &v.URL, &v.Title,
			&v.UploadDate, &v.Tags, &v.Description, &v.Transcript); err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// ClearVideoCategories deletes every video↔category association. Used by
// reclassification's intentional full rebuild.
func (s *Store) ClearVideoCategories(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM video_categories")
	return err
}

// DeleteVideoCategories removes the associations of a single video.
func (s *Store) DeleteVideoCategories(ctx context.Context, videoID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM video_categories WHERE video_id = ?", videoID)
	return err
}

// AddVideoCategories bulk-inserts associations for one video in a single
// transaction.
func (s *Store) AddVideoCategories(ctx context.Context, videoID string, categories []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, cat := range categories {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO video_categories (video_id, llm_category) VALUES (?, ?)",
			videoID, cat); err != nil {
			return fmt.Errorf("insert association %s/%s: %w", videoID, cat, err)
		}
	}
	return tx.Commit()
}
