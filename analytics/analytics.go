package analytics

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Record is one per-request audit row.
type Record struct {
	VideoID      string
	Endpoint     string
	StatusCode   int
	ResponseTime time.Duration
	ErrorMessage string
}

// Store persists audit records to SQLite. Write failures are logged and
// swallowed; they never reach the request path.
type Store struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "creating directory for analytics database")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening analytics database")
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS requests (
                    id INTEGER PRIMARY KEY AUTOINCREMENT,
                    video_id TEXT NOT NULL,
                    endpoint TEXT NOT NULL,
                    status_code INTEGER NOT NULL,
                    response_time_ms INTEGER NOT NULL,
                    error_message TEXT NOT NULL DEFAULT '',
                    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating requests table")
	}

	return &Store{
		db:     db,
		logger: logrus.StandardLogger(),
	}, nil
}

// Write inserts a record, logging any failure instead of returning it.
func (s *Store) Write(ctx context.Context, rec Record) {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO requests (video_id, endpoint, status_code, response_time_ms, error_message) VALUES (?, ?, ?, ?, ?)",
		rec.VideoID, rec.Endpoint, rec.StatusCode, rec.ResponseTime.Milliseconds(), rec.ErrorMessage,
	)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"video_id": rec.VideoID,
			"endpoint": rec.Endpoint,
		}).Error("Failed to write analytics record")
	}
}

// Recent returns the newest records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT video_id, endpoint, status_code, response_time_ms, error_message FROM requests ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying analytics records")
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var ms int64
		if err := rows.Scan(&rec.VideoID, &rec.Endpoint, &rec.StatusCode, &ms, &rec.ErrorMessage); err != nil {
			return nil, errors.Wrap(err, "scanning analytics record")
		}
		rec.ResponseTime = time.Duration(ms) * time.Millisecond
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
