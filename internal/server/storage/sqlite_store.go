package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/palemoky/property-tycoon/internal/apperrors"
	"github.com/palemoky/property-tycoon/internal/game/event"
)

//go:embed schema.sql
var schema string

// SQLiteStore 单文件 SQLite 存储，每个事件一行
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite 打开数据库并建表
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// 单写者
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, gameID string, expectedVersion int, events []event.Event) (int, error) {
	rows, err := encodeAll(events)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM game_events WHERE game_id = ?`, gameID,
	).Scan(&current); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	if current != expectedVersion {
		return current, apperrors.Conflict(expectedVersion, current)
	}

	now := time.Now().UTC().UnixMilli()
	for i, row := range rows {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO game_events (game_id, version, type, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
			gameID, current+i+1, string(events[i].Type()), string(row), now,
		)
		if isUniqueViolation(err) {
			return current, apperrors.Conflict(expectedVersion, current+i)
		}
		if err != nil {
			return 0, fmt.Errorf("insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return current + len(rows), nil
}

func (s *SQLiteStore) Load(ctx context.Context, gameID string) ([]event.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM game_events WHERE game_id = ? ORDER BY version`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var payloads []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		payloads = append(payloads, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return decodeAll(payloads)
}

func (s *SQLiteStore) Version(ctx context.Context, gameID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM game_events WHERE game_id = ?`, gameID).Scan(&n)
	return n, err
}

func (s *SQLiteStore) ListGames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT game_id FROM game_events ORDER BY game_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close 关闭数据库
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
