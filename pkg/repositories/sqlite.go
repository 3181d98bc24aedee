package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cbodonnell/goban/pkg/repositories/models"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = &SQLiteRepository{}

func NewSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	// a single connection keeps in-memory databases alive between queries
	db.SetMaxOpenConns(1)

	migrations, err := readMigrations("sqlite")
	if err != nil {
		db.Close()
		return nil, err
	}
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m.sql); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute migration %s: %v", m.name, err)
		}
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateMatch(ctx context.Context, match *models.Match) error {
	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	q := `
	INSERT INTO matches (match_id, local_handle, num_players, players, started_at, last_frame)
	VALUES (?, ?, ?, ?, ?, ?);
	`
	_, err := r.db.ExecContext(ctx, q, match.ID, match.LocalHandle, match.NumPlayers, match.Players, match.StartedAt.UnixMilli(), match.LastFrame)
	if err != nil {
		return fmt.Errorf("failed to insert match: %v", err)
	}
	return nil
}

func (r *SQLiteRepository) EndMatch(ctx context.Context, matchID string, endedAt time.Time, lastFrame int32) error {
	q := `
	UPDATE matches SET ended_at = ?, last_frame = ? WHERE match_id = ?;
	`
	res, err := r.db.ExecContext(ctx, q, endedAt.UnixMilli(), lastFrame, matchID)
	if err != nil {
		return fmt.Errorf("failed to update match: %v", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %v", err)
	}
	if n == 0 {
		return &ErrNotFound{}
	}
	return nil
}

func (r *SQLiteRepository) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	q := `
	SELECT match_id, local_handle, num_players, players, started_at, ended_at, last_frame
	FROM matches WHERE match_id = ?;
	`
	match := &models.Match{}
	var startedAt int64
	var endedAt sql.NullInt64
	err := r.db.QueryRowContext(ctx, q, matchID).Scan(&match.ID, &match.LocalHandle, &match.NumPlayers, &match.Players, &startedAt, &endedAt, &match.LastFrame)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan match: %v", err)
	}
	match.StartedAt = time.UnixMilli(startedAt).UTC()
	if endedAt.Valid {
		t := time.UnixMilli(endedAt.Int64).UTC()
		match.EndedAt = &t
	}
	return match, nil
}

func (r *SQLiteRepository) SaveDesyncReport(ctx context.Context, report *models.DesyncReport) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	q := `
	INSERT INTO desync_reports (report_id, match_id, frame, handle, local_checksum, remote_checksum, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`
	_, err := r.db.ExecContext(ctx, q,
		report.ID,
		report.MatchID,
		report.Frame,
		report.Handle,
		strconv.FormatUint(report.LocalChecksum, 16),
		strconv.FormatUint(report.RemoteChecksum, 16),
		report.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert desync report: %v", err)
	}
	return nil
}

func (r *SQLiteRepository) ListDesyncReports(ctx context.Context, matchID string) ([]*models.DesyncReport, error) {
	q := `
	SELECT report_id, match_id, frame, handle, local_checksum, remote_checksum, created_at
	FROM desync_reports WHERE match_id = ? ORDER BY frame, handle;
	`
	rows, err := r.db.QueryContext(ctx, q, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query desync reports: %v", err)
	}
	defer rows.Close()

	reports := []*models.DesyncReport{}
	for rows.Next() {
		report := &models.DesyncReport{}
		var local, remote string
		var createdAt int64
		if err := rows.Scan(&report.ID, &report.MatchID, &report.Frame, &report.Handle, &local, &remote, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan desync report: %v", err)
		}
		if report.LocalChecksum, err = strconv.ParseUint(local, 16, 64); err != nil {
			return nil, fmt.Errorf("failed to parse local checksum: %v", err)
		}
		if report.RemoteChecksum, err = strconv.ParseUint(remote, 16, 64); err != nil {
			return nil, fmt.Errorf("failed to parse remote checksum: %v", err)
		}
		report.CreatedAt = time.UnixMilli(createdAt).UTC()
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate desync reports: %v", err)
	}
	return reports, nil
}
