package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cbodonnell/goban/pkg/log"
	"github.com/cbodonnell/goban/pkg/repositories/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PostgresRepository struct {
	// pgx.Conn is not safe for concurrent use
	lock sync.Mutex
	conn *pgx.Conn
}

var _ Repository = &PostgresRepository{}

// NewPostgresRepository connects to the database and applies the migrations.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (*PostgresRepository, error) {
	conn, err := connectDb(ctx, connStr)
	if err != nil {
		return nil, err
	}

	migrations, err := readMigrations("postgres")
	if err != nil {
		conn.Close(ctx)
		return nil, err
	}
	for _, m := range migrations {
		if _, err := conn.Exec(ctx, m.sql); err != nil {
			conn.Close(ctx)
			return nil, fmt.Errorf("failed to execute migration %s: %v", m.name, err)
		}
	}

	return &PostgresRepository{
		conn: conn,
	}, nil
}

func connectDb(ctx context.Context, connStr string) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	var username string
	var database string
	err = conn.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("unable to query database: %v", err)
	}

	log.Info("Connected to %s as %s", database, username)

	return conn, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) CreateMatch(ctx context.Context, match *models.Match) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	q := `
	INSERT INTO matches (match_id, local_handle, num_players, players, started_at, last_frame)
	VALUES ($1, $2, $3, $4, $5, $6);
	`
	if _, err := r.conn.Exec(ctx, q, match.ID, match.LocalHandle, match.NumPlayers, match.Players, match.StartedAt, match.LastFrame); err != nil {
		return fmt.Errorf("failed to insert match: %v", err)
	}
	return nil
}

func (r *PostgresRepository) EndMatch(ctx context.Context, matchID string, endedAt time.Time, lastFrame int32) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	q := `
	UPDATE matches SET ended_at = $1, last_frame = $2 WHERE match_id = $3;
	`
	tag, err := r.conn.Exec(ctx, q, endedAt, lastFrame, matchID)
	if err != nil {
		return fmt.Errorf("failed to update match: %v", err)
	}
	if tag.RowsAffected() == 0 {
		return &ErrNotFound{}
	}
	return nil
}

func (r *PostgresRepository) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	q := `
	SELECT match_id::text, local_handle, num_players, players, started_at, ended_at, last_frame
	FROM matches WHERE match_id = $1;
	`
	match := &models.Match{}
	err := r.conn.QueryRow(ctx, q, matchID).Scan(&match.ID, &match.LocalHandle, &match.NumPlayers, &match.Players, &match.StartedAt, &match.EndedAt, &match.LastFrame)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan match: %v", err)
	}
	return match, nil
}

func (r *PostgresRepository) SaveDesyncReport(ctx context.Context, report *models.DesyncReport) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	q := `
	INSERT INTO desync_reports (report_id, match_id, frame, handle, local_checksum, remote_checksum, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.conn.Exec(ctx, q,
		report.ID,
		report.MatchID,
		report.Frame,
		report.Handle,
		int64(report.LocalChecksum),
		int64(report.RemoteChecksum),
		report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert desync report: %v", err)
	}
	return nil
}

func (r *PostgresRepository) ListDesyncReports(ctx context.Context, matchID string) ([]*models.DesyncReport, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	q := `
	SELECT report_id::text, match_id::text, frame, handle, local_checksum, remote_checksum, created_at
	FROM desync_reports WHERE match_id = $1 ORDER BY frame, handle;
	`
	rows, err := r.conn.Query(ctx, q, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query desync reports: %v", err)
	}
	defer rows.Close()

	reports := []*models.DesyncReport{}
	for rows.Next() {
		report := &models.DesyncReport{}
		var local, remote int64
		if err := rows.Scan(&report.ID, &report.MatchID, &report.Frame, &report.Handle, &local, &remote, &report.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan desync report: %v", err)
		}
		report.LocalChecksum = uint64(local)
		report.RemoteChecksum = uint64(remote)
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate desync reports: %v", err)
	}
	return reports, nil
}
