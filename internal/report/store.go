package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/resilience"
)

// Store persists reports in PostgreSQL.
//
// It requires the `report_snapshots` table from configs/schema.sql:
//
//	CREATE TABLE report_snapshots (
//	    id          BIGSERIAL PRIMARY KEY,
//	    source      TEXT NOT NULL,
//	    data        JSONB NOT NULL,
//	    captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type Store struct {
	db     *postgres.Client
	retry  resilience.RetryConfig
	logger *slog.Logger
}

func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		retry:  resilience.RetryConfig{MaxAttempts: 3, InitialDelay: 200 * time.Millisecond},
		logger: slog.Default().With("component", "report-store"),
	}
}

// Save inserts r and returns its row id. Transient failures are retried.
func (s *Store) Save(ctx context.Context, r *Report) (int64, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return 0, fmt.Errorf("marshaling report: %w", err)
	}

	var id int64
	err = resilience.Retry(ctx, "save-report", s.retry, func() error {
		var err error
		id, err = resilience.Timed(ctx, 5*time.Second, "save-report", func(ctx context.Context) (int64, error) {
			var id int64
			err := s.db.InTx(ctx, func(tx *sql.Tx) error {
				return tx.QueryRowContext(ctx,
					`INSERT INTO report_snapshots (source, data, captured_at) VALUES ($1, $2, $3) RETURNING id`,
					r.Source, data, r.CapturedAt,
				).Scan(&id)
			})
			return id, err
		})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("saving report: %w", err)
	}

	s.logger.Info("report saved", "id", id, "source", r.Source, "bytes", r.Bytes)
	return id, nil
}

// Latest loads the most recent report, optionally for one source. It
// returns nil, nil when there is none.
func (s *Store) Latest(ctx context.Context, source string) (*Report, error) {
	var data []byte
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT data FROM report_snapshots
		 WHERE $1 = '' OR source = $1
		 ORDER BY captured_at DESC LIMIT 1`,
		source,
	).Scan(&data)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest report: %w", err)
	}
	return decodeReport(data)
}

// List returns up to limit reports, newest first. Rows that no longer
// decode are skipped.
func (s *Store) List(ctx context.Context, limit int) ([]*Report, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT data FROM report_snapshots ORDER BY captured_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var reports []*Report
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		r, err := decodeReport(data)
		if err != nil {
			s.logger.Warn("skipping corrupt report", "error", err)
			continue
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func decodeReport(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshaling report: %w", err)
	}
	return &r, nil
}
