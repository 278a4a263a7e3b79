package storage

import (
	"database/sql"
	"fmt"
	"time"

	pq "github.com/lib/pq"

	"github.com/guttosm/sthpulse/internal/domain/models"
)

// SeriesRepository defines contract for DB operations on the metric series.
type SeriesRepository interface {
	ReplaceSeries(points []models.MetricPoint) error
	GetSeries(start *time.Time, end *time.Time) ([]models.MetricPoint, error)
	GetLatest() (*models.MetricPoint, error)
	RecordFetchLog(runID string, sourceURL string, rowCount int) error
}

type seriesRepository struct {
	db *sql.DB
}

func NewSeriesRepository(db *sql.DB) SeriesRepository {
	return &seriesRepository{db: db}
}

// ReplaceSeries swaps the stored series for the given one in a single
// transaction: DELETE everything, then bulk-load via COPY. Mirrors the
// file artifact's overwrite-on-every-run lifecycle; no incremental merge.
func (r *seriesRepository) ReplaceSeries(points []models.MetricPoint) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	// Small optimization for bulk load
	if _, err := tx.Exec(`SET LOCAL synchronous_commit = OFF`); err != nil {
		_ = tx.Rollback()
		return err
	}

	if _, err := tx.Exec(`DELETE FROM sth_realized_price`); err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.Prepare(pq.CopyIn(
		"sth_realized_price",
		"date",
		"price",
		"ma200",
		"sth_realized",
	))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	// helper to map nil floats to SQL NULL
	toNull := func(v *float64) interface{} {
		if v == nil {
			return nil
		}
		return *v
	}

	for _, p := range points {
		if _, err := stmt.Exec(
			p.Date,
			toNull(p.Price),
			toNull(p.MA200),
			toNull(p.STHRealized),
		); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}

	if _, err := stmt.Exec(); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// GetSeries returns the stored series ascending by date, optionally
// bounded by inclusive start/end dates.
func (r *seriesRepository) GetSeries(start *time.Time, end *time.Time) ([]models.MetricPoint, error) {
	// Build dynamic conditions for date range filters.
	conditions := "TRUE"
	var args []interface{}
	if start != nil {
		conditions += fmt.Sprintf(" AND date >= $%d", len(args)+1)
		args = append(args, *start)
	}
	if end != nil {
		conditions += fmt.Sprintf(" AND date <= $%d", len(args)+1)
		args = append(args, *end)
	}

	query := fmt.Sprintf(`
		SELECT date, price, ma200, sth_realized
		FROM sth_realized_price
		WHERE %s
		ORDER BY date ASC
	`, conditions)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.MetricPoint
	for rows.Next() {
		p, err := scanPoint(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetLatest returns the newest stored point, or nil when the table is empty.
func (r *seriesRepository) GetLatest() (*models.MetricPoint, error) {
	row := r.db.QueryRow(`
		SELECT date, price, ma200, sth_realized
		FROM sth_realized_price
		ORDER BY date DESC
		LIMIT 1
	`)

	p, err := scanPoint(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// RecordFetchLog appends one audit row for a completed fetch run.
func (r *seriesRepository) RecordFetchLog(runID string, sourceURL string, rowCount int) error {
	_, err := r.db.Exec(`
		INSERT INTO fetch_log (run_id, source_url, row_count, fetched_at)
		VALUES ($1, $2, $3, NOW())
	`, runID, sourceURL, rowCount)
	return err
}

// scanPoint maps one result row onto a MetricPoint, converting SQL NULLs
// to nil pointers.
func scanPoint(scan func(dest ...interface{}) error) (models.MetricPoint, error) {
	var p models.MetricPoint
	var price, ma, sth sql.NullFloat64

	if err := scan(&p.Date, &price, &ma, &sth); err != nil {
		return p, err
	}
	if price.Valid {
		p.Price = &price.Float64
	}
	if ma.Valid {
		p.MA200 = &ma.Float64
	}
	if sth.Valid {
		p.STHRealized = &sth.Float64
	}
	return p, nil
}
