package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/guttosm/sthpulse/config"
	"github.com/guttosm/sthpulse/internal/export"
	"github.com/guttosm/sthpulse/internal/logger"
	"github.com/guttosm/sthpulse/internal/storage"
)

// Fetcher abstracts the HTTP layer so the pipeline can be driven by a
// fake in tests.
type Fetcher interface {
	// FetchCSV returns the raw response body and the URL that served it.
	FetchCSV(ctx context.Context) (string, string, error)
}

// repoCtor is an indirection for creating the repository; tests can override this.
var repoCtor = func(db *sql.DB) storage.SeriesRepository {
	return storage.NewSeriesRepository(db)
}

// Run executes one full fetch of the STH realized price series:
// fetch → clean → parse → resolve columns → coerce/derive → sinks.
//
// Parameters:
//   - ctx:     context for cancellation (bounds the network fetch).
//   - cfg:     fetch settings (URLs, output path, MA window, price policy).
//   - fetcher: HTTP client for the BMP API.
//   - db:      open *sql.DB for the Postgres sink, or nil to skip persistence.
//
// Behavior:
//   - Any stage failure aborts the whole run; no partial artifact is written.
//   - Row-level problems are tolerated per the cleaning rules: bad dates
//     drop the row, bad numerics null the field.
//   - Sinks (JSON artifact, optional Postgres) run concurrently under an
//     errgroup; the first sink error cancels its siblings.
//
// Returns:
//   - int: number of rows in the produced series.
//   - error: first error encountered (if any).
func Run(ctx context.Context, cfg config.FetchConfig, fetcher Fetcher, db *sql.DB) (int, error) {
	log := logger.C("pipeline")
	runID := uuid.NewString()
	start := time.Now()

	log.Info().Str("run_id", runID).Int("urls", len(cfg.URLs)).Msg("fetch start")

	raw, sourceURL, err := fetcher.FetchCSV(ctx)
	if err != nil {
		return 0, err
	}

	cleaned := CleanCSVText(raw)
	if cleaned == "" {
		return 0, fmt.Errorf("empty response from BMP API")
	}

	table, err := ParseTable(cleaned)
	if err != nil {
		return 0, fmt.Errorf("parse response: %w", err)
	}

	cols, err := ResolveColumns(table.Columns, cfg.RequirePrice)
	if err != nil {
		return 0, err
	}
	log.Debug().
		Str("run_id", runID).
		Str("date_col", cols.Date).
		Str("price_col", cols.Price).
		Str("metric_col", cols.Metric).
		Msg("columns resolved")

	points := BuildSeries(table, cols, cfg.MAWindow)
	if len(points) == 0 {
		// Bad dates drop rows, never the run: an all-dropped series still
		// produces an empty artifact.
		log.Warn().Str("run_id", runID).Int("source_rows", len(table.Rows)).Msg("no rows survived date parsing")
	}

	// Sinks fan out; the JSON artifact is always written, Postgres only
	// when a connection was provided.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := export.WriteJSON(cfg.OutputPath, points)
		if err != nil {
			return fmt.Errorf("write artifact: %w", err)
		}
		log.Info().Str("run_id", runID).Str("path", cfg.OutputPath).Int("rows", n).Msg("artifact written")
		return nil
	})

	if db != nil {
		repo := repoCtor(db)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := repo.ReplaceSeries(points); err != nil {
				return fmt.Errorf("persist series: %w", err)
			}
			if err := repo.RecordFetchLog(runID, sourceURL, len(points)); err != nil {
				return fmt.Errorf("record fetch log: %w", err)
			}
			log.Info().Str("run_id", runID).Int("rows", len(points)).Msg("series persisted")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	log.Info().
		Str("run_id", runID).
		Str("source_url", sourceURL).
		Int("rows", len(points)).
		Dur("elapsed", time.Since(start)).
		Msg("fetch done")

	return len(points), nil
}
