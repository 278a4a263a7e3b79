//go:build integration
// +build integration

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	goose "github.com/pressly/goose/v3"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/guttosm/sthpulse/internal/domain/models"
)

// startPostgres spins up a Postgres container and returns a DSN and terminate func.
func startPostgres(t *testing.T) (dsn string, terminate func()) {
	t.Helper()
	ctx := context.Background()

	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "sthpulse",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(host string, port nat.Port) string {
			return fmt.Sprintf("host=%s port=%s user=postgres password=postgres dbname=sthpulse sslmode=disable", host, port.Port())
		}).WithStartupTimeout(60 * time.Second),
	}

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container start: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", "postgres", "postgres", host, port.Port(), "sthpulse")
	terminate = func() { _ = container.Terminate(context.Background()) }
	return dsn, terminate
}

func openDB(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("dialect: %v", err)
	}
	if err := goose.Up(db, filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func pt(date string, price, ma, sth *float64) models.MetricPoint {
	d, _ := time.Parse("2006-01-02", date)
	return models.MetricPoint{Date: d, Price: price, MA200: ma, STHRealized: sth}
}

func fp(v float64) *float64 { return &v }

func TestSeriesRepository_Roundtrip(t *testing.T) {
	dsn, terminate := startPostgres(t)
	defer terminate()
	db := openDB(t, dsn)
	defer db.Close()

	repo := NewSeriesRepository(db)

	first := []models.MetricPoint{
		pt("2024-01-01", fp(40000), nil, fp(38000)),
		pt("2024-01-02", fp(41000), nil, fp(38500)),
		pt("2024-01-03", nil, nil, fp(39500)),
	}

	t.Run("replace and read back", func(t *testing.T) {
		if err := repo.ReplaceSeries(first); err != nil {
			t.Fatalf("replace: %v", err)
		}

		out, err := repo.GetSeries(nil, nil)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if len(out) != 3 {
			t.Fatalf("rows: want 3 got %d", len(out))
		}
		if out[2].Price != nil {
			t.Fatalf("expected NULL price on last row: %+v", out[2])
		}
	})

	t.Run("replace overwrites, not merges", func(t *testing.T) {
		second := []models.MetricPoint{
			pt("2024-02-01", fp(50000), nil, fp(45000)),
		}
		if err := repo.ReplaceSeries(second); err != nil {
			t.Fatalf("replace: %v", err)
		}
		out, err := repo.GetSeries(nil, nil)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if len(out) != 1 || out[0].DateString() != "2024-02-01" {
			t.Fatalf("expected only the new series, got %+v", out)
		}
	})

	t.Run("latest and fetch log", func(t *testing.T) {
		p, err := repo.GetLatest()
		if err != nil || p == nil || p.DateString() != "2024-02-01" {
			t.Fatalf("latest: p=%+v err=%v", p, err)
		}

		if err := repo.RecordFetchLog("11111111-2222-3333-4444-555555555555", "https://api.example/metric", 1); err != nil {
			t.Fatalf("fetch log: %v", err)
		}
		var n int
		if err := db.QueryRow(`SELECT COUNT(*) FROM fetch_log`).Scan(&n); err != nil || n != 1 {
			t.Fatalf("fetch_log count=%d err=%v", n, err)
		}
	})
}
