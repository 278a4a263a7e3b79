package storage

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*seriesRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	repo := &seriesRepository{db: db}
	cleanup := func() { _ = db.Close() }
	return repo, mock, cleanup
}

func TestGetSeries_SQLMock(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	// Common regex to avoid brittle query matching; focus on the SELECT shape
	selectRegex := regexp.MustCompile(`SELECT date, price, ma200, sth_realized\s+FROM sth_realized_price\s+WHERE .*\s+ORDER BY date ASC`)

	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		start     *time.Time
		end       *time.Time
		argsCount int
	}{
		{name: "no bounds", start: nil, end: nil, argsCount: 0},
		{name: "with start", start: &day, end: nil, argsCount: 1},
		{name: "with range", start: &day, end: &day2, argsCount: 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows := sqlmock.NewRows([]string{"date", "price", "ma200", "sth_realized"}).
				AddRow(day, 41000.0, nil, 38500.0).
				AddRow(day2, nil, nil, 39500.0)

			q := mock.ExpectQuery(selectRegex.String())
			switch tc.argsCount {
			case 1:
				q.WithArgs(day)
			case 2:
				q.WithArgs(day, day2)
			}
			q.WillReturnRows(rows)

			out, err := repo.GetSeries(tc.start, tc.end)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if len(out) != 2 {
				t.Fatalf("rows: want 2 got %d", len(out))
			}
			if out[0].Price == nil || *out[0].Price != 41000.0 {
				t.Fatalf("unexpected first row: %+v", out[0])
			}
			if out[1].Price != nil || out[1].MA200 != nil {
				t.Fatalf("expected NULLs mapped to nil: %+v", out[1])
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestGetLatest_SQLMock(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	latestRegex := regexp.MustCompile(`SELECT date, price, ma200, sth_realized\s+FROM sth_realized_price\s+ORDER BY date DESC\s+LIMIT 1`)
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("row present", func(t *testing.T) {
		mock.ExpectQuery(latestRegex.String()).
			WillReturnRows(sqlmock.NewRows([]string{"date", "price", "ma200", "sth_realized"}).
				AddRow(day, 65000.0, 52000.5, 61000.0))

		p, err := repo.GetLatest()
		if err != nil || p == nil {
			t.Fatalf("unexpected: p=%+v err=%v", p, err)
		}
		if p.DateString() != "2024-06-01" || *p.MA200 != 52000.5 {
			t.Fatalf("unexpected point: %+v", p)
		}
	})

	t.Run("empty table", func(t *testing.T) {
		mock.ExpectQuery(latestRegex.String()).
			WillReturnRows(sqlmock.NewRows([]string{"date", "price", "ma200", "sth_realized"}))

		p, err := repo.GetLatest()
		if err != nil || p != nil {
			t.Fatalf("want nil,nil got p=%+v err=%v", p, err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordFetchLog_SQLMock(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO fetch_log (run_id, source_url, row_count, fetched_at)")).
		WithArgs("run-1", "https://api.example/metric", 1234).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.RecordFetchLog("run-1", "https://api.example/metric", 1234); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
