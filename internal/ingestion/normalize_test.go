package ingestion

import "testing"

func TestCleanCSVText_TableDriven(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "whitespace only", in: "  \n\t ", want: ""},
		{name: "plain csv untouched", in: "date,value\n2024-01-01,1\n", want: "date,value\n2024-01-01,1"},
		{
			name: "double-quoted blob with escaped newlines",
			in:   `"date,value\n2024-01-01,1\n2024-01-02,2"`,
			want: "date,value\n2024-01-01,1\n2024-01-02,2",
		},
		{
			name: "single-quoted blob",
			in:   `'date,value\n2024-01-01,1'`,
			want: "date,value\n2024-01-01,1",
		},
		{
			name: "escaped carriage returns",
			in:   `date,value\r\n2024-01-01,1`,
			want: "date,value\r\n2024-01-01,1",
		},
		{
			name: "mismatched quotes kept",
			in:   `"date,value'`,
			want: `"date,value'`,
		},
		{
			name: "lone quote char kept",
			in:   `"`,
			want: `"`,
		},
		{
			name: "json escapes pass through untouched",
			in:   `a\"b\\c`,
			want: `a\"b\\c`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanCSVText(tc.in); got != tc.want {
				t.Fatalf("CleanCSVText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

// A wrapped+escaped payload must parse to the same table as the plain
// original fed to the parser directly.
func TestCleanCSVText_EquivalentToUnwrapped(t *testing.T) {
	plain := "Date,Price,sth_realized_price\n2024-01-01,40000,38000\n2024-01-02,41000,38500"
	wrapped := `"Date,Price,sth_realized_price\n2024-01-01,40000,38000\n2024-01-02,41000,38500"`

	tPlain, err := ParseTable(CleanCSVText(plain))
	if err != nil {
		t.Fatalf("plain: %v", err)
	}
	tWrapped, err := ParseTable(CleanCSVText(wrapped))
	if err != nil {
		t.Fatalf("wrapped: %v", err)
	}

	if len(tPlain.Rows) != len(tWrapped.Rows) {
		t.Fatalf("row counts differ: %d vs %d", len(tPlain.Rows), len(tWrapped.Rows))
	}
	for i := range tPlain.Rows {
		for _, col := range tPlain.Columns {
			if tPlain.Rows[i][col] != tWrapped.Rows[i][col] {
				t.Fatalf("row %d col %s differs: %q vs %q", i, col, tPlain.Rows[i][col], tWrapped.Rows[i][col])
			}
		}
	}
}
