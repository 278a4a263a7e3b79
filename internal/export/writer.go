package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/guttosm/sthpulse/internal/domain/models"
)

// record is the on-disk shape of one series entry. Pointer fields
// serialize as JSON null, which the chart consumes directly.
type record struct {
	Date        string   `json:"date"`
	Price       *float64 `json:"price"`
	MA200       *float64 `json:"ma200"`
	STHRealized *float64 `json:"sth_realized"`
}

// WriteJSON persists the full series as a single JSON array at path,
// creating parent directories as needed and overwriting any existing
// file unconditionally. There is no partial-output mode: the file is
// either the complete series or untouched.
//
// Returns:
//   - int: number of records written.
//   - error: directory creation, marshaling, or write failure.
func WriteJSON(path string, points []models.MetricPoint) (int, error) {
	out := make([]record, 0, len(points))
	for _, p := range points {
		out = append(out, record{
			Date:        p.DateString(),
			Price:       p.Price,
			MA200:       p.MA200,
			STHRealized: p.STHRealized,
		})
	}

	data, err := json.Marshal(out)
	if err != nil {
		return 0, fmt.Errorf("marshal series: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create output dir: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}

	return len(out), nil
}
