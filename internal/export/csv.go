package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/spec-kit/assignment-service/internal/domain"
)

// RenderProfileCSV renders the profile table as CSV with a header row.
func RenderProfileCSV(profile domain.Profile, now time.Time) ([]byte, error) {
	table := ProfileTable(profile, now)
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(table.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	if err := writer.WriteAll(table.Rows); err != nil {
		return nil, fmt.Errorf("write csv rows: %w", err)
	}
	return buf.Bytes(), nil
}
