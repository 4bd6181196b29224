package universe

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"ETFSheet/internal/domain/models"
)

// FileLoader reads the instrument universe from a CSV file with a
// Ticker,Name,Group header. Rows keep file order.
type FileLoader struct {
	path string
}

// NewFileLoader creates a CSV universe loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

func (l *FileLoader) Instruments(ctx context.Context) ([]models.Instrument, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open universe file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads instruments from CSV data. The first row is treated as a
// header when it contains a "ticker" column; otherwise rows are read
// positionally as ticker,name,group.
func Parse(r io.Reader) ([]models.Instrument, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read universe csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("universe csv is empty")
	}

	tickerIdx, nameIdx, groupIdx := 0, 1, 2
	start := 0
	if isHeader(rows[0]) {
		for i, col := range rows[0] {
			switch normalize(col) {
			case "ticker", "symbol":
				tickerIdx = i
			case "name":
				nameIdx = i
			case "group", "category":
				groupIdx = i
			}
		}
		start = 1
	}

	instruments := make([]models.Instrument, 0, len(rows)-start)
	seen := make(map[string]struct{}, len(rows)-start)
	for _, row := range rows[start:] {
		if tickerIdx >= len(row) {
			continue
		}
		ticker := strings.TrimSpace(row[tickerIdx])
		if ticker == "" {
			continue
		}
		if _, dup := seen[ticker]; dup {
			continue
		}
		seen[ticker] = struct{}{}

		inst := models.Instrument{Ticker: ticker}
		if nameIdx < len(row) {
			inst.Name = strings.TrimSpace(row[nameIdx])
		}
		if groupIdx < len(row) {
			inst.Group = strings.TrimSpace(row[groupIdx])
		}
		instruments = append(instruments, inst)
	}

	if len(instruments) == 0 {
		return nil, fmt.Errorf("universe csv has no instruments")
	}
	return instruments, nil
}

func isHeader(row []string) bool {
	for _, col := range row {
		switch normalize(col) {
		case "ticker", "symbol":
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
