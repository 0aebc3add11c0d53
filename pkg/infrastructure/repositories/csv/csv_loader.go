package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vsinha/lotrecon/pkg/domain/entities"
)

// Loader reads spreadsheet exports into loose rows keyed by header cell
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadRows loads all data rows of a CSV file
func (l *Loader) LoadRows(filename string) ([]entities.Row, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()

	rows, err := l.ReadRows(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return rows, nil
}

// ReadRows parses CSV content with a header row. Values are kept as trimmed
// strings; blank cells are left out of the row so they read as absent.
func (l *Loader) ReadRows(r io.Reader) ([]entities.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("CSV must have header and at least one data row")
	}

	header, err := parseHeader(records[0])
	if err != nil {
		return nil, err
	}

	rows := make([]entities.Row, 0, len(records)-1)
	for i, record := range records[1:] {
		if isEmptyRecord(record) {
			continue
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("CSV row %d: expected %d columns, got %d", i+2, len(header), len(record))
		}
		rows = append(rows, parseRow(header, record))
	}

	return rows, nil
}

// parseHeader validates header cells. Names must be non-blank and unique.
func parseHeader(cells []string) ([]string, error) {
	header := make([]string, len(cells))
	seen := make(map[string]bool, len(cells))
	for i, cell := range cells {
		name := strings.TrimSpace(cell)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if name == "" {
			return nil, fmt.Errorf("CSV header column %d is blank", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("CSV header has duplicate column %q", name)
		}
		seen[name] = true
		header[i] = name
	}
	return header, nil
}

func parseRow(header, record []string) entities.Row {
	row := make(entities.Row, len(header))
	for i, name := range header {
		value := strings.TrimSpace(record[i])
		if value == "" {
			continue
		}
		row[name] = value
	}
	return row
}

func isEmptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
