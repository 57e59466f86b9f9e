package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// readTable reads a CSV table and returns the header index map plus all
// data rows. Header names are trimmed because some dataset files carry
// stray spaces (e.g. " factor").
func readTable(r io.Reader) (map[string]int, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read all CSV records: %w", err)
	}
	return cols, records, nil
}

func requireColumns(cols map[string]int, names ...string) error {
	for _, name := range names {
		if _, ok := cols[name]; !ok {
			return fmt.Errorf("missing required column %q", name)
		}
	}
	return nil
}

func field(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// openAndParse opens path and hands the file to parse, wrapping errors
// with the file path for operator-readable failures.
func openAndParse[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("error opening dataset file '%s': %w", path, err)
	}
	defer f.Close()

	out, err := parse(f)
	if err != nil {
		return zero, fmt.Errorf("error parsing dataset file '%s': %w", path, err)
	}
	return out, nil
}
