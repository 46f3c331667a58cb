package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Table is a parsed CSV file: a header row plus data rows, each padded or
// truncated to the header width.
type Table struct {
	Headers []string
	Rows    [][]string
	Lines   []int // source line of each row, for error reporting
}

// ReadCSV parses CSV text. Blank lines are skipped, quotes are handled
// leniently and cells are trimmed. Rows whose width differs from the header
// are padded with empty cells or truncated, with a warning.
func ReadCSV(r io.Reader, delimiter rune) (*Table, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	if delimiter != 0 {
		reader.Comma = delimiter
	}

	table := &Table{}
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)

		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		if table.Headers == nil {
			if len(fields) == 0 || (len(fields) == 1 && fields[0] == "") {
				return nil, fmt.Errorf("csv header row is empty")
			}
			table.Headers = fields
			continue
		}

		if len(fields) != len(table.Headers) {
			slog.Warn("csv row width differs from header",
				slog.Int("line", line),
				slog.Int("columns", len(fields)),
				slog.Int("expected", len(table.Headers)),
			)
			fields = fit(fields, len(table.Headers))
		}
		table.Rows = append(table.Rows, fields)
		table.Lines = append(table.Lines, line)
	}

	if table.Headers == nil {
		return nil, fmt.Errorf("csv file is empty")
	}
	return table, nil
}

func fit(fields []string, width int) []string {
	if len(fields) > width {
		return fields[:width]
	}
	out := make([]string, width)
	copy(out, fields)
	return out
}
