package storage

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format selects the snapshot encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatSQLite Format = "sqlite"
)

// ParseFormat accepts a format name; the empty string means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "sqlite", "sqlite3", "db":
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("unknown snapshot format %q", s)
}

// FormatFromPath guesses the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	}
	return FormatJSON
}

// Ext returns the file extension, without the dot, used for this format.
func (f Format) Ext() string {
	if f == FormatSQLite {
		return "db"
	}
	return "json"
}
