package importer

import (
	"math"
	"strconv"
	"strings"

	"github.com/leengari/recordstore/internal/domain/schema"
)

// DefaultSampleRows is how many leading rows InferTypes inspects by default.
const DefaultSampleRows = 10

// boolTokens are the spellings that make a column look boolean. Parsing
// accepts a few more (yes/no) once the type is fixed.
var boolTokens = map[string]bool{
	"true": true, "false": true, "1": true, "0": true, "да": true, "нет": true,
}

// InferTypes picks a column type per header from the first sample rows.
// Empty cells are ignored. A column is Integer if every sampled cell parses
// as an integer, else Float if every cell parses as a number, else Boolean
// if every cell is a boolean token, else Text. A column with no non-empty
// sampled cell is Text.
func InferTypes(headers []string, rows [][]string, sample int) []schema.ColumnType {
	if sample <= 0 {
		sample = DefaultSampleRows
	}
	if sample > len(rows) {
		sample = len(rows)
	}

	types := make([]schema.ColumnType, len(headers))
	for col := range headers {
		allIntegers, allFloats, allBooleans := true, true, true
		seen := 0

		for _, row := range rows[:sample] {
			if col >= len(row) || row[col] == "" {
				continue
			}
			cell := row[col]
			seen++

			if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
				allIntegers = false
			}
			if f, err := strconv.ParseFloat(cell, 64); err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				allFloats = false
			}
			if !boolTokens[strings.ToLower(cell)] {
				allBooleans = false
			}
		}

		switch {
		case seen == 0:
			types[col] = schema.ColumnTypeText
		case allIntegers:
			types[col] = schema.ColumnTypeInteger
		case allFloats:
			types[col] = schema.ColumnTypeFloat
		case allBooleans:
			types[col] = schema.ColumnTypeBoolean
		default:
			types[col] = schema.ColumnTypeText
		}
	}
	return types
}
