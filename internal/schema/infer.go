package schema

import (
	"strconv"
	"strings"
)

// ColumnType is the storage type inferred for a column.
type ColumnType string

const (
	TypeInteger ColumnType = "INTEGER"
	TypeReal    ColumnType = "REAL"
	TypeText    ColumnType = "TEXT"
)

// Column pairs a cleaned identifier with its inferred type.
type Column struct {
	Name string
	Type ColumnType
}

// inferSampleCap bounds how many non-empty values Infer examines per column.
//
// This is a deliberate accuracy/cost trade-off: a non-numeric outlier past the
// cap leaves the column typed numeric, and that cell is later nulled during
// coercion. Accepted behavior, not a defect to fix here.
const inferSampleCap = 100

// Infer decides a column's storage type from its observed raw values.
//
// Empty and whitespace-only values are discarded first. If nothing remains the
// column is TEXT. Otherwise, up to the first inferSampleCap surviving values
// are examined: all-integer wins INTEGER, all-float wins REAL, anything else
// is TEXT.
func Infer(values []string) ColumnType {
	sample := make([]string, 0, inferSampleCap)
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		sample = append(sample, v)
		if len(sample) == inferSampleCap {
			break
		}
	}

	if len(sample) == 0 {
		return TypeText
	}

	allInt := true
	for _, v := range sample {
		if _, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err != nil {
			allInt = false
			break
		}
	}
	if allInt {
		return TypeInteger
	}

	allFloat := true
	for _, v := range sample {
		if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
			allFloat = false
			break
		}
	}
	if allFloat {
		return TypeReal
	}

	return TypeText
}
