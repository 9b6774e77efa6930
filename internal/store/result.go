// Package store executes canonical SQL against the active engine and returns
// a uniform tabular result.
//
// It is the single error-containment boundary between the data store and the
// request handlers: every failure, whether connection, syntax, or identifier
// resolution, comes back as a QueryResult with Success=false, never as a
// panic or an error that crosses into handler code.
package store

import (
	"bytes"
	"encoding/json"
)

// Row is one result row: values aligned to the result's column order. The
// column slice is shared across all rows of a result.
type Row struct {
	columns []string
	values  []any
}

// NewRow builds a row over a shared column slice. Used by backends and tests.
func NewRow(columns []string, values []any) Row {
	return Row{columns: columns, values: values}
}

// Value returns the value for a column, or nil if the column is absent.
func (r Row) Value(column string) any {
	for i, c := range r.columns {
		if c == column {
			return r.values[i]
		}
	}
	return nil
}

// Values returns the row's values in column order.
func (r Row) Values() []any { return r.values }

// MarshalJSON emits the row as a JSON object whose keys appear in column
// order. Column order and presence are contractual, not incidental.
func (r Row) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		val, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		b.Write(val)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// QueryResult is the uniform success/failure envelope for one executed
// statement.
//
// Wire shape:
//
//	{"success":true,"columns":[...],"data":[{...}],"row_count":N}
//	{"success":false,"error":"..."}
//
// On success Columns and Data are never null (empty slices serialize as []),
// and len(Columns) equals the key count of every row object. Row order is
// whatever the engine returned.
type QueryResult struct {
	Success  bool
	Columns  []string
	Data     []Row
	RowCount int
	Error    string
}

// Ok builds a success result from a backend's raw rows.
func Ok(columns []string, rows [][]any) QueryResult {
	if columns == nil {
		columns = []string{}
	}
	data := make([]Row, 0, len(rows))
	for _, vals := range rows {
		data = append(data, Row{columns: columns, values: vals})
	}
	return QueryResult{
		Success:  true,
		Columns:  columns,
		Data:     data,
		RowCount: len(data),
	}
}

// Fail builds a failure result carrying the engine's message.
func Fail(err error) QueryResult {
	return QueryResult{Success: false, Error: err.Error()}
}

// Failf builds a failure result from a plain message.
func Failf(msg string) QueryResult {
	return QueryResult{Success: false, Error: msg}
}

func (qr QueryResult) MarshalJSON() ([]byte, error) {
	if !qr.Success {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}{false, qr.Error})
	}

	columns := qr.Columns
	if columns == nil {
		columns = []string{}
	}
	data := qr.Data
	if data == nil {
		data = []Row{}
	}
	return json.Marshal(struct {
		Success  bool     `json:"success"`
		Columns  []string `json:"columns"`
		Data     []Row    `json:"data"`
		RowCount int      `json:"row_count"`
	}{true, columns, data, qr.RowCount})
}
