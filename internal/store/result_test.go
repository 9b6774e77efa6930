package store

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestQueryResultMarshalSuccess(t *testing.T) {
	t.Parallel()

	qr := Ok([]string{"Donor_Name", "Amount"}, [][]any{
		{"Alpha Pty Ltd", 1500.0},
		{"Beta Holdings", nil},
	})

	got, err := json.Marshal(qr)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"success":true,"columns":["Donor_Name","Amount"],"data":[{"Donor_Name":"Alpha Pty Ltd","Amount":1500},{"Donor_Name":"Beta Holdings","Amount":null}],"row_count":2}`
	if string(got) != want {
		t.Fatalf("marshal mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestQueryResultMarshalEmpty(t *testing.T) {
	t.Parallel()

	// Empty result sets keep the engine's column list and serialize data as
	// [], never null.
	qr := Ok([]string{"Recipient"}, nil)
	got, err := json.Marshal(qr)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"success":true,"columns":["Recipient"],"data":[],"row_count":0}`
	if string(got) != want {
		t.Fatalf("marshal mismatch:\n got %s\nwant %s", got, want)
	}

	qr = Ok(nil, nil)
	got, err = json.Marshal(qr)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want = `{"success":true,"columns":[],"data":[],"row_count":0}`
	if string(got) != want {
		t.Fatalf("marshal mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestQueryResultMarshalFailure(t *testing.T) {
	t.Parallel()

	qr := Fail(errors.New(`no such table: "missing"`))
	got, err := json.Marshal(qr)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"success":false,"error":"no such table: \"missing\""}`
	if string(got) != want {
		t.Fatalf("marshal mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestRowKeyOrderFollowsColumns(t *testing.T) {
	t.Parallel()

	// Keys must come out in column order even when that order is not
	// alphabetical; clients render tables from it.
	row := NewRow([]string{"Total", "Category", "Amount"}, []any{int64(9), "media", 2500.5})
	got, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"Total":9,"Category":"media","Amount":2500.5}`
	if string(got) != want {
		t.Fatalf("marshal mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestRowValue(t *testing.T) {
	t.Parallel()

	row := NewRow([]string{"Recipient", "Total"}, []any{"ALP", int64(12)})
	if got := row.Value("Total"); got != int64(12) {
		t.Fatalf("Value(Total)=%v", got)
	}
	if got := row.Value("absent"); got != nil {
		t.Fatalf("Value(absent)=%v, want nil", got)
	}
}
