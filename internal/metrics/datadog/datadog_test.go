package datadog

import (
	"context"
	"net/http"
	"os"
	"reflect"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/giddr/aectransparencyreader/internal/metrics"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
)

// fakeSubmitter captures payloads submitted by Backend.Flush().
type fakeSubmitter struct {
	mu       sync.Mutex
	payloads []datadogV2.MetricPayload
	err      error
}

func (f *fakeSubmitter) SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, body)
	return datadogV2.IntakePayloadAccepted{}, nil, f.err
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func (f *fakeSubmitter) last() (datadogV2.MetricPayload, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.payloads) == 0 {
		return datadogV2.MetricPayload{}, false
	}
	return f.payloads[len(f.payloads)-1], true
}

func newTestBackend(t *testing.T, fake *fakeSubmitter) *Backend {
	t.Helper()

	b, err := NewBackend(context.Background(), Options{
		ServiceName: "test",
		FlushEvery:  time.Hour,
		now:         func() time.Time { return time.Unix(1700000000, 0) },
		newTicker:   time.NewTicker,
		submitter:   fake,
	})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

// TestResolveEnvTag verifies environment-tag precedence and defaults.
//
// Edge cases:
//   - ENV wins over DD_ENV.
//   - Whitespace-only env vars are ignored.
//   - If neither is set, "env:unknown" is returned.
func TestResolveEnvTag(t *testing.T) {
	oldENV := os.Getenv("ENV")
	oldDDENV := os.Getenv("DD_ENV")
	t.Cleanup(func() {
		_ = os.Setenv("ENV", oldENV)
		_ = os.Setenv("DD_ENV", oldDDENV)
	})

	tests := []struct {
		name string
		env  string
		dd   string
		want string
	}{
		{name: "ENV_wins", env: "prod", dd: "stage", want: "env:prod"},
		{name: "DD_ENV_used_when_ENV_empty", env: "", dd: "stage", want: "env:stage"},
		{name: "whitespace_ignored", env: "   ", dd: "\n\t", want: "env:unknown"},
		{name: "default_unknown", env: "", dd: "", want: "env:unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_ = os.Setenv("ENV", tc.env)
			_ = os.Setenv("DD_ENV", tc.dd)
			if got := resolveEnvTag(); got != tc.want {
				t.Fatalf("resolveEnvTag()=%q, want %q", got, tc.want)
			}
		})
	}
}

// TestKeyForCanonical verifies label order does not change the series key.
func TestKeyForCanonical(t *testing.T) {
	t.Parallel()

	a := keyFor("http_requests", metrics.Labels{"route": "/query", "status": "200"})
	b := keyFor("http_requests", metrics.Labels{"status": "200", "route": "/query"})
	if a != b {
		t.Fatalf("keys differ for same labels: %+v vs %+v", a, b)
	}

	tags := a.labelTags()
	want := []string{"route:/query", "status:200"}
	if !reflect.DeepEqual(tags, want) {
		t.Fatalf("labelTags()=%v, want %v", tags, want)
	}

	if got := keyFor("plain", nil); got.tags != "" || len(got.labelTags()) != 0 {
		t.Fatalf("nil labels should yield empty tags, got %+v", got)
	}
}

// TestFlushSubmitsCountersAndPercentiles verifies the payload shape for one
// counter and one histogram.
func TestFlushSubmitsCountersAndPercentiles(t *testing.T) {
	fake := &fakeSubmitter{}
	b := newTestBackend(t, fake)

	b.IncCounter("queries_executed", 3, metrics.Labels{"status": "ok"})
	b.ObserveHistogram("query_duration_ms", 10, nil)
	b.ObserveHistogram("query_duration_ms", 30, nil)
	b.ObserveHistogram("query_duration_ms", 20, nil)

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	payload, ok := fake.last()
	if !ok {
		t.Fatalf("no payload submitted")
	}

	byMetric := map[string]datadogV2.MetricSeries{}
	for _, s := range payload.Series {
		byMetric[s.Metric] = s
	}

	counter, ok := byMetric["reader.queries_executed"]
	if !ok {
		t.Fatalf("counter series missing; got metrics %v", metricNames(payload))
	}
	if got := *counter.Points[0].Value; got != 3 {
		t.Fatalf("counter value=%v, want 3", got)
	}
	if !hasTag(counter.Tags, "status:ok") || !hasTag(counter.Tags, "service:test") {
		t.Fatalf("counter tags missing: %v", counter.Tags)
	}

	p50, ok := byMetric["reader.query_duration_ms.p50"]
	if !ok {
		t.Fatalf("p50 series missing; got metrics %v", metricNames(payload))
	}
	if got := *p50.Points[0].Value; got != 20 {
		t.Fatalf("p50=%v, want 20", got)
	}
	maxSeries := byMetric["reader.query_duration_ms.max"]
	if got := *maxSeries.Points[0].Value; got != 30 {
		t.Fatalf("max=%v, want 30", got)
	}
	samples := byMetric["reader.query_duration_ms.samples"]
	if got := *samples.Points[0].Value; got != 3 {
		t.Fatalf("samples=%v, want 3", got)
	}

	// Buffers reset: a second flush with no new data submits nothing.
	if err := b.Flush(); err != nil {
		t.Fatalf("second Flush: %v", err)
	}
	if got := fake.count(); got != 1 {
		t.Fatalf("payload count after empty flush=%d, want 1", got)
	}
}

// TestFlushEmptyIsNoop verifies no submission happens without data.
func TestFlushEmptyIsNoop(t *testing.T) {
	fake := &fakeSubmitter{}
	b := newTestBackend(t, fake)

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := fake.count(); got != 0 {
		t.Fatalf("payloads=%d, want 0", got)
	}
}

// TestIgnoresNonPositiveValues verifies guard behavior on the hot path.
func TestIgnoresNonPositiveValues(t *testing.T) {
	fake := &fakeSubmitter{}
	b := newTestBackend(t, fake)

	b.IncCounter("queries_executed", 0, nil)
	b.IncCounter("queries_executed", -1, nil)
	b.ObserveHistogram("query_duration_ms", -5, nil)

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := fake.count(); got != 0 {
		t.Fatalf("payloads=%d, want 0", got)
	}
}

// TestCloseFlushesTail verifies the final flush on Close.
func TestCloseFlushesTail(t *testing.T) {
	fake := &fakeSubmitter{}
	b, err := NewBackend(context.Background(), Options{
		ServiceName: "test",
		FlushEvery:  time.Hour,
		now:         func() time.Time { return time.Unix(1700000000, 0) },
		submitter:   fake,
	})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	b.IncCounter("rows_ingested", 42, metrics.Labels{"table": "annual_Donor_Returns"})
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	payload, ok := fake.last()
	if !ok {
		t.Fatalf("Close did not flush")
	}
	if got := metricNames(payload); len(got) != 1 || got[0] != "reader.rows_ingested" {
		t.Fatalf("metrics after Close=%v", got)
	}
}

func TestPercentileNearestRank(t *testing.T) {
	t.Parallel()

	s := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	tests := []struct {
		p    float64
		want float64
	}{
		{p: 0, want: 1},
		{p: 0.5, want: 6},
		{p: 0.9, want: 9},
		{p: 1, want: 10},
	}
	for _, tc := range tests {
		if got := percentileNearestRank(s, tc.p); got != tc.want {
			t.Fatalf("percentileNearestRank(p=%v)=%v, want %v", tc.p, got, tc.want)
		}
	}
	if got := percentileNearestRank(nil, 0.5); got != 0 {
		t.Fatalf("empty samples: got %v, want 0", got)
	}
}

func TestParseTagsCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "single", in: "env:prod", want: []string{"env:prod"}},
		{name: "spaces_trimmed", in: " env:prod , team:data ", want: []string{"env:prod", "team:data"}},
		{name: "blank_entries_dropped", in: "env:prod,,", want: []string{"env:prod"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseTagsCSV(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseTagsCSV(%q)=%v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func metricNames(p datadogV2.MetricPayload) []string {
	out := make([]string, 0, len(p.Series))
	for _, s := range p.Series {
		out = append(out, s.Metric)
	}
	sort.Strings(out)
	return out
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}
