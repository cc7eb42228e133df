package directory_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Houeta/staff-directory/internal/availability"
	"github.com/Houeta/staff-directory/internal/datewindow"
	"github.com/Houeta/staff-directory/internal/metrics"
	"github.com/Houeta/staff-directory/internal/normalize"
	"github.com/Houeta/staff-directory/internal/remote"
	"github.com/Houeta/staff-directory/internal/services/directory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Friday, 10 January 2025.
var now = time.Date(2025, time.January, 10, 12, 0, 0, 0, time.Local)

func newDirectory(t *testing.T, body string) (*directory.Directory, *metrics.Metrics) {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != remote.EmployeesPath {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)

	clock := func() time.Time { return now }
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	dir := directory.NewDirectory(
		slog.Default(),
		remote.NewClient(slog.Default(), ts.Client(), ts.URL),
		availability.NewMatcher(datewindow.NewCalendar(clock)),
		appMetrics,
		clock,
	)
	return dir, appMetrics
}

func staff() string {
	return fmt.Sprintf(`[
		{"empid":"E-1","name":"Ann","availability":"Available","location":"Lisbon","updated_at":"2025-01-08T12:00:00"},
		{"empid":"E-2","name":"Bob","availability":"Partially Available","hours_available":"4",
		 "from_date":"2025-01-10T00:00:00Z","to_date":"2025-01-12","currentSkills":{"0":"Go","1":"SQL"},
		 "updatedAt":%d},
		{"empid":"E-3","name":"Cid","availability":"Occupied","role":"Tech Lead"},
		{"empid":"E-4","name":"Dee","availability":"Partially Available","hours_available":2,
		 "from_date":"2025-02-03","to_date":"2025-02-07"},
		{"id":5,"name":"Émile","availability":"Available","current_skills":42}
	]`, now.Add(-3*time.Hour).UnixMilli())
}

func names(rows []directory.Row) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Employee.Name)
	}
	return out
}

func TestList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		filter availability.Filter
		want   []string
	}{
		{name: "no filter", filter: availability.Filter{}, want: []string{"Ann", "Bob", "Cid", "Dee", "Émile"}},
		{name: "today", filter: availability.Filter{Range: availability.Today}, want: []string{"Ann", "Bob", "Émile"}},
		{
			name:   "occupied ignores the range",
			filter: availability.Filter{Status: "Occupied", Range: availability.Today},
			want:   []string{"Cid"},
		},
		{name: "search in skills", filter: availability.Filter{Search: "sql"}, want: []string{"Bob"}},
		{name: "search ignores accents", filter: availability.Filter{Search: "emile"}, want: []string{"Émile"}},
		{name: "search role", filter: availability.Filter{Search: "tech"}, want: []string{"Cid"}},
		{
			name:   "status label",
			filter: availability.Filter{Status: "Partially Available", Range: availability.ThisMonth},
			want:   []string{"Bob"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir, _ := newDirectory(t, staff())
			rows, err := dir.List(context.Background(), tt.filter)

			require.NoError(t, err)
			assert.Equal(t, tt.want, names(rows))
		})
	}
}

func TestList_Rows(t *testing.T) {
	t.Parallel()

	dir, appMetrics := newDirectory(t, staff())

	rows, err := dir.List(context.Background(), availability.Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 5)

	ann, bob, cid := rows[0], rows[1], rows[2]

	assert.Equal(t, "Updated 2 days ago", ann.Age.Label)
	assert.Equal(t, normalize.SeverityFresh, ann.Age.Severity)
	assert.Equal(t, "Not specified", ann.Hours)
	assert.Equal(t, "-", ann.From)

	assert.Equal(t, "Updated 3 hrs ago", bob.Age.Label)
	assert.Equal(t, "4 hours/day", bob.Hours)
	assert.Equal(t, "10-01-2025", bob.From)
	assert.Equal(t, "12-01-2025", bob.To)
	assert.Equal(t, []string{"Go", "SQL"}, bob.Employee.Skills)

	assert.Empty(t, cid.Age.Label)
	assert.Equal(t, normalize.SeverityNeutral, cid.Age.Severity)

	assert.Equal(t, "5", rows[4].Employee.ID)
	assert.Empty(t, rows[4].Employee.Skills)

	assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.NormalizeDegradations), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(appMetrics.RecordsListed.WithLabelValues("fetched")), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(appMetrics.RecordsListed.WithLabelValues("visible")), 0)
}

func TestList_StoreError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	dir := directory.NewDirectory(slog.Default(), remote.NewClient(slog.Default(), ts.Client(), ts.URL),
		availability.NewMatcher(nil), nil, nil)

	_, err := dir.List(context.Background(), availability.Filter{})
	require.ErrorIs(t, err, remote.ErrUnexpectedStatus)
}
