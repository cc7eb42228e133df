// Package directory lists the employees of the store, normalized and filtered.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Houeta/staff-directory/internal/availability"
	"github.com/Houeta/staff-directory/internal/metrics"
	"github.com/Houeta/staff-directory/internal/models"
	"github.com/Houeta/staff-directory/internal/normalize"
	"github.com/Houeta/staff-directory/internal/remote"
)

const (
	notSpecified = "Not specified"
	noDate       = "-"
)

// Row is one directory entry ready for display.
type Row struct {
	Employee models.Employee
	Hours    string
	From     string
	To       string
	Age      normalize.Age
}

type DirectoryIface interface {
	List(ctx context.Context, filter availability.Filter) ([]Row, error)
}

type Directory struct {
	log     *slog.Logger
	client  remote.ClientIface
	matcher *availability.Matcher
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewDirectory(
	log *slog.Logger,
	client remote.ClientIface,
	matcher *availability.Matcher,
	metrics *metrics.Metrics,
	now func() time.Time,
) *Directory {
	if now == nil {
		now = time.Now
	}
	return &Directory{log: log, client: client, matcher: matcher, metrics: metrics, now: now}
}

func (d *Directory) initLogger(opn string) *slog.Logger {
	return d.log.With(
		slog.String("op", opn),
		slog.String("division", "directory"),
	)
}

// List fetches every record, builds the typed view and keeps those that pass filter.
func (d *Directory) List(ctx context.Context, filter availability.Filter) ([]Row, error) {
	const opn = "Directory.List"
	log := d.initLogger(opn)

	records, err := remote.ListEmployees(ctx, d.client)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	employees := make([]models.Employee, 0, len(records))
	for _, rec := range records {
		employees = append(employees, models.EmployeeFromRecord(rec, d.degraded(ctx, log, rec.ID())))
	}

	visible := d.matcher.Apply(employees, filter)
	if d.metrics != nil {
		d.metrics.RecordsListed.WithLabelValues("fetched").Add(float64(len(employees)))
		d.metrics.RecordsListed.WithLabelValues("visible").Add(float64(len(visible)))
	}
	log.DebugContext(ctx, "Directory listed",
		slog.Int("fetched", len(employees)), slog.Int("visible", len(visible)),
		slog.String("range", filter.Range.String()))

	now := d.now()
	rows := make([]Row, 0, len(visible))
	for _, emp := range visible {
		rows = append(rows, newRow(emp, now))
	}
	return rows, nil
}

func (d *Directory) degraded(ctx context.Context, log *slog.Logger, id string) normalize.Observer {
	return func(_ json.RawMessage, reason string) {
		if d.metrics != nil {
			d.metrics.NormalizeDegradations.Inc()
		}
		log.DebugContext(ctx, "List field degraded to empty", slog.String("empid", id), slog.String("reason", reason))
	}
}

func newRow(emp models.Employee, now time.Time) Row {
	row := Row{
		Employee: emp,
		Hours:    notSpecified,
		From:     noDate,
		To:       noDate,
		Age:      normalize.RelativeAge(updatedAt(emp.UpdatedAt), now),
	}
	if emp.HoursPerDay > 0 {
		row.Hours = strconv.FormatFloat(emp.HoursPerDay, 'f', -1, 64) + " hours/day"
	}
	if emp.From != nil {
		row.From = normalize.DateDisplay(emp.From.String())
	}
	if emp.To != nil {
		row.To = normalize.DateDisplay(emp.To.String())
	}
	return row
}

// updatedAt reads epoch milliseconds as a number and everything else as a timestamp string.
func updatedAt(raw string) any {
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return ms
	}
	return raw
}
