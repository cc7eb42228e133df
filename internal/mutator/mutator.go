// Package mutator writes a partial employee record to the remote store and reads back
// the authoritative result.
package mutator

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Houeta/staff-directory/internal/lib/logger/sl"
	"github.com/Houeta/staff-directory/internal/metrics"
	"github.com/Houeta/staff-directory/internal/models"
	"github.com/Houeta/staff-directory/internal/remote"
)

// State is a step of the save pipeline.
type State int

const (
	StateValidate State = iota
	StatePut
	StatePatch
	StatePost
	StateConfirm
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateValidate:
		return "validate"
	case StatePut:
		return "put"
	case StatePatch:
		return "patch"
	case StatePost:
		return "post"
	case StateConfirm:
		return "confirm"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Next is the transition function of the pipeline. Each write state falls through to the
// next verb on failure and goes straight to confirmation on success.
func Next(s State, succeeded bool) State {
	switch s {
	case StateValidate:
		if succeeded {
			return StatePut
		}
		return StateFailed
	case StatePut:
		if succeeded {
			return StateConfirm
		}
		return StatePatch
	case StatePatch:
		if succeeded {
			return StateConfirm
		}
		return StatePost
	case StatePost:
		if succeeded {
			return StateConfirm
		}
		return StateFailed
	case StateConfirm:
		if succeeded {
			return StateDone
		}
		return StateFailed
	default:
		return s
	}
}

// Attempt is one request made by the pipeline.
type Attempt struct {
	State      State
	Method     string
	URL        string
	StatusCode int
	Body       string
	Err        error
	Duration   time.Duration
}

// Succeeded reports a 2xx response.
func (a Attempt) Succeeded() bool {
	return a.Err == nil && a.StatusCode >= 200 && a.StatusCode < 300
}

// Observer sees every attempt as soon as it completes.
type Observer func(Attempt)

// Result is the outcome of a confirmed save.
type Result struct {
	Record    models.Record
	Attempts  []Attempt
	RequestID string
	// Method is the verb whose write was accepted.
	Method string
}

type MutatorIface interface {
	Save(ctx context.Context, id string, payload models.Record) (Result, error)
}

// Mutator runs the save pipeline: validate, PUT, PATCH, POST, confirm.
type Mutator struct {
	client   remote.ClientIface
	log      *slog.Logger
	metrics  *metrics.Metrics
	observer Observer
}

type Option func(*Mutator)

// WithObserver registers fn to be called after every attempt.
func WithObserver(fn Observer) Option {
	return func(m *Mutator) { m.observer = fn }
}

func New(log *slog.Logger, client remote.ClientIface, metrics *metrics.Metrics, opts ...Option) *Mutator {
	m := &Mutator{client: client, log: log, metrics: metrics}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// pipeline is the mutable state of one Save call.
type pipeline struct {
	id       string
	payload  models.Record
	log      *slog.Logger
	result   Result
	last     Attempt
	record   models.Record
	failure  error
	listing  []models.Record
	listRead bool
}

// Save writes payload for the employee id and returns the record as the store now has it.
// It fails with *ValidationError before any request, *TransportError when every verb was
// refused, or *ConfirmationError when the write went through but could not be read back.
func (m *Mutator) Save(ctx context.Context, id string, payload models.Record) (Result, error) {
	const op = "mutator.Save"

	requestID := remote.RequestID(ctx)
	if requestID == "" {
		requestID = remote.NewRequestID()
		ctx = remote.WithRequestID(ctx, requestID)
	}

	run := &pipeline{
		id:      id,
		payload: payload,
		log:     m.log.With(slog.String("op", op), slog.String("request_id", requestID), slog.String("empid", id)),
		result:  Result{RequestID: requestID},
	}

	state := StateValidate
	for {
		switch state {
		case StateValidate:
			run.failure = Validate(id, payload)
			state = Next(state, run.failure == nil)
		case StatePut:
			state = Next(state, m.write(ctx, run, state, http.MethodPut, remote.EmployeePath(id), payload))
		case StatePatch:
			state = Next(state, m.write(ctx, run, state, http.MethodPatch, remote.EmployeePath(id), payload))
		case StatePost:
			ok := m.write(ctx, run, state, http.MethodPost, remote.EmployeesPath, collectionBody(id, payload))
			if !ok {
				run.failure = &TransportError{
					Method:     run.last.Method,
					URL:        run.last.URL,
					StatusCode: run.last.StatusCode,
					Body:       run.last.Body,
					Err:        run.last.Err,
				}
			}
			state = Next(state, ok)
		case StateConfirm:
			state = Next(state, m.confirm(ctx, run))
		case StateDone:
			run.result.Record = run.record
			run.log.InfoContext(ctx, "Record saved and confirmed",
				slog.String("method", run.result.Method), slog.Int("attempts", len(run.result.Attempts)))
			return run.result, nil
		case StateFailed:
			run.log.WarnContext(ctx, "Save failed", sl.Err(run.failure))
			return run.result, run.failure
		}
	}
}

// collectionBody embeds the id for stores that only upsert at the collection root.
// An empid already present in the payload wins.
func collectionBody(id string, payload models.Record) models.Record {
	body := payload.Clone()
	if _, ok := body[models.KeyEmpID]; !ok {
		_ = body.Set(models.KeyEmpID, id)
	}
	return body
}

func (m *Mutator) write(
	ctx context.Context, run *pipeline, state State, method, path string, body models.Record,
) bool {
	attempt := m.send(ctx, state, method, path, body)
	m.record(run, attempt)

	outcome := "failure"
	if attempt.Succeeded() {
		outcome = "success"
		run.result.Method = method
	}
	if m.metrics != nil {
		m.metrics.WriteAttempts.WithLabelValues(method, outcome).Inc()
	}

	if !attempt.Succeeded() {
		log := run.log.With(slog.String("method", method), slog.Int("status", attempt.StatusCode))
		if attempt.Err != nil {
			log = log.With(sl.Err(attempt.Err))
		}
		log.DebugContext(ctx, "Write attempt refused", slog.String("body", attempt.Body))
	}

	return attempt.Succeeded()
}

// confirm reads the record back. A payload that changes the empid is confirmed under
// the new id first, then under the one it was saved as.
func (m *Mutator) confirm(ctx context.Context, run *pipeline) bool {
	candidates := []string{run.id}
	if newID := run.payload.String(models.KeyEmpID); newID != "" && newID != run.id {
		candidates = []string{newID, run.id}
	}

	var lastErr error
	for _, candidate := range candidates {
		if rec, ok := m.readByID(ctx, run, candidate); ok {
			run.record = rec
			m.countConfirmation("by_id")
			return true
		}

		rec, err := m.findInCollection(ctx, run, candidate)
		if err != nil {
			lastErr = err
			continue
		}
		if rec != nil {
			run.record = rec
			m.countConfirmation("collection")
			return true
		}
	}

	m.countConfirmation("failed")
	run.failure = &ConfirmationError{IDs: candidates, Err: lastErr}
	return false
}

// readByID accepts an object or a one-element list. Anything else falls back to the collection.
func (m *Mutator) readByID(ctx context.Context, run *pipeline, id string) (models.Record, bool) {
	resp, attempt := m.get(ctx, remote.EmployeePath(id))
	m.record(run, attempt)
	if !attempt.Succeeded() {
		return nil, false
	}

	rec, ok := resp.SingleRecord()
	if !ok {
		run.log.DebugContext(ctx, "Confirmation by id was not a single record", slog.String("candidate", id))
	}
	return rec, ok
}

func (m *Mutator) findInCollection(ctx context.Context, run *pipeline, id string) (models.Record, error) {
	if !run.listRead {
		resp, attempt := m.get(ctx, remote.EmployeesPath)
		m.record(run, attempt)
		run.listRead = true

		if !attempt.Succeeded() {
			if attempt.Err != nil {
				return nil, attempt.Err
			}
			return nil, resp.Err()
		}

		records, _, err := resp.Records()
		if err != nil {
			return nil, fmt.Errorf("failed to decode employees: %w", err)
		}
		run.listing = records
	}

	rec, _ := remote.FindByID(run.listing, id)
	return rec, nil
}

func (m *Mutator) get(ctx context.Context, path string) (remote.Response, Attempt) {
	start := time.Now()
	resp, err := m.client.Do(ctx, http.MethodGet, path, nil)
	return resp, Attempt{
		State:      StateConfirm,
		Method:     http.MethodGet,
		URL:        m.client.URL(path),
		StatusCode: resp.StatusCode,
		Body:       summary(resp, err),
		Err:        err,
		Duration:   time.Since(start),
	}
}

func (m *Mutator) send(ctx context.Context, state State, method, path string, body models.Record) Attempt {
	start := time.Now()
	resp, err := m.client.Do(ctx, method, path, body)
	return Attempt{
		State:      state,
		Method:     method,
		URL:        m.client.URL(path),
		StatusCode: resp.StatusCode,
		Body:       summary(resp, err),
		Err:        err,
		Duration:   time.Since(start),
	}
}

func (m *Mutator) record(run *pipeline, attempt Attempt) {
	run.last = attempt
	run.result.Attempts = append(run.result.Attempts, attempt)
	if m.observer != nil {
		m.observer(attempt)
	}
}

func (m *Mutator) countConfirmation(result string) {
	if m.metrics != nil {
		m.metrics.Confirmations.WithLabelValues(result).Inc()
	}
}

func summary(resp remote.Response, err error) string {
	if err != nil {
		return ""
	}
	return resp.Summary()
}
