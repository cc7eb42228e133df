// Package session runs the flows of a logged-in user: login, logout, the two save forms
// and hydration of the cached user from the store.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Houeta/staff-directory/internal/auth"
	"github.com/Houeta/staff-directory/internal/cache"
	"github.com/Houeta/staff-directory/internal/lib/logger/sl"
	"github.com/Houeta/staff-directory/internal/lib/validate"
	"github.com/Houeta/staff-directory/internal/metrics"
	"github.com/Houeta/staff-directory/internal/models"
	"github.com/Houeta/staff-directory/internal/mutator"
	"github.com/Houeta/staff-directory/internal/remote"
	"github.com/Houeta/staff-directory/internal/repository"
)

var (
	ErrNotLoggedIn  = errors.New("not logged in")
	ErrUnknownFacet = errors.New("unknown facet")
)

const (
	defaultLoginRetries = 3
	defaultLoginWait    = 2 * time.Second
)

// CookieClearer forgets the cookies of the session. *client.CookieJar implements it.
type CookieClearer interface {
	Clear()
}

// Session owns the cached user and serializes every save made on its behalf.
type Session struct {
	log     *slog.Logger
	client  remote.ClientIface
	cache   cache.RecordCacheIface
	mutator mutator.MutatorIface
	metrics *metrics.Metrics
	journal repository.JournalRepoIface
	jar     CookieClearer
	now     func() time.Time

	loginRetries int
	loginWait    time.Duration

	saveMu sync.Mutex
}

type Option func(*Session)

// WithJournal records every confirmed save.
func WithJournal(journal repository.JournalRepoIface) Option {
	return func(s *Session) { s.journal = journal }
}

// WithCookieJar makes Logout forget the session cookies.
func WithCookieJar(jar CookieClearer) Option {
	return func(s *Session) { s.jar = jar }
}

func WithLoginRetry(retries int, wait time.Duration) Option {
	return func(s *Session) {
		s.loginRetries = retries
		s.loginWait = wait
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func NewSession(
	log *slog.Logger,
	client remote.ClientIface,
	cache cache.RecordCacheIface,
	mutator mutator.MutatorIface,
	metrics *metrics.Metrics,
	opts ...Option,
) *Session {
	s := &Session{
		log:          log,
		client:       client,
		cache:        cache,
		mutator:      mutator,
		metrics:      metrics,
		now:          time.Now,
		loginRetries: defaultLoginRetries,
		loginWait:    defaultLoginWait,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) initLogger(opn string) *slog.Logger {
	return s.log.With(
		slog.String("op", opn),
		slog.String("division", "session"),
	)
}

// Current returns a copy of the cached user.
func (s *Session) Current() models.Record {
	return s.cache.Get()
}

// Login authenticates and replaces the cached user with the one the store returned.
func (s *Session) Login(ctx context.Context, creds auth.Credentials) (models.Record, error) {
	const opn = "Session.Login"
	log := s.initLogger(opn)

	result, err := auth.RetryLogin(ctx, log, s.client, creds, s.loginRetries, s.loginWait)
	if err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	if err = s.cache.Replace(ctx, result.User); err != nil {
		return nil, fmt.Errorf("failed to cache user: %w", err)
	}

	log.InfoContext(ctx, "Session started", slog.String("empid", result.User.ID()))
	return result.User.Clone(), nil
}

// Signup creates an account. The caller logs in afterwards.
func (s *Session) Signup(ctx context.Context, req auth.Signup) error {
	if err := auth.Register(ctx, s.client, req); err != nil {
		return fmt.Errorf("failed to sign up: %w", err)
	}
	return nil
}

// Logout drops the cached user and the session cookies.
func (s *Session) Logout(ctx context.Context) error {
	const opn = "Session.Logout"
	log := s.initLogger(opn)

	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear cached user: %w", err)
	}
	if s.jar != nil {
		s.jar.Clear()
	}

	log.InfoContext(ctx, "Session ended")
	return nil
}

// Resume restores the cached user persisted by an earlier run.
func (s *Session) Resume(ctx context.Context) (models.Record, error) {
	if err := s.cache.Load(ctx); err != nil {
		return nil, err
	}

	current := s.cache.Get()
	if current.ID() == "" {
		return nil, ErrNotLoggedIn
	}
	return current, nil
}

// SaveProfile validates the form, writes it under the cached user's current id and merges
// the confirmed profile fields into the cache. Changing the empid is allowed.
func (s *Session) SaveProfile(ctx context.Context, form ProfileForm) (models.Record, error) {
	form = form.trimmed()
	if fields := validate.Struct(form); fields != nil {
		return nil, &mutator.ValidationError{FieldErrors: fields}
	}

	return s.save(ctx, models.FacetProfile, form.payload())
}

// SaveDetails writes the availability fields of the cached user and merges the confirmed
// ones into the cache.
func (s *Session) SaveDetails(ctx context.Context, form DetailsForm) (models.Record, error) {
	return s.save(ctx, models.FacetDetails, form.payload())
}

func (s *Session) save(ctx context.Context, facet models.Facet, payload models.Record) (models.Record, error) {
	const opn = "Session.Save"
	log := s.initLogger(opn).With(slog.String("facet", string(facet)))

	// one save at a time
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	id := s.cache.Get().ID()
	if id == "" {
		return nil, ErrNotLoggedIn
	}

	start := s.now()
	result, err := s.mutator.Save(ctx, id, payload)
	s.observe(facet, start, err)
	if err != nil {
		return nil, err
	}

	merged, err := s.cache.Merge(ctx, facet.Project(result.Record))
	if err != nil {
		return nil, fmt.Errorf("saved, but failed to update cached user: %w", err)
	}

	s.writeJournal(ctx, log, facet, result)

	log.InfoContext(ctx, "Saved", slog.String("empid", merged.ID()), slog.String("method", result.Method))
	return merged, nil
}

func (s *Session) writeJournal(ctx context.Context, log *slog.Logger, facet models.Facet, result mutator.Result) {
	if s.journal == nil {
		return
	}

	entry := models.JournalEntry{
		EmpID:       result.Record.ID(),
		Facet:       facet,
		RequestID:   result.RequestID,
		Method:      result.Method,
		Attempts:    len(result.Attempts),
		ConfirmedAt: s.now(),
	}
	if err := s.journal.SaveConfirmed(ctx, entry); err != nil {
		log.WarnContext(ctx, "Failed to journal confirmed save", sl.Err(err))
	}
}

func (s *Session) observe(facet models.Facet, start time.Time, err error) {
	if s.metrics == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	s.metrics.Saves.WithLabelValues(string(facet), status).Inc()
	s.metrics.SaveDuration.WithLabelValues(string(facet)).Observe(s.now().Sub(start).Seconds())
	if err == nil {
		s.metrics.LastSuccessfulSave.WithLabelValues(string(facet)).SetToCurrentTime()
	}
}

// LastConfirmed reports when the facet of the cached user was last saved. The boolean is
// false when no journal is configured or nothing was recorded yet.
func (s *Session) LastConfirmed(ctx context.Context, facet models.Facet) (time.Time, bool, error) {
	if s.journal == nil {
		return time.Time{}, false, nil
	}

	id := s.cache.Get().ID()
	if id == "" {
		return time.Time{}, false, ErrNotLoggedIn
	}

	last, err := s.journal.GetLastConfirmed(ctx, id, facet)
	if errors.Is(err, repository.ErrNoJournalEntry) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return last, true, nil
}

// Hydrate reads the cached user's record from the store and fills the facet fields that are
// still empty in the cache. Nothing is merged once ctx is done. It returns the filled keys.
func (s *Session) Hydrate(ctx context.Context, facet models.Facet) ([]string, error) {
	const opn = "Session.Hydrate"
	log := s.initLogger(opn).With(slog.String("facet", string(facet)))

	if facet.Keys() == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFacet, facet)
	}

	id := s.cache.Get().ID()
	if id == "" {
		return nil, ErrNotLoggedIn
	}

	rec, err := remote.FetchEmployee(ctx, s.client, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch record for hydration: %w", err)
	}

	if err = ctx.Err(); err != nil {
		log.DebugContext(ctx, "Hydration result dropped", sl.Err(err))
		return nil, err
	}

	_, filled, err := s.cache.MergeMissing(ctx, facet.Project(rec))
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "Hydrated cached user", slog.Any("filled", filled))
	return filled, nil
}
