// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/contrib-tracker/internal/domain"
	"github.com/naka-gawa/contrib-tracker/internal/gateway"
)

// StatsWorkflow owns the tracked user list and keeps it in sync with the
// active date range. All methods are safe for concurrent use; the list is
// only mutated under mu, network calls run outside of it.
type StatsWorkflow struct {
	fetcher gateway.ContributionsFetcher
	logger  *log.Logger
	timeout time.Duration

	mu         sync.Mutex
	users      []domain.TrackedUser
	pending    map[string]struct{} // keys whose add is in flight
	inFlight   int
	active     domain.DateRange
	// generation counts started refreshes; refreshRange is the range of the latest one.
	generation   uint64
	refreshRange domain.DateRange
}

// Option configures a StatsWorkflow.
type Option func(*StatsWorkflow)

// WithRequestTimeout bounds every single-user fetch. Zero disables the bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(w *StatsWorkflow) {
		w.timeout = d
	}
}

// NewStatsWorkflow creates a workflow with an empty user list.
func NewStatsWorkflow(fetcher gateway.ContributionsFetcher, logger *log.Logger, opts ...Option) *StatsWorkflow {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	w := &StatsWorkflow{
		fetcher: fetcher,
		logger:  logger,
		pending: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// FetchOneUserStats fetches the counters of a single user for r.
// It never fails: every outcome is reported on the returned entry.
func (w *StatsWorkflow) FetchOneUserStats(ctx context.Context, username string, r domain.DateRange) domain.TrackedUser {
	username = strings.TrimSpace(username)
	if username == "" || !r.Complete() {
		return domain.TrackedUser{Username: username, Error: domain.ErrorMessage(domain.ErrMissingInput)}
	}

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	from, to := r.QueryWindow()
	stats, err := w.fetcher.FetchContributions(ctx, username, from, to)
	if err != nil {
		w.logger.Printf("Usecase: fetch for %s failed: %v\n", username, err)
		return domain.TrackedUser{Username: username, Error: domain.ErrorMessage(err)}
	}
	return domain.TrackedUser{Username: username, Stats: &stats}
}

// AddUser fetches username for r and appends it to the list.
// Empty usernames and names already tracked (or being added) are ignored.
// A missing date still appends the user, carrying the validation error.
// It reports the appended entry and whether the list changed.
func (w *StatsWorkflow) AddUser(ctx context.Context, username string, r domain.DateRange) (domain.TrackedUser, bool) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.TrackedUser{}, false
	}
	key := domain.NormalizeUsername(username)

	w.mu.Lock()
	if _, busy := w.pending[key]; busy || w.indexLocked(key) >= 0 {
		w.mu.Unlock()
		w.logger.Printf("Usecase: %s is already tracked, ignoring add.\n", username)
		return domain.TrackedUser{}, false
	}
	w.pending[key] = struct{}{}
	w.inFlight++
	gen := w.generation
	w.mu.Unlock()

	user := w.FetchOneUserStats(ctx, username, r)

	w.mu.Lock()
	defer w.mu.Unlock()
	defer func() { w.inFlight-- }()
	delete(w.pending, key)
	w.users = append(w.users, user)
	w.logger.Printf("Usecase: added %s (%s).\n", username, user.State())
	if gen == w.generation {
		return user, true
	}

	// A refresh started while the fetch was in flight and did not include
	// this user. Fetch it again for that refresh's range. Any refresh that
	// starts from here on sees the appended entry and supersedes this one.
	gen = w.generation
	latest := w.refreshRange
	w.mu.Unlock()
	w.logger.Printf("Usecase: %s was fetched for a superseded range, refetching for %s.\n", username, latest)
	refreshed := w.FetchOneUserStats(ctx, username, latest)
	w.mu.Lock()

	i := w.indexLocked(key)
	if i < 0 {
		return user, true
	}
	if gen == w.generation {
		w.users[i] = refreshed
	}
	return w.users[i], true
}

// RemoveUser drops every entry matching username case-insensitively.
// It reports whether anything was removed.
func (w *StatsWorkflow) RemoveUser(username string) bool {
	key := domain.NormalizeUsername(username)
	if key == "" {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	kept := w.users[:0]
	for _, u := range w.users {
		if u.Key() != key {
			kept = append(kept, u)
		}
	}
	removed := len(kept) != len(w.users)
	clear(w.users[len(kept):])
	w.users = kept
	if removed {
		w.logger.Printf("Usecase: removed %s.\n", username)
	}
	return removed
}

// RefreshAll re-fetches every tracked user for r in parallel and replaces
// each entry with its own result, keeping list order. A batch that was
// overtaken by a newer RefreshAll is discarded when it completes.
func (w *StatsWorkflow) RefreshAll(ctx context.Context, r domain.DateRange) {
	if !r.Complete() {
		return
	}

	w.mu.Lock()
	w.generation++
	gen := w.generation
	w.refreshRange = r
	if len(w.users) == 0 {
		w.mu.Unlock()
		return
	}
	names := make([]string, len(w.users))
	for i, u := range w.users {
		names[i] = u.Username
	}
	w.inFlight++
	w.mu.Unlock()

	w.logger.Printf("Usecase: refreshing %d users for %s (batch %d)...\n", len(names), r, gen)

	// Results are collected positionally; a failed user never cancels the batch.
	results := make([]domain.TrackedUser, len(names))
	var eg errgroup.Group
	for i, name := range names {
		eg.Go(func() error {
			results[i] = w.FetchOneUserStats(ctx, name, r)
			return nil
		})
	}
	_ = eg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight--
	if gen != w.generation {
		w.logger.Printf("Usecase: discarding stale batch %d (latest is %d).\n", gen, w.generation)
		return
	}

	byKey := make(map[string]domain.TrackedUser, len(results))
	for _, res := range results {
		byKey[res.Key()] = res
	}
	for i, u := range w.users {
		if res, ok := byKey[u.Key()]; ok {
			w.users[i] = res
		}
	}
	w.logger.Printf("Usecase: batch %d complete.\n", gen)
}

// Seed adds every name of a comma-separated list that is not tracked yet,
// without fetching. It returns the number of names added.
func (w *StatsWorkflow) Seed(list string) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	added := 0
	for _, name := range domain.SplitUsernames(list) {
		key := domain.NormalizeUsername(name)
		if _, busy := w.pending[key]; busy || w.indexLocked(key) >= 0 {
			continue
		}
		w.users = append(w.users, domain.TrackedUser{Username: name})
		added++
	}
	w.logger.Printf("Usecase: seeded %d users.\n", added)
	return added
}

// SetRange makes r the active range and refreshes the list when r is complete.
func (w *StatsWorkflow) SetRange(ctx context.Context, r domain.DateRange) error {
	if err := r.Validate(); err != nil {
		return err
	}
	w.mu.Lock()
	w.active = r
	w.mu.Unlock()

	w.RefreshAll(ctx, r)
	return nil
}

// Range returns the active date range.
func (w *StatsWorkflow) Range() domain.DateRange {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// Users returns a copy of the list in order.
func (w *StatsWorkflow) Users() []domain.TrackedUser {
	w.mu.Lock()
	defer w.mu.Unlock()

	users := make([]domain.TrackedUser, len(w.users))
	for i, u := range w.users {
		if u.Stats != nil {
			stats := *u.Stats
			u.Stats = &stats
		}
		users[i] = u
	}
	return users
}

// Busy reports whether an add or a refresh batch is in flight.
func (w *StatsWorkflow) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inFlight > 0
}

func (w *StatsWorkflow) indexLocked(key string) int {
	for i, u := range w.users {
		if u.Key() == key {
			return i
		}
	}
	return -1
}
