package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/domain/search"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/models"
)

// DefaultDebounce is the quiet period before a typed query is executed.
const DefaultDebounce = 300 * time.Millisecond

// Searcher turns a stream of keystrokes into filter events on a store. It
// debounces input and discards responses that were overtaken by a newer
// query, so a slow early search can never clobber the latest results.
type Searcher struct {
	logger   *zap.Logger
	svc      search.Service
	store    *Store
	debounce time.Duration

	seq atomic.Uint64

	mu      sync.Mutex
	timer   *time.Timer
	results []models.SearchResult
}

// NewSearcher wires a searcher to a session store. A non-positive debounce
// falls back to the default.
func NewSearcher(logger *zap.Logger, svc search.Service, store *Store, debounce time.Duration) *Searcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Searcher{
		logger:   logger.With(zap.String("component", "Searcher")),
		svc:      svc,
		store:    store,
		debounce: debounce,
	}
}

// Query records a new input value and (re)starts the debounce timer. Every
// call invalidates any in-flight search.
func (s *Searcher) Query(ctx context.Context, query string) {
	id := s.seq.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.run(ctx, id, query)
	})
}

// Flush runs the pending query immediately, bypassing the debounce. Used
// on explicit submit.
func (s *Searcher) Flush(ctx context.Context, query string) {
	id := s.seq.Add(1)

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.run(ctx, id, query)
}

// Results returns the result rows of the most recent completed search, for
// rendering alongside the filtered map.
func (s *Searcher) Results() []models.SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}

func (s *Searcher) run(ctx context.Context, id uint64, query string) {
	results, filterActive, err := s.svc.Search(ctx, query)
	if err != nil {
		s.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
		return
	}

	// The staleness check and the dispatch share one critical section:
	// checking first and dispatching later would let a response that was
	// overtaken mid-gap still land last. Store subscribers therefore must
	// not call back into the searcher.
	s.mu.Lock()
	defer s.mu.Unlock()

	// A newer query was issued while this one was in flight.
	if s.seq.Load() != id {
		return
	}
	s.results = results

	if !filterActive {
		s.store.Dispatch(FilterCleared{})
		return
	}
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	s.store.Dispatch(FilterApplied{IDs: ids})
}
