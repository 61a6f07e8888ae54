package services

import (
	"context"
	"sync"
	"time"

	"server/internal/logger"
)

const autosaveDelay = 1 * time.Second

// AutosaveService debounces rapid-fire edits into a single write per
// key. Each new edit for a key cancels the pending one, so only the
// latest state is persisted. Close flushes whatever is still pending
// before shutdown; a queued edit is never silently dropped.
type AutosaveService struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]*pendingSave
	closed  bool
	log     logger.Logger
}

type pendingSave struct {
	timer *time.Timer
	save  func(ctx context.Context) error
}

func NewAutosaveService() *AutosaveService {
	return &AutosaveService{
		delay:   autosaveDelay,
		pending: make(map[string]*pendingSave),
		log:     logger.New("autosaveService"),
	}
}

// Queue schedules save to run after the debounce window. A pending
// save for the same key is replaced, not stacked.
func (s *AutosaveService) Queue(key string, save func(ctx context.Context) error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		s.run(key, save)
		return
	}

	if existing, ok := s.pending[key]; ok {
		existing.timer.Stop()
	}

	entry := &pendingSave{save: save}
	entry.timer = time.AfterFunc(s.delay, func() {
		s.Flush(key)
	})
	s.pending[key] = entry

	s.mu.Unlock()
}

// Flush runs the pending save for key immediately, if there is one.
func (s *AutosaveService) Flush(key string) {
	s.mu.Lock()
	entry, ok := s.pending[key]
	if ok {
		entry.timer.Stop()
		delete(s.pending, key)
	}
	s.mu.Unlock()

	if ok {
		s.run(key, entry.save)
	}
}

// Close cancels all timers and synchronously flushes every pending
// save. Further Queue calls run their save immediately.
func (s *AutosaveService) Close() {
	s.mu.Lock()
	s.closed = true
	remaining := s.pending
	s.pending = make(map[string]*pendingSave)
	for _, entry := range remaining {
		entry.timer.Stop()
	}
	s.mu.Unlock()

	for key, entry := range remaining {
		s.run(key, entry.save)
	}
}

func (s *AutosaveService) run(key string, save func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := save(ctx); err != nil {
		s.log.Function("run").Er("autosave failed", err, "key", key)
	}
}
