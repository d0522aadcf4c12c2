package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultWarningDelay = 3000 * time.Millisecond
	DefaultDebounce     = 800 * time.Millisecond
)

// View is the panel the interface shows for a state.
type View string

const (
	ViewLoading View = "loading"
	ViewWelcome View = "welcome"
	ViewEmpty   View = "empty"
	ViewResults View = "results"
)

// State is a snapshot of the search interface.
type State struct {
	Query            string
	Results          []Result
	IsLoading        bool
	HasSearched      bool
	ShowEmptyWarning bool
}

// View picks the panel to render. Loading wins over everything else.
func (s State) View() View {
	switch {
	case s.IsLoading:
		return ViewLoading
	case !s.HasSearched:
		return ViewWelcome
	case len(s.Results) == 0:
		return ViewEmpty
	default:
		return ViewResults
	}
}

type Option func(*SearchInterface)

// WithWarningDelay sets how long the empty-query warning stays visible.
func WithWarningDelay(d time.Duration) Option {
	return func(s *SearchInterface) { s.warningDelay = d }
}

// WithDebounce enables auto-search d after the last keystroke.
func WithDebounce(d time.Duration) Option {
	return func(s *SearchInterface) { s.debounce = d }
}

// WithStaleResponseGuard drops responses from submissions that have since
// been superseded. Without it the last response to arrive wins.
func WithStaleResponseGuard() Option {
	return func(s *SearchInterface) { s.staleGuard = true }
}

// WithOnChange registers fn to receive a snapshot after every state change.
// fn runs outside the interface's lock.
func WithOnChange(fn func(State)) Option {
	return func(s *SearchInterface) { s.onChange = fn }
}

// SearchInterface is the search box state machine. Every entry point funnels
// into one submission path; backend calls run on their own goroutines.
type SearchInterface struct {
	backend      Backend
	warningDelay time.Duration
	debounce     time.Duration
	staleGuard   bool
	onChange     func(State)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu            sync.Mutex
	state         State
	seq           uint64
	warningGen    uint64
	closed        bool
	warningTimer  *time.Timer
	debounceTimer *time.Timer
}

func New(backend Backend, opts ...Option) *SearchInterface {
	ctx, cancel := context.WithCancel(context.Background())
	s := &SearchInterface{
		backend:      backend,
		warningDelay: DefaultWarningDelay,
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SearchInterface) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *SearchInterface) snapshot() State {
	st := s.state
	if st.Results != nil {
		st.Results = append([]Result(nil), st.Results...)
	}
	return st
}

// SetQuery records typed text. Any non-whitespace character hides the
// empty-query warning. With debounce enabled a query longer than two
// characters re-arms the auto-search timer.
func (s *SearchInterface) SetQuery(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state.Query = text
	if strings.TrimSpace(text) != "" {
		s.hideWarningLocked()
	}

	if s.debounce > 0 {
		stopTimer(&s.debounceTimer)
		if len(strings.TrimSpace(text)) > 2 {
			s.debounceTimer = time.AfterFunc(s.debounce, s.Submit)
		}
	}
	st := s.snapshot()
	s.mu.Unlock()
	s.emit(st)
}

// Click is the search button.
func (s *SearchInterface) Click() {
	s.Submit()
}

// KeyPress submits on Enter and ignores other keys.
func (s *SearchInterface) KeyPress(key string) {
	if key == "Enter" {
		s.Submit()
	}
}

// QuickAction fills the box with query and submits it in one step.
func (s *SearchInterface) QuickAction(query string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state.Query = query
	st, launch := s.submitLocked()
	s.mu.Unlock()
	s.emit(st)
	launch()
}

// Submit searches for the current query.
func (s *SearchInterface) Submit() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	st, launch := s.submitLocked()
	s.mu.Unlock()
	s.emit(st)
	launch()
}

// submitLocked applies a submission to the state. The returned launch func
// starts the backend call, if any, and must run after the lock is released.
func (s *SearchInterface) submitLocked() (State, func()) {
	stopTimer(&s.debounceTimer)

	query := strings.TrimSpace(s.state.Query)
	if query == "" {
		s.state.Results = nil
		s.state.HasSearched = false
		s.state.ShowEmptyWarning = true
		stopTimer(&s.warningTimer)
		s.warningGen++
		gen := s.warningGen
		s.warningTimer = time.AfterFunc(s.warningDelay, func() { s.expireWarning(gen) })
		return s.snapshot(), func() {}
	}

	s.state.IsLoading = true
	s.state.HasSearched = true
	s.hideWarningLocked()
	s.seq++
	seq := s.seq
	s.wg.Add(1)
	return s.snapshot(), func() { go s.run(seq, query) }
}

func (s *SearchInterface) run(seq uint64, query string) {
	defer s.wg.Done()

	results, err := s.backend.Search(s.ctx, query)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("search failed, showing fallback results")
		results = s.backend.Fallback(query)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.staleGuard && seq != s.seq {
		s.mu.Unlock()
		log.Debug().Uint64("seq", seq).Str("query", query).Msg("dropping stale search response")
		return
	}
	s.state.Results = results
	s.state.IsLoading = false
	st := s.snapshot()
	s.mu.Unlock()
	s.emit(st)
}

// expireWarning hides the warning raised by submission gen, unless a later
// empty submission has re-raised it.
func (s *SearchInterface) expireWarning(gen uint64) {
	s.mu.Lock()
	if s.closed || !s.state.ShowEmptyWarning || gen != s.warningGen {
		s.mu.Unlock()
		return
	}
	s.hideWarningLocked()
	st := s.snapshot()
	s.mu.Unlock()
	s.emit(st)
}

func (s *SearchInterface) hideWarningLocked() {
	s.state.ShowEmptyWarning = false
	stopTimer(&s.warningTimer)
}

// Wait blocks until every in-flight search has finished.
func (s *SearchInterface) Wait() {
	s.wg.Wait()
}

// Close stops all timers and in-flight requests. Later events and responses
// are ignored.
func (s *SearchInterface) Close() {
	s.mu.Lock()
	s.closed = true
	stopTimer(&s.warningTimer)
	stopTimer(&s.debounceTimer)
	s.mu.Unlock()
	s.cancel()
}

func (s *SearchInterface) emit(st State) {
	if s.onChange != nil {
		s.onChange(st)
	}
}

func stopTimer(t **time.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}
