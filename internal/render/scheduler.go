package render

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dshills/glyphpad/internal/debounce"
)

// DefaultDelay is the debounce window between an edit and the render
// it triggers.
const DefaultDelay = 300 * time.Millisecond

// Transform rewrites markup before it reaches the renderer.
type Transform func(markup string) string

// Stats counts scheduler outcomes.
type Stats struct {
	Committed uint64 // renders that updated visible state
	Failed    uint64 // renders that surfaced an error
	Discarded uint64 // stale results dropped by the generation gate
}

// Scheduler debounces markup updates and invokes the renderer
// asynchronously. Each dispatched render captures the value of a
// monotonically increasing generation counter; only the result whose
// captured value still equals the current counter at completion may
// update visible state. Superseded results are discarded unseen, so a
// slow stale render can never clobber a newer one.
//
// Scheduler is safe for concurrent use.
type Scheduler struct {
	mu sync.Mutex

	renderer  Renderer
	transform Transform
	purge     func()
	trigger   *debounce.Trigger
	delaySet  time.Duration

	generation uint64
	pending    struct {
		markup string
		theme  Theme
	}

	svg    string
	errMsg string

	onCommit []func(svg string)
	onError  []func(msg string)
	onClear  []func()

	stats  Stats
	closed bool
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.delaySet = d
		}
	}
}

// WithTransform sets the markup transform run before rendering.
func WithTransform(t Transform) SchedulerOption {
	return func(s *Scheduler) {
		if t != nil {
			s.transform = t
		}
	}
}

// WithPurge sets a hook invoked after every completed current render,
// success or failure, to remove transient artifacts the renderer may
// have left behind.
func WithPurge(purge func()) SchedulerOption {
	return func(s *Scheduler) {
		s.purge = purge
	}
}

// NewScheduler creates a scheduler around the given renderer.
func NewScheduler(renderer Renderer, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		renderer:  renderer,
		transform: func(m string) string { return m },
		delaySet:  DefaultDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.trigger = debounce.New(s.delaySet, s.dispatch)
	return s
}

// Update schedules a render of the given markup and theme. Repeated
// updates within the debounce window coalesce into one render.
//
// Empty or whitespace-only markup short-circuits: visible state is
// cleared immediately, any pending or in-flight render is invalidated,
// and the renderer is not called.
func (s *Scheduler) Update(markup string, theme Theme) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	if strings.TrimSpace(markup) == "" {
		s.generation++ // invalidate in-flight work
		s.svg = ""
		s.errMsg = ""
		clearHandlers := append([]func(){}, s.onClear...)
		s.mu.Unlock()

		s.trigger.Cancel()
		for _, h := range clearHandlers {
			h()
		}
		return
	}

	s.pending.markup = markup
	s.pending.theme = theme
	s.mu.Unlock()

	s.trigger.Touch()
}

// Flush dispatches any pending render immediately, skipping the
// remaining debounce delay.
func (s *Scheduler) Flush() {
	s.trigger.Flush()
}

// dispatch captures the pending request and a fresh generation, then
// renders asynchronously.
func (s *Scheduler) dispatch() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.generation++
	gen := s.generation
	markup := s.pending.markup
	theme := s.pending.theme
	s.mu.Unlock()

	go s.run(gen, markup, theme)
}

// run performs one render cycle and commits the result if its
// generation is still current.
func (s *Scheduler) run(gen uint64, markup string, theme Theme) {
	text := s.transform(markup)
	svg, err := s.renderer.Render(context.Background(), text, Options{Theme: theme})

	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.stats.Discarded++
		s.mu.Unlock()
		return
	}

	purge := s.purge
	var commitHandlers []func(string)
	var errorHandlers []func(string)
	var msg string

	if err != nil {
		s.stats.Failed++
		s.svg = ""
		s.errMsg = CleanMessage(err.Error())
		msg = s.errMsg
		errorHandlers = append([]func(string){}, s.onError...)
	} else {
		s.stats.Committed++
		s.svg = svg
		s.errMsg = ""
		commitHandlers = append([]func(string){}, s.onCommit...)
	}
	s.mu.Unlock()

	if purge != nil {
		purge()
	}
	for _, h := range errorHandlers {
		h(msg)
	}
	for _, h := range commitHandlers {
		h(svg)
	}
}

// Snapshot returns the current graphic and error message. At most one
// of the two is non-empty.
func (s *Scheduler) Snapshot() (svg, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.svg, s.errMsg
}

// Stats returns scheduler outcome counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// OnCommit registers a handler called when a render updates the
// displayed graphic.
func (s *Scheduler) OnCommit(handler func(svg string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCommit = append(s.onCommit, handler)
}

// OnError registers a handler called when a render fails with the
// current generation. The message is already cleaned.
func (s *Scheduler) OnError(handler func(msg string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = append(s.onError, handler)
}

// OnClear registers a handler called when visible state is cleared by
// an empty-markup update.
func (s *Scheduler) OnClear(handler func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClear = append(s.onClear, handler)
}

// Close stops the scheduler. Pending timers are defused and in-flight
// results are discarded.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.trigger.Stop()
}
