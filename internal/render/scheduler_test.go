package render

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeRenderer renders in-process with optional per-call gating.
type fakeRenderer struct {
	mu      sync.Mutex
	calls   int
	results map[string]string // markup -> svg
	errs    map[string]error  // markup -> error
	gates   map[string]chan struct{}
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{
		results: make(map[string]string),
		errs:    make(map[string]error),
		gates:   make(map[string]chan struct{}),
	}
}

// gate makes the render of the given markup block until released.
func (f *fakeRenderer) gate(markup string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[markup] = ch
	return ch
}

func (f *fakeRenderer) Render(ctx context.Context, markup string, opts Options) (string, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gates[markup]
	svg, ok := f.results[markup]
	err := f.errs[markup]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return "", err
	}
	if !ok {
		svg = "<svg>" + markup + "</svg>"
	}
	return svg, nil
}

func (f *fakeRenderer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestScheduler_CommitsRender(t *testing.T) {
	fake := newFakeRenderer()
	s := NewScheduler(fake, WithDelay(10*time.Millisecond))
	defer s.Close()

	s.Update("flowchart TD\nA-->B\n", ThemeLight)

	waitFor(t, func() bool {
		svg, _ := s.Snapshot()
		return svg != ""
	})

	svg, errMsg := s.Snapshot()
	if !strings.Contains(svg, "flowchart") {
		t.Errorf("svg = %q", svg)
	}
	if errMsg != "" {
		t.Errorf("errMsg = %q, want empty", errMsg)
	}
}

func TestScheduler_GenerationGating(t *testing.T) {
	// R1 is slow, R2 is fast and dispatched later. R2 commits first;
	// R1's eventual completion must be discarded.
	fake := newFakeRenderer()
	r1Gate := fake.gate("one")

	s := NewScheduler(fake, WithDelay(5*time.Millisecond))
	defer s.Close()

	s.Update("one", ThemeLight)
	s.Flush()
	waitFor(t, func() bool { return fake.callCount() == 1 })

	s.Update("two", ThemeLight)
	s.Flush()

	waitFor(t, func() bool {
		svg, _ := s.Snapshot()
		return strings.Contains(svg, "two")
	})

	// Release the stale render and give it time to (incorrectly) land.
	close(r1Gate)
	waitFor(t, func() bool { return s.Stats().Discarded == 1 })

	svg, _ := s.Snapshot()
	if !strings.Contains(svg, "two") {
		t.Errorf("final svg = %q, want result of second render", svg)
	}
	stats := s.Stats()
	if stats.Committed != 1 || stats.Discarded != 1 {
		t.Errorf("stats = %+v, want 1 committed, 1 discarded", stats)
	}
}

func TestScheduler_DebounceCoalesces(t *testing.T) {
	fake := newFakeRenderer()
	s := NewScheduler(fake, WithDelay(40*time.Millisecond))
	defer s.Close()

	for i := 0; i < 10; i++ {
		s.Update("markup", ThemeLight)
		time.Sleep(2 * time.Millisecond)
	}

	waitFor(t, func() bool { return s.Stats().Committed == 1 })

	if got := fake.callCount(); got != 1 {
		t.Errorf("renderer called %d times, want 1", got)
	}
}

func TestScheduler_ErrorClearsGraphic(t *testing.T) {
	fake := newFakeRenderer()
	fake.errs["bad"] = errors.New("Parse error: <b>bad&amp;input</b>")

	s := NewScheduler(fake, WithDelay(5*time.Millisecond))
	defer s.Close()

	s.Update("good", ThemeLight)
	s.Flush()
	waitFor(t, func() bool {
		svg, _ := s.Snapshot()
		return svg != ""
	})

	s.Update("bad", ThemeLight)
	s.Flush()
	waitFor(t, func() bool {
		_, errMsg := s.Snapshot()
		return errMsg != ""
	})

	svg, errMsg := s.Snapshot()
	if svg != "" {
		t.Errorf("svg = %q, want cleared on error", svg)
	}
	if errMsg != "Parse error: bad&input" {
		t.Errorf("errMsg = %q, want cleaned message", errMsg)
	}
}

func TestScheduler_CommitClearsError(t *testing.T) {
	fake := newFakeRenderer()
	fake.errs["bad"] = errors.New("boom")

	s := NewScheduler(fake, WithDelay(5*time.Millisecond))
	defer s.Close()

	s.Update("bad", ThemeLight)
	s.Flush()
	waitFor(t, func() bool {
		_, errMsg := s.Snapshot()
		return errMsg != ""
	})

	s.Update("good", ThemeLight)
	s.Flush()
	waitFor(t, func() bool {
		svg, _ := s.Snapshot()
		return svg != ""
	})

	_, errMsg := s.Snapshot()
	if errMsg != "" {
		t.Errorf("errMsg = %q, want cleared after commit", errMsg)
	}
}

func TestScheduler_EmptyMarkupShortCircuits(t *testing.T) {
	fake := newFakeRenderer()
	s := NewScheduler(fake, WithDelay(5*time.Millisecond))
	defer s.Close()

	var cleared atomic.Int32
	s.OnClear(func() { cleared.Add(1) })

	s.Update("good", ThemeLight)
	s.Flush()
	waitFor(t, func() bool {
		svg, _ := s.Snapshot()
		return svg != ""
	})

	calls := fake.callCount()
	s.Update("   \n\t", ThemeLight)

	svg, errMsg := s.Snapshot()
	if svg != "" || errMsg != "" {
		t.Errorf("state = (%q, %q), want cleared immediately", svg, errMsg)
	}
	if cleared.Load() != 1 {
		t.Errorf("clear handler ran %d times, want 1", cleared.Load())
	}
	if fake.callCount() != calls {
		t.Error("renderer invoked for empty markup")
	}
}

func TestScheduler_PurgeAfterEveryCurrentRender(t *testing.T) {
	fake := newFakeRenderer()
	fake.errs["bad"] = errors.New("boom")

	var purges atomic.Int32
	s := NewScheduler(fake,
		WithDelay(5*time.Millisecond),
		WithPurge(func() { purges.Add(1) }),
	)
	defer s.Close()

	s.Update("good", ThemeLight)
	s.Flush()
	waitFor(t, func() bool { return purges.Load() == 1 })

	s.Update("bad", ThemeLight)
	s.Flush()
	waitFor(t, func() bool { return purges.Load() == 2 })
}

func TestScheduler_TransformApplied(t *testing.T) {
	fake := newFakeRenderer()
	s := NewScheduler(fake,
		WithDelay(5*time.Millisecond),
		WithTransform(func(m string) string { return "rewritten:" + m }),
	)
	defer s.Close()

	s.Update("raw", ThemeLight)
	s.Flush()

	waitFor(t, func() bool {
		svg, _ := s.Snapshot()
		return strings.Contains(svg, "rewritten:raw")
	})
}

func TestScheduler_UpdateAfterCloseIgnored(t *testing.T) {
	fake := newFakeRenderer()
	s := NewScheduler(fake, WithDelay(5*time.Millisecond))
	s.Close()

	s.Update("late", ThemeLight)
	s.Flush()

	time.Sleep(30 * time.Millisecond)
	if fake.callCount() != 0 {
		t.Error("renderer invoked after Close")
	}
}
