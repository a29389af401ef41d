// Package profiling times named spans (fetches, loads) and writes CPU and
// heap profiles for a single CLI invocation.
package profiling

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// Stopper ends a timed span.
type Stopper interface {
	Stop()
}

type span struct {
	name     string
	start    time.Time
	duration time.Duration
	done     bool
	profiler *Profiler
}

// Stop records the span's duration. Stopping twice keeps the first duration.
func (s *span) Stop() {
	s.profiler.mu.Lock()
	defer s.profiler.mu.Unlock()
	if !s.done {
		s.duration = time.Since(s.start)
		s.done = true
	}
}

// Profiler collects spans. Spans may start and stop on any goroutine; the
// reference fetches overlap, so spans are kept flat rather than nested.
type Profiler struct {
	mu      sync.Mutex
	enabled bool
	start   time.Time
	spans   []*span
}

// New returns a disabled profiler.
func New() *Profiler {
	return &Profiler{}
}

var defaultProfiler = New()

// Enable starts collecting spans. It is a no-op when already enabled.
func (p *Profiler) Enable() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.enabled {
		return
	}
	p.enabled = true
	p.start = time.Now()
	p.spans = nil
}

// Enabled reports whether spans are being collected.
func (p *Profiler) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Start begins a span. Use it as defer p.Start("name").Stop().
func (p *Profiler) Start(name string) Stopper {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return noopStopper{}
	}
	s := &span{name: name, start: time.Now(), profiler: p}
	p.spans = append(p.spans, s)
	return s
}

// Summarize writes every span in start order with its share of the
// session's wall time. Spans still running are marked as such.
func (p *Profiler) Summarize(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return
	}

	total := time.Since(p.start)
	spans := append([]*span(nil), p.spans...)
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start.Before(spans[j].start) })

	fmt.Fprintln(w, "\n--- Timing Profile ---")
	for _, s := range spans {
		if !s.done {
			fmt.Fprintf(w, "- %s (running)\n", s.name)
			continue
		}
		pct := 0.0
		if total > 0 {
			pct = float64(s.duration) / float64(total) * 100
		}
		fmt.Fprintf(w, "- %s (%v, %.1f%%)\n", s.name, s.duration.Round(100*time.Microsecond), pct)
	}
	fmt.Fprintf(w, "total %v\n", total.Round(100*time.Microsecond))
	fmt.Fprintln(w, "--------------------")
}

// Enable turns on the global profiler.
func Enable() {
	defaultProfiler.Enable()
}

// Start begins a span on the global profiler.
func Start(name string) Stopper {
	return defaultProfiler.Start(name)
}

// Summarize writes the global profiler's spans to w.
func Summarize(w io.Writer) {
	defaultProfiler.Summarize(w)
}

type noopStopper struct{}

func (noopStopper) Stop() {}
