// Package perf measures where deployment time goes. Enable with
// REDEPLOY_PERF=1 for a summary on exit, or REDEPLOY_TRACE=<file> to write
// a trace viewable with `go tool trace`.
package perf

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/trace"
	"sync"
	"time"
)

// span is one timed operation. Deployments are sequential, so spans form a
// flat list rather than a tree.
type span struct {
	name  string
	start time.Time
	end   time.Time

	task   *trace.Task
	region *trace.Region
}

func (s *span) duration() time.Duration {
	if s.end.IsZero() {
		return time.Since(s.start)
	}

	return s.end.Sub(s.start)
}

type tracer struct {
	mu        sync.Mutex
	enabled   bool
	traceFile *os.File
	spans     []*span
	active    map[string]*span
	startTime time.Time
	output    io.Writer
}

var (
	globalTracer *tracer
	once         sync.Once
)

// Init reads the environment and arms the tracer. Call once at the start
// of main.
func Init() {
	once.Do(func() {
		globalTracer = &tracer{
			active:    make(map[string]*span),
			startTime: time.Now(),
			output:    os.Stderr,
		}

		if os.Getenv("REDEPLOY_PERF") == "1" {
			globalTracer.enabled = true
		}

		if path := os.Getenv("REDEPLOY_TRACE"); path != "" {
			f, err := os.Create(path) //nolint:gosec // Path comes from the user's own environment
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to create trace file: %v\n", err) //nolint:errcheck

				return
			}

			if err := trace.Start(f); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to start trace: %v\n", err) //nolint:errcheck
				f.Close()                                                           //nolint:errcheck,gosec

				return
			}

			globalTracer.traceFile = f
			globalTracer.enabled = true
		}
	})
}

// Enabled reports whether measurement is active
func Enabled() bool {
	return globalTracer != nil && globalTracer.enabled
}

// StartSpan begins timing a named operation and returns the function that
// ends it:
//
//	end := perf.StartSpan("clone")
//	defer end()
func StartSpan(name string) func() {
	if !Enabled() {
		return func() {}
	}

	return globalTracer.startSpan(name)
}

func (t *tracer) startSpan(name string) func() {
	t.mu.Lock()

	s := &span{name: name, start: time.Now()}

	if t.traceFile != nil {
		ctx, task := trace.NewTask(context.Background(), name)
		s.task = task
		s.region = trace.StartRegion(ctx, name)
	}

	t.spans = append(t.spans, s)
	t.active[name] = s

	t.mu.Unlock()

	return func() {
		t.endSpan(name)
	}
}

func (t *tracer) endSpan(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.active[name]
	if !ok {
		return
	}

	s.end = time.Now()

	if s.region != nil {
		s.region.End()
	}

	if s.task != nil {
		s.task.End()
	}

	delete(t.active, name)
}

// Shutdown stops tracing and prints the summary. Defer it from main.
func Shutdown() {
	if !Enabled() {
		return
	}

	globalTracer.shutdown()
}

//nolint:errcheck // Best-effort debug output
func (t *tracer) shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.traceFile != nil {
		trace.Stop()
		t.traceFile.Close() //nolint:gosec
		fmt.Fprintf(t.output, "\nTrace written to: %s\n", t.traceFile.Name())
		fmt.Fprintf(t.output, "View with: go tool trace %s\n", t.traceFile.Name())
	}

	total := time.Since(t.startTime)

	fmt.Fprintf(t.output, "\nDeployment timing (total %s):\n", total.Round(time.Millisecond))

	for _, s := range t.spans {
		d := s.duration()
		percent := float64(d) / float64(total) * 100
		fmt.Fprintf(t.output, "  %-30s %12s  %5.1f%%\n", s.name, d.Round(time.Millisecond), percent)
	}

	fmt.Fprintf(t.output, "\n")
}
