package privileged

import (
	"context"
	"slices"
	"sync"
)

// Invocation is one recorded command with its arguments.
type Invocation struct {
	Command string
	Args    []string
}

// Recorder is an Executor that records invocations and never runs anything.
// It returns Err, which is nil unless a test sets it before use.
type Recorder struct {
	// Err is returned from every Execute call.
	Err error

	mu          sync.Mutex
	invocations []Invocation
}

// Execute implements Executor.
func (r *Recorder) Execute(_ context.Context, command string, args ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.invocations = append(r.invocations, Invocation{
		Command: command,
		Args:    slices.Clone(args),
	})

	return r.Err
}

// Invocations returns a copy of everything recorded so far.
func (r *Recorder) Invocations() []Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.invocations)
}

// Len returns the number of recorded invocations.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.invocations)
}
