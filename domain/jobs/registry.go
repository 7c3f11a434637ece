package jobs

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jobber-dev/jobber/pkg/apperror"
)

// Payload is the data handed to a job handler.
type Payload map[string]any

// HandlerFunc runs a job. topic is the broker topic the job emits on, which
// is the job's name.
type HandlerFunc func(ctx context.Context, payload Payload, topic string) error

// Descriptor describes one registered job.
type Descriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Handler     HandlerFunc `json:"-"`
}

// Provider is implemented by every job. Providers are collected from the fx
// value group "jobs".
type Provider interface {
	Descriptor() Descriptor
}

// Filter narrows List. An empty Name lists everything.
type Filter struct {
	Name string `query:"name"`
}

// Registry holds the jobs known to this process. It is built once by
// Initialize and read-only afterwards.
type Registry struct {
	providers []Provider

	once    sync.Once
	initErr error
	ready   atomic.Bool

	entries []Descriptor
	index   map[string]int
}

// NewRegistry creates an uninitialized registry over providers.
func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

// Initialize collects descriptors from every provider. It runs once; later
// calls return the first result. Empty or duplicate names (compared
// case-insensitively) fail initialization and leave the registry not ready.
func (r *Registry) Initialize(ctx context.Context) error {
	r.once.Do(func() {
		r.initErr = r.scan(ctx)
		if r.initErr == nil {
			r.ready.Store(true)
		}
	})
	return r.initErr
}

func (r *Registry) scan(ctx context.Context) error {
	entries := make([]Descriptor, 0, len(r.providers))
	index := make(map[string]int, len(r.providers))

	for _, p := range r.providers {
		if err := ctx.Err(); err != nil {
			return err
		}

		d := p.Descriptor()
		if strings.TrimSpace(d.Name) == "" {
			return fmt.Errorf("jobs: provider %T has an empty name", p)
		}
		if d.Handler == nil {
			return fmt.Errorf("jobs: job %q has no handler", d.Name)
		}

		key := strings.ToLower(d.Name)
		if i, dup := index[key]; dup {
			return fmt.Errorf("jobs: duplicate job name %q (already registered as %q)", d.Name, entries[i].Name)
		}
		index[key] = len(entries)
		entries = append(entries, d)
	}

	r.entries = entries
	r.index = index
	return nil
}

// Ready reports whether Initialize has completed successfully.
func (r *Registry) Ready() bool {
	return r.ready.Load()
}

// Lookup finds a job by name, ignoring case. It panics if called before
// Initialize has succeeded.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	if !r.Ready() {
		panic("jobs: registry used before initialization")
	}
	i, ok := r.index[strings.ToLower(name)]
	if !ok {
		return Descriptor{}, false
	}
	return r.entries[i], true
}

// List returns every job in registration order, or only the job named by f.
func (r *Registry) List(f Filter) ([]Descriptor, error) {
	if !r.Ready() {
		return nil, apperror.ErrNotReady
	}

	if f.Name == "" {
		out := make([]Descriptor, len(r.entries))
		copy(out, r.entries)
		return out, nil
	}

	d, ok := r.Lookup(f.Name)
	if !ok {
		return nil, apperror.NewJobNotFound(f.Name)
	}
	return []Descriptor{d}, nil
}
