package dialog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	contractx "github.com/tanpawarit/voice-diary/agent/contract"
	statex "github.com/tanpawarit/voice-diary/agent/state"
)

// Handler runs the business logic of one dialog state. It reads the turn from
// req and builds its answer on resp.
type Handler func(ctx context.Context, req *Request, resp *Response) error

// Registry binds each dialog state to exactly one handler. Bindings happen at
// startup; after that the registry is only read.
type Registry struct {
	mu       sync.RWMutex
	handlers map[statex.Status]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[statex.Status]Handler)}
}

func (r *Registry) Register(st statex.Status, h Handler) error {
	if !st.Valid() {
		return fmt.Errorf("%w: %d", contractx.ErrInvalidState, int(st))
	}
	if h == nil {
		return fmt.Errorf("%w: nil handler for %v", contractx.ErrConfiguration, st)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[st]; exists {
		return fmt.Errorf("%w: %v", contractx.ErrDuplicateStateBinding, st)
	}
	r.handlers[st] = h
	return nil
}

// MustRegister is Register for wiring code that cannot recover.
func (r *Registry) MustRegister(st statex.Status, h Handler) {
	if err := r.Register(st, h); err != nil {
		panic(err)
	}
}

func (r *Registry) Dispatch(st statex.Status) (Handler, error) {
	r.mu.RLock()
	h, ok := r.handlers[st]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %v", contractx.ErrUnboundState, st)
	}
	return h, nil
}

// Validate reports every state without a handler.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error
	for _, st := range statex.AllStatuses() {
		if _, ok := r.handlers[st]; !ok {
			errs = append(errs, fmt.Errorf("%w: %v", contractx.ErrUnboundState, st))
		}
	}
	return errors.Join(errs...)
}

// Bound reports whether st has a handler.
func (r *Registry) Bound(st statex.Status) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[st]
	return ok
}
