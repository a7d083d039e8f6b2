// Package pluginhost implements the plugin orchestration of spec.md §4.11:
// registration of schema entries, commands, keymaps and services;
// an ordered middleware chain run on every dispatched transaction; and
// synchronous onStateChange observers, with the re-entrancy guard of
// spec.md §5.
package pluginhost

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"k8s.io/klog/v2"

	"github.com/Samyssmile/notectl/pkg/editorstate"
	"github.com/Samyssmile/notectl/pkg/transaction"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

// Dispatcher is the surface a plugin needs to read the current state and
// submit follow-up transactions (e.g. from an async task's completion
// callback) without depending on the concrete Host, mirroring the
// registry.Interface / consumer split.
//
//counterfeiter:generate . Dispatcher
type Dispatcher interface {
	// State returns the current editor state.
	State() *editorstate.State
	// Dispatch runs tx through the middleware chain and applies it.
	Dispatch(tx *transaction.Transaction) error
}

var _ Dispatcher = (*Host)(nil)

// Next advances a middleware chain. Calling it applies the transaction (or
// hands it to the next middleware); not calling it vetoes the transaction.
type Next func(tx *transaction.Transaction) error

// Middleware observes or transforms a transaction before it reaches the
// terminal apply handler. Middleware may mutate tx before calling next,
// decline to call next to veto the transaction, or act after next returns
// (e.g. to emit a follow-up dispatch).
type Middleware func(tx *transaction.Transaction, st *editorstate.State, next Next) error

// Observer receives onStateChange notifications after a transaction has
// been applied and installed.
type Observer func(oldState, newState *editorstate.State, tx *transaction.Transaction)

// ServiceKey is a typed handle for the service registry. Two keys with the
// same name but different T are distinct entries; Register/Lookup for a
// ServiceKey[T] can only ever produce a T, so callers never type-assert.
type ServiceKey[T any] struct {
	name string
}

// NewServiceKey builds a ServiceKey identified by name together with T:
// two keys built from the same name and type collide in the registry, matching the teacher's Processor()-string convention used to
// name registered node plugins.
func NewServiceKey[T any](name string) ServiceKey[T] {
	return ServiceKey[T]{name: name}
}

func (k ServiceKey[T]) String() string {
	return fmt.Sprintf("%s:%T", k.name, *new(T))
}

type middlewareEntry struct {
	name string
	fn   Middleware
}

// Host is the mutable plugin orchestrator wrapping an immutable
// editorstate.State. It is not safe for concurrent use by multiple
// goroutines: spec.md §5 reserves all concurrency to launching observers,
// never to the apply path itself.
type Host struct {
	state    *editorstate.State
	chain    []middlewareEntry
	observers []Observer
	services map[string]any

	applying bool
	pending  []*transaction.Transaction
}

// New wraps the initial state in a Host with no middleware, observers or
// services registered.
func New(initial *editorstate.State) *Host {
	return &Host{
		state:    initial,
		services: make(map[string]any),
	}
}

// State returns the host's current editor state.
func (h *Host) State() *editorstate.State {
	return h.state
}

// Use registers middleware under name, appended to the end of the chain.
// Middleware runs in registration order on every subsequent Dispatch.
func (h *Host) Use(name string, mw Middleware) {
	h.chain = append(h.chain, middlewareEntry{name: name, fn: mw})
}

// Observe registers an onStateChange observer, notified synchronously in
// registration order after a transaction is installed.
func (h *Host) Observe(obs Observer) {
	h.observers = append(h.observers, obs)
}

// RegisterService stores svc under key, overwriting any previous value
// registered under the same key.
func RegisterService[T any](h *Host, key ServiceKey[T], svc T) {
	h.services[key.String()] = svc
}

// Lookup returns the service registered under key, or the zero value of T
// and false if nothing is registered there.
func Lookup[T any](h *Host, key ServiceKey[T]) (T, bool) {
	v, ok := h.services[key.String()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), ok
}

// Dispatch runs tx through the middleware chain and, if no middleware
// vetoes it, applies it to the host's state and notifies observers in
// registration order (spec.md §5 steps 1-4).
//
// If Dispatch is already running (an observer re-entered synchronously,
// e.g. by calling Dispatch from inside onStateChange), tx is buffered and
// drained in order after the outermost Dispatch call's own observers have
// run, per spec.md §5's "simple boolean applying flag" re-entrancy guard.
func (h *Host) Dispatch(tx *transaction.Transaction) error {
	if h.applying {
		klog.V(4).Infof("pluginhost: buffering re-entrant dispatch from origin %q", tx.Origin)
		h.pending = append(h.pending, tx)
		return nil
	}
	h.applying = true
	defer func() { h.applying = false }()

	if err := h.dispatchOne(tx); err != nil {
		h.pending = nil
		return err
	}
	for len(h.pending) > 0 {
		next := h.pending[0]
		h.pending = h.pending[1:]
		if err := h.dispatchOne(next); err != nil {
			h.pending = nil
			return err
		}
	}
	return nil
}

func (h *Host) dispatchOne(tx *transaction.Transaction) error {
	oldState := h.state
	chain := h.buildChain(tx, oldState)
	if err := chain(tx); err != nil {
		klog.Errorf("pluginhost: dispatch from origin %q failed: %v", tx.Origin, err)
		return err
	}
	newState := h.state
	for _, obs := range h.observers {
		notifyObserver(obs, oldState, newState, tx)
	}
	return nil
}

// notifyObserver runs a single observer, recovering from a panic so one
// misbehaving observer cannot stop the rest from being notified or
// propagate out of Dispatch (spec.md §5: "observers must not be able to
// corrupt state").
func notifyObserver(obs Observer, oldState, newState *editorstate.State, tx *transaction.Transaction) {
	defer func() {
		if r := recover(); r != nil {
			klog.Errorf("pluginhost: observer panicked for origin %q: %v", tx.Origin, r)
		}
	}()
	obs(oldState, newState, tx)
}

// buildChain composes h.chain into a single Next that runs each
// middleware in registration order, terminating in the apply handler that
// installs the resulting state on h.
func (h *Host) buildChain(tx *transaction.Transaction, st *editorstate.State) Next {
	terminal := Next(func(tx *transaction.Transaction) error {
		next, err := st.Apply(tx)
		if err != nil {
			return err
		}
		h.state = next
		return nil
	})

	next := terminal
	for i := len(h.chain) - 1; i >= 0; i-- {
		entry := h.chain[i]
		inner := next
		next = func(tx *transaction.Transaction) error {
			klog.V(6).Infof("pluginhost: running middleware %q", entry.name)
			if err := entry.fn(tx, st, inner); err != nil {
				return fmt.Errorf("middleware %q: %w", entry.name, err)
			}
			return nil
		}
	}
	return next
}

// ValidationMiddleware runs each of fns in order against tx before calling
// next, aggregating every failure into a single multierror instead of
// stopping at the first one, the way jobs.Job.Dispatch and reactor.Build
// accumulate per-task errors rather than failing fast. If any fn reports
// an error the chain is vetoed (next is never called).
func ValidationMiddleware(name string, fns ...func(tx *transaction.Transaction, st *editorstate.State) error) Middleware {
	return func(tx *transaction.Transaction, st *editorstate.State, next Next) error {
		var errs *multierror.Error
		for _, fn := range fns {
			if err := fn(tx, st); err != nil {
				errs = multierror.Append(errs, err)
			}
		}
		if err := errs.ErrorOrNil(); err != nil {
			return fmt.Errorf("validation %q: %w", name, err)
		}
		return next(tx)
	}
}
