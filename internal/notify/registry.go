package notify

import (
	"errors"
	"fmt"
	"sort"

	"ManuscriptTracker/internal/ports"
)

// ErrUnknownChannel is returned when a configured channel was never registered.
var ErrUnknownChannel = errors.New("notification channel is not registered")

// Registry keeps a mapping from channel names to their notifiers.
type Registry struct {
	notifiers map[string]ports.Notifier
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{notifiers: map[string]ports.Notifier{}}
}

// Register adds or replaces a notifier under its own name.
func (r *Registry) Register(n ports.Notifier) {
	if n == nil {
		return
	}
	if r.notifiers == nil {
		r.notifiers = map[string]ports.Notifier{}
	}
	r.notifiers[n.Name()] = n
}

// Resolve returns a notifier by name.
func (r *Registry) Resolve(name string) (ports.Notifier, error) {
	if n, ok := r.notifiers[name]; ok {
		return n, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, name)
}

// ResolveAll resolves every name in order, skipping duplicates. Unknown names
// are collected into the returned error while known ones are still returned.
func (r *Registry) ResolveAll(names []string) ([]ports.Notifier, error) {
	var (
		out  []ports.Notifier
		errs []error
		seen = map[string]bool{}
	)
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		n, err := r.Resolve(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, n)
	}
	return out, errors.Join(errs...)
}

// Names lists the registered channels alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.notifiers))
	for name := range r.notifiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
