// Package lenders provides the ordered lender archetype registry.
package lenders

import (
	"fmt"

	"github.com/r3troseer/SME-loan-transact/internal/models"
)

// Registry is an immutable, ordered set of lender archetypes keyed by name.
// Iteration order is the order lenders were supplied in and decides best-match ties.
type Registry struct {
	lenders []*models.Lender
	byName  map[string]*models.Lender
}

// NewRegistry validates the lenders and builds a registry preserving their order.
func NewRegistry(lenders ...models.Lender) (*Registry, error) {
	if len(lenders) == 0 {
		return nil, models.ErrEmptyRegistry
	}

	r := &Registry{
		lenders: make([]*models.Lender, 0, len(lenders)),
		byName:  make(map[string]*models.Lender, len(lenders)),
	}

	for i := range lenders {
		lender := lenders[i]
		if err := models.ValidateLender(&lender); err != nil {
			return nil, fmt.Errorf("lender %d (%q): %w", i, lender.Name, err)
		}
		if _, exists := r.byName[lender.Name]; exists {
			return nil, fmt.Errorf("%w: %s", models.ErrDuplicateLender, lender.Name)
		}
		r.lenders = append(r.lenders, &lender)
		r.byName[lender.Name] = &lender
	}

	return r, nil
}

// Lookup returns the lender with the given name.
func (r *Registry) Lookup(name string) (*models.Lender, bool) {
	lender, ok := r.byName[name]
	return lender, ok
}

// All returns the lenders in registry order.
func (r *Registry) All() []*models.Lender {
	return append([]*models.Lender(nil), r.lenders...)
}

// Names returns the lender names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.lenders))
	for i, lender := range r.lenders {
		names[i] = lender.Name
	}
	return names
}

// Len returns the number of lenders.
func (r *Registry) Len() int {
	return len(r.lenders)
}
