package transform

import (
	"fmt"
	"sync"

	apperrors "catpost/internal/errors"
)

// Registry manages registered contracts
type Registry struct {
	mu        sync.RWMutex
	contracts map[string]Contract
	order     []string // Maintains registration order
}

// NewRegistry creates an empty contract registry
func NewRegistry() *Registry {
	return &Registry{
		contracts: make(map[string]Contract),
		order:     make([]string, 0),
	}
}

// Register adds a contract to the registry
func (r *Registry) Register(c Contract) error {
	if err := c.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contracts[c.Name]; exists {
		return apperrors.NewValidationError(fmt.Sprintf("contract %s already registered", c.Name))
	}

	r.contracts[c.Name] = c
	r.order = append(r.order, c.Name)
	return nil
}

// Get retrieves a contract by name
func (r *Registry) Get(name string) (Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.contracts[name]
	if !exists {
		return Contract{}, apperrors.NewNotFoundError(fmt.Sprintf("transform %s", name))
	}
	return c, nil
}

// Has checks if a contract is registered
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.contracts[name]
	return exists
}

// List returns all registered contracts in registration order
func (r *Registry) List() []Contract {
	r.mu.RLock()
	defer r.mu.RUnlock()

	contracts := make([]Contract, 0, len(r.order))
	for _, name := range r.order {
		contracts = append(contracts, r.contracts[name])
	}
	return contracts
}

// Names returns all registered contract names in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Count returns the number of registered contracts
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.contracts)
}
