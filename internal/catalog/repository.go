package catalog

import (
	"context"
	"sync"
)

// Repository loads the catalog from storage.
type Repository interface {
	ListServices(ctx context.Context) ([]Service, error)
	ListSpecialists(ctx context.Context) ([]Specialist, error)
}

// InMemoryRepository serves a fixed catalog.
type InMemoryRepository struct {
	mu          sync.RWMutex
	services    []Service
	specialists []Specialist
}

// NewInMemoryRepository returns a repository seeded with the clinic defaults.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		services:    DefaultServices(),
		specialists: DefaultSpecialists(),
	}
}

// ListServices returns a copy of the stored services.
func (r *InMemoryRepository) ListServices(ctx context.Context) ([]Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Service(nil), r.services...), nil
}

// ListSpecialists returns a copy of the stored specialists.
func (r *InMemoryRepository) ListSpecialists(ctx context.Context) ([]Specialist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Specialist(nil), r.specialists...), nil
}

// Replace swaps the stored catalog.
func (r *InMemoryRepository) Replace(services []Service, specialists []Specialist) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services = append([]Service(nil), services...)
	r.specialists = append([]Specialist(nil), specialists...)
}
