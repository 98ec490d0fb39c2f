package providerRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"solvit/models"
)

// MemoryProviderRepo keeps providers in process memory. It backs local
// development (STORE_BACKEND=memory) and tests.
type MemoryProviderRepo struct {
	mu        sync.RWMutex
	providers map[string]*models.Provider
}

func NewMemoryProviderRepo() *MemoryProviderRepo {
	return &MemoryProviderRepo{providers: map[string]*models.Provider{}}
}

func (r *MemoryProviderRepo) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("provider with id %s: %w", id, ErrProviderNotFound)
	}
	return p.Clone(), nil
}

func (r *MemoryProviderRepo) Create(ctx context.Context, provider *models.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[provider.ID]; ok {
		return fmt.Errorf("provider with id %s: %w", provider.ID, ErrProviderExists)
	}
	r.providers[provider.ID] = provider.Clone()
	return nil
}

func (r *MemoryProviderRepo) UpdateIfVersion(ctx context.Context, provider *models.Provider, expected int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.providers[provider.ID]
	if !ok {
		return fmt.Errorf("provider with id %s: %w", provider.ID, ErrProviderNotFound)
	}
	if stored.ScheduleVersion != expected {
		return fmt.Errorf("provider with id %s at version %d: %w", provider.ID, expected, ErrVersionConflict)
	}
	provider.ScheduleVersion = expected + 1
	r.providers[provider.ID] = provider.Clone()
	return nil
}

func (r *MemoryProviderRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[id]; !ok {
		return fmt.Errorf("provider with id %s: %w", id, ErrProviderNotFound)
	}
	delete(r.providers, id)
	return nil
}

func (r *MemoryProviderRepo) ListIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *MemoryProviderRepo) Ping(ctx context.Context) error { return nil }
