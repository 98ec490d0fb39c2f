package providerRepo

import (
	"context"
	"errors"

	"solvit/models"
)

var (
	// ErrProviderNotFound is returned when no provider has the requested id.
	ErrProviderNotFound = errors.New("provider not found")
	// ErrVersionConflict is returned by UpdateIfVersion when the stored
	// schedule changed since the provider was read.
	ErrVersionConflict = errors.New("schedule version conflict")
	// ErrProviderExists is returned by Create for a duplicate id.
	ErrProviderExists = errors.New("provider already exists")
)

// ProviderRepository is the document store holding provider records.
// Every write is a full rewrite of the provider document.
type ProviderRepository interface {
	// GetByID retrieves a provider by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Provider, error)
	// Create inserts a new provider record.
	Create(ctx context.Context, provider *models.Provider) error
	// UpdateIfVersion rewrites the document only while its stored schedule
	// version still equals expected, then sets provider.ScheduleVersion to
	// expected+1. It is the only way a schedule is written, so no two stored
	// documents ever share a version.
	UpdateIfVersion(ctx context.Context, provider *models.Provider, expected int) error
	// Delete removes a provider record by its ID.
	Delete(ctx context.Context, id string) error
	// ListIDs returns the ids of every provider.
	ListIDs(ctx context.Context) ([]string, error)
	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
}
