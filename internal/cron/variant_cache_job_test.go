package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/angelmondragon/variant-catalog/pkg/logger"
)

type fakeVariantCaches struct {
	tenants    []uuid.UUID
	tenantsErr error
	failStock  map[uuid.UUID]bool
	refreshed  []uuid.UUID
	rebuilt    []uuid.UUID
}

func (f *fakeVariantCaches) Tenants(context.Context) ([]uuid.UUID, error) {
	return f.tenants, f.tenantsErr
}

func (f *fakeVariantCaches) RefreshStockCache(_ context.Context, tenantID uuid.UUID) (int64, error) {
	if f.failStock[tenantID] {
		return 0, errors.New("boom")
	}
	f.refreshed = append(f.refreshed, tenantID)
	return 3, nil
}

func (f *fakeVariantCaches) RebuildSnapshots(_ context.Context, tenantID uuid.UUID) (int, error) {
	f.rebuilt = append(f.rebuilt, tenantID)
	return 2, nil
}

func TestVariantCacheJobReconcilesEveryTenant(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	fake := &fakeVariantCaches{tenants: []uuid.UUID{a, b, c}, failStock: map[uuid.UUID]bool{b: true}}
	job, err := NewVariantCacheJob(VariantCacheJobParams{Logger: logger.Nop(), Variants: fake})
	require.NoError(t, err)
	assert.Equal(t, VariantCacheJobName, job.Name())

	err = job.Run(context.Background())
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 1)
	assert.Contains(t, err.Error(), b.String())
	assert.Equal(t, []uuid.UUID{a, c}, fake.refreshed)
	assert.Equal(t, []uuid.UUID{a, c}, fake.rebuilt)
}

func TestVariantCacheJobTenantListFailure(t *testing.T) {
	fake := &fakeVariantCaches{tenantsErr: errors.New("db down")}
	job, err := NewVariantCacheJob(VariantCacheJobParams{Logger: logger.Nop(), Variants: fake})
	require.NoError(t, err)
	require.Error(t, job.Run(context.Background()))
	assert.Empty(t, fake.refreshed)
}

func TestNewVariantCacheJobValidates(t *testing.T) {
	_, err := NewVariantCacheJob(VariantCacheJobParams{Variants: &fakeVariantCaches{}})
	require.Error(t, err)
	_, err = NewVariantCacheJob(VariantCacheJobParams{Logger: logger.Nop()})
	require.Error(t, err)
}
