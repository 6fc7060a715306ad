package legacy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/variant-catalog/internal/cron"
	"github.com/angelmondragon/variant-catalog/pkg/logger"
)

func TestSweepJobMigratesPendingTenants(t *testing.T) {
	h := newHarness(t)
	a := h.seedTenant(t)
	b := h.seedTenant(t)
	m := h.migrator(t, NewGormSource(h.client.DB()), true)

	job, err := NewJob(m, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, SweepJobName, job.Name())

	registry, err := cron.NewRegistry(job)
	require.NoError(t, err)
	require.Len(t, registry.Jobs(), 1)

	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, h.state(t, a), 2)
	assert.Len(t, h.state(t, b), 2)

	// only the unmapped rows remain pending
	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, h.state(t, a), 2)
}

func TestNewJobValidates(t *testing.T) {
	_, err := NewJob(nil, logger.Nop())
	require.Error(t, err)
}
