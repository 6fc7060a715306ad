package legacy

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/variant-catalog/internal/cron"
	"github.com/angelmondragon/variant-catalog/pkg/redis"
)

const lockScope = "legacy-migration"

// TenantLocks hands out the lock guarding one tenant's migration.
type TenantLocks interface {
	ForTenant(tenantID uuid.UUID) (cron.Lock, error)
}

// RedisTenantLocks keys each tenant lock as catalog:legacy-migration:<tenant>.
type RedisTenantLocks struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTenantLocks(client *redis.Client, ttl time.Duration) *RedisTenantLocks {
	return &RedisTenantLocks{client: client, ttl: ttl}
}

func (l *RedisTenantLocks) ForTenant(tenantID uuid.UUID) (cron.Lock, error) {
	return cron.NewRedisLock(l.client, l.client.LockKey(lockScope, tenantID.String()), l.ttl)
}

// LocalTenantLocks serialises tenants within one process. It is used when no
// Redis is configured.
type LocalTenantLocks struct {
	mu   sync.Mutex
	held map[uuid.UUID]struct{}
}

func NewLocalTenantLocks() *LocalTenantLocks {
	return &LocalTenantLocks{held: make(map[uuid.UUID]struct{})}
}

func (l *LocalTenantLocks) ForTenant(tenantID uuid.UUID) (cron.Lock, error) {
	return &localLock{set: l, tenantID: tenantID}, nil
}

type localLock struct {
	set      *LocalTenantLocks
	tenantID uuid.UUID
	owned    bool
}

func (l *localLock) Acquire(context.Context) (bool, error) {
	l.set.mu.Lock()
	defer l.set.mu.Unlock()
	if _, busy := l.set.held[l.tenantID]; busy {
		return false, nil
	}
	l.set.held[l.tenantID] = struct{}{}
	l.owned = true
	return true, nil
}

func (l *localLock) Release(context.Context) error {
	if !l.owned {
		return nil
	}
	l.set.mu.Lock()
	delete(l.set.held, l.tenantID)
	l.set.mu.Unlock()
	l.owned = false
	return nil
}
