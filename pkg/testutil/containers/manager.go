//go:build integration

// Package containers starts the backing services integration tests run
// against. Containers are started once per test binary and shared; Ryuk
// removes them when the process exits.
package containers

import (
	"context"
	"sync"
	"testing"
	"time"
)

const startTimeout = 3 * time.Minute

// Manager lazily starts each container the first time a suite asks for it.
type Manager struct {
	pgOnce sync.Once
	pg     *PostgresContainer
	pgErr  error

	redisOnce sync.Once
	redis     *RedisContainer
	redisErr  error

	rpOnce sync.Once
	rp     *RedpandaContainer
	rpErr  error
}

var (
	manager     *Manager
	managerOnce sync.Once
)

// GetManager returns the process-wide manager.
func GetManager() *Manager {
	managerOnce.Do(func() { manager = &Manager{} })
	return manager
}

func (m *Manager) Postgres(t *testing.T) *PostgresContainer {
	t.Helper()
	m.pgOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()
		m.pg, m.pgErr = startPostgres(ctx)
	})
	if m.pgErr != nil {
		t.Fatalf("start postgres container: %v", m.pgErr)
	}
	return m.pg
}

func (m *Manager) Redis(t *testing.T) *RedisContainer {
	t.Helper()
	m.redisOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()
		m.redis, m.redisErr = startRedis(ctx)
	})
	if m.redisErr != nil {
		t.Fatalf("start redis container: %v", m.redisErr)
	}
	return m.redis
}

func (m *Manager) Redpanda(t *testing.T) *RedpandaContainer {
	t.Helper()
	m.rpOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()
		m.rp, m.rpErr = startRedpanda(ctx)
	})
	if m.rpErr != nil {
		t.Fatalf("start redpanda container: %v", m.rpErr)
	}
	return m.rp
}
