package gateway

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sqlward/sqlward/pkg/logging"
)

// Defaults applied by NewPoolManager when the config leaves a field zero.
const (
	DefaultPoolMaxConns     = 10
	DefaultPoolMaxIdleConns = 2
	DefaultConnMaxIdleTime  = 5 * time.Minute
	healthCheckTimeout      = 5 * time.Second
)

// ManagerConfig holds pool sizing applied to every pool the manager creates.
type ManagerConfig struct {
	PoolMaxConns     int
	PoolMaxIdleConns int
	ConnMaxIdleTime  time.Duration
}

// PoolManager owns one pool per profile identity. It is the only component in
// the gateway permitted to hold long-lived network state. All methods are
// safe for concurrent use.
type PoolManager struct {
	mu     sync.RWMutex
	pools  map[string]*Pool
	cfg    ManagerConfig
	dial   Dialer
	logger *zap.Logger
}

// NewPoolManager creates a manager. If logger is nil, a no-op logger is used.
func NewPoolManager(cfg ManagerConfig, logger *zap.Logger) *PoolManager {
	if cfg.PoolMaxConns <= 0 {
		cfg.PoolMaxConns = DefaultPoolMaxConns
	}
	if cfg.PoolMaxIdleConns <= 0 {
		cfg.PoolMaxIdleConns = DefaultPoolMaxIdleConns
	}
	if cfg.ConnMaxIdleTime <= 0 {
		cfg.ConnMaxIdleTime = DefaultConnMaxIdleTime
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PoolManager{
		pools:  make(map[string]*Pool),
		cfg:    cfg,
		dial:   mssqlDial,
		logger: logger,
	}
}

// Acquire returns the live pool for the profile's identity, creating one if
// none exists or the existing pool reports unhealthy. Connection failure is
// surfaced immediately as a connection error; the manager never retries.
func (m *PoolManager) Acquire(ctx context.Context, profile *Profile) (*Pool, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	identity := profile.Identity()

	m.mu.RLock()
	pool, exists := m.pools[identity]
	m.mu.RUnlock()

	if exists {
		healthCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		err := pool.Ping(healthCtx)
		cancel()
		if err == nil {
			return pool, nil
		}

		m.logger.Warn("pool unhealthy, recreating",
			zap.String("identity", identity),
			zap.String("error", logging.SanitizeError(err)),
		)
		m.remove(identity, pool)
	}

	return m.create(ctx, identity, profile)
}

// create dials a new pool and registers it, replacing any stale entry. The
// check-then-create is atomic under the write lock so two concurrent callers
// for one identity never both dial.
func (m *PoolManager) create(ctx context.Context, identity string, profile *Profile) (*Pool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Another caller may have created the pool while we waited for the lock.
	if pool, exists := m.pools[identity]; exists {
		return pool, nil
	}

	db, err := m.dial(ctx, profile, m.cfg)
	if err != nil {
		m.logger.Error("pool connection failed",
			zap.String("identity", identity),
			zap.String("profile", profile.Name),
			zap.String("error", logging.SanitizeError(err)),
		)
		return nil, WrapError(KindConnection, err, "connect pool for profile %q", profile.Name)
	}

	pool := &Pool{
		identity: identity,
		profile:  *profile,
		db:       db,
	}
	m.pools[identity] = pool

	m.logger.Info("created connection pool",
		zap.String("identity", identity),
		zap.String("profile", profile.Name),
	)

	return pool, nil
}

// remove closes and drops the pool registered under identity, but only while
// the registry still holds the exact pool the caller observed unhealthy. The
// health ping runs outside the lock, so a concurrent caller may already have
// replaced the stale pool with a live one that must not be torn down.
func (m *PoolManager) remove(identity string, stale *Pool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.pools[identity]
	if !exists || current != stale {
		return
	}
	if err := current.Close(); err != nil {
		m.logger.Warn("closing stale pool failed",
			zap.String("identity", identity),
			zap.String("error", logging.SanitizeError(err)),
		)
	}
	delete(m.pools, identity)
}

// Shutdown closes every registered pool. Used only at process exit; close
// failures are logged and do not stop the remaining pools from closing.
func (m *PoolManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for identity, pool := range m.pools {
		if err := pool.Close(); err != nil {
			m.logger.Warn("pool close failed during shutdown",
				zap.String("identity", identity),
				zap.String("error", logging.SanitizeError(err)),
			)
		}
	}
	m.pools = make(map[string]*Pool)
	m.logger.Info("pool manager shut down")
}

// Stats describes the manager's current registry.
type Stats struct {
	TotalPools int      `json:"total_pools"`
	Identities []string `json:"identities"`
}

// GetStats returns a snapshot of the registry. Safe to call concurrently.
func (m *PoolManager) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{TotalPools: len(m.pools)}
	for identity := range m.pools {
		stats.Identities = append(stats.Identities, identity)
	}
	return stats
}
