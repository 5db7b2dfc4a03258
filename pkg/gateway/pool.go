package gateway

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver
)

// DBConn is the subset of *sql.DB the gateway needs from a live pool. It
// exists so pool lifecycle logic can be exercised without a server.
type DBConn interface {
	PingContext(ctx context.Context) error
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Conn(ctx context.Context) (*sql.Conn, error)
	Close() error
}

// Pool is a live connection pool bound to exactly one profile identity.
type Pool struct {
	identity string
	profile  Profile
	db       DBConn
}

// Identity returns the profile identity this pool is registered under.
func (p *Pool) Identity() string {
	return p.identity
}

// Profile returns a copy of the profile the pool was dialed with.
func (p *Pool) Profile() Profile {
	return p.profile
}

// Ping verifies the pool can still reach the server.
func (p *Pool) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Conn pins a single connection for session-scoped statements.
func (p *Pool) Conn(ctx context.Context) (*sql.Conn, error) {
	return p.db.Conn(ctx)
}

// Close tears down every connection held by the pool.
func (p *Pool) Close() error {
	return p.db.Close()
}

// Dialer opens a connection pool for a validated profile. The default dialer
// uses the go-mssqldb driver; tests substitute a stub.
type Dialer func(ctx context.Context, profile *Profile, cfg ManagerConfig) (DBConn, error)

// mssqlDial opens and verifies a SQL Server pool. Connection failure is
// returned immediately; retry policy belongs to the caller.
func mssqlDial(ctx context.Context, profile *Profile, cfg ManagerConfig) (DBConn, error) {
	db, err := sql.Open("sqlserver", profile.connString())
	if err != nil {
		return nil, fmt.Errorf("open sqlserver pool: %w", err)
	}

	db.SetMaxOpenConns(cfg.PoolMaxConns)
	db.SetMaxIdleConns(cfg.PoolMaxIdleConns)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx := ctx
	if profile.ConnectTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, time.Duration(profile.ConnectTimeoutSeconds)*time.Second)
		defer cancel()
	}

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to %s:%d/%s: %w", profile.Host, profile.port(), profile.Database, err)
	}

	return db, nil
}
