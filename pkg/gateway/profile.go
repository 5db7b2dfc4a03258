// Package gateway implements the read-only SQL Server gateway: profile-keyed
// connection pooling, guarded query execution, and catalog-backed table
// description assembly.
package gateway

import (
	"fmt"
	"net/url"
)

// Auth modes supported by a profile.
const (
	AuthIntegrated   = "integrated"
	AuthCredentialed = "credentialed"
)

// DefaultPort is the default SQL Server port.
const DefaultPort = 1433

// Profile describes one named environment (local, staging, production, ...).
// Profiles are constructed once by configuration loading and treated as
// immutable afterwards.
type Profile struct {
	Name     string
	Host     string
	Port     int
	Database string

	// AuthMode is "integrated" (OS/domain credentials) or "credentialed"
	// (SQL authentication with username/password).
	AuthMode string
	Username string
	Password string

	Encrypt                bool
	TrustServerCertificate bool

	// ReadOnlyIntent asks the server to route the session to a read-only
	// replica where one is available (ApplicationIntent=ReadOnly).
	ReadOnlyIntent bool

	// ConnectTimeoutSeconds bounds the initial dial. Zero means driver
	// default.
	ConnectTimeoutSeconds int
}

// Validate checks the fields needed before any connection attempt.
func (p *Profile) Validate() error {
	if p.Host == "" {
		return NewError(KindConnection, "profile %q: host is required", p.Name)
	}
	if p.Database == "" {
		return NewError(KindConnection, "profile %q: database is required", p.Name)
	}
	if p.Port < 0 || p.Port > 65535 {
		return NewError(KindConnection, "profile %q: invalid port %d", p.Name, p.Port)
	}
	switch p.AuthMode {
	case AuthIntegrated:
		// Credentials come from the process environment; nothing to check.
	case AuthCredentialed:
		if p.Username == "" {
			return NewError(KindConnection, "profile %q: username is required for credentialed auth", p.Name)
		}
		if p.Password == "" {
			return NewError(KindConnection, "profile %q: password is required for credentialed auth", p.Name)
		}
	default:
		return NewError(KindConnection, "profile %q: invalid auth mode %q (must be %s or %s)",
			p.Name, p.AuthMode, AuthIntegrated, AuthCredentialed)
	}
	return nil
}

// Identity returns the pooling identity tuple: (host, port, database,
// username-or-"integrated"). Two profiles with the same identity share one
// pool; the profile name and password are deliberately excluded.
func (p *Profile) Identity() string {
	user := p.Username
	if p.AuthMode == AuthIntegrated {
		user = AuthIntegrated
	}
	return fmt.Sprintf("%s:%d/%s/%s", p.Host, p.port(), p.Database, user)
}

func (p *Profile) port() int {
	if p.Port == 0 {
		return DefaultPort
	}
	return p.Port
}

// connString builds a sqlserver:// URL for the go-mssqldb driver.
func (p *Profile) connString() string {
	query := url.Values{}
	query.Add("database", p.Database)

	if p.Encrypt {
		query.Add("encrypt", "true")
	} else {
		query.Add("encrypt", "false")
	}
	if p.TrustServerCertificate {
		query.Add("TrustServerCertificate", "true")
	}
	if p.ReadOnlyIntent {
		query.Add("ApplicationIntent", "ReadOnly")
	}
	if p.ConnectTimeoutSeconds > 0 {
		query.Add("connection timeout", fmt.Sprintf("%d", p.ConnectTimeoutSeconds))
	}

	if p.AuthMode == AuthCredentialed {
		return fmt.Sprintf("sqlserver://%s:%s@%s:%d?%s",
			url.QueryEscape(p.Username),
			url.QueryEscape(p.Password),
			p.Host,
			p.port(),
			query.Encode(),
		)
	}

	// Integrated auth: no credentials in the URL, the driver picks up the
	// ambient OS identity.
	return fmt.Sprintf("sqlserver://%s:%d?%s", p.Host, p.port(), query.Encode())
}
