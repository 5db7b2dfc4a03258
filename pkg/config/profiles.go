package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sqlward/sqlward/pkg/gateway"
)

// ProfileEntry is one environment profile as declared in the profiles file.
// Passwords are never stored in YAML: PasswordEnv names the environment
// variable holding the password, defaulting to SQLWARD_<NAME>_PASSWORD.
type ProfileEntry struct {
	Name     string `yaml:"name"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`

	AuthMode    string `yaml:"auth_mode"`
	Username    string `yaml:"username"`
	PasswordEnv string `yaml:"password_env"`

	Encrypt                *bool `yaml:"encrypt"`
	TrustServerCertificate bool  `yaml:"trust_server_certificate"`
	ReadOnlyIntent         bool  `yaml:"read_only_intent"`
	ConnectTimeoutSeconds  int   `yaml:"connect_timeout_seconds"`
}

type profilesFile struct {
	Profiles []ProfileEntry `yaml:"profiles"`
}

// LoadProfiles reads the profiles file and returns validated gateway
// profiles keyed by name.
func LoadProfiles(path string) (map[string]*gateway.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles file %s: %w", path, err)
	}

	var file profilesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse profiles file %s: %w", path, err)
	}
	if len(file.Profiles) == 0 {
		return nil, fmt.Errorf("profiles file %s declares no profiles", path)
	}

	profiles := make(map[string]*gateway.Profile, len(file.Profiles))
	for _, entry := range file.Profiles {
		if entry.Name == "" {
			return nil, fmt.Errorf("profiles file %s: every profile needs a name", path)
		}
		if _, exists := profiles[entry.Name]; exists {
			return nil, fmt.Errorf("duplicate profile name %q", entry.Name)
		}

		profile, err := entry.toProfile()
		if err != nil {
			return nil, err
		}
		profiles[entry.Name] = profile
	}

	return profiles, nil
}

func (e ProfileEntry) toProfile() (*gateway.Profile, error) {
	profile := &gateway.Profile{
		Name:                   e.Name,
		Host:                   e.Host,
		Port:                   e.Port,
		Database:               e.Database,
		AuthMode:               e.AuthMode,
		Username:               e.Username,
		Encrypt:                true,
		TrustServerCertificate: e.TrustServerCertificate,
		ReadOnlyIntent:         e.ReadOnlyIntent,
		ConnectTimeoutSeconds:  e.ConnectTimeoutSeconds,
	}
	if e.Encrypt != nil {
		profile.Encrypt = *e.Encrypt
	}
	if profile.AuthMode == "" {
		profile.AuthMode = gateway.AuthIntegrated
	}

	if profile.AuthMode == gateway.AuthCredentialed {
		envName := e.PasswordEnv
		if envName == "" {
			envName = defaultPasswordEnv(e.Name)
		}
		password := os.Getenv(envName)
		if password == "" {
			return nil, fmt.Errorf("profile %q: password environment variable %s is not set", e.Name, envName)
		}
		profile.Password = password
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

// defaultPasswordEnv derives the conventional password variable name for a
// profile: SQLWARD_<NAME>_PASSWORD with the name upper-cased and dashes
// folded to underscores.
func defaultPasswordEnv(name string) string {
	normalized := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	return fmt.Sprintf("SQLWARD_%s_PASSWORD", normalized)
}
