// Package config loads the pagegrid service configuration from TOML.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	pgerrors "github.com/tmarchal/pagegrid/pkg/errors"
	"github.com/tmarchal/pagegrid/pkg/registry"
)

// Duration wraps time.Duration for TOML decoding ("12h", "30m", "0s").
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Config is the full service configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Users  []User       `toml:"users"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Listen     string   `toml:"listen"`
	SessionTTL Duration `toml:"session_ttl"`
}

// StoreConfig selects and configures the record backend.
type StoreConfig struct {
	Backend string           `toml:"backend"`
	File    FileStoreConfig  `toml:"file"`
	Redis   RedisStoreConfig `toml:"redis"`
	Mongo   MongoStoreConfig `toml:"mongo"`
}

// FileStoreConfig configures the on-disk backend.
type FileStoreConfig struct {
	Dir string `toml:"dir"`
}

// RedisStoreConfig configures the Redis backend.
type RedisStoreConfig struct {
	Addr     string   `toml:"addr"`
	Password string   `toml:"password"`
	DB       int      `toml:"db"`
	TTL      Duration `toml:"ttl"`
}

// MongoStoreConfig configures the MongoDB backend.
type MongoStoreConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// User is one account the service will authenticate.
type User struct {
	Username    string                `toml:"username"`
	Password    string                `toml:"password"`
	Admin       bool                  `toml:"admin"`
	Permissions map[string]Permission `toml:"permissions"`
}

// Permission is a per-module grant.
type Permission struct {
	View bool `toml:"view"`
	Edit bool `toml:"edit"`
}

// Grants converts the user's configured permissions into registry grants.
func (u User) Grants() registry.Grants {
	modules := make(map[string]registry.Permission, len(u.Permissions))
	for module, p := range u.Permissions {
		modules[module] = registry.Permission{CanView: p.View, CanEdit: p.Edit}
	}
	return registry.Grants{Admin: u.Admin, Modules: modules}
}

// Backends accepted in [store].backend.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Default returns the configuration used when no file is given: an
// in-memory store on the default port with no accounts.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:     ":8080",
			SessionTTL: Duration{12 * time.Hour},
		},
		Store: StoreConfig{Backend: BackendMemory},
	}
}

// Load reads and validates a TOML configuration file. Fields absent from
// the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pgerrors.Wrap(pgerrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, pgerrors.Wrap(pgerrors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for contradictions a typo could cause.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendMongo:
	default:
		return pgerrors.New(pgerrors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == BackendRedis && c.Store.Redis.Addr == "" {
		return pgerrors.New(pgerrors.ErrCodeInvalidConfig, "redis backend requires store.redis.addr")
	}
	if c.Store.Backend == BackendMongo && c.Store.Mongo.URI == "" {
		return pgerrors.New(pgerrors.ErrCodeInvalidConfig, "mongo backend requires store.mongo.uri")
	}
	if c.Server.Listen == "" {
		return pgerrors.New(pgerrors.ErrCodeInvalidConfig, "server.listen must not be empty")
	}
	if c.Server.SessionTTL.Duration <= 0 {
		return pgerrors.New(pgerrors.ErrCodeInvalidConfig, "server.session_ttl must be positive")
	}

	seen := make(map[string]struct{}, len(c.Users))
	for _, u := range c.Users {
		if u.Username == "" {
			return pgerrors.New(pgerrors.ErrCodeInvalidConfig, "user with empty username")
		}
		if _, dup := seen[u.Username]; dup {
			return pgerrors.New(pgerrors.ErrCodeInvalidConfig, "duplicate user %q", u.Username)
		}
		seen[u.Username] = struct{}{}
	}
	return nil
}

// FindUser returns the configured user with the given username, or nil.
func (c *Config) FindUser(username string) *User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}
