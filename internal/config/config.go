// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON config file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/atinyakov/codemonkey/internal/session"
)

// Session persistence strategies.
const (
	PersistenceLocal  = "local"
	PersistenceCookie = "cookie"
)

// Key-value store backends.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Duration is a time.Duration that reads "800ms"-style strings from JSON.
type Duration time.Duration

// UnmarshalJSON accepts either a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(v)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid duration %s", b)
	}
	*d = Duration(n)
	return nil
}

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"address"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// Config is the path to the Config file.
	Config string `json:"-"`

	// Persistence selects how the session mirror is stored: "local" or "cookie".
	Persistence string `json:"persistence"`

	// StoreBackend selects the key-value store: "file", "redis", "postgres" or "memory".
	StoreBackend string `json:"store_backend"`

	// StoreFile is the JSON file used by the file backend.
	StoreFile string `json:"store_file"`

	// RedisAddr and RedisPrefix configure the redis backend.
	RedisAddr   string `json:"redis_addr"`
	RedisPrefix string `json:"redis_prefix"`

	// IdentitiesFile optionally points to a YAML identity fixture file.
	IdentitiesFile string `json:"identities_file"`

	// LoginDelay is the simulated verification latency.
	LoginDelay Duration `json:"login_delay"`

	// SignInPath is where the browser is sent after a cookie-mode logout.
	SignInPath string `json:"signin_path"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// KVRetention enables the postgres stale-entry cleaner when positive.
	KVRetention Duration `json:"kv_retention"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	register(flag.CommandLine, options)
}

func register(fs *flag.FlagSet, o *Options) {
	o.LoginDelay = Duration(session.DefaultLoginDelay)

	fs.StringVar(&o.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&o.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&o.Config, "config", "config.json", "path to config file")
	fs.StringVar(&o.Config, "c", "config.json", "path to config file (shorthand)")
	fs.StringVar(&o.Persistence, "p", PersistenceLocal, "session persistence: local | cookie")
	fs.StringVar(&o.StoreBackend, "s", BackendFile, "key-value store: file | redis | postgres | memory")
	fs.StringVar(&o.StoreFile, "f", "storage.json", "path to the file store")
	fs.StringVar(&o.RedisAddr, "r", "localhost:6379", "redis address")
	fs.StringVar(&o.RedisPrefix, "redis-prefix", "codemonkey:", "redis key prefix")
	fs.StringVar(&o.IdentitiesFile, "i", "", "path to identities YAML file")
	fs.Func("delay", "simulated login delay (e.g. 800ms)", func(s string) error {
		v, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		o.LoginDelay = Duration(v)
		return nil
	})
	fs.Func("retention", "drop postgres store entries older than this (0 disables)", func(s string) error {
		v, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		o.KVRetention = Duration(v)
		return nil
	})
	fs.StringVar(&o.SignInPath, "signin", "/signin", "sign-in path used after logout in cookie mode")
	fs.StringVar(&o.LogLevel, "l", "info", "log level")
	fs.StringVar(&o.TLSCert, "tls-cert", "", "TLS certificate file")
	fs.StringVar(&o.TLSKey, "tls-key", "", "TLS key file")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values. Invalid values terminate the process.
func Parse() *Options {
	flag.Parse()
	if err := finish(options); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return options
}

// ParseArgs builds Options from an explicit argument list without touching
// the global flag set.
func ParseArgs(args []string) (*Options, error) {
	o := &Options{}
	fs := flag.NewFlagSet("codemonkey", flag.ContinueOnError)
	register(fs, o)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := finish(o); err != nil {
		return nil, err
	}
	return o, nil
}

func finish(o *Options) error {
	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		o.Config = configPath
	}

	if o.Config != "" {
		if _, err := os.Stat(o.Config); err == nil {
			data, err := os.ReadFile(o.Config)
			if err != nil {
				return fmt.Errorf("error while reading config file: %w", err)
			}
			if err := json.Unmarshal(data, o); err != nil {
				return fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	envOverride(&o.Port, "SERVER_ADDRESS")
	envOverride(&o.DatabaseDSN, "DATABASE_DSN")
	envOverride(&o.Persistence, "PERSISTENCE")
	envOverride(&o.StoreBackend, "STORE_BACKEND")
	envOverride(&o.RedisAddr, "REDIS_ADDR")
	envOverride(&o.LogLevel, "LOG_LEVEL")

	return o.Validate()
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks the enumerated options.
func (o *Options) Validate() error {
	switch o.Persistence {
	case PersistenceLocal, PersistenceCookie:
	default:
		return fmt.Errorf("unknown persistence %q", o.Persistence)
	}
	switch o.StoreBackend {
	case BackendFile, BackendRedis, BackendMemory:
	case BackendPostgres:
		if o.DatabaseDSN == "" {
			return errors.New("postgres store requires a database DSN")
		}
	default:
		return fmt.Errorf("unknown store backend %q", o.StoreBackend)
	}
	if o.LoginDelay < 0 {
		return errors.New("login delay must not be negative")
	}
	if o.KVRetention < 0 {
		return errors.New("retention must not be negative")
	}
	return nil
}

// TLSEnabled reports whether both TLS files are configured.
func (o *Options) TLSEnabled() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}
