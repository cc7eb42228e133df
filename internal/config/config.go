package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Houeta/staff-directory/internal/lib/validate"
	"github.com/Houeta/staff-directory/internal/repository"
	"github.com/spf13/viper"
)

const envPrefix = "STAFFDIR"

// Cache stores.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Env        string           `json:"env"        yaml:"env"`        // Env is the current environment: local, development, production.
	API        APIConfig        `json:"api"        yaml:"api"`        // API holds the remote store connection settings
	Cache      CacheConfig      `json:"cache"      yaml:"cache"`      // Cache selects where the logged-in user is kept
	Redis      RedisConfig      `json:"redis"      yaml:"redis"`      // Redis is used by the redis cache store
	Postgres   PostgresConfig   `json:"postgres"   yaml:"postgres"`   // Postgres is used by the postgres cache store and the save journal
	Monitoring MonitoringConfig `json:"monitoring" yaml:"monitoring"` // Monitoring holds the metrics server settings
}

// APIConfig struct holds the configuration details for the remote employee store.
type APIConfig struct {
	BaseURL        string        `json:"url"              validate:"required,url"` // BaseURL is the store root in format `https://example.com`
	Timeout        time.Duration `json:"timeout"`                                 // Timeout bounds every request.
	LoginRetries   int           `json:"login_retries"    validate:"min=1"`        // LoginRetries is how many times a login is tried.
	LoginRetryWait time.Duration `json:"login_retry_wait"`                        // LoginRetryWait is the pause between login tries.
}

// CacheConfig struct holds the cached user settings.
type CacheConfig struct {
	Store string `json:"store" validate:"oneof=memory file redis postgres"` // Store is memory, file, redis or postgres.
	Key   string `json:"key"   validate:"required"`                         // Key is the name the user is stored under.
	Dir   string `json:"dir"`                                               // Dir is the directory of the file store.
}

// RedisConfig struct holds the configuration details for connecting to Redis.
type RedisConfig struct {
	Addr     string        `json:"addr"`
	Password string        `json:"password"`
	DB       int           `json:"db"`
	Prefix   string        `json:"prefix"`
	TTL      time.Duration `json:"ttl"`
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `json:"host"`     // Host is the database server address.
	Port     string `json:"port"`     // Port is the database server port.
	User     string `json:"user"`     // User is the database user.
	Password string `json:"password"` // Password is the database user's password.
	Dbname   string `json:"db_name"`  // Dbname is the name of the database.
	SSLMode  string `json:"ssl_mode" validate:"oneof=disable allow prefer require verify-ca verify-full"`
}

// Enabled reports whether a database host was configured.
func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

// Conn converts the settings for repository.NewDatabase.
func (p PostgresConfig) Conn() repository.Conn {
	return repository.Conn{
		Host:     p.Host,
		Port:     p.Port,
		User:     p.User,
		Password: p.Password,
		Name:     p.Dbname,
		SSLMode:  p.SSLMode,
	}
}

type MonitoringConfig struct {
	Port int `json:"port" validate:"min=1,max=65535"`
}

// MustLoad loads the configuration from the file named by CONFIG_PATH and panics on failure.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		panic("config path is empty")
	}

	cfg, err := Load(configPath)
	if err != nil {
		panic("config error: " + err.Error())
	}
	return cfg
}

// Load reads the YAML file at path, when given, and applies STAFFDIR_* environment overrides.
func Load(path string) (*Config, error) {
	vip := viper.New()
	setDefaults(vip)

	vip.SetEnvPrefix(envPrefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vip.AutomaticEnv()

	if path != "" {
		// check if file exists
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}

		vip.SetConfigFile(path)
		if err := vip.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Env: vip.GetString("env"),
		API: APIConfig{
			BaseURL:        strings.TrimRight(vip.GetString("api.url"), "/"),
			Timeout:        vip.GetDuration("api.timeout"),
			LoginRetries:   vip.GetInt("api.login_retries"),
			LoginRetryWait: vip.GetDuration("api.login_retry_wait"),
		},
		Cache: CacheConfig{
			Store: strings.ToLower(vip.GetString("cache.store")),
			Key:   vip.GetString("cache.key"),
			Dir:   vip.GetString("cache.dir"),
		},
		Redis: RedisConfig{
			Addr:     vip.GetString("redis.addr"),
			Password: vip.GetString("redis.password"),
			DB:       vip.GetInt("redis.db"),
			Prefix:   vip.GetString("redis.prefix"),
			TTL:      vip.GetDuration("redis.ttl"),
		},
		Postgres: PostgresConfig{
			Host:     vip.GetString("postgres.host"),
			Port:     vip.GetString("postgres.port"),
			User:     vip.GetString("postgres.user"),
			Password: vip.GetString("postgres.password"),
			Dbname:   vip.GetString("postgres.db_name"),
			SSLMode:  vip.GetString("postgres.ssl_mode"),
		},
		Monitoring: MonitoringConfig{
			Port: vip.GetInt("monitoring.port"),
		},
	}

	if fields := validate.Struct(cfg); fields != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, fields)
	}
	if cfg.Cache.Store == StorePostgres && !cfg.Postgres.Enabled() {
		return nil, fmt.Errorf("%w: postgres cache store needs postgres.host", ErrInvalidConfig)
	}
	if cfg.Cache.Store == StoreRedis && cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("%w: redis cache store needs redis.addr", ErrInvalidConfig)
	}

	return cfg, nil
}

func setDefaults(vip *viper.Viper) {
	defTimeout := 15
	defRetryWait := 2
	defMonitoringPort := 8080

	vip.SetDefault("env", "local")
	vip.SetDefault("api.url", "")
	vip.SetDefault("api.timeout", time.Duration(defTimeout)*time.Second)
	vip.SetDefault("api.login_retries", 3)
	vip.SetDefault("api.login_retry_wait", time.Duration(defRetryWait)*time.Second)
	vip.SetDefault("cache.store", StoreFile)
	vip.SetDefault("cache.key", "user")
	vip.SetDefault("cache.dir", defaultCacheDir())
	vip.SetDefault("redis.addr", "")
	vip.SetDefault("redis.password", "")
	vip.SetDefault("redis.db", 0)
	vip.SetDefault("redis.prefix", "staffdir:")
	vip.SetDefault("redis.ttl", 12*time.Hour)
	vip.SetDefault("postgres.host", "")
	vip.SetDefault("postgres.port", "5432")
	vip.SetDefault("postgres.user", "")
	vip.SetDefault("postgres.password", "")
	vip.SetDefault("postgres.db_name", "")
	vip.SetDefault("postgres.ssl_mode", "disable")
	vip.SetDefault("monitoring.port", defMonitoringPort)
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(dir, "staffdir")
}
