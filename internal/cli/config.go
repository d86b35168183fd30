package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/redis/go-redis/v9"

	"github.com/kciter/pegboard-sub000/pkg/board"
	"github.com/kciter/pegboard-sub000/pkg/engine"
	"github.com/kciter/pegboard-sub000/pkg/errors"
	"github.com/kciter/pegboard-sub000/pkg/grid"
	"github.com/kciter/pegboard-sub000/pkg/place"
	"github.com/kciter/pegboard-sub000/pkg/store"
)

// configFileName is the file looked up in the working directory and in the
// XDG config directory when --config is not given.
const configFileName = "pegboard.toml"

// Store backend names accepted in [store] backend.
const (
	StoreBackendFile  = "file"
	StoreBackendRedis = "redis"
	StoreBackendMongo = "mongo"
	StoreBackendNone  = "none"
)

// Config is the on-disk CLI configuration, decoded from pegboard.toml.
type Config struct {
	Grid   grid.Config  `toml:"grid"`
	Engine EngineConfig `toml:"engine"`
	Store  StoreConfig  `toml:"store"`
	API    APIConfig    `toml:"api"`
}

// EngineConfig selects the board behavior knobs.
type EngineConfig struct {
	AllowOverlap  bool   `toml:"allow_overlap"`
	Reflow        string `toml:"reflow"` // none, push-away, smart-fill
	SelectionMode string `toml:"selection_mode"`
	Lasso         bool   `toml:"lasso"`
	HistoryLimit  int    `toml:"history_limit"`
}

// StoreConfig selects and parameterizes the snapshot store backend.
type StoreConfig struct {
	Backend string `toml:"backend"` // file, redis, mongo, none
	Dir     string `toml:"dir"`     // file backend; defaults to the XDG data dir

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// APIConfig configures the serve command.
type APIConfig struct {
	Listen string `toml:"listen"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() Config {
	return Config{
		Grid: grid.DefaultConfig(),
		Engine: EngineConfig{
			Reflow:        string(place.PolicyPushAway),
			SelectionMode: string(board.SelectSingle),
			Lasso:         true,
		},
		Store: StoreConfig{
			Backend:         StoreBackendFile,
			RedisAddr:       "localhost:6379",
			RedisPrefix:     store.DefaultRedisPrefix,
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   store.DefaultMongoDatabase,
			MongoCollection: store.DefaultMongoCollection,
		},
		API: APIConfig{Listen: "localhost:8463"},
	}
}

// LoadConfig reads the configuration file at path. An empty path searches the
// working directory and then the XDG config directory; when neither has a
// file, the defaults are returned.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		found, ok := findConfig()
		if !ok {
			return cfg, nil
		}
		path = found
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "load config %s", path)
	}
	if err := cfg.Grid.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// findConfig locates pegboard.toml in the working directory or the XDG
// config directory.
func findConfig() (string, bool) {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, true
	}
	dir, err := configDir()
	if err != nil {
		return "", false
	}
	path := filepath.Join(dir, configFileName)
	if _, err := os.Stat(path); err == nil {
		return path, true
	}
	return "", false
}

// EngineOptions converts the configuration into engine options.
func (c Config) EngineOptions() (engine.Options, error) {
	policy := place.Policy(c.Engine.Reflow)
	if c.Engine.Reflow == "" {
		policy = place.PolicyNone
	}
	if !place.ValidPolicy(policy) {
		return engine.Options{}, errors.New(errors.ErrCodeInvalidInput, "unknown reflow policy %q", c.Engine.Reflow)
	}

	mode := board.SelectionMode(c.Engine.SelectionMode)
	switch mode {
	case "", board.SelectSingle:
		mode = board.SelectSingle
	case board.SelectMultiple:
	default:
		return engine.Options{}, errors.New(errors.ErrCodeInvalidInput, "unknown selection mode %q", c.Engine.SelectionMode)
	}

	return engine.Options{
		Grid:          c.Grid,
		AllowOverlap:  c.Engine.AllowOverlap,
		Reflow:        policy,
		SelectionMode: mode,
		Lasso:         c.Engine.Lasso,
		HistoryLimit:  c.Engine.HistoryLimit,
	}, nil
}

// RedisOptions converts the store configuration into go-redis options.
func (s StoreConfig) RedisOptions() *redis.Options {
	return &redis.Options{
		Addr:     s.RedisAddr,
		Password: s.RedisPassword,
		DB:       s.RedisDB,
	}
}
