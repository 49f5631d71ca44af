package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/reflow/pkg/cache"
	"github.com/matzehuels/reflow/pkg/server"
	"github.com/matzehuels/reflow/pkg/store"
)

// Backend names accepted in the server config.
const (
	backendNone   = "none"
	backendFile   = "file"
	backendRedis  = "redis"
	backendMemory = "memory"
	backendMongo  = "mongo"
)

// Environment variables that override the config file.
const (
	envAddr      = "REFLOW_ADDR"
	envRedisAddr = "REFLOW_REDIS_ADDR"
	envMongoURI  = "REFLOW_MONGO_URI"
)

// serverConfig is the `reflow serve` configuration file:
//
//	addr = ":8080"
//	max_body_bytes = 4194304
//
//	[cache]
//	backend = "redis"          # none, file, redis
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[store]
//	backend = "mongo"          # memory, file, mongo
//	[store.mongo]
//	uri = "mongodb://localhost:27017"
//	timeout = "5s"
type serverConfig struct {
	Addr         string      `toml:"addr"`
	MaxBodyBytes int64       `toml:"max_body_bytes"`
	Cache        cacheConfig `toml:"cache"`
	Store        storeConfig `toml:"store"`
}

type cacheConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	Redis   redisConfig `toml:"redis"`
}

type redisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

type storeConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	Mongo   mongoConfig `toml:"mongo"`
}

type mongoConfig struct {
	URI        string        `toml:"uri"`
	Database   string        `toml:"database"`
	Collection string        `toml:"collection"`
	Timeout    time.Duration `toml:"timeout"`
}

// defaultConfigPath returns ~/.config/reflow/config.toml (or the file under
// XDG_CONFIG_HOME) when it exists, and "" otherwise.
func defaultConfigPath() string {
	dir, err := layoutsDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(filepath.Dir(dir), "config.toml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// loadServerConfig reads path (when non-empty), applies environment
// overrides and defaults, and validates the result.
func loadServerConfig(path string) (*serverConfig, error) {
	var cfg serverConfig
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	}
	cfg.applyEnv()
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *serverConfig) applyEnv() {
	if v := os.Getenv(envAddr); v != "" {
		c.Addr = v
	}
	if v := os.Getenv(envRedisAddr); v != "" {
		c.Cache.Redis.Addr = v
		if c.Cache.Backend == "" {
			c.Cache.Backend = backendRedis
		}
	}
	if v := os.Getenv(envMongoURI); v != "" {
		c.Store.Mongo.URI = v
		if c.Store.Backend == "" {
			c.Store.Backend = backendMongo
		}
	}
}

func (c *serverConfig) setDefaults() {
	if c.Addr == "" {
		c.Addr = server.DefaultAddr
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = server.DefaultMaxBodyBytes
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = backendFile
	}
	if c.Cache.Redis.Addr == "" {
		c.Cache.Redis.Addr = "localhost:6379"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = backendMemory
	}
	if c.Store.Mongo.Database == "" {
		c.Store.Mongo.Database = store.DefaultMongoDatabase
	}
	if c.Store.Mongo.Collection == "" {
		c.Store.Mongo.Collection = store.DefaultMongoCollection
	}
	if c.Store.Mongo.Timeout <= 0 {
		c.Store.Mongo.Timeout = 10 * time.Second
	}
}

func (c *serverConfig) validate() error {
	switch c.Cache.Backend {
	case backendNone, backendFile, backendRedis:
	default:
		return fmt.Errorf("unknown cache backend %q (use none, file or redis)", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case backendMemory, backendFile:
	case backendMongo:
		if c.Store.Mongo.URI == "" {
			return fmt.Errorf("mongo store needs a uri (store.mongo.uri or %s)", envMongoURI)
		}
	default:
		return fmt.Errorf("unknown store backend %q (use memory, file or mongo)", c.Store.Backend)
	}
	return nil
}

// openCache opens the configured cache backend.
func (c *serverConfig) openCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
			Prefix:   c.Cache.Redis.Prefix,
		})
	default:
		dir := c.Cache.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return nil, fmt.Errorf("get cache dir: %w", err)
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	}
}

// openStore opens the configured document store.
func (c *serverConfig) openStore(ctx context.Context) (store.Store, error) {
	switch c.Store.Backend {
	case backendMongo:
		return store.NewMongoStore(ctx, store.MongoOptions{
			URI:        c.Store.Mongo.URI,
			Database:   c.Store.Mongo.Database,
			Collection: c.Store.Mongo.Collection,
			Timeout:    c.Store.Mongo.Timeout,
		})
	case backendFile:
		dir := c.Store.Dir
		if dir == "" {
			d, err := layoutsDir()
			if err != nil {
				return nil, fmt.Errorf("get layouts dir: %w", err)
			}
			dir = d
		}
		return store.NewFileStore(dir)
	default:
		return store.NewMemoryStore(), nil
	}
}
