package pipeline

import (
	"context"
	stderrors "errors"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/strata/pkg/cache"
	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/layout"
	"github.com/matzehuels/strata/pkg/snapshot"
)

// Backend names.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"

	StoreFile  = "file"
	StoreMongo = "mongo"
)

// DefaultSnapshotDir is the file store directory used when none is set.
const DefaultSnapshotDir = ".strata/snapshots"

// FileConfig mirrors the TOML configuration file:
//
//	[layout]
//	cycle_strategy = "hybrid"
//	direction = "LR"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "24h"
//
//	[snapshot]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
type FileConfig struct {
	Layout   layout.Config  `json:"layout" toml:"layout"`
	Cache    CacheConfig    `json:"cache" toml:"cache"`
	Snapshot SnapshotConfig `json:"snapshot" toml:"snapshot"`
}

// CacheConfig selects the layout cache backend.
type CacheConfig struct {
	Backend  string `json:"backend" toml:"backend" validate:"oneof=file redis none"`
	Dir      string `json:"dir" toml:"dir"`
	RedisURL string `json:"redis_url" toml:"redis_url" validate:"required_if=Backend redis"`
	TTL      string `json:"ttl" toml:"ttl"`
}

// SnapshotConfig selects the snapshot store backend.
type SnapshotConfig struct {
	Backend  string `json:"backend" toml:"backend" validate:"oneof=file mongo"`
	Dir      string `json:"dir" toml:"dir"`
	MongoURI string `json:"mongo_uri" toml:"mongo_uri" validate:"required_if=Backend mongo"`
	Database string `json:"database" toml:"database"`
}

// DefaultFileConfig returns the configuration used without a config file.
func DefaultFileConfig() FileConfig {
	return FileConfig{
		Layout:   layout.DefaultConfig(),
		Cache:    CacheConfig{Backend: CacheFile},
		Snapshot: SnapshotConfig{Backend: StoreFile, Dir: DefaultSnapshotDir},
	}
}

// LoadConfigFile reads a TOML configuration file on top of
// [DefaultFileConfig]. Unknown keys are rejected so that typos do not pass
// silently.
func LoadConfigFile(path string) (FileConfig, error) {
	cfg := DefaultFileConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return cfg, errors.New(errors.ErrCodeInvalidConfig,
			"unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every table.
func (c FileConfig) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if err := errors.ValidateStruct(c.Cache); err != nil {
		return err
	}
	if _, err := c.Cache.ttl(); err != nil {
		return err
	}
	return errors.ValidateStruct(c.Snapshot)
}

func (c CacheConfig) ttl() (time.Duration, error) {
	if c.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d < 0 {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "ttl %q is not a valid duration", c.TTL)
	}
	return d, nil
}

// OpenCache builds the configured cache backend.
func (c FileConfig) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheRedis:
		rc, err := cache.NewRedisCache(ctx, c.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		return rc, nil
	case CacheFile, "":
		dir := c.Cache.Dir
		if dir == "" {
			var err error
			if dir, err = cache.DefaultDir(); err != nil {
				return nil, err
			}
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig,
		"invalid cache backend: %q (must be one of: file, redis, none)", c.Cache.Backend)
}

// NewRunner builds a runner over the configured cache. The caller closes
// the runner.
func (c FileConfig) NewRunner(ctx context.Context, logger *log.Logger) (*Runner, error) {
	ttl, err := c.Cache.ttl()
	if err != nil {
		return nil, err
	}
	ch, err := c.OpenCache(ctx)
	if err != nil {
		return nil, err
	}
	r := NewRunner(ch, nil, logger)
	r.TTL = ttl
	return r, nil
}

// OpenStore builds the configured snapshot store.
func (c FileConfig) OpenStore(ctx context.Context) (snapshot.Store, error) {
	switch c.Snapshot.Backend {
	case StoreMongo:
		ms, err := snapshot.NewMongoStore(ctx, c.Snapshot.MongoURI, c.Snapshot.Database)
		if err != nil {
			return nil, err
		}
		return ms, nil
	case StoreFile, "":
		dir := c.Snapshot.Dir
		if dir == "" {
			dir = DefaultSnapshotDir
		}
		fs, err := snapshot.NewFileStore(dir)
		if err != nil {
			return nil, err
		}
		return fs, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig,
		"invalid snapshot backend: %q (must be one of: file, mongo)", c.Snapshot.Backend)
}
