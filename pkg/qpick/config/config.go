// Package config loads the process-wide YAML configuration: external asset
// paths and the numeric thresholds the sharding driver and caches use, plus
// the split access/error/debug loggers shared across the qpick-* commands.
package config

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/qpick/pkg/qpick/engine"
	"github.com/cognicore/qpick/pkg/qpick/fstweight"
	"github.com/cognicore/qpick/pkg/qpick/internalerr"
	"github.com/cognicore/qpick/pkg/qpick/lexicon"
	"github.com/cognicore/qpick/pkg/qpick/parser"
	"github.com/cognicore/qpick/pkg/qpick/parsecache"
	"github.com/cognicore/qpick/pkg/qpick/rank"
	"github.com/cognicore/qpick/pkg/qpick/store"
	"github.com/cognicore/qpick/pkg/qpick/store/memstore"
	"github.com/cognicore/qpick/pkg/qpick/store/sqlite"
)

// Config is the top-level YAML document.
type Config struct {
	Assets Assets `yaml:"assets"`
	Shard  Shard  `yaml:"shard"`
	Cache  Cache  `yaml:"cache"`
	Rank   Rank   `yaml:"rank"`
	Store  Store  `yaml:"store"`
	LogDir string `yaml:"log_dir"`
}

// Store names the backing posting-list store for the query engine.
type Store struct {
	// Backend selects the store implementation: "sqlite" or "memory".
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// Assets names the four external, read-only-after-load collaborators.
type Assets struct {
	WeightMapPath  string `yaml:"weight_map_path"`
	ToponymSetPath string `yaml:"toponym_set_path"`
	StopwordPath   string `yaml:"stopword_path"`
	SynonymPath    string `yaml:"synonym_path"`
}

// Shard holds the sharding driver's numeric knobs.
type Shard struct {
	NumShards  int `yaml:"num_shards"`
	FlushBytes int `yaml:"flush_bytes"`
}

// Cache holds in-process LRU cache sizes.
type Cache struct {
	ParseCacheSize int `yaml:"parse_cache_size"`
	ShardCacheSize int `yaml:"shard_cache_size"`
}

// Rank holds the scorer's weights and recency half-life.
type Rank struct {
	RecencyHalfLifeDays float64 `yaml:"recency_half_life_days"`
	AlphaOverlap        float64 `yaml:"alpha_overlap"`
	GammaRecency        float64 `yaml:"gamma_recency"`
	EtaAuthority        float64 `yaml:"eta_authority"`
}

// defaults mirror the thresholds spec.md calls out by name; a zero-value
// YAML document still produces a usable configuration.
func defaults() Config {
	return Config{
		Shard: Shard{NumShards: 16, FlushBytes: 5 * 1024},
		Cache: Cache{ParseCacheSize: 4096, ShardCacheSize: 1024},
		Rank: Rank{
			RecencyHalfLifeDays: 30,
			AlphaOverlap:        1.0,
			GammaRecency:        0.2,
			EtaAuthority:        0.1,
		},
		Store: Store{Backend: "memory"},
	}
}

// Load reads and parses a YAML config file, filling in defaults for any
// field the file leaves at its zero value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrConfigMissing, err)
	}
	cfg := defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrConfigMissing, err)
	}
	return &cfg, nil
}

// BuildParser loads the four external assets named by cfg and wires them
// into a parser.Parser. Failures here are fatal at process start per spec
// §5/§7. The returned closer releases any mmap'd FSTs.
func (cfg *Config) BuildParser() (*parser.Parser, io.Closer, error) {
	if cfg.Assets.WeightMapPath == "" {
		return nil, nil, fmt.Errorf("%w: assets.weight_map_path is required", internalerr.ErrConfigMissing)
	}
	weightMap, err := fstweight.LoadWeightMap(cfg.Assets.WeightMapPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: weight map: %v", internalerr.ErrConfigMissing, err)
	}

	var toponyms *fstweight.ToponymSet
	if cfg.Assets.ToponymSetPath != "" {
		toponyms, err = fstweight.LoadToponymSet(cfg.Assets.ToponymSetPath)
		if err != nil {
			weightMap.Close()
			return nil, nil, fmt.Errorf("%w: toponym set: %v", internalerr.ErrConfigMissing, err)
		}
	}

	var stopwords *lexicon.StopwordSet
	if cfg.Assets.StopwordPath != "" {
		stopwords, err = lexicon.LoadStopwordSet(cfg.Assets.StopwordPath)
		if err != nil {
			weightMap.Close()
			return nil, nil, fmt.Errorf("%w: stopword set: %v", internalerr.ErrConfigMissing, err)
		}
	}

	var synonyms *lexicon.SynonymDict
	if cfg.Assets.SynonymPath != "" {
		synonyms, err = lexicon.LoadSynonymDict(cfg.Assets.SynonymPath)
		if err != nil {
			weightMap.Close()
			return nil, nil, fmt.Errorf("%w: synonym dictionary: %v", internalerr.ErrConfigMissing, err)
		}
	}

	var toponymSource lexicon.ToponymSource
	if toponyms != nil {
		toponymSource = toponyms
	}
	var synonymSource lexicon.SynonymSource
	if synonyms != nil {
		synonymSource = synonyms
	}

	p := parser.New(weightMap, stopwords, toponymSource, synonymSource)
	return p, multiCloser{weightMap, toponyms}, nil
}

// BuildEngine wires the configured store backend, the parser built by
// BuildParser, and the rank weights into a ready-to-use query engine. The
// returned closer shuts down both the store and the FST assets.
func (cfg *Config) BuildEngine(ctx context.Context) (*engine.Engine, io.Closer, error) {
	p, assetCloser, err := cfg.BuildParser()
	if err != nil {
		return nil, nil, err
	}

	backend, err := cfg.openStore(ctx)
	if err != nil {
		assetCloser.Close()
		return nil, nil, err
	}

	cached := parsecache.New(p, cfg.Cache.ParseCacheSize)

	e := engine.New(engine.Options{
		Store:  backend,
		Parser: cached,
		Weights: rank.Weights{
			AlphaOverlap: cfg.Rank.AlphaOverlap,
			GammaRecency: cfg.Rank.GammaRecency,
			EtaAuthority: cfg.Rank.EtaAuthority,
		},
		HalfLife:  cfg.Rank.RecencyHalfLifeDays,
		NumShards: int64(cfg.Shard.NumShards),
	})

	return e, multiCloser{assetCloser, backend}, nil
}

func (cfg *Config) openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Backend {
	case "", "memory":
		return memstore.New(), nil
	case "sqlite":
		if cfg.Store.Path == "" {
			return nil, fmt.Errorf("%w: store.path is required for the sqlite backend", internalerr.ErrConfigMissing)
		}
		return sqlite.Open(ctx, cfg.Store.Path)
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", internalerr.ErrConfigMissing, cfg.Store.Backend)
	}
}

// multiCloser closes every wrapped closer, returning the first error.
type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for _, c := range m {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Loggers are the split access/error/debug loggers every qpick-* command
// shares, adapted from the ragproxy-style stdout+file split.
type Loggers struct {
	Access *log.Logger
	Error  *log.Logger
	Debug  *log.Logger
}

// NewLoggers opens access.log/error.log/debug.log under dir (created if
// necessary) in append mode and returns the three loggers. If dir is empty,
// all three loggers write to stderr.
func NewLoggers(dir string) (*Loggers, error) {
	if dir == "" {
		return &Loggers{
			Access: log.New(os.Stderr, "ACCESS: ", log.LstdFlags),
			Error:  log.New(os.Stderr, "ERROR: ", log.LstdFlags),
			Debug:  log.New(os.Stderr, "DEBUG: ", log.LstdFlags),
		}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	open := func(name string) (*os.File, error) {
		return os.OpenFile(dir+"/"+name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	}
	accessFile, err := open("access.log")
	if err != nil {
		return nil, err
	}
	errorFile, err := open("error.log")
	if err != nil {
		return nil, err
	}
	debugFile, err := open("debug.log")
	if err != nil {
		return nil, err
	}
	return &Loggers{
		Access: log.New(accessFile, "ACCESS: ", log.LstdFlags),
		Error:  log.New(errorFile, "ERROR: ", log.LstdFlags),
		Debug:  log.New(debugFile, "DEBUG: ", log.LstdFlags),
	}, nil
}
