// Package mediaflow wires hosted generative-media models into a visual
// workflow host with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/mediaflow"
//
//	sys, err := mediaflow.New(
//	    mediaflow.WithAPIKey(os.Getenv("FAL_KEY")),
//	    mediaflow.WithStore(myAssetStore),
//	    mediaflow.WithResolver(myAssetResolver),
//	)
//	res, err := sys.Executor.Execute(ctx, node.Request{...})
//
// The default model catalog lives in package catalog; hosts with their own
// tables can pass a custom registry via [WithRegistry].
package mediaflow

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BaSui01/mediaflow/assets"
	"github.com/BaSui01/mediaflow/catalog"
	"github.com/BaSui01/mediaflow/config"
	"github.com/BaSui01/mediaflow/internal/metrics"
	"github.com/BaSui01/mediaflow/node"
	"github.com/BaSui01/mediaflow/provider"
)

// System bundles the wired components of one mediaflow instance.
type System struct {
	Config   *config.Config
	Logger   *zap.Logger
	Client   *provider.Client
	Storage  *provider.Storage
	Registry *node.Registry
	Executor *node.Executor

	closers []func() error
}

// Option configures the system created by [New].
type Option func(*options)

type options struct {
	cfg        *config.Config
	configPath string
	apiKey     string
	logger     *zap.Logger
	registry   *node.Registry
	resolver   assets.Resolver
	store      assets.Store
	registerer prometheus.Registerer
}

// WithConfig uses a pre-built configuration instead of loading one.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithConfigFile loads configuration from a YAML file, with environment
// variables layered on top.
func WithConfigFile(path string) Option {
	return func(o *options) { o.configPath = path }
}

// WithAPIKey overrides the provider API key.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithLogger sets a custom zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRegistry replaces the default model catalog.
func WithRegistry(r *node.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithResolver sets the host asset resolver for input references.
func WithResolver(r assets.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithStore sets the host asset store generated media is saved into.
func WithStore(s assets.Store) Option {
	return func(o *options) { o.store = s }
}

// WithPrometheus registers metrics on the given registerer instead of the
// default one.
func WithPrometheus(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// New assembles a ready-to-use [System]. An asset store is required; every
// other component has a working default.
func New(opts ...Option) (*System, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.store == nil {
		return nil, fmt.Errorf("mediaflow: an asset store is required, pass WithStore")
	}

	cfg := o.cfg
	if cfg == nil {
		loaded, err := config.NewLoader().WithConfigPath(o.configPath).Load()
		if err != nil {
			return nil, fmt.Errorf("mediaflow: %w", err)
		}
		cfg = loaded
	}
	if o.apiKey != "" {
		cfg.Provider.APIKey = o.apiKey
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("mediaflow: %w", err)
	}

	logger := o.logger
	if logger == nil {
		built, err := config.NewLogger(cfg.Log)
		if err != nil {
			return nil, fmt.Errorf("mediaflow: %w", err)
		}
		logger = built
	}

	registry := o.registry
	if registry == nil {
		registry = catalog.Default()
	}

	sys := &System{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
	}

	cache, err := sys.buildCache(cfg)
	if err != nil {
		return nil, err
	}

	sys.Client = provider.NewClient(cfg.Provider.ClientConfig(), logger)
	sys.Storage = provider.NewStorage(cfg.StorageClientConfig(), logger)

	execOpts := []node.Option{
		node.WithUploadCache(cache),
		node.WithLogger(logger),
	}
	if cfg.Metrics.Enabled {
		execOpts = append(execOpts,
			node.WithMetrics(metrics.NewCollector(cfg.Metrics.Namespace, o.registerer, logger)))
	}

	sys.Executor = node.NewExecutor(sys.Client, sys.Storage, registry, o.resolver, o.store, execOpts...)
	return sys, nil
}

func (s *System) buildCache(cfg *config.Config) (assets.UploadCache, error) {
	switch cfg.Cache.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.Cache.Redis.Addr,
			Password:     cfg.Cache.Redis.Password,
			DB:           cfg.Cache.Redis.DB,
			PoolSize:     cfg.Cache.Redis.PoolSize,
			MinIdleConns: cfg.Cache.Redis.MinIdleConns,
		})
		s.closers = append(s.closers, client.Close)
		return assets.NewRedisCache(client, cfg.Cache.TTL), nil
	case "memory":
		return assets.NewMemoryCache(), nil
	case "none":
		return assets.NopCache(), nil
	default:
		return nil, fmt.Errorf("mediaflow: unknown cache backend %q", cfg.Cache.Backend)
	}
}

// Close releases held connections.
func (s *System) Close() error {
	var firstErr error
	for _, close := range s.closers {
		if err := close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
