package server

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	appcfg "github.com/devtycoon/forge/am"
	"github.com/devtycoon/forge/compiler"
	"github.com/devtycoon/forge/errors"
	"github.com/devtycoon/forge/events"
	"github.com/devtycoon/forge/graph"
	"github.com/devtycoon/forge/logger"
	"github.com/devtycoon/forge/metrics"
	"github.com/devtycoon/forge/raid"
	"github.com/devtycoon/forge/storage"
)

// rateSettings bounds raid events per socket
type rateSettings struct {
	limit rate.Limit
	burst int
}

func rateFromConfig(rc appcfg.RaidConfig) rateSettings {
	if rc.EventsPerSecond <= 0 {
		return rateSettings{limit: rate.Inf}
	}
	burst := rc.EventBurst
	if burst <= 0 {
		burst = 1
	}
	return rateSettings{limit: rate.Limit(rc.EventsPerSecond), burst: burst}
}

func limitsFromConfig(rc appcfg.RaidConfig) raid.Limits {
	return raid.Limits{
		TeardownGrace:   rc.TeardownGrace(),
		MaxParticipants: rc.MaxParticipants,
		EventLogLimit:   rc.EventLogLimit,
	}
}

// Option configures optional server dependencies
type Option func(*Server, *options)

type options struct {
	publisher events.Publisher
	metrics   *metrics.Collector
}

// WithPublisher republishes raid events, e.g. to NATS
func WithPublisher(p events.Publisher) Option {
	return func(_ *Server, o *options) { o.publisher = p }
}

// WithMetrics shares a collector instead of creating one
func WithMetrics(c *metrics.Collector) Option {
	return func(_ *Server, o *options) { o.metrics = c }
}

// NewServer creates a server over a migrated database. The hub starts
// immediately; call Start to listen or use Handler directly.
func NewServer(db *sql.DB, cfg *appcfg.Config, serverLogger *zap.SugaredLogger, opts ...Option) (*Server, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	if serverLogger == nil {
		serverLogger = logger.Logger.Named("server")
	}

	s := &Server{
		db:             db,
		clients:        make(map[*Client]bool),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		allowedOrigins: cfg.GetServerAllowedOrigins(),
		eventRate:      rateFromConfig(cfg.GetRaidConfig()),
		logger:         serverLogger,
	}

	var o options
	for _, opt := range opts {
		opt(s, &o)
	}
	if o.metrics == nil {
		o.metrics = metrics.NewCollector(metrics.DefaultNamespace)
	}
	s.metrics = o.metrics

	s.store = storage.NewGraphStore(db)
	s.compiler = compiler.New(compiler.Options{
		DefaultLanguage: graph.Language(cfg.GetDefaultLanguage()),
		MaxNodes:        cfg.Compiler.MaxNodes,
	}, serverLogger.Named("compiler"))
	s.raids = raid.NewRegistry(raid.Options{
		Limits:        limitsFromConfig(cfg.GetRaidConfig()),
		Publisher:     o.publisher,
		SubjectPrefix: cfg.GetSubjectPrefix(),
		Observer:      s.metrics,
	}, serverLogger.Named("raid"))

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.handler = s.setupHTTPRoutes()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run()
	}()

	s.setState(ServerStateRunning)
	return s, nil
}

// applyConfig updates the settings that can change while running
func (s *Server) applyConfig(cfg *appcfg.Config) {
	rc := cfg.GetRaidConfig()

	s.mu.Lock()
	s.allowedOrigins = cfg.GetServerAllowedOrigins()
	s.eventRate = rateFromConfig(rc)
	for client := range s.clients {
		client.setRate(s.eventRate)
	}
	s.mu.Unlock()

	s.raids.SetLimits(limitsFromConfig(rc))

	s.logger.Infow("Config applied",
		"max_participants", rc.MaxParticipants,
		"event_log_limit", rc.EventLogLimit,
		"events_per_second", rc.EventsPerSecond,
		"teardown_grace_ms", rc.TeardownGrace().Milliseconds(),
	)
}

// WatchConfig reloads configPath on change and applies raid limits and
// allowed origins live. An empty path disables watching.
func (s *Server) WatchConfig(configPath string) {
	s.watchConfig(configPath, nil, 0)
}

// watchConfig is WatchConfig with an optional loader and debounce override
func (s *Server) watchConfig(configPath string, loader func() (*appcfg.Config, error), debounce time.Duration) {
	if configPath == "" {
		s.logger.Infow("No config file found, using defaults (config watching disabled)")
		return
	}

	configWatcher, err := appcfg.NewConfigWatcher(configPath)
	if err != nil {
		s.logger.Warnw("Failed to create config watcher, manual restart required for config changes",
			logger.FieldError, err.Error())
		return
	}
	if loader != nil {
		configWatcher.SetLoader(loader)
	}
	if debounce > 0 {
		configWatcher.SetDebounce(debounce)
	}
	s.configWatcher = configWatcher

	// Set global watcher so am.SetValue does not trigger a reload loop
	appcfg.SetGlobalWatcher(configWatcher)

	configWatcher.OnReload(func(newCfg *appcfg.Config) error {
		s.applyConfig(newCfg)
		return nil
	})

	configWatcher.Start()
	s.logger.Infow("Config watcher started", logger.FieldFile, configPath)
}
