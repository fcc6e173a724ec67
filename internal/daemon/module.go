package daemon

import (
	"context"
	"time"

	"github.com/parleyhq/parley/internal/bus"
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/health"
	"github.com/parleyhq/parley/internal/layout"
	"github.com/parleyhq/parley/internal/lock"
	"github.com/parleyhq/parley/internal/logging"
	"github.com/parleyhq/parley/internal/profile"
	"github.com/parleyhq/parley/internal/session"
	"github.com/parleyhq/parley/internal/store"
	"github.com/parleyhq/parley/internal/transport"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	ProfileName string
	SocketPath  string // optional override for testing; empty = use default
	Config      *config.Config
}

// feeds groups the channel listeners so lifecycle wiring stays flat.
type feeds struct {
	fx.In

	Backend  *transport.BackendFeed
	Bus      *transport.WSFeed `name:"busFeed"`
	Realtime *transport.WSFeed `name:"realtimeFeed"`
}

// FeedSet restarts the channel listeners as a unit. Feeds do not retry
// on their own; a reconnect is always an explicit operator action.
type FeedSet struct {
	backend  *transport.BackendFeed
	bus      *transport.WSFeed
	realtime *transport.WSFeed
	logger   *zap.Logger
}

// Restart stops every feed and dials each endpoint again. A feed that
// fails to dial stays down; the others still come up. Feeds outlive the
// triggering request, so starts run on a fresh background context.
func (fs *FeedSet) Restart(context.Context) error {
	fs.realtime.Stop()
	fs.bus.Stop()
	fs.backend.Stop()

	ctx := context.Background()
	var firstErr error
	for _, start := range []func(context.Context) error{
		fs.backend.Start,
		fs.bus.Start,
		fs.realtime.Start,
	} {
		if err := start(ctx); err != nil {
			fs.logger.Warn("feed restart failed", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Module returns the fx module for the daemon, composing all providers
// and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideLock,
			provideMonitor,
			provideStore,
			provideCoalescer,
			provideEngine,
			provideBackendFeed,
			fx.Annotate(provideBusFeed, fx.ResultTags(`name:"busFeed"`)),
			fx.Annotate(provideRealtimeFeed, fx.ResultTags(`name:"realtimeFeed"`)),
			provideFeedSet,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(session.LogPath(p.ProfileName), p.ProfileName)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := session.EnsureDir(p.ProfileName); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.ProfileName))
	l, err := lock.Acquire(session.Dir(p.ProfileName))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

func provideMonitor(b *bus.Bus) *health.Monitor {
	return health.NewMonitor(b)
}

func provideStore(b *bus.Bus, logger *zap.Logger) *store.Store {
	return store.New(nil, b, logger)
}

func provideCoalescer(p Params, st *store.Store, b *bus.Bus, logger *zap.Logger) *profile.Coalescer {
	fetcher := transport.NewProfileClient(p.Config.Channels.ProfileURL)
	co := profile.New(fetcher, st, b, logger, profile.Options{
		Window:  time.Duration(p.Config.Coalescer.DebounceMs) * time.Millisecond,
		Ceiling: p.Config.Coalescer.BatchCeiling,
	})
	st.SetRequester(co)
	return co
}

func provideEngine(p Params) *layout.Engine {
	return layout.NewEngine(p.Config.Layout.TileAspect, p.Config.Layout.MinTileWidth)
}

func provideBackendFeed(p Params, st *store.Store, monitor *health.Monitor, logger *zap.Logger) *transport.BackendFeed {
	return transport.NewBackendFeed(p.Config.Channels.BackendURL, 5*time.Second, st, monitor, logger)
}

func provideBusFeed(p Params, st *store.Store, monitor *health.Monitor, logger *zap.Logger) *transport.WSFeed {
	return transport.NewWSFeed(health.ChannelBus, p.Config.Channels.BusURL, st, monitor, logger)
}

func provideRealtimeFeed(p Params, st *store.Store, monitor *health.Monitor, logger *zap.Logger) *transport.WSFeed {
	return transport.NewWSFeed(health.ChannelRealtime, p.Config.Channels.RealtimeURL, st, monitor, logger)
}

func provideFeedSet(f feeds, logger *zap.Logger) *FeedSet {
	return &FeedSet{backend: f.Backend, bus: f.Bus, realtime: f.Realtime, logger: logger}
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, lk *lock.Lock, f feeds, co *profile.Coalescer, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("api server error", zap.Error(err))
				}
			}()

			// Each feed reports liveness edges to the monitor; failing
			// to dial at boot is not fatal, it just leaves the channel
			// DOWN until an operator restarts or the endpoint comes up.
			ctx := context.Background()
			if err := f.Backend.Start(ctx); err != nil {
				logger.Warn("backend feed not started", zap.Error(err))
			}
			if err := f.Bus.Start(ctx); err != nil {
				logger.Warn("bus feed not started", zap.Error(err))
			}
			if err := f.Realtime.Start(ctx); err != nil {
				logger.Warn("realtime feed not started", zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			f.Realtime.Stop()
			f.Bus.Stop()
			f.Backend.Stop()
			co.Stop()
			srv.Stop(ctx)
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
