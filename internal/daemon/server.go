package daemon

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/parleyhq/parley/internal/api"
	"github.com/parleyhq/parley/internal/bus"
	"github.com/parleyhq/parley/internal/health"
	"github.com/parleyhq/parley/internal/layout"
	"github.com/parleyhq/parley/internal/profile"
	"github.com/parleyhq/parley/internal/session"
	"github.com/parleyhq/parley/internal/store"
	"go.uber.org/zap"
)

// Server manages the HTTP server bound to a profile's unix-domain socket.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	socketPath string
	logger     *zap.Logger
}

// NewServer creates the API server on the profile's socket.
func NewServer(
	p Params,
	logger *zap.Logger,
	st *store.Store,
	monitor *health.Monitor,
	co *profile.Coalescer,
	engine *layout.Engine,
	b *bus.Bus,
	fs *FeedSet,
) (*Server, error) {
	socketPath := p.SocketPath
	if socketPath == "" {
		socketPath = session.SocketPath(p.ProfileName)
	}

	// Clean stale socket if it exists.
	if _, err := os.Stat(socketPath); err == nil {
		_ = os.Remove(socketPath)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("listen unix socket: %w", err)
	}

	// Set socket permissions to 0600.
	if err := os.Chmod(socketPath, 0600); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}

	deps := api.Deps{
		ProfileName: p.ProfileName,
		Store:       st,
		Monitor:     monitor,
		Coalescer:   co,
		Engine:      engine,
		Bus:         b,
		Logger:      logger,
	}
	if fs != nil {
		deps.Feeds = fs
	}
	router := api.NewRouter(deps)

	return &Server{
		httpServer: &http.Server{Handler: router},
		listener:   listener,
		socketPath: socketPath,
		logger:     logger,
	}, nil
}

// Start begins serving API requests. Blocks until stopped.
func (s *Server) Start() error {
	s.logger.Info("api server starting", zap.String("socket", s.socketPath))
	if err := s.httpServer.Serve(s.listener); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop performs a graceful shutdown and removes the socket file.
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("api server stopping")
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		_ = s.httpServer.Close()
	}
	_ = os.Remove(s.socketPath)
}
