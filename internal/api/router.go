// Package api exposes the daemon's query and command surface over the
// profile's unix-domain socket: read-only selectors, the command entry
// points (event injection, profile requests, pin and pagination) and a
// websocket stream of bus events.
package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/parleyhq/parley/internal/bus"
	"github.com/parleyhq/parley/internal/health"
	"github.com/parleyhq/parley/internal/layout"
	"github.com/parleyhq/parley/internal/profile"
	"github.com/parleyhq/parley/internal/store"
	"go.uber.org/zap"
)

// FeedRestarter restarts the daemon's channel listeners. Feeds never
// retry on their own, so this is the only reconnect path.
type FeedRestarter interface {
	Restart(ctx context.Context) error
}

// Deps carries everything the handlers need.
type Deps struct {
	ProfileName string
	Store       *store.Store
	Monitor     *health.Monitor
	Coalescer   *profile.Coalescer
	Engine      *layout.Engine
	Bus         *bus.Bus
	Logger      *zap.Logger
	Feeds       FeedRestarter // may be nil when no feeds are wired
}

// NewRouter builds the gin router for the daemon socket.
func NewRouter(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	rooms := &RoomService{deps: d}
	meetings := &MeetingService{deps: d}
	system := &SystemService{deps: d}

	v1 := r.Group("/v1")
	{
		v1.GET("/rooms", rooms.List)
		v1.GET("/rooms/:id", rooms.Get)
		v1.GET("/rooms/:id/messages", rooms.Messages)
		v1.GET("/rooms/:id/messages/:stanza/reactions", rooms.Reactions)

		v1.GET("/meetings/:id", meetings.Get)
		v1.POST("/meetings/:id/arrange", meetings.Arrange)
		v1.POST("/meetings/:id/page/prev", meetings.PagePrev)
		v1.POST("/meetings/:id/page/next", meetings.PageNext)
		v1.POST("/meetings/:id/pin", meetings.Pin)
		v1.DELETE("/meetings/:id/pin", meetings.Unpin)
		v1.PUT("/meetings/view-mode", meetings.SetViewMode)

		v1.GET("/health", system.Health)
		v1.POST("/health/dismiss", system.Dismiss)
		v1.POST("/feeds/restart", system.RestartFeeds)
		v1.GET("/stats", system.Stats)
		v1.POST("/events", system.InjectEvent)
		v1.POST("/profiles/request", system.RequestProfile)
		v1.GET("/events/stream", system.Stream)
	}
	return r
}
