package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/parleyhq/parley/internal/event"
)

// SystemService serves health, stats, event injection and the push
// stream.
type SystemService struct {
	deps Deps
}

func (s *SystemService) Health(c *gin.Context) {
	channels := make(map[string]string)
	for ch, l := range s.deps.Monitor.Snapshot() {
		channels[string(ch)] = string(l)
	}
	c.JSON(http.StatusOK, Health{
		Combined:      string(s.deps.Monitor.CombinedStatus()),
		Channels:      channels,
		BannerVisible: s.deps.Monitor.BannerVisible(),
	})
}

func (s *SystemService) Dismiss(c *gin.Context) {
	s.deps.Monitor.Dismiss()
	c.JSON(http.StatusOK, gin.H{"dismissed": true})
}

// RestartFeeds re-dials every channel listener.
func (s *SystemService) RestartFeeds(c *gin.Context) {
	if s.deps.Feeds == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no feeds wired"})
		return
	}
	if err := s.deps.Feeds.Restart(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"restarted": true})
}

func (s *SystemService) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"store":             s.deps.Store.Stats(),
		"profiles_pending":  s.deps.Coalescer.PendingCount(),
		"profiles_inflight": s.deps.Coalescer.InFlightCount(),
	})
}

// InjectEvent decodes a wire frame and applies it to the store. Used by
// out-of-process channel owners and by tests.
func (s *SystemService) InjectEvent(c *gin.Context) {
	var frame event.Frame
	if err := c.ShouldBindJSON(&frame); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	evt, err := event.Decode(frame)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.deps.Store.Apply(evt)
	c.JSON(http.StatusAccepted, gin.H{"applied": true})
}

type profileRequestBody struct {
	UserID string `json:"user_id" binding:"required"`
}

func (s *SystemService) RequestProfile(c *gin.Context) {
	var body profileRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.deps.Coalescer.Request(body.UserID)
	c.JSON(http.StatusAccepted, gin.H{"requested": true})
}

var upgrader = websocket.Upgrader{
	// The socket is a local unix-domain socket; there is no origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Stream upgrades to a websocket and pushes bus events until the client
// goes away.
func (s *SystemService) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	ch, unsub := s.deps.Bus.Subscribe("", 256)
	defer unsub()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case evt := <-ch:
			env := Envelope{
				EventID:          uuid.New().String(),
				Profile:          s.deps.ProfileName,
				OccurredAtUnixMs: evt.Timestamp.UnixMilli(),
				Kind:             evt.Kind,
			}
			if err := conn.WriteJSON(env); err != nil {
				return
			}
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
