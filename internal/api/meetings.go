package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parleyhq/parley/internal/layout"
	"github.com/parleyhq/parley/internal/store"
)

// MeetingService serves meeting state and the layout commands.
type MeetingService struct {
	deps Deps
}

type containerBody struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type pinBody struct {
	UserID string `json:"user_id" binding:"required"`
	Stream string `json:"stream" binding:"required"`
}

type viewModeBody struct {
	Mode string `json:"mode" binding:"required"`
}

func (s *MeetingService) Get(c *gin.Context) {
	snap := s.deps.Store.Snapshot()
	meetingID := c.Param("id")
	parts := snap.Participants(meetingID)
	tiles := snap.Tiles(meetingID)

	outParts := make([]Participant, 0, len(parts))
	for _, p := range parts {
		outParts = append(outParts, Participant{
			UserID:   p.UserID,
			Name:     snap.Profile(p.UserID).Name,
			Audio:    p.Audio,
			Video:    p.Video,
			Screen:   p.Screen,
			JoinedAt: p.JoinedAt,
		})
	}
	outTiles := make([]Tile, 0, len(tiles))
	for _, t := range tiles {
		outTiles = append(outTiles, tileToWire(t))
	}
	c.JSON(http.StatusOK, gin.H{"participants": outParts, "tiles": outTiles})
}

func (s *MeetingService) Arrange(c *gin.Context) {
	s.layoutCall(c, s.deps.Engine.Arrange)
}

func (s *MeetingService) PagePrev(c *gin.Context) {
	s.layoutCall(c, s.deps.Engine.PagePrev)
}

func (s *MeetingService) PageNext(c *gin.Context) {
	s.layoutCall(c, s.deps.Engine.PageNext)
}

func (s *MeetingService) layoutCall(c *gin.Context, fn func([]store.Tile, layout.Dims) layout.Arrangement) {
	var body containerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tiles := s.deps.Store.Snapshot().Tiles(c.Param("id"))
	arr := fn(tiles, layout.Dims{Width: body.Width, Height: body.Height})
	c.JSON(http.StatusOK, arrangementToWire(arr))
}

func (s *MeetingService) Pin(c *gin.Context) {
	var body pinBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch store.TileStream(body.Stream) {
	case store.TileCamera, store.TileScreen:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown stream"})
		return
	}
	s.deps.Engine.Pin(store.Tile{UserID: body.UserID, Stream: store.TileStream(body.Stream)})
	c.JSON(http.StatusOK, gin.H{"pinned": true})
}

func (s *MeetingService) Unpin(c *gin.Context) {
	s.deps.Engine.Unpin()
	c.JSON(http.StatusOK, gin.H{"pinned": false})
}

func (s *MeetingService) SetViewMode(c *gin.Context) {
	var body viewModeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch layout.ViewMode(body.Mode) {
	case layout.ModeGrid, layout.ModeCinema:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown view mode"})
		return
	}
	s.deps.Engine.SetMode(layout.ViewMode(body.Mode))
	c.JSON(http.StatusOK, gin.H{"mode": body.Mode})
}
