package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RoomService serves room and message selectors.
type RoomService struct {
	deps Deps
}

func (s *RoomService) List(c *gin.Context) {
	snap := s.deps.Store.Snapshot()
	rooms := snap.Rooms()
	out := make([]Room, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, roomToWire(r, snap.IsRoomEmpty(r.ID)))
	}
	c.JSON(http.StatusOK, gin.H{"rooms": out})
}

func (s *RoomService) Get(c *gin.Context) {
	snap := s.deps.Store.Snapshot()
	r, ok := snap.Room(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, roomToWire(r, snap.IsRoomEmpty(r.ID)))
}

// Messages returns a room's visible messages in arrival order, with
// overlays and reaction groups folded in.
func (s *RoomService) Messages(c *gin.Context) {
	snap := s.deps.Store.Snapshot()
	roomID := c.Param("id")
	if _, ok := snap.Room(roomID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	msgs := snap.VisibleMessages(roomID)
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageToWire(m, snap.ReactionGroups(roomID, m.StanzaID)))
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

func (s *RoomService) Reactions(c *gin.Context) {
	snap := s.deps.Store.Snapshot()
	groups := snap.ReactionGroups(c.Param("id"), c.Param("stanza"))
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, Group{Value: g.Value, Actors: g.Actors})
	}
	c.JSON(http.StatusOK, gin.H{"groups": out})
}
