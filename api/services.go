package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/judgegodwins/paddle-party/rooms"
)

func (s *Server) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"name": "bonjour"})
}

// Allocates a fresh room code. The room itself is created by the first joinGame.
func (s *Server) AllocateGameID(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"gameID": rooms.AllocateCode()})
}

type checkRoomRequest struct {
	RoomID string `uri:"id" binding:"required,alphanum"`
}

func (s *Server) CheckRoom(c *gin.Context) {
	var data checkRoomRequest

	if err := c.ShouldBindUri(&data); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse(err.Error()))
		return
	}

	registry := s.wsManager.Registry()
	code := rooms.NormalizeCode(data.RoomID)

	if !registry.Exists(code) {
		c.JSON(http.StatusNotFound, errorResponse("room not found"))
		return
	}

	_, simulated := s.wsManager.Simulation(code)

	c.JSON(http.StatusOK, successResponse("room data", gin.H{
		"id":        code,
		"members":   len(registry.MembersOf(code)),
		"simulated": simulated,
	}))
}
