// Package rest exposes the read-only introspection endpoints over the room
// registry, plus the health check.
package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sketchroom/sketchroom/internal/v1/room"
	"github.com/sketchroom/sketchroom/internal/v1/types"
)

// RoomDirectory is the registry view the handlers need. Implemented by the
// transport Hub.
type RoomDirectory interface {
	ListRooms() []room.Summary
	GetRoom(id types.RoomIDType) (room.Summary, bool)
	RoomExists(id types.RoomIDType) bool
}

// Handler serves the REST introspection endpoints.
type Handler struct {
	directory RoomDirectory
	now       func() time.Time
}

// NewHandler creates a Handler over a room directory.
func NewHandler(directory RoomDirectory) *Handler {
	return &Handler{directory: directory, now: time.Now}
}

// Register mounts the routes on a gin engine.
func (h *Handler) Register(router gin.IRouter) {
	api := router.Group("/api")
	{
		api.GET("/rooms", h.ListRooms)
		api.GET("/rooms/:id", h.GetRoom)
		api.GET("/rooms/:id/exists", h.RoomExists)
	}
	router.GET("/health", h.Health)
}

// ListRooms handles GET /api/rooms.
func (h *Handler) ListRooms(c *gin.Context) {
	rooms := h.directory.ListRooms()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"rooms":   rooms,
	})
}

// GetRoom handles GET /api/rooms/:id.
func (h *Handler) GetRoom(c *gin.Context) {
	id := types.RoomIDType(c.Param("id"))
	summary, ok := h.directory.GetRoom(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "room not found",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"room":    summary,
	})
}

// RoomExists handles GET /api/rooms/:id/exists.
func (h *Handler) RoomExists(c *gin.Context) {
	id := types.RoomIDType(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{
		"exists": h.directory.RoomExists(id),
	})
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}
