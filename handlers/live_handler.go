package handlers

import (
	"log"
	"net/http"

	"quizportal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// LiveHandler upgrades clients to the per-quiz result feed.
type LiveHandler struct {
	hub      *services.Hub
	upgrader websocket.Upgrader
}

func NewLiveHandler(hub *services.Hub, checkOrigin func(r *http.Request) bool) *LiveHandler {
	return &LiveHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

func (h *LiveHandler) Watch(c *gin.Context) {
	quizID := c.Param("quizId")
	if quizID == "" {
		fail(c, http.StatusBadRequest, "quizId is required")
		return
	}

	// On failure Upgrade has already written an HTTP error response.
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("live feed upgrade for quiz %s failed: %v", quizID, err)
		return
	}

	if h.hub.RegisterClient(conn, quizID) == nil {
		log.Printf("live feed for quiz %s refused: hub stopped", quizID)
	}
}
