package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"

	"github.com/ledgerise/ledgerise-api/utils"
)

type WSHandler struct {
	M *melody.Melody
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 1024 * 1024

	// Keep-alive so cloud proxies do not drop idle connections
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleDisconnect(func(s *melody.Session) {
		userID, _ := s.Get("user_id")
		log.Printf("🔌 Client disconnected: user %v", userID)
	})

	m.HandleError(func(s *melody.Session, err error) {
		log.Printf("❌ WebSocket error: %v", err)
	})

	return &WSHandler{M: m}
}

// HandleWS upgrades the connection. The route sits outside the auth
// middleware group, so the token arrives as a query parameter.
func (h *WSHandler) HandleWS(c *gin.Context) {
	token := c.Query("token")
	userID, err := utils.ParseAccessToken(token)
	if err != nil {
		c.JSON(401, gin.H{"error": "Invalid or expired token"})
		return
	}

	if err := h.M.HandleRequestWithKeys(c.Writer, c.Request, map[string]interface{}{
		"user_id": userID,
	}); err != nil {
		log.Printf("❌ Failed to upgrade websocket: %v", err)
	}
}

// BroadcastUpdate signals the user's other open sessions that a
// resource changed.
func (h *WSHandler) BroadcastUpdate(userID, updateType string) {
	msg, err := json.Marshal(gin.H{"type": updateType})
	if err != nil {
		return
	}

	err = h.M.BroadcastFilter(msg, func(s *melody.Session) bool {
		id, exists := s.Get("user_id")
		return exists && id == userID
	})
	if err != nil {
		log.Printf("⚠️ Error broadcasting to user %s: %v", userID, err)
	}
}
