package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/canteen-app/live"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Sesuaikan dengan kebutuhan keamanan
	},
}

// LiveHandler -> endpoint WebSocket untuk dashboard admin dan aplikasi parent
func LiveHandler(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	role := roleInterface.(string)

	if role != "admin" && role != "parent" {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	userIDInterface, _ := c.Get("user_id")
	userID, _ := userIDInterface.(uint)

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	live.RegisterClient(ws, role, userID)

	// Baca pesan (jika perlu)
	for {
		_, _, err := ws.ReadMessage()
		if err != nil {
			break
		}
	}

	live.UnregisterClient(ws)
}
