package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRouter wires the REST surface onto a gin engine. wsHandler, when
// non-nil, is mounted at /ws for the push transport.
func SetupRouter(mode string, h *Handler, wsHandler http.Handler) *gin.Engine {
	gin.SetMode(mode)

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if wsHandler != nil {
		r.GET("/ws", gin.WrapH(wsHandler))
	}

	v1 := r.Group("/api/v1")
	{
		v1.GET("/rooms", h.ListRooms)

		rooms := v1.Group("/rooms/:id")
		{
			rooms.GET("/state", h.State)
			rooms.POST("/join", h.Join)
			rooms.POST("/start", h.Start)
			rooms.POST("/bid", h.Bid)
			rooms.POST("/pass", h.Pass)
			rooms.POST("/trump", h.Trump)
			rooms.POST("/play", h.Play)
			rooms.POST("/next", h.Next)
			rooms.POST("/chat", h.Chat)
		}
	}

	return r
}
