package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/convene/convene/internal/adapters/signal"
	"github.com/convene/convene/internal/config"
	"github.com/convene/convene/internal/core"
)

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

// ClientTokenMiddleware gives every browser a stable token; the WS
// adapter uses it as the session ID.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, store *core.MeetingStore, wsCtl *signal.MeetingWSController) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	sessStore := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("ConveneSessions", sessStore))
	r.Use(ClientTokenMiddleware())

	log.Info().Str("module", "adapters.http").Msg("router setup")

	admin := &AdminController{Store: store}

	r.GET("/healthz", admin.Health)

	api := r.Group("/api")

	api.POST("/meetings", admin.CreateMeeting)
	api.GET("/meetings", admin.SearchMeetings)
	api.GET("/meetings/:id", admin.MeetingStatus)
	api.GET("/meetings/:id/messages", admin.MeetingMessages)
	api.GET("/meetings/:id/files", admin.MeetingFiles)
	api.POST("/meetings/:id/files", admin.RegisterFile)
	api.POST("/meetings/:id/files/:fileId/downloads", admin.FileDownloaded)

	api.GET("/ws", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws endpoint hit")
		wsCtl.HandleWS(ctx, c)
	})

	return r
}
