// Package http wires the gin router: the websocket endpoint and the
// REST API, both holding the same injected dispatcher.
package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/PraverBajaj/PulsePlay/internal/adapters/stream"
	"github.com/PraverBajaj/PulsePlay/internal/config"
)

// ClientTokenMiddleware hands every browser an opaque token cookie.
// It stands in for the viewer identity; real sign-in lives in the
// frontend stack and is passed through untouched.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, ctl *stream.Controller, api *StreamAPI) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("PulsePlaySessions", store))
	r.Use(ClientTokenMiddleware())

	r.GET("/ws/:creatorId", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("creator", c.Param("creatorId")).Msg("ws endpoint hit")
		ctl.HandleStream(ctx, c)
	})

	apiGroup := r.Group("/api")
	apiGroup.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	streams := apiGroup.Group("/streams")
	{
		streams.POST("", api.CreateStream)
		streams.GET("", api.ListStreams)
		streams.POST("/upvote", api.Upvote)
		streams.POST("/downvote", api.Downvote)
		streams.GET("/next", api.PlayNext)
	}

	return r
}
