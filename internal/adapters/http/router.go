// Package http exposes the request/response surface: town lifecycle, session
// issuance, conversation area creation, and the websocket subscription
// endpoint. Unlike the event channel, this surface returns structured
// {isOK, message} envelopes.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/townlabs/townsync/internal/adapters/signal"
	"github.com/townlabs/townsync/internal/app"
	"github.com/townlabs/townsync/internal/config"
)

func SetupRouter(cfg *config.Config, store *app.TownStore, registry *app.SessionRegistry, rooms *app.RoomTable) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	h := &TownsHandler{Store: store}
	sub := signal.NewSubscriber(store, registry, rooms, cfg)

	api := r.Group("/api")
	api.POST("/towns", h.Create)
	api.GET("/towns", h.List)
	api.PATCH("/towns/:townId", h.Update)
	api.DELETE("/towns/:townId/:townPassword", h.Delete)
	api.POST("/sessions", h.Join)
	api.POST("/towns/:townId/conversationAreas", h.CreateConversationArea)
	api.GET("/ws", sub.Handle)

	return r
}
