package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/townlabs/townsync/internal/app"
	"github.com/townlabs/townsync/internal/domain"
)

// envelope wraps every response from this surface.
type envelope struct {
	IsOK     bool   `json:"isOK"`
	Message  string `json:"message,omitempty"`
	Response any    `json:"response,omitempty"`
}

func respondOK(c *gin.Context, response any) {
	c.JSON(http.StatusOK, envelope{IsOK: true, Response: response})
}

func respondErr(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{IsOK: false, Message: message})
}

type TownsHandler struct {
	Store *app.TownStore
}

type townCreateRequest struct {
	FriendlyName     string `json:"friendlyName"`
	IsPubliclyListed bool   `json:"isPubliclyListed"`
}

type townCreateResponse struct {
	TownID       domain.TownID `json:"townId"`
	TownPassword string        `json:"townPassword"`
}

func (h *TownsHandler) Create(c *gin.Context) {
	var req townCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FriendlyName == "" {
		respondErr(c, http.StatusBadRequest, "friendlyName must be specified")
		return
	}
	town := h.Store.Create(req.FriendlyName, req.IsPubliclyListed)
	respondOK(c, townCreateResponse{TownID: town.ID(), TownPassword: town.UpdatePassword()})
}

type townListResponse struct {
	Towns []domain.TownSummary `json:"towns"`
}

func (h *TownsHandler) List(c *gin.Context) {
	respondOK(c, townListResponse{Towns: h.Store.List()})
}

type townUpdateRequest struct {
	TownPassword     string `json:"townPassword"`
	FriendlyName     string `json:"friendlyName,omitempty"`
	IsPubliclyListed *bool  `json:"isPubliclyListed,omitempty"`
}

func (h *TownsHandler) Update(c *gin.Context) {
	var req townUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, "invalid request body")
		return
	}
	id := domain.TownID(c.Param("townId"))
	err := h.Store.Update(id, req.TownPassword, req.FriendlyName, req.IsPubliclyListed)
	if err != nil {
		respondErr(c, http.StatusUnauthorized, "invalid password or update values specified")
		return
	}
	respondOK(c, nil)
}

func (h *TownsHandler) Delete(c *gin.Context) {
	id := domain.TownID(c.Param("townId"))
	password := c.Param("townPassword")
	if err := h.Store.Delete(id, password); err != nil {
		respondErr(c, http.StatusUnauthorized, "invalid password, please double check your town update password")
		return
	}
	respondOK(c, nil)
}

type townJoinRequest struct {
	UserName string        `json:"userName"`
	TownID   domain.TownID `json:"townId"`
}

type townJoinResponse struct {
	UserID            domain.PlayerID           `json:"userId"`
	SessionToken      string                    `json:"sessionToken"`
	VideoToken        string                    `json:"videoToken"`
	CurrentPlayers    []domain.Player           `json:"currentPlayers"`
	FriendlyName      string                    `json:"friendlyName"`
	IsPubliclyListed  bool                      `json:"isPubliclyListed"`
	ConversationAreas []domain.ConversationArea `json:"conversationAreas"`
}

// Join admits a player to a town and issues the session token the client
// must present when opening the event socket.
func (h *TownsHandler) Join(c *gin.Context) {
	var req townJoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, "invalid request body")
		return
	}
	town, ok := h.Store.Get(req.TownID)
	if !ok {
		respondErr(c, http.StatusNotFound, "no such town")
		return
	}
	sess, err := town.AddPlayer(req.UserName)
	if err != nil {
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}
	log.Info().Str("module", "adapters.http").Str("town", string(town.ID())).Str("player", string(sess.Player.ID)).Msg("join request")
	respondOK(c, townJoinResponse{
		UserID:            sess.Player.ID,
		SessionToken:      sess.Token,
		VideoToken:        sess.VideoToken,
		CurrentPlayers:    town.Players(),
		FriendlyName:      town.FriendlyName(),
		IsPubliclyListed:  town.IsPubliclyListed(),
		ConversationAreas: town.ConversationAreas(),
	})
}

type conversationAreaCreateRequest struct {
	SessionToken     string                  `json:"sessionToken"`
	ConversationArea domain.ConversationArea `json:"conversationArea"`
}

// CreateConversationArea validates the caller's session before asking the
// town to create the area.
func (h *TownsHandler) CreateConversationArea(c *gin.Context) {
	var req conversationAreaCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, "invalid request body")
		return
	}
	id := domain.TownID(c.Param("townId"))
	town, ok := h.Store.Get(id)
	if !ok {
		respondErr(c, http.StatusNotFound, "no such town")
		return
	}
	if _, ok := town.SessionByToken(req.SessionToken); !ok {
		respondErr(c, http.StatusUnauthorized, "invalid session token")
		return
	}
	if err := town.AddConversationArea(req.ConversationArea); err != nil {
		if errors.Is(err, domain.ErrLabelTaken) {
			respondErr(c, http.StatusConflict, err.Error())
			return
		}
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}
	respondOK(c, nil)
}
