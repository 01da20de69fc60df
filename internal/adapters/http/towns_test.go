package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/townlabs/townsync/internal/app"
	"github.com/townlabs/townsync/internal/config"
	"github.com/townlabs/townsync/internal/domain"
)

type apiEnv struct {
	router   *gin.Engine
	store    *app.TownStore
	registry *app.SessionRegistry
}

func newAPIEnv(t *testing.T, capacity int) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Mode:         "release",
		ReadLimit:    1 << 20,
		SendBuffer:   64,
		WriteTimeout: time.Second,
		PongWait:     time.Minute,
		TownCapacity: capacity,
	}
	registry := app.NewSessionRegistry()
	rooms := app.NewRoomTable()
	store := app.NewTownStore(registry, rooms, cfg.TownCapacity, nil)
	return &apiEnv{
		router:   SetupRouter(cfg, store, registry, rooms),
		store:    store,
		registry: registry,
	}
}

type reply struct {
	IsOK     bool            `json:"isOK"`
	Message  string          `json:"message"`
	Response json.RawMessage `json:"response"`
}

func (e *apiEnv) do(t *testing.T, method, path string, body any) (int, reply) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var r reply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	return w.Code, r
}

func (e *apiEnv) createTown(t *testing.T, name string, public bool) (domain.TownID, string) {
	t.Helper()
	code, r := e.do(t, http.MethodPost, "/api/towns", gin.H{
		"friendlyName": name, "isPubliclyListed": public,
	})
	require.Equal(t, http.StatusOK, code)
	var resp struct {
		TownID       domain.TownID `json:"townId"`
		TownPassword string        `json:"townPassword"`
	}
	require.NoError(t, json.Unmarshal(r.Response, &resp))
	return resp.TownID, resp.TownPassword
}

func TestTownCreate(t *testing.T) {
	env := newAPIEnv(t, 50)

	id, password := env.createTown(t, "Gamma Town", true)
	assert.NotEmpty(t, id)
	assert.NotEmpty(t, password)

	_, ok := env.store.Get(id)
	assert.True(t, ok)
}

func TestTownCreate_RequiresFriendlyName(t *testing.T) {
	env := newAPIEnv(t, 50)

	code, r := env.do(t, http.MethodPost, "/api/towns", gin.H{"isPubliclyListed": true})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, r.IsOK)
	assert.Contains(t, r.Message, "friendlyName")
}

func TestTownList_PublicOnly(t *testing.T) {
	env := newAPIEnv(t, 50)
	publicID, _ := env.createTown(t, "Public Town", true)
	privateID, _ := env.createTown(t, "Private Town", false)

	code, r := env.do(t, http.MethodGet, "/api/towns", nil)
	require.Equal(t, http.StatusOK, code)

	var resp struct {
		Towns []domain.TownSummary `json:"towns"`
	}
	require.NoError(t, json.Unmarshal(r.Response, &resp))
	require.Len(t, resp.Towns, 1)
	assert.Equal(t, publicID, resp.Towns[0].ID)
	assert.NotEqual(t, privateID, resp.Towns[0].ID)
}

func TestTownUpdate(t *testing.T) {
	env := newAPIEnv(t, 50)
	id, password := env.createTown(t, "Old Name", true)

	code, r := env.do(t, http.MethodPatch, "/api/towns/"+string(id), gin.H{
		"townPassword": "wrong", "friendlyName": "New Name",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, r.IsOK)

	code, r = env.do(t, http.MethodPatch, "/api/towns/"+string(id), gin.H{
		"townPassword": password, "friendlyName": "New Name", "isPubliclyListed": false,
	})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, r.IsOK)

	town, ok := env.store.Get(id)
	require.True(t, ok)
	assert.Equal(t, "New Name", town.FriendlyName())
	assert.False(t, town.IsPubliclyListed())
}

func TestTownDelete(t *testing.T) {
	env := newAPIEnv(t, 50)
	id, password := env.createTown(t, "Doomed Town", true)

	// A player who joined but never opened the event socket.
	_, r := env.do(t, http.MethodPost, "/api/sessions", gin.H{
		"userName": "alice", "townId": id,
	})
	var joined struct {
		SessionToken string `json:"sessionToken"`
	}
	require.NoError(t, json.Unmarshal(r.Response, &joined))

	code, r := env.do(t, http.MethodDelete, "/api/towns/"+string(id)+"/wrong", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, r.IsOK)

	code, _ = env.do(t, http.MethodDelete, "/api/towns/"+string(id)+"/"+password, nil)
	require.Equal(t, http.StatusOK, code)

	_, ok := env.store.Get(id)
	assert.False(t, ok)

	// Deleting the town reclaims its sessions, connected or not.
	_, ok = env.registry.Lookup(joined.SessionToken)
	assert.False(t, ok)
}

func TestTownJoin(t *testing.T) {
	env := newAPIEnv(t, 50)
	id, _ := env.createTown(t, "Join Town", true)

	code, r := env.do(t, http.MethodPost, "/api/sessions", gin.H{
		"userName": "alice", "townId": id,
	})
	require.Equal(t, http.StatusOK, code)
	require.True(t, r.IsOK)

	var resp struct {
		UserID         domain.PlayerID `json:"userId"`
		SessionToken   string          `json:"sessionToken"`
		VideoToken     string          `json:"videoToken"`
		CurrentPlayers []domain.Player `json:"currentPlayers"`
		FriendlyName   string          `json:"friendlyName"`
	}
	require.NoError(t, json.Unmarshal(r.Response, &resp))
	assert.NotEmpty(t, resp.UserID)
	assert.NotEmpty(t, resp.SessionToken)
	assert.NotEmpty(t, resp.VideoToken)
	assert.Equal(t, "Join Town", resp.FriendlyName)
	require.Len(t, resp.CurrentPlayers, 1)
	assert.Equal(t, "alice", resp.CurrentPlayers[0].UserName)

	// The issued token resolves to a live session in that town.
	town, ok := env.store.Get(id)
	require.True(t, ok)
	sess, ok := town.SessionByToken(resp.SessionToken)
	require.True(t, ok)
	assert.Equal(t, resp.UserID, sess.Player.ID)
}

func TestTownJoin_Errors(t *testing.T) {
	env := newAPIEnv(t, 1)
	id, _ := env.createTown(t, "Tiny Town", true)

	code, r := env.do(t, http.MethodPost, "/api/sessions", gin.H{
		"userName": "alice", "townId": "no-such-town",
	})
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, r.IsOK)

	code, r = env.do(t, http.MethodPost, "/api/sessions", gin.H{
		"userName": "", "townId": id,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, r.IsOK)

	code, _ = env.do(t, http.MethodPost, "/api/sessions", gin.H{
		"userName": "alice", "townId": id,
	})
	require.Equal(t, http.StatusOK, code)

	// Capacity 1: the second join is rejected.
	code, r = env.do(t, http.MethodPost, "/api/sessions", gin.H{
		"userName": "bob", "townId": id,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, r.IsOK)
}

func TestCreateConversationArea(t *testing.T) {
	env := newAPIEnv(t, 50)
	id, _ := env.createTown(t, "Area Town", true)

	_, r := env.do(t, http.MethodPost, "/api/sessions", gin.H{
		"userName": "alice", "townId": id,
	})
	var joined struct {
		SessionToken string `json:"sessionToken"`
	}
	require.NoError(t, json.Unmarshal(r.Response, &joined))

	area := gin.H{"label": "area1", "topic": "sync", "occupantsByID": []string{}}

	code, r := env.do(t, http.MethodPost, "/api/towns/"+string(id)+"/conversationAreas", gin.H{
		"sessionToken": "bogus", "conversationArea": area,
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, r.IsOK)

	code, r = env.do(t, http.MethodPost, "/api/towns/"+string(id)+"/conversationAreas", gin.H{
		"sessionToken": joined.SessionToken, "conversationArea": area,
	})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, r.IsOK)

	town, ok := env.store.Get(id)
	require.True(t, ok)
	areas := town.ConversationAreas()
	require.Len(t, areas, 1)
	assert.Equal(t, "area1", areas[0].Label)
	assert.Equal(t, "sync", areas[0].Topic)

	// Duplicate label.
	code, r = env.do(t, http.MethodPost, "/api/towns/"+string(id)+"/conversationAreas", gin.H{
		"sessionToken": joined.SessionToken, "conversationArea": area,
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, r.IsOK)

	// Missing topic.
	code, r = env.do(t, http.MethodPost, "/api/towns/"+string(id)+"/conversationAreas", gin.H{
		"sessionToken": joined.SessionToken,
		"conversationArea": gin.H{"label": "area2", "topic": ""},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, r.IsOK)
}
