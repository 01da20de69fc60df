package signal

import "github.com/townlabs/townsync/internal/domain"

// Wire event names. Inbound and outbound envelopes share the "type" field.
const (
	evtPlayerMovement      = "playerMovement"
	evtChatMessage         = "chatMessage"
	evtDrawing             = "drawing"
	evtJoin                = "join"
	evtCanvasData          = "canvas-data"
	evtNewPlayer           = "newPlayer"
	evtPlayerMoved         = "playerMoved"
	evtPlayerDisconnect    = "playerDisconnect"
	evtTownClosing         = "townClosing"
	evtConversationUpdated = "conversationUpdated"
	evtConversationDestroy = "conversationDestroyed"
	evtClearLocal          = "clear-local"
)

type envelope struct {
	Type string `json:"type"`
}

type movementPayload struct {
	Location domain.UserLocation `json:"location"`
}

type chatPayload struct {
	Message domain.ChatMessage `json:"message"`
}

type drawingPayload struct {
	Line domain.LineData `json:"line"`
	Area string          `json:"area"`
}

type joinPayload struct {
	Area            string            `json:"area"`
	MemberPlayerIDs []domain.PlayerID `json:"memberPlayerIds"`
}

type canvasPayload struct {
	Data string `json:"data"`
	Area string `json:"area"`
}

type playerEvent struct {
	Type   string         `json:"type"`
	Player *domain.Player `json:"player"`
}

type chatEvent struct {
	Type    string             `json:"type"`
	Message domain.ChatMessage `json:"message"`
}

type conversationEvent struct {
	Type             string                  `json:"type"`
	ConversationArea domain.ConversationArea `json:"conversationArea"`
}

type clearLocalEvent struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

type drawingEvent struct {
	Type string          `json:"type"`
	Line domain.LineData `json:"line"`
}

type canvasEvent struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

type townClosingEvent struct {
	Type string `json:"type"`
}
