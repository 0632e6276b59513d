package protocol

import "encoding/json"

// Actions a client may send over the websocket. Every action is acked with a
// Response carrying the same ID.
const (
	ActionCreateRoom           = "createRoom"
	ActionJoinRoom             = "joinRoom"
	ActionJoinRoomWithCode     = "joinRoomWithCode"
	ActionLeaveRoom            = "leaveRoom"
	ActionStartGame            = "startGame"
	ActionSelectHidingSpot     = "selectHidingSpot"
	ActionUpdateSeekerPosition = "updateSeekerPosition"
	ActionFetchAvailableRooms  = "fetchAvailableRooms"
)

// Events the server pushes to every connection joined to a room.
const (
	EventRoomUpdated      = "roomUpdated"
	EventPlayerJoined     = "playerJoined"
	EventPlayerLeft       = "playerLeft"
	EventGameStarted      = "gameStarted"
	EventGameStateUpdated = "gameStateUpdated"
	EventSeekerMovement   = "seekerMovement"
	EventPlayerFound      = "playerFound"
	EventError            = "error"
)

// ClientAction is the envelope for every inbound frame. Data is decoded per
// action into one of the payload types below.
type ClientAction struct {
	ID     int64           `json:"id"`
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Response is the direct acknowledgement for a ClientAction.
type Response struct {
	ID      int64  `json:"id"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ServerEvent is a room-addressed push, fanned out by the broadcast gateway.
type ServerEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type CreateRoomPayload struct {
	PlayerName string `json:"playerName"`
	MaxPlayers int    `json:"maxPlayers"`
	IsPrivate  bool   `json:"isPrivate"`
	MapID      string `json:"mapId"`
	Avatar     string `json:"avatar"`
}

type JoinRoomPayload struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
	Avatar     string `json:"avatar"`
}

type JoinRoomWithCodePayload struct {
	Code       string `json:"code"`
	PlayerName string `json:"playerName"`
	Avatar     string `json:"avatar"`
}

type LeaveRoomPayload struct {
	RoomID string `json:"roomId"`
}

type StartGamePayload struct {
	RoomID string `json:"roomId"`
}

type SelectHidingSpotPayload struct {
	SpotID string `json:"spotId"`
}

type UpdateSeekerPositionPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SeekerMovementEvent is the payload of EventSeekerMovement.
type SeekerMovementEvent struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PlayerFoundEvent is the payload of EventPlayerFound.
type PlayerFoundEvent struct {
	Username string `json:"username"`
}

// RoomSummary is the lobby-browser projection of a room.
type RoomSummary struct {
	ID          string `json:"id"`
	MapName     string `json:"mapName"`
	HostName    string `json:"hostName"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	IsPrivate   bool   `json:"isPrivate"`
	MapID       string `json:"mapId"`
	Status      string `json:"status"`
}
