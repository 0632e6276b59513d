package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hideandseek/session-server/internal/registry"
	"github.com/hideandseek/session-server/internal/rules"
	"github.com/hideandseek/session-server/pkg/protocol"
)

const (
	outboxSize   = 32
	writeTimeout = 5 * time.Second
)

var errUnknownAction = errors.New("unknown action")

// Handler upgrades the connection and runs the action dispatch loop. Each
// connection gets a stable conn id for its lifetime and a single outbox
// through which both acks and room broadcasts travel, so only one goroutine
// ever writes to the socket.
func Handler(reg *registry.Registry, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := uuid.NewString()
		outbox := make(chan []byte, outboxSize)
		log.Info("client connected", zap.String("conn", connID))

		defer func() {
			reg.Disconnect(connID)
			log.Info("client disconnected", zap.String("conn", connID))
		}()

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for {
				select {
				case <-writeCtx.Done():
					return
				case payload := <-outbox:
					ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
					_ = conn.Write(ctx, websocket.MessageText, payload)
					cancel()
				}
			}
		}()

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Warn("read failed", zap.String("conn", connID), zap.Error(err))
				}
				return
			}

			var action protocol.ClientAction
			if err := json.Unmarshal(data, &action); err != nil {
				enqueue(outbox, protocol.Response{Success: false, Error: "bad json"})
				continue
			}

			resp := dispatch(reg, connID, outbox, action)
			resp.ID = action.ID
			enqueue(outbox, resp)
		}
	}
}

func dispatch(reg *registry.Registry, connID string, outbox chan []byte, action protocol.ClientAction) protocol.Response {
	switch action.Action {
	case protocol.ActionCreateRoom:
		var p protocol.CreateRoomPayload
		if err := json.Unmarshal(action.Data, &p); err != nil {
			return fail(err)
		}
		room, err := reg.CreateRoom(connID, p.PlayerName, p.Avatar, p.MaxPlayers, p.IsPrivate, p.MapID, outbox)
		if err != nil {
			return fail(err)
		}
		return ok(room)

	case protocol.ActionJoinRoom:
		var p protocol.JoinRoomPayload
		if err := json.Unmarshal(action.Data, &p); err != nil {
			return fail(err)
		}
		r, found := reg.RoomByID(p.RoomID)
		if !found {
			return fail(rules.ErrRoomNotFound)
		}
		room, err := r.Join(connID, p.PlayerName, p.Avatar, outbox)
		if err != nil {
			return fail(err)
		}
		return ok(room)

	case protocol.ActionJoinRoomWithCode:
		var p protocol.JoinRoomWithCodePayload
		if err := json.Unmarshal(action.Data, &p); err != nil {
			return fail(err)
		}
		r, found := reg.RoomByCode(p.Code)
		if !found {
			return fail(rules.ErrRoomNotFound)
		}
		room, err := r.Join(connID, p.PlayerName, p.Avatar, outbox)
		if err != nil {
			return fail(err)
		}
		return ok(room)

	case protocol.ActionLeaveRoom:
		reg.LeaveRoom(connID)
		return ok(nil)

	case protocol.ActionStartGame:
		var p protocol.StartGamePayload
		if err := json.Unmarshal(action.Data, &p); err != nil {
			return fail(err)
		}
		r, found := reg.RoomByID(p.RoomID)
		if !found {
			return fail(rules.ErrRoomNotFound)
		}
		room, err := r.Start(connID)
		if err != nil {
			return fail(err)
		}
		return ok(room)

	case protocol.ActionSelectHidingSpot:
		var p protocol.SelectHidingSpotPayload
		if err := json.Unmarshal(action.Data, &p); err != nil {
			return fail(err)
		}
		r, found := reg.RoomByConn(connID)
		if !found {
			return fail(rules.ErrRoomNotFound)
		}
		if err := r.SelectSpot(connID, p.SpotID); err != nil {
			return fail(err)
		}
		return ok(nil)

	case protocol.ActionUpdateSeekerPosition:
		var p protocol.UpdateSeekerPositionPayload
		if err := json.Unmarshal(action.Data, &p); err != nil {
			return fail(err)
		}
		r, found := reg.RoomByConn(connID)
		if !found {
			return fail(rules.ErrRoomNotFound)
		}
		if err := r.MoveSeeker(connID, p.X, p.Y); err != nil {
			return fail(err)
		}
		return ok(nil)

	case protocol.ActionFetchAvailableRooms:
		return ok(reg.AvailableRooms())

	default:
		return fail(errUnknownAction)
	}
}

func ok(data any) protocol.Response {
	return protocol.Response{Success: true, Data: data}
}

func fail(err error) protocol.Response {
	return protocol.Response{Success: false, Error: err.Error()}
}

func enqueue(outbox chan []byte, resp protocol.Response) {
	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	select {
	case outbox <- payload:
	default:
	}
}
