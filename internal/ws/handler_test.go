package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hideandseek/session-server/internal/config"
	"github.com/hideandseek/session-server/internal/game"
	"github.com/hideandseek/session-server/internal/gamemap"
	"github.com/hideandseek/session-server/internal/gateway"
	"github.com/hideandseek/session-server/internal/registry"
	"github.com/hideandseek/session-server/internal/timer"
	"github.com/hideandseek/session-server/pkg/protocol"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	log := zap.NewNop()
	reg := registry.New(config.Default(), gamemap.NewCatalog(), gateway.New(log), timer.NewService(), log)
	t.Cleanup(reg.Cleanup)
	return reg
}

func action(t *testing.T, id int64, name string, payload any) protocol.ClientAction {
	t.Helper()
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		raw = data
	}
	return protocol.ClientAction{ID: id, Action: name, Data: raw}
}

func TestDispatch_CreateRoom(t *testing.T) {
	reg := testRegistry(t)
	outbox := make(chan []byte, 8)

	resp := dispatch(reg, "conn-1", outbox, action(t, 1, protocol.ActionCreateRoom, protocol.CreateRoomPayload{
		PlayerName: "alice",
		MaxPlayers: 4,
		MapID:      "chattatamer",
		Avatar:     "fox",
	}))

	require.True(t, resp.Success, resp.Error)
	room, ok := resp.Data.(game.Room)
	require.True(t, ok)
	assert.Equal(t, "alice", room.Players[0].Username)
	assert.Len(t, room.Code, 6)
}

func TestDispatch_CreateRoom_BadMap(t *testing.T) {
	reg := testRegistry(t)

	resp := dispatch(reg, "conn-1", make(chan []byte, 8), action(t, 2, protocol.ActionCreateRoom, protocol.CreateRoomPayload{
		PlayerName: "alice",
		MaxPlayers: 4,
		MapID:      "atlantis",
	}))

	assert.False(t, resp.Success)
	assert.Equal(t, "invalid map id", resp.Error)
}

func TestDispatch_JoinAndStartFlow(t *testing.T) {
	reg := testRegistry(t)
	hostOut := make(chan []byte, 8)
	bobOut := make(chan []byte, 8)

	created := dispatch(reg, "conn-host", hostOut, action(t, 1, protocol.ActionCreateRoom, protocol.CreateRoomPayload{
		PlayerName: "alice", MaxPlayers: 2, MapID: "clown-city",
	}))
	require.True(t, created.Success)
	room := created.Data.(game.Room)

	joined := dispatch(reg, "conn-bob", bobOut, action(t, 2, protocol.ActionJoinRoom, protocol.JoinRoomPayload{
		RoomID: room.ID, PlayerName: "bob",
	}))
	require.True(t, joined.Success, joined.Error)

	started := dispatch(reg, "conn-host", hostOut, action(t, 3, protocol.ActionStartGame, protocol.StartGamePayload{RoomID: room.ID}))
	require.True(t, started.Success, started.Error)
	assert.Equal(t, game.PhaseHiding, started.Data.(game.Room).Status)
}

func TestDispatch_JoinWithCode(t *testing.T) {
	reg := testRegistry(t)

	created := dispatch(reg, "conn-host", make(chan []byte, 8), action(t, 1, protocol.ActionCreateRoom, protocol.CreateRoomPayload{
		PlayerName: "alice", MaxPlayers: 4, MapID: "pleasant-park", IsPrivate: true,
	}))
	require.True(t, created.Success)
	code := created.Data.(game.Room).Code

	joined := dispatch(reg, "conn-bob", make(chan []byte, 8), action(t, 2, protocol.ActionJoinRoomWithCode, protocol.JoinRoomWithCodePayload{
		Code: code, PlayerName: "bob",
	}))
	assert.True(t, joined.Success, joined.Error)

	missed := dispatch(reg, "conn-carol", make(chan []byte, 8), action(t, 3, protocol.ActionJoinRoomWithCode, protocol.JoinRoomWithCodePayload{
		Code: "NOPE99", PlayerName: "carol",
	}))
	assert.False(t, missed.Success)
}

func TestDispatch_ActionsWithoutRoom(t *testing.T) {
	reg := testRegistry(t)
	out := make(chan []byte, 8)

	spot := dispatch(reg, "conn-x", out, action(t, 1, protocol.ActionSelectHidingSpot, protocol.SelectHidingSpotPayload{SpotID: "1"}))
	assert.False(t, spot.Success)

	move := dispatch(reg, "conn-x", out, action(t, 2, protocol.ActionUpdateSeekerPosition, protocol.UpdateSeekerPositionPayload{X: 1, Y: 2}))
	assert.False(t, move.Success)

	// leaving with no room is a quiet no-op, matching disconnect semantics
	leave := dispatch(reg, "conn-x", out, action(t, 3, protocol.ActionLeaveRoom, protocol.LeaveRoomPayload{}))
	assert.True(t, leave.Success)
}

func TestDispatch_FetchAvailableRooms(t *testing.T) {
	reg := testRegistry(t)

	resp := dispatch(reg, "conn-1", make(chan []byte, 8), action(t, 1, protocol.ActionFetchAvailableRooms, nil))
	require.True(t, resp.Success)
	assert.Empty(t, resp.Data)
}

func TestDispatch_UnknownAction(t *testing.T) {
	reg := testRegistry(t)

	resp := dispatch(reg, "conn-1", make(chan []byte, 8), protocol.ClientAction{ID: 9, Action: "teleport"})
	assert.False(t, resp.Success)
	assert.Equal(t, "unknown action", resp.Error)
}
