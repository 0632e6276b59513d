package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hideandseek/session-server/internal/game"
)

func waitingRoom(maxPlayers int, names ...string) *game.Room {
	room := &game.Room{
		ID:         "room-1",
		MaxPlayers: maxPlayers,
		Status:     game.PhaseWaiting,
	}
	for i, name := range names {
		room.Players = append(room.Players, game.Player{
			ConnID:   name,
			Username: name,
			IsAlive:  true,
			IsHost:   i == 0,
		})
	}
	return room
}

func TestValidateCapacity(t *testing.T) {
	assert.ErrorIs(t, ValidateCapacity(1), ErrBadCapacity)
	assert.ErrorIs(t, ValidateCapacity(11), ErrBadCapacity)
	assert.NoError(t, ValidateCapacity(2))
	assert.NoError(t, ValidateCapacity(10))
}

func TestValidateJoinRoom(t *testing.T) {
	cases := []struct {
		name    string
		room    *game.Room
		player  string
		wantErr error
	}{
		{"ok", waitingRoom(4, "alice"), "bob", nil},
		{"full", waitingRoom(2, "alice", "bob"), "carol", ErrRoomFull},
		{"name taken exact match", waitingRoom(4, "alice"), "alice", ErrNameTaken},
		{"name is case sensitive", waitingRoom(4, "alice"), "Alice", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateJoinRoom(tc.room, tc.player)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}

	started := waitingRoom(4, "alice", "bob")
	started.Status = game.PhaseHiding
	assert.ErrorIs(t, ValidateJoinRoom(started, "carol"), ErrRoomNotWaiting)
}

func TestValidateHost(t *testing.T) {
	room := waitingRoom(4, "alice", "bob")

	assert.NoError(t, ValidateHost(room, "alice"))
	assert.ErrorIs(t, ValidateHost(room, "bob"), ErrNotHost)
	assert.ErrorIs(t, ValidateHost(room, "nobody"), ErrRoomNotFound)
}

func TestValidateGameStart(t *testing.T) {
	assert.ErrorIs(t, ValidateGameStart(waitingRoom(4, "alice")), ErrNotEnoughPlayers)
	assert.NoError(t, ValidateGameStart(waitingRoom(4, "alice", "bob")))

	started := waitingRoom(4, "alice", "bob")
	started.Status = game.PhaseSeeking
	assert.ErrorIs(t, ValidateGameStart(started), ErrAlreadyStarted)
}

func TestValidateSpotSelection(t *testing.T) {
	s := game.NewState("seeker", 3, 30*time.Second, time.Now())

	assert.NoError(t, ValidateSpotSelection(s, "hider"))
	assert.ErrorIs(t, ValidateSpotSelection(s, "seeker"), ErrSeekerCannotHide)

	s.Phase = game.PhaseSeeking
	assert.ErrorIs(t, ValidateSpotSelection(s, "hider"), ErrWrongPhase)
}

func TestValidateSeekerMove(t *testing.T) {
	s := game.NewState("seeker", 3, 30*time.Second, time.Now())

	assert.ErrorIs(t, ValidateSeekerMove(s, "seeker"), ErrWrongPhase, "no moving during hiding")

	s.Phase = game.PhaseSeeking
	assert.NoError(t, ValidateSeekerMove(s, "seeker"))
	assert.ErrorIs(t, ValidateSeekerMove(s, "hider"), ErrNotSeeker)
}
