// Package rules holds the precondition guards run before every mutating
// registry operation. Each failure is a distinct sentinel so the boundary
// layer can map it to a structured response.
package rules

import (
	"errors"

	"github.com/hideandseek/session-server/internal/game"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrRoomNotWaiting   = errors.New("room is not accepting new players")
	ErrNameTaken        = errors.New("player name already taken in this room")
	ErrNotHost          = errors.New("only the host can perform this action")
	ErrNotEnoughPlayers = errors.New("need at least 2 players to start the game")
	ErrAlreadyStarted   = errors.New("game has already started")
	ErrWrongPhase       = errors.New("action not allowed in current phase")
	ErrSeekerCannotHide = errors.New("seeker cannot select hiding spot")
	ErrNotSeeker        = errors.New("only seeker can update position")
	ErrSpotNotFound     = errors.New("hiding spot not found")
	ErrSpotOccupied     = errors.New("hiding spot already occupied")
	ErrUnknownMap       = errors.New("invalid map id")
	ErrBadCapacity      = errors.New("maxPlayers must be between 2 and 10")
	ErrNoGameState      = errors.New("game state not found")
)

func ValidateCapacity(maxPlayers int) error {
	if maxPlayers < 2 || maxPlayers > 10 {
		return ErrBadCapacity
	}
	return nil
}

func ValidateJoinRoom(room *game.Room, playerName string) error {
	if len(room.Players) >= room.MaxPlayers {
		return ErrRoomFull
	}
	if room.Status != game.PhaseWaiting {
		return ErrRoomNotWaiting
	}
	for _, p := range room.Players {
		if p.Username == playerName {
			return ErrNameTaken
		}
	}
	return nil
}

func ValidateHost(room *game.Room, connID string) error {
	i, ok := room.PlayerByConn(connID)
	if !ok {
		return ErrRoomNotFound
	}
	if !room.Players[i].IsHost {
		return ErrNotHost
	}
	return nil
}

func ValidateGameStart(room *game.Room) error {
	if len(room.Players) < 2 {
		return ErrNotEnoughPlayers
	}
	if room.Status != game.PhaseWaiting {
		return ErrAlreadyStarted
	}
	return nil
}

func ValidateSpotSelection(s *game.State, connID string) error {
	if s.Phase != game.PhaseHiding {
		return ErrWrongPhase
	}
	if s.Seeker == connID {
		return ErrSeekerCannotHide
	}
	return nil
}

func ValidateSeekerMove(s *game.State, connID string) error {
	if s.Phase != game.PhaseSeeking {
		return ErrWrongPhase
	}
	if s.Seeker != connID {
		return ErrNotSeeker
	}
	return nil
}
