package game

import (
	"errors"
	"math/rand"
	"slices"
	"time"

	"github.com/hideandseek/session-server/internal/gamemap"
)

var ErrNoEligibleSeeker = errors.New("no players available to select as seeker")

// swappable in tests so seeker selection is deterministic
var randIntn = rand.Intn

// SelectSeeker picks a uniform-random seeker among alive players who have not
// served yet. When every alive player has served, eligibility resets and the
// pick falls back to the full alive set so a game can never stall.
func SelectSeeker(players []Player, previousSeekers []string) (Player, error) {
	eligible := make([]Player, 0, len(players))
	for _, p := range players {
		if p.IsAlive && !slices.Contains(previousSeekers, p.ConnID) {
			eligible = append(eligible, p)
		}
	}

	if len(eligible) == 0 {
		for _, p := range players {
			if p.IsAlive {
				eligible = append(eligible, p)
			}
		}
	}
	if len(eligible) == 0 {
		return Player{}, ErrNoEligibleSeeker
	}
	return eligible[randIntn(len(eligible))], nil
}

// NewState initializes game state for the first round of a game.
func NewState(seekerConnID string, maxAttempts int, hidingDuration time.Duration, now time.Time) *State {
	return &State{
		Phase:           PhaseHiding,
		Seeker:          seekerConnID,
		SeekerPosition:  nil,
		PreviousSeekers: []string{},
		SeekerAttempts:  0,
		MaxAttempts:     maxAttempts,
		CurrentRound:    1,
		TimeLeft:        hidingDuration.Milliseconds(),
		PhaseStartTime:  now.UnixMilli(),
		HiddenPlayers:   map[string]string{},
		CheckedSpots:    []string{},
		Winner:          nil,
	}
}

// PointInSpot reports whether (x, y) falls inside the spot's rectangle.
// Edges are inclusive on all four sides.
func PointInSpot(x, y float64, s gamemap.HidingSpot) bool {
	return x >= s.X && x <= s.X+s.Width && y >= s.Y && y <= s.Y+s.Height
}

func SpotChecked(s *State, spotID string) bool {
	return slices.Contains(s.CheckedSpots, spotID)
}

// AliveHiders returns the alive players other than the seeker.
func AliveHiders(room *Room, s *State) []Player {
	hiders := make([]Player, 0, len(room.Players))
	for _, p := range room.Players {
		if p.IsAlive && p.ConnID != s.Seeker {
			hiders = append(hiders, p)
		}
	}
	return hiders
}

// AllPlayersHidden reports whether every alive non-seeker player has claimed
// a hiding spot, which ends the hiding phase early.
func AllPlayersHidden(room *Room, s *State) bool {
	return len(s.HiddenPlayers) == len(AliveHiders(room, s))
}

// ClearPlayerSpots releases any hiding spot occupied by the given connection.
func ClearPlayerSpots(room *Room, connID string) {
	for i := range room.Map.HidingSpots {
		if room.Map.HidingSpots[i].OccupiedBy == connID {
			room.Map.HidingSpots[i].IsOccupied = false
			room.Map.HidingSpots[i].OccupiedBy = ""
		}
	}
}

// Outcome is the round-resolution verdict after a spot check.
type Outcome struct {
	Over             bool
	SeekerEliminated bool
	Next             Phase
	Winner           *Player
}

// ResolveRound evaluates end conditions after a spot check. The round ends
// when no alive hiders remain or the seeker is out of attempts; a seeker who
// exhausts all attempts with hiders still alive is eliminated. The caller
// applies the outcome to the room and state.
func ResolveRound(room *Room, s *State) Outcome {
	hiders := AliveHiders(room, s)
	if len(hiders) > 0 && s.SeekerAttempts < s.MaxAttempts {
		return Outcome{}
	}

	out := Outcome{Over: true}
	alive := make([]Player, 0, len(room.Players))
	for _, p := range room.Players {
		if !p.IsAlive {
			continue
		}
		if p.ConnID == s.Seeker && len(hiders) > 0 {
			// out of attempts with hiders still standing
			out.SeekerEliminated = true
			continue
		}
		alive = append(alive, p)
	}

	switch {
	case len(alive) == 1:
		winner := alive[0]
		out.Next = PhaseEnded
		out.Winner = &winner
	case len(alive) > 1:
		out.Next = PhaseResults
	default:
		out.Next = PhaseEnded
	}
	return out
}

// StartRound resets per-round state for the next round: occupancy, hidden
// players and checked spots are cleared, attempts reset, and a new seeker
// takes over.
func StartRound(room *Room, s *State, seekerConnID string, hidingDuration time.Duration, now time.Time) {
	for i := range room.Map.HidingSpots {
		room.Map.HidingSpots[i].IsOccupied = false
		room.Map.HidingSpots[i].OccupiedBy = ""
	}
	s.Seeker = seekerConnID
	s.SeekerPosition = nil
	s.SeekerAttempts = 0
	s.HiddenPlayers = map[string]string{}
	s.CheckedSpots = []string{}
	s.Winner = nil
	s.Phase = PhaseHiding
	s.TimeLeft = hidingDuration.Milliseconds()
	s.PhaseStartTime = now.UnixMilli()
	room.Status = PhaseHiding
}

// RoomStats is a logging/diagnostics projection of a room.
type RoomStats struct {
	TotalPlayers int
	AlivePlayers int
	HostName     string
	MapName      string
}

func StatsFor(room *Room) RoomStats {
	stats := RoomStats{
		TotalPlayers: len(room.Players),
		HostName:     "Unknown",
		MapName:      room.Map.Name,
	}
	for _, p := range room.Players {
		if p.IsAlive {
			stats.AlivePlayers++
		}
		if p.IsHost {
			stats.HostName = p.Username
		}
	}
	return stats
}
