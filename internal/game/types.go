package game

import "github.com/hideandseek/session-server/internal/gamemap"

// Phase is both the game-state phase and the room status; the room mirrors
// the game phase once a game starts.
type Phase string

const (
	PhaseWaiting Phase = "waiting"
	PhaseHiding  Phase = "hiding"
	PhaseSeeking Phase = "seeking"
	PhaseResults Phase = "results"
	PhaseEnded   Phase = "ended"
)

type Player struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Avatar    string `json:"avatar"`
	ConnID    string `json:"connId"`
	IsAlive   bool   `json:"isAlive"`
	WasSeeker bool   `json:"wasSeeker"`
	IsHost    bool   `json:"isHost"`
}

type Room struct {
	ID         string      `json:"id"`
	Code       string      `json:"code"`
	Players    []Player    `json:"players"`
	Map        gamemap.Map `json:"map"`
	MaxPlayers int         `json:"maxPlayers"`
	IsPrivate  bool        `json:"isPrivate"`
	Status     Phase       `json:"status"`
}

// Clone returns a deep copy of the room, used for broadcast payloads so a
// snapshot is never mutated mid-serialization.
func (r *Room) Clone() Room {
	out := *r
	out.Players = make([]Player, len(r.Players))
	copy(out.Players, r.Players)
	out.Map = r.Map.Clone()
	return out
}

func (r *Room) PlayerByConn(connID string) (int, bool) {
	for i := range r.Players {
		if r.Players[i].ConnID == connID {
			return i, true
		}
	}
	return -1, false
}

func (r *Room) Host() (Player, bool) {
	for _, p := range r.Players {
		if p.IsHost {
			return p, true
		}
	}
	return Player{}, false
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// State is the per-room game state, created on game start and destroyed with
// the room.
type State struct {
	Phase           Phase             `json:"phase"`
	Seeker          string            `json:"seeker"`
	SeekerPosition  *Position         `json:"seekerPosition"`
	PreviousSeekers []string          `json:"previousSeekers"`
	SeekerAttempts  int               `json:"seekerAttempts"`
	MaxAttempts     int               `json:"maxAttempts"`
	CurrentRound    int               `json:"currentRound"`
	TimeLeft        int64             `json:"timeLeft"`
	PhaseStartTime  int64             `json:"phaseStartTime"`
	HiddenPlayers   map[string]string `json:"hiddenPlayers"`
	CheckedSpots    []string          `json:"checkedSpots"`
	Winner          *Player           `json:"winner"`
}

// Clone deep-copies the state for broadcast payloads.
func (s *State) Clone() State {
	out := *s
	if s.SeekerPosition != nil {
		pos := *s.SeekerPosition
		out.SeekerPosition = &pos
	}
	out.PreviousSeekers = append([]string(nil), s.PreviousSeekers...)
	out.CheckedSpots = append([]string(nil), s.CheckedSpots...)
	out.HiddenPlayers = make(map[string]string, len(s.HiddenPlayers))
	for k, v := range s.HiddenPlayers {
		out.HiddenPlayers[k] = v
	}
	if s.Winner != nil {
		w := *s.Winner
		out.Winner = &w
	}
	return out
}
