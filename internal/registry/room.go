package registry

import (
	"time"

	"go.uber.org/zap"

	"github.com/hideandseek/session-server/internal/config"
	"github.com/hideandseek/session-server/internal/game"
	"github.com/hideandseek/session-server/internal/gateway"
	"github.com/hideandseek/session-server/internal/rules"
	"github.com/hideandseek/session-server/internal/timer"
	"github.com/hideandseek/session-server/pkg/protocol"
)

type roomMsg interface{ isRoomMsg() }

type joinMsg struct {
	connID string
	name   string
	avatar string
	outbox chan<- []byte
	reply  chan joinReply
}

type joinReply struct {
	room game.Room
	err  error
}

type leaveMsg struct {
	connID string
	reply  chan leaveReply
}

type leaveReply struct {
	wasHost bool
	left    bool
}

type startMsg struct {
	connID string
	reply  chan startReply
}

type startReply struct {
	room game.Room
	err  error
}

type spotMsg struct {
	connID string
	spotID string
	reply  chan error
}

type moveMsg struct {
	connID string
	x, y   float64
	reply  chan error
}

type summaryMsg struct {
	reply chan summaryReply
}

type summaryReply struct {
	summary protocol.RoomSummary
	listed  bool
}

type stateMsg struct {
	reply chan stateReply
}

type stateReply struct {
	room game.Room
	gs   *game.State
}

type tickMsg struct {
	gen       int
	remaining time.Duration
}

type expireMsg struct {
	gen int
}

type shutdownMsg struct {
	reply chan struct{}
}

func (joinMsg) isRoomMsg()     {}
func (leaveMsg) isRoomMsg()    {}
func (startMsg) isRoomMsg()    {}
func (spotMsg) isRoomMsg()     {}
func (moveMsg) isRoomMsg()     {}
func (summaryMsg) isRoomMsg()  {}
func (stateMsg) isRoomMsg()    {}
func (tickMsg) isRoomMsg()     {}
func (expireMsg) isRoomMsg()   {}
func (shutdownMsg) isRoomMsg() {}

// Room is a handle to one room's actor goroutine. All state for the room is
// owned by that goroutine: inbound operations become messages on its inbox,
// so no two operations on the same room ever interleave, while different
// rooms proceed fully in parallel.
type Room struct {
	id    string
	inbox chan roomMsg
	done  chan struct{}

	reg    *Registry
	gw     *gateway.Gateway
	timers *timer.Service
	cfg    config.Config
	log    *zap.Logger

	// actor-owned, never touched outside the loop goroutine
	state  *game.Room
	gs     *game.State
	gen    int  // timer generation; bumping it invalidates in-flight fires
	closed bool // set by terminate; the loop exits before the next message
}

func newRoom(reg *Registry, state *game.Room) *Room {
	r := &Room{
		id:     state.ID,
		inbox:  make(chan roomMsg, 64),
		done:   make(chan struct{}),
		reg:    reg,
		gw:     reg.gw,
		timers: reg.timers,
		cfg:    reg.cfg,
		log:    reg.log,
		state:  state,
	}
	go r.loop()
	return r
}

func (r *Room) loop() {
	for {
		select {
		case <-r.done:
			return
		case m := <-r.inbox:
			r.handle(m)
			if r.closed {
				return
			}
		}
	}
}

func (r *Room) handle(m roomMsg) {
	switch msg := m.(type) {
	case joinMsg:
		r.handleJoin(msg)
	case leaveMsg:
		r.handleLeave(msg)
	case startMsg:
		r.handleStart(msg)
	case spotMsg:
		r.handleSpot(msg)
	case moveMsg:
		r.handleMove(msg)
	case summaryMsg:
		r.handleSummary(msg)
	case stateMsg:
		msg.reply <- stateReply{room: r.state.Clone(), gs: r.cloneState()}
	case tickMsg:
		r.handleTick(msg)
	case expireMsg:
		r.handleExpire(msg)
	case shutdownMsg:
		for _, p := range r.state.Players {
			r.reg.releaseConn(p.ConnID)
		}
		r.terminate()
		msg.reply <- struct{}{}
	}
}

// ---- public handle API (called from transport goroutines) ----

func (r *Room) Join(connID, name, avatar string, outbox chan<- []byte) (game.Room, error) {
	reply := make(chan joinReply, 1)
	rep, ok := request(r, joinMsg{connID: connID, name: name, avatar: avatar, outbox: outbox, reply: reply}, reply)
	if !ok {
		return game.Room{}, rules.ErrRoomNotFound
	}
	return rep.room, rep.err
}

// Leave removes the connection's player. The bool reports whether the player
// was actually in the room.
func (r *Room) Leave(connID string) (wasHost, left bool) {
	reply := make(chan leaveReply, 1)
	rep, ok := request(r, leaveMsg{connID: connID, reply: reply}, reply)
	if !ok {
		return false, false
	}
	return rep.wasHost, rep.left
}

func (r *Room) Start(connID string) (game.Room, error) {
	reply := make(chan startReply, 1)
	rep, ok := request(r, startMsg{connID: connID, reply: reply}, reply)
	if !ok {
		return game.Room{}, rules.ErrRoomNotFound
	}
	return rep.room, rep.err
}

func (r *Room) SelectSpot(connID, spotID string) error {
	reply := make(chan error, 1)
	err, ok := request(r, spotMsg{connID: connID, spotID: spotID, reply: reply}, reply)
	if !ok {
		return rules.ErrRoomNotFound
	}
	return err
}

func (r *Room) MoveSeeker(connID string, x, y float64) error {
	reply := make(chan error, 1)
	err, ok := request(r, moveMsg{connID: connID, x: x, y: y, reply: reply}, reply)
	if !ok {
		return rules.ErrRoomNotFound
	}
	return err
}

// Summary projects the room for the lobby browser. listed is false for
// private rooms and rooms past the waiting phase.
func (r *Room) Summary() (summary protocol.RoomSummary, listed, ok bool) {
	reply := make(chan summaryReply, 1)
	rep, ok := request(r, summaryMsg{reply: reply}, reply)
	if !ok {
		return protocol.RoomSummary{}, false, false
	}
	return rep.summary, rep.listed, true
}

// State returns consistent snapshots of the room and, if a game is running,
// its game state.
func (r *Room) State() (game.Room, *game.State, bool) {
	reply := make(chan stateReply, 1)
	rep, ok := request(r, stateMsg{reply: reply}, reply)
	if !ok {
		return game.Room{}, nil, false
	}
	return rep.room, rep.gs, true
}

func (r *Room) Shutdown() {
	reply := make(chan struct{}, 1)
	request(r, shutdownMsg{reply: reply}, reply)
}

// request delivers m to the actor and waits for its reply; it returns false
// if the room terminated before the message was processed.
func request[T any](r *Room, m roomMsg, reply chan T) (T, bool) {
	select {
	case r.inbox <- m:
	case <-r.done:
		var zero T
		return zero, false
	}
	select {
	case v := <-reply:
		return v, true
	case <-r.done:
		// terminated after queueing; the reply may still have landed
		select {
		case v := <-reply:
			return v, true
		default:
			var zero T
			return zero, false
		}
	}
}

// notify is the timer-callback side of the inbox: ticks and expiries re-enter
// the actor so they serialize with client actions.
func (r *Room) notify(m roomMsg) {
	select {
	case r.inbox <- m:
	case <-r.done:
	}
}

// ---- actor internals ----

func (r *Room) handleJoin(m joinMsg) {
	if err := rules.ValidateJoinRoom(r.state, m.name); err != nil {
		m.reply <- joinReply{err: err}
		return
	}

	r.state.Players = append(r.state.Players, game.Player{
		ID:       m.connID,
		Username: m.name,
		Avatar:   m.avatar,
		ConnID:   m.connID,
		IsAlive:  true,
	})
	r.reg.bindConn(m.connID, r.id)
	r.gw.Join(r.id, m.connID, m.outbox)

	snap := r.state.Clone()
	r.gw.Broadcast(r.id, protocol.EventPlayerJoined, snap, m.connID)
	m.reply <- joinReply{room: snap}

	r.log.Info("player joined room",
		zap.String("room", r.id),
		zap.String("player", m.name))
}

func (r *Room) handleLeave(m leaveMsg) {
	i, ok := r.state.PlayerByConn(m.connID)
	if !ok {
		m.reply <- leaveReply{}
		return
	}
	p := r.state.Players[i]
	wasHost := p.IsHost

	r.state.Players = append(r.state.Players[:i], r.state.Players[i+1:]...)
	r.reg.releaseConn(m.connID)
	r.gw.Leave(r.id, m.connID)
	game.ClearPlayerSpots(r.state, m.connID)
	if r.gs != nil {
		delete(r.gs.HiddenPlayers, m.connID)
	}

	if len(r.state.Players) == 0 {
		r.log.Info("room deleted, no players left", zap.String("room", r.id))
		r.terminate()
		m.reply <- leaveReply{wasHost: wasHost, left: true}
		return
	}

	midGame := r.state.Status == game.PhaseHiding || r.state.Status == game.PhaseSeeking

	if wasHost && midGame {
		// host leaving during active gameplay ends the session for everyone
		r.gw.Broadcast(r.id, protocol.EventError, "Host left the game")
		for _, q := range r.state.Players {
			r.reg.releaseConn(q.ConnID)
		}
		r.log.Info("host left mid-game, session terminated",
			zap.String("room", r.id),
			zap.String("host", p.Username))
		r.terminate()
		m.reply <- leaveReply{wasHost: true, left: true}
		return
	}

	if wasHost {
		r.state.Players[0].IsHost = true
		r.log.Info("host transferred",
			zap.String("room", r.id),
			zap.String("to", r.state.Players[0].Username))
	}

	snap := r.state.Clone()
	r.gw.Broadcast(r.id, protocol.EventPlayerLeft, snap)
	if wasHost {
		r.gw.Broadcast(r.id, protocol.EventRoomUpdated, snap)
	}

	if r.gs != nil && midGame {
		switch {
		case m.connID == r.gs.Seeker:
			r.resolveSeekerLoss()
		case r.gs.Phase == game.PhaseHiding && game.AllPlayersHidden(r.state, r.gs):
			r.endHidingPhase()
		case r.gs.Phase == game.PhaseSeeking:
			if out := game.ResolveRound(r.state, r.gs); out.Over {
				r.applyOutcome(out)
			}
		}
	}

	m.reply <- leaveReply{wasHost: wasHost, left: true}
	r.log.Info("player left room",
		zap.String("room", r.id),
		zap.String("player", p.Username))
}

func (r *Room) handleStart(m startMsg) {
	if err := rules.ValidateHost(r.state, m.connID); err != nil {
		m.reply <- startReply{err: err}
		return
	}
	if err := rules.ValidateGameStart(r.state); err != nil {
		m.reply <- startReply{err: err}
		return
	}

	seeker, err := game.SelectSeeker(r.state.Players, nil)
	if err != nil {
		m.reply <- startReply{err: err}
		return
	}
	if i, ok := r.state.PlayerByConn(seeker.ConnID); ok {
		r.state.Players[i].WasSeeker = true
	}

	r.gs = game.NewState(seeker.ConnID, r.cfg.MaxAttempts, r.cfg.HidingPhase, time.Now())
	r.beginHiding()

	snap := r.state.Clone()
	r.gw.Broadcast(r.id, protocol.EventGameStarted, snap, m.connID)
	m.reply <- startReply{room: snap}

	stats := game.StatsFor(r.state)
	r.log.Info("game started",
		zap.String("room", r.id),
		zap.String("host", stats.HostName),
		zap.String("seeker", seeker.Username),
		zap.String("map", stats.MapName),
		zap.Int("players", stats.TotalPlayers))
}

func (r *Room) handleSpot(m spotMsg) {
	if r.gs == nil {
		m.reply <- rules.ErrNoGameState
		return
	}
	if err := rules.ValidateSpotSelection(r.gs, m.connID); err != nil {
		m.reply <- err
		return
	}
	i, ok := r.state.PlayerByConn(m.connID)
	if !ok {
		m.reply <- rules.ErrRoomNotFound
		return
	}
	if !r.state.Players[i].IsAlive {
		m.reply <- rules.ErrWrongPhase
		return
	}

	idx := -1
	for j, s := range r.state.Map.HidingSpots {
		if s.ID == m.spotID {
			idx = j
			break
		}
	}
	if idx < 0 {
		m.reply <- rules.ErrSpotNotFound
		return
	}
	spot := &r.state.Map.HidingSpots[idx]
	if spot.IsOccupied && spot.OccupiedBy != m.connID {
		m.reply <- rules.ErrSpotOccupied
		return
	}

	game.ClearPlayerSpots(r.state, m.connID)
	spot.IsOccupied = true
	spot.OccupiedBy = m.connID
	r.gs.HiddenPlayers[m.connID] = m.spotID

	if game.AllPlayersHidden(r.state, r.gs) {
		// everyone is in; the hiding timer no longer matters
		r.endHidingPhase()
	} else {
		r.broadcastGameState()
	}
	m.reply <- nil

	r.log.Info("hiding spot selected",
		zap.String("room", r.id),
		zap.String("player", r.state.Players[i].Username),
		zap.String("spot", m.spotID))
}

func (r *Room) handleMove(m moveMsg) {
	if r.gs == nil {
		m.reply <- rules.ErrNoGameState
		return
	}
	if err := rules.ValidateSeekerMove(r.gs, m.connID); err != nil {
		m.reply <- err
		return
	}

	r.gs.SeekerPosition = &game.Position{X: m.x, Y: m.y}
	r.gw.Broadcast(r.id, protocol.EventSeekerMovement, protocol.SeekerMovementEvent{X: m.x, Y: m.y})

	// first unchecked spot containing the point wins, in map order
	for i, spot := range r.state.Map.HidingSpots {
		if game.PointInSpot(m.x, m.y, spot) && !game.SpotChecked(r.gs, spot.ID) {
			r.checkSpot(i)
			break
		}
	}
	m.reply <- nil

	r.log.Debug("seeker moved",
		zap.String("room", r.id),
		zap.Float64("x", m.x),
		zap.Float64("y", m.y))
}

func (r *Room) checkSpot(idx int) {
	spot := &r.state.Map.HidingSpots[idx]
	r.gs.SeekerAttempts++
	r.gs.CheckedSpots = append(r.gs.CheckedSpots, spot.ID)

	for connID, spotID := range r.gs.HiddenPlayers {
		if spotID != spot.ID {
			continue
		}
		if i, ok := r.state.PlayerByConn(connID); ok {
			r.state.Players[i].IsAlive = false
			delete(r.gs.HiddenPlayers, connID)
			r.gw.Broadcast(r.id, protocol.EventPlayerFound,
				protocol.PlayerFoundEvent{Username: r.state.Players[i].Username})
			r.log.Info("player found",
				zap.String("room", r.id),
				zap.String("player", r.state.Players[i].Username),
				zap.String("spot", spot.ID))
		}
		break
	}

	spot.IsOccupied = false
	spot.OccupiedBy = ""

	if out := game.ResolveRound(r.state, r.gs); out.Over {
		r.applyOutcome(out)
		return
	}
	r.broadcastGameState()
}

func (r *Room) handleTick(m tickMsg) {
	if m.gen != r.gen || r.gs == nil || r.gs.Phase != game.PhaseHiding {
		return
	}
	r.gs.TimeLeft = m.remaining.Milliseconds()
	r.broadcastGameState()
}

func (r *Room) handleExpire(m expireMsg) {
	if m.gen != r.gen || r.gs == nil {
		return
	}
	switch r.gs.Phase {
	case game.PhaseHiding:
		r.endHidingPhase()
	case game.PhaseResults:
		r.nextRound()
	}
}

func (r *Room) handleSummary(m summaryMsg) {
	stats := game.StatsFor(r.state)
	m.reply <- summaryReply{
		summary: protocol.RoomSummary{
			ID:          r.state.ID,
			MapName:     r.state.Map.Name,
			HostName:    stats.HostName,
			PlayerCount: stats.TotalPlayers,
			MaxPlayers:  r.state.MaxPlayers,
			IsPrivate:   r.state.IsPrivate,
			MapID:       r.state.Map.ID,
			Status:      string(r.state.Status),
		},
		listed: !r.state.IsPrivate && r.state.Status == game.PhaseWaiting,
	}
}

// beginHiding announces the current hiding phase and arms its countdown. The
// caller has already reset the game state for the round.
func (r *Room) beginHiding() {
	r.state.Status = game.PhaseHiding
	r.broadcastGameState()

	r.gen++
	gen := r.gen
	r.timers.Start(r.id, r.cfg.HidingPhase, r.cfg.TickInterval,
		func(remaining time.Duration) { r.notify(tickMsg{gen: gen, remaining: remaining}) },
		func() { r.notify(expireMsg{gen: gen}) },
	)
	r.log.Info("hiding phase started",
		zap.String("room", r.id),
		zap.Duration("duration", r.cfg.HidingPhase),
		zap.Int("round", r.gs.CurrentRound))
}

func (r *Room) endHidingPhase() {
	r.gen++
	r.timers.Cancel(r.id)

	r.state.Status = game.PhaseSeeking
	r.gs.Phase = game.PhaseSeeking
	r.gs.TimeLeft = 0
	r.gs.SeekerPosition = &game.Position{}
	r.broadcastGameState()

	r.log.Info("hiding phase ended, seeking started", zap.String("room", r.id))
}

func (r *Room) applyOutcome(out game.Outcome) {
	if out.SeekerEliminated {
		if i, ok := r.state.PlayerByConn(r.gs.Seeker); ok {
			r.state.Players[i].IsAlive = false
			r.log.Info("seeker eliminated",
				zap.String("room", r.id),
				zap.String("seeker", r.state.Players[i].Username))
		}
	}
	switch out.Next {
	case game.PhaseResults:
		r.enterResults()
	case game.PhaseEnded:
		r.enterEnded(out.Winner)
	}
}

func (r *Room) enterResults() {
	r.gs.Phase = game.PhaseResults
	r.state.Status = game.PhaseResults
	r.gs.CurrentRound++
	r.gs.PreviousSeekers = append(r.gs.PreviousSeekers, r.gs.Seeker)
	r.broadcastGameState()

	r.gen++
	gen := r.gen
	r.timers.Start(r.id, r.cfg.ResultsPhase, r.cfg.TickInterval, nil,
		func() { r.notify(expireMsg{gen: gen}) },
	)
	r.log.Info("round over, showing results",
		zap.String("room", r.id),
		zap.Int("nextRound", r.gs.CurrentRound))
}

func (r *Room) enterEnded(winner *game.Player) {
	r.gen++
	r.timers.Cancel(r.id)

	r.gs.Phase = game.PhaseEnded
	r.state.Status = game.PhaseEnded
	r.gs.Winner = winner
	r.gs.TimeLeft = 0
	r.broadcastGameState()

	if winner != nil {
		r.log.Info("game ended", zap.String("room", r.id), zap.String("winner", winner.Username))
	} else {
		r.log.Info("game ended with no winner", zap.String("room", r.id))
	}
}

func (r *Room) nextRound() {
	seeker, err := game.SelectSeeker(r.state.Players, r.gs.PreviousSeekers)
	if err != nil {
		r.enterEnded(nil)
		return
	}
	if i, ok := r.state.PlayerByConn(seeker.ConnID); ok {
		r.state.Players[i].WasSeeker = true
	}

	game.StartRound(r.state, r.gs, seeker.ConnID, r.cfg.HidingPhase, time.Now())
	r.beginHiding()

	r.log.Info("next round started",
		zap.String("room", r.id),
		zap.Int("round", r.gs.CurrentRound),
		zap.String("seeker", seeker.Username))
}

// resolveSeekerLoss ends the round when the seeker leaves mid-game.
func (r *Room) resolveSeekerLoss() {
	alive := 0
	var last game.Player
	for _, p := range r.state.Players {
		if p.IsAlive {
			alive++
			last = p
		}
	}
	switch {
	case alive == 1:
		w := last
		r.enterEnded(&w)
	case alive > 1:
		r.enterResults()
	default:
		r.enterEnded(nil)
	}
}

func (r *Room) broadcastGameState() {
	if r.gs == nil {
		return
	}
	r.gw.Broadcast(r.id, protocol.EventGameStateUpdated, r.gs.Clone())
}

func (r *Room) cloneState() *game.State {
	if r.gs == nil {
		return nil
	}
	s := r.gs.Clone()
	return &s
}

// terminate tears the room down: the countdown is cancelled synchronously so
// a stale fire can never touch deleted state, the gateway group is dropped,
// and the registry forgets the room.
func (r *Room) terminate() {
	if r.closed {
		return
	}
	r.closed = true
	r.gen++
	r.timers.Cancel(r.id)
	r.gw.DropRoom(r.id)
	r.reg.removeRoom(r.id, r.state.Code)
	close(r.done)
}
