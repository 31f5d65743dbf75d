package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

type client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
}

type actionRequest struct {
	client *client
	msg    clientMessage
}

type timerKind int

const (
	timerRevealDone timerKind = iota
	timerSpeakerDeadline
	timerNextRound
)

// timerEvent carries the state fingerprint recorded when the timer was
// scheduled. A fired timer whose fingerprint no longer matches the live
// room is stale and becomes a no-op; timers are never cancelled.
type timerEvent struct {
	kind      timerKind
	roomCode  string
	phase     phase
	round     int
	speakerID string
}

// Hub is the session orchestrator. Its run goroutine owns the registry,
// every room, and the clients map outright: inbound actions, connection
// lifecycle events, and fired timers are all serialized through its
// channels, so each handler runs to completion without interleaving.
type Hub struct {
	cfg  *Config
	deck *wordDeck
	reg  *registry

	clients map[string]*client

	register   chan *client
	unregister chan *client
	actions    chan actionRequest
	timers     chan timerEvent
}

func newHub(cfg *Config, deck *wordDeck) *Hub {
	return &Hub{
		cfg:        cfg,
		deck:       deck,
		reg:        newRegistry(),
		clients:    make(map[string]*client),
		register:   make(chan *client),
		unregister: make(chan *client),
		actions:    make(chan actionRequest, 64),
		timers:     make(chan timerEvent, 64),
	}
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c.playerID] = c

		case c := <-h.unregister:
			h.dropClient(c)
			h.handleLeave(c.playerID)

		case ar := <-h.actions:
			h.dispatch(ar)

		case ev := <-h.timers:
			h.handleTimer(ev)
		}
	}
}

// dispatch routes one inbound action to its handler. Every handler
// validates caller and phase before touching state, and converts failures
// into either a room_error unicast or a silent no-op.
func (h *Hub) dispatch(ar actionRequest) {
	c := ar.client
	msg := ar.msg

	switch msg.Type {
	case "create_room":
		h.handleCreateRoom(c, msg)
	case "join_room":
		h.handleJoinRoom(c, msg)
	case "leave_room":
		h.handleLeave(c.playerID)
	case "start_game":
		h.handleStartGame(c, msg)
	case "end_speaking":
		h.handleEndSpeaking(c)
	case "cast_vote":
		h.handleVote(c, msg)
	case "play_again":
		h.handlePlayAgain(c)
	default:
		// ignore unknown types
	}
}

func (h *Hub) sendTo(c *client, msg any) {
	if cur, ok := h.clients[c.playerID]; !ok || cur != c {
		// already dropped; its send channel is closed
		return
	}

	select {
	case c.send <- msg:
	default:
		h.dropClient(c)
	}
}

func (h *Hub) dropClient(c *client) {
	if cur, ok := h.clients[c.playerID]; ok && cur == c {
		delete(h.clients, c.playerID)
		close(c.send)
		if c.conn != nil {
			c.conn.Close()
		}
	}
}

func (h *Hub) sendError(c *client, text string) {
	h.sendTo(c, roomErrorMessage{
		Type:    "room_error",
		Message: text,
	})
}

func (h *Hub) broadcast(r *room, msg any) {
	for _, id := range r.joinOrder {
		if c, ok := h.clients[id]; ok {
			h.sendTo(c, msg)
		}
	}
}

func (h *Hub) scheduleTimer(d time.Duration, ev timerEvent) {
	time.AfterFunc(d, func() {
		h.timers <- ev
	})
}

func (h *Hub) handleCreateRoom(c *client, msg clientMessage) {
	if msg.PlayerName == "" {
		h.sendError(c, "A player name is required.")
		return
	}
	if h.reg.roomByPlayer(c.playerID) != nil {
		h.sendError(c, "You are already in a room.")
		return
	}

	r := h.reg.createRoom(c.playerID, msg.PlayerName, gameSettings{
		mode:         modeInfiltrator,
		speakingTime: h.cfg.speakingTime,
		minPlayers:   h.cfg.minPlayers,
		maxPlayers:   h.cfg.maxPlayers,
	})

	logf(h.cfg, "ROOMS: Player %q created room %s", msg.PlayerName, r.code)

	h.sendTo(c, roomCreatedMessage{
		Type:     "room_created",
		RoomCode: r.code,
	})
	h.sendTo(c, roomJoinedMessage{
		Type:     "room_joined",
		Room:     toPublicRoom(r),
		PlayerID: c.playerID,
	})
}

func (h *Hub) handleJoinRoom(c *client, msg clientMessage) {
	if msg.PlayerName == "" || msg.RoomCode == "" {
		h.sendError(c, "A player name and room code are required.")
		return
	}
	if h.reg.roomByPlayer(c.playerID) != nil {
		h.sendError(c, "You are already in a room.")
		return
	}

	r, err := h.reg.joinRoom(msg.RoomCode, c.playerID, msg.PlayerName)
	if err != nil {
		switch err {
		case errRoomFull:
			h.sendError(c, "That room is full.")
		default:
			h.sendError(c, "Room not found or game in progress.")
		}
		return
	}

	logf(h.cfg, "ROOMS: Player %q joined room %s", msg.PlayerName, r.code)

	h.sendTo(c, roomJoinedMessage{
		Type:     "room_joined",
		Room:     toPublicRoom(r),
		PlayerID: c.playerID,
	})

	joined := playerJoinedMessage{
		Type: "player_joined",
		Player: publicPlayer{
			ID:      c.playerID,
			Name:    msg.PlayerName,
			IsAlive: true,
		},
	}
	for _, id := range r.joinOrder {
		if id == c.playerID {
			continue
		}
		if other, ok := h.clients[id]; ok {
			h.sendTo(other, joined)
		}
	}
}

// handleLeave covers both the explicit leave action and an implicit
// disconnect. If the room survives, the departure is announced along with
// the newly elected host, if any.
func (h *Hub) handleLeave(playerID string) {
	r, wasHost := h.reg.leaveRoom(playerID)
	if r == nil {
		return
	}

	msg := playerLeftMessage{
		Type:     "player_left",
		PlayerID: playerID,
	}
	if wasHost {
		msg.NewHostID = r.hostID
	}

	h.broadcast(r, msg)
}

func (h *Hub) handleStartGame(c *client, msg clientMessage) {
	r := h.reg.roomByPlayer(c.playerID)
	if r == nil || r.hostID != c.playerID {
		return
	}

	var mode gameMode
	switch msg.Mode {
	case string(modeInfiltrator):
		mode = modeInfiltrator
	case string(modeSpy):
		mode = modeSpy
	default:
		h.sendError(c, "Unknown game mode.")
		return
	}

	if err := startGame(r, mode, h.deck); err != nil {
		switch err {
		case errNotEnoughPlayers:
			h.sendError(c, fmt.Sprintf("Need at least %d players.", r.settings.minPlayers))
		default:
			h.sendError(c, "The game has already started.")
		}
		return
	}

	logf(h.cfg, "GAMES: Room %s started a %s game with %d players", r.code, mode, len(r.players))

	for id, info := range roleRevealData(r) {
		if pc, ok := h.clients[id]; ok {
			h.sendTo(pc, gameStartedMessage{
				Type: "game_started",
				Role: info.Role,
				Word: info.Word,
			})
		}
	}

	h.broadcast(r, phaseChangedMessage{
		Type:          "phase_changed",
		Phase:         phaseRoleReveal,
		SpeakingOrder: r.state.speakingOrder,
	})

	h.scheduleTimer(h.cfg.revealDelay, timerEvent{
		kind:     timerRevealDone,
		roomCode: r.code,
		phase:    phaseRoleReveal,
	})
}

func (h *Hub) handleEndSpeaking(c *client) {
	r := h.reg.roomByPlayer(c.playerID)
	if r == nil || r.state.phase != phaseSpeaking {
		return
	}

	speaker := currentSpeaker(r)
	if speaker == nil || speaker.id != c.playerID {
		return
	}

	h.advanceSpeaker(r)
}

func (h *Hub) handleVote(c *client, msg clientMessage) {
	r := h.reg.roomByPlayer(c.playerID)
	if r == nil || r.state.phase != phaseVoting {
		return
	}

	if !castVote(r, c.playerID, msg.TargetID) {
		return
	}

	h.broadcast(r, voteReceivedMessage{
		Type:    "vote_received",
		VoterID: c.playerID,
	})

	if allVotesCast(r) {
		h.processVotingResults(r)
	}
}

func (h *Hub) handlePlayAgain(c *client) {
	r := h.reg.roomByPlayer(c.playerID)
	if r == nil || r.hostID != c.playerID {
		return
	}

	resetToLobby(r)

	h.broadcast(r, phaseChangedMessage{
		Type:  "phase_changed",
		Phase: phaseLobby,
	})
}

// startSpeakerTurn stamps the current speaker's deadline, announces it, and
// arms the deadline timer with the speaker's identity as its fingerprint.
func (h *Hub) startSpeakerTurn(r *room) {
	speaker := currentSpeaker(r)
	if speaker == nil {
		return
	}

	r.state.speakingDeadline = time.Now().Add(h.cfg.speakingTime)

	h.broadcast(r, speakerChangedMessage{
		Type:      "speaker_changed",
		SpeakerID: speaker.id,
		EndTime:   r.state.speakingDeadline.UnixMilli(),
	})

	h.scheduleTimer(h.cfg.speakingTime, timerEvent{
		kind:      timerSpeakerDeadline,
		roomCode:  r.code,
		phase:     phaseSpeaking,
		round:     r.state.round,
		speakerID: speaker.id,
	})
}

// advanceSpeaker is the single advancement path shared by the explicit
// end_speaking action and the deadline timer, so a turn can never be
// skipped twice no matter which trigger fires first.
func (h *Hub) advanceSpeaker(r *room) {
	done, _ := nextSpeaker(r)

	if done {
		startVotingPhase(r)
		h.broadcast(r, phaseChangedMessage{
			Type:  "phase_changed",
			Phase: phaseVoting,
		})
		return
	}

	h.startSpeakerTurn(r)
}

func (h *Hub) startNextRound(r *room) {
	r.state.round++
	startSpeakingPhase(r)
	h.broadcast(r, phaseChangedMessage{
		Type:  "phase_changed",
		Phase: phaseSpeaking,
	})
	h.startSpeakerTurn(r)
}

func (h *Hub) processVotingResults(r *room) {
	eliminatedID, tie := tallyVotes(r)

	if tie || eliminatedID == "" {
		h.startNextRound(r)
		return
	}

	eliminated := eliminatePlayer(r, eliminatedID)
	if eliminated == nil {
		return
	}

	logf(h.cfg, "GAMES: Room %s eliminated %q (%s)", r.code, eliminated.name, eliminated.role)

	h.broadcast(r, eliminationMessage{
		Type:       "elimination",
		PlayerID:   eliminatedID,
		Role:       eliminated.role,
		PlayerName: eliminated.name,
	})

	gameOver, w := checkWinCondition(r)
	if gameOver {
		logf(h.cfg, "GAMES: Room %s game over, winner: %s", r.code, w)

		h.broadcast(r, gameOverMessage{
			Type:   "game_over",
			Winner: w,
			Roles:  allRoles(r),
		})
		return
	}

	h.scheduleTimer(h.cfg.eliminationPause, timerEvent{
		kind:     timerNextRound,
		roomCode: r.code,
		phase:    phaseElimination,
	})
}

// handleTimer re-validates a fired timer's fingerprint against live state.
// The room may have been destroyed, reset, or advanced past the state the
// timer was armed for; any mismatch makes the event a no-op.
func (h *Hub) handleTimer(ev timerEvent) {
	r := h.reg.room(ev.roomCode)
	if r == nil || r.state.phase != ev.phase {
		return
	}

	switch ev.kind {
	case timerRevealDone:
		startSpeakingPhase(r)
		h.broadcast(r, phaseChangedMessage{
			Type:  "phase_changed",
			Phase: phaseSpeaking,
		})
		h.startSpeakerTurn(r)

	case timerSpeakerDeadline:
		speaker := currentSpeaker(r)
		if r.state.round != ev.round || speaker == nil || speaker.id != ev.speakerID {
			return
		}
		h.advanceSpeaker(r)

	case timerNextRound:
		h.startNextRound(r)
	}
}

func newUpgrader(cfg *Config) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if cfg.origin == "" {
				return true
			}
			return r.Header.Get("Origin") == cfg.origin
		},
	}
}

// WebSocket handler: each connection is assigned a fresh player id for its
// lifetime. There is no reconnection; a dropped connection is a leave.
func serveWS(cfg *Config, h *Hub) httprouter.Handle {
	upgrader := newUpgrader(cfg)

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		c := &client{
			conn:     conn,
			send:     make(chan any, 8),
			playerID: uuid.NewString(),
		}

		h.register <- c

		go c.writePump()
		c.readPump(h)
	}
}

func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		_ = c.conn.Close()
	}()

	for {
		var msg clientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		h.actions <- actionRequest{
			client: c,
			msg:    msg,
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// registerGameRoutes sets up routes so that:
//   - $prefix/play        → HTML client
//   - $prefix/play/ws     → WebSocket endpoint
//   - $prefix/qr/:code    → PNG QR code linking to a room
func registerGameRoutes(cfg *Config, h *Hub, mux *httprouter.Router) {
	mux.GET(cfg.prefix+"/play", serveGamePage(cfg))
	mux.GET(cfg.prefix+"/play/ws", serveWS(cfg, h))
	mux.GET(cfg.prefix+"/qr/:code", serveRoomQR(cfg))
}
