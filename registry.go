package main

import (
	"crypto/rand"
	"errors"
	"strings"
	"time"
)

var (
	errRoomNotFound     = errors.New("room not found")
	errRoomFull         = errors.New("room is full")
	errGameInProgress   = errors.New("game already in progress")
	errNotEnoughPlayers = errors.New("not enough players")
)

const roomCodeLength = 6

// roomCodeAlphabet skips visually confusable characters (0/O, 1/I).
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// registry owns every live room and the reverse mapping from player id to
// room code. It is created empty at startup and mutated only from the hub
// goroutine, so no locking is required.
type registry struct {
	rooms       map[string]*room
	playerRooms map[string]string
}

func newRegistry() *registry {
	return &registry{
		rooms:       make(map[string]*room),
		playerRooms: make(map[string]string),
	}
}

// newRoomCode generates a crypto-random room code and ensures it doesn't
// collide with existing rooms.
func (reg *registry) newRoomCode() string {
	const max = byte(255 - (256 % len(roomCodeAlphabet)))

	for {
		out := make([]byte, 0, roomCodeLength)
		buf := make([]byte, roomCodeLength*2)

		for len(out) < roomCodeLength {
			if _, err := rand.Read(buf); err != nil {
				panic("crypto/rand failure: " + err.Error())
			}

			for _, b := range buf {
				if b <= max {
					out = append(out, roomCodeAlphabet[int(b)%len(roomCodeAlphabet)])
					if len(out) == roomCodeLength {
						break
					}
				}
			}
		}

		code := string(out)
		if _, exists := reg.rooms[code]; !exists {
			return code
		}
	}
}

func (reg *registry) createRoom(hostID, hostName string, settings gameSettings) *room {
	r := &room{
		code:      reg.newRoomCode(),
		hostID:    hostID,
		players:   make(map[string]*player),
		settings:  settings,
		state:     newGameState(),
		createdAt: time.Now(),
	}

	host := &player{
		id:      hostID,
		name:    hostName,
		isHost:  true,
		isAlive: true,
	}
	r.players[hostID] = host
	r.joinOrder = append(r.joinOrder, hostID)

	reg.rooms[r.code] = r
	reg.playerRooms[hostID] = r.code

	return r
}

func (reg *registry) joinRoom(code, playerID, playerName string) (*room, error) {
	r, ok := reg.rooms[strings.ToUpper(code)]
	if !ok {
		return nil, errRoomNotFound
	}
	if r.state.phase != phaseLobby {
		return nil, errGameInProgress
	}
	if len(r.players) >= r.settings.maxPlayers {
		return nil, errRoomFull
	}

	p := &player{
		id:      playerID,
		name:    playerName,
		isAlive: true,
	}
	r.players[playerID] = p
	r.joinOrder = append(r.joinOrder, playerID)
	reg.playerRooms[playerID] = r.code

	return r, nil
}

// leaveRoom removes the player from their room. An emptied room is
// destroyed; otherwise a departing host is replaced by the earliest
// remaining joiner and wasHost reports that a new host was elected.
func (reg *registry) leaveRoom(playerID string) (r *room, wasHost bool) {
	code, ok := reg.playerRooms[playerID]
	if !ok {
		return nil, false
	}

	r, ok = reg.rooms[code]
	if !ok {
		delete(reg.playerRooms, playerID)
		return nil, false
	}

	wasHost = r.hostID == playerID
	delete(r.players, playerID)
	delete(reg.playerRooms, playerID)

	remaining := r.joinOrder[:0]
	for _, id := range r.joinOrder {
		if id != playerID {
			remaining = append(remaining, id)
		}
	}
	r.joinOrder = remaining

	if len(r.players) == 0 {
		delete(reg.rooms, code)
		return nil, wasHost
	}

	if wasHost {
		newHost := r.players[r.joinOrder[0]]
		newHost.isHost = true
		r.hostID = newHost.id
	}

	return r, wasHost
}

func (reg *registry) room(code string) *room {
	return reg.rooms[strings.ToUpper(code)]
}

func (reg *registry) roomByPlayer(playerID string) *room {
	code, ok := reg.playerRooms[playerID]
	if !ok {
		return nil
	}
	return reg.rooms[code]
}

type publicPlayer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsHost   bool   `json:"is_host"`
	IsAlive  bool   `json:"is_alive"`
	HasVoted bool   `json:"has_voted"`
}

type publicSettings struct {
	Mode                gameMode `json:"mode"`
	SpeakingTimeSeconds int      `json:"speaking_time_seconds"`
	MinPlayers          int      `json:"min_players"`
	MaxPlayers          int      `json:"max_players"`
}

type publicGameState struct {
	Phase               phase    `json:"phase"`
	Round               int      `json:"round"`
	CurrentSpeakerIndex int      `json:"current_speaker_index"`
	SpeakingOrder       []string `json:"speaking_order"`
	SpeakingEndTime     int64    `json:"speaking_end_time,omitempty"`
	VoteCount           int      `json:"vote_count"`
	EliminatedPlayers   []string `json:"eliminated_players"`
	Winner              winner   `json:"winner,omitempty"`
}

type publicRoom struct {
	Code     string          `json:"code"`
	HostID   string          `json:"host_id"`
	Players  []publicPlayer  `json:"players"`
	Settings publicSettings  `json:"settings"`
	State    publicGameState `json:"state"`
}

// toPublicRoom projects a room into its broadcast-safe form: per-player
// secrets are stripped, and the vote map is reduced to a bare count.
func toPublicRoom(r *room) publicRoom {
	players := make([]publicPlayer, 0, len(r.players))
	for _, id := range r.joinOrder {
		p := r.players[id]
		players = append(players, publicPlayer{
			ID:       p.id,
			Name:     p.name,
			IsHost:   p.isHost,
			IsAlive:  p.isAlive,
			HasVoted: p.hasVoted,
		})
	}

	var endTime int64
	if !r.state.speakingDeadline.IsZero() {
		endTime = r.state.speakingDeadline.UnixMilli()
	}

	return publicRoom{
		Code:    r.code,
		HostID:  r.hostID,
		Players: players,
		Settings: publicSettings{
			Mode:                r.settings.mode,
			SpeakingTimeSeconds: int(r.settings.speakingTime.Seconds()),
			MinPlayers:          r.settings.minPlayers,
			MaxPlayers:          r.settings.maxPlayers,
		},
		State: publicGameState{
			Phase:               r.state.phase,
			Round:               r.state.round,
			CurrentSpeakerIndex: r.state.currentSpeakerIndex,
			SpeakingOrder:       r.state.speakingOrder,
			SpeakingEndTime:     endTime,
			VoteCount:           len(r.state.votes),
			EliminatedPlayers:   r.state.eliminated,
			Winner:              r.state.winner,
		},
	}
}
