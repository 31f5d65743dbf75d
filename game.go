// Oddword is a social deduction word game.
//
// Every player but one receives the same secret word; the remaining player
// is the odd one out. Depending on the mode, the odd player either receives
// no word at all (infiltrator) or a similar-but-different word (spy).
// Players take turns describing their word, then vote to eliminate a
// suspect. The majority wins by voting out the odd player; the odd player
// wins by surviving until two or fewer players remain.

package main

import (
	"math/rand"
	"time"
)

type gameMode string

const (
	modeInfiltrator gameMode = "infiltrator"
	modeSpy         gameMode = "spy"
)

type role string

const (
	roleCitizen     role = "citizen"
	roleInfiltrator role = "infiltrator"
	roleAgent       role = "agent"
	roleSpy         role = "spy"
)

type phase string

const (
	phaseLobby       phase = "lobby"
	phaseRoleReveal  phase = "role_reveal"
	phaseSpeaking    phase = "speaking"
	phaseVoting      phase = "voting"
	phaseElimination phase = "elimination"
	phaseGameOver    phase = "game_over"
)

type winner string

const (
	winnerCitizens    winner = "citizens"
	winnerInfiltrator winner = "infiltrator"
	winnerAgents      winner = "agents"
	winnerSpy         winner = "spy"
)

type player struct {
	id       string
	name     string
	isHost   bool
	isAlive  bool
	hasVoted bool
	votedFor string
	role     role
	word     string
}

type gameSettings struct {
	mode         gameMode
	speakingTime time.Duration
	minPlayers   int
	maxPlayers   int
}

type gameState struct {
	phase               phase
	round               int
	speakingOrder       []string
	currentSpeakerIndex int
	speakingDeadline    time.Time
	votes               map[string]string
	eliminated          []string
	winner              winner
}

type room struct {
	code      string
	hostID    string
	players   map[string]*player
	joinOrder []string
	settings  gameSettings
	state     gameState
	createdAt time.Time
}

func newGameState() gameState {
	return gameState{
		phase: phaseLobby,
		votes: make(map[string]string),
	}
}

// startGame assigns roles and words, freezes the speaking order, and moves
// the room into the role reveal phase. Position 0 of the shuffle becomes
// the odd player; everyone else shares the majority role and word.
func startGame(r *room, mode gameMode, deck *wordDeck) error {
	if r.state.phase != phaseLobby {
		return errGameInProgress
	}
	if len(r.players) < r.settings.minPlayers {
		return errNotEnoughPlayers
	}

	r.settings.mode = mode

	shuffled := make([]string, 0, len(r.players))
	for id := range r.players {
		shuffled = append(shuffled, id)
	}
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if mode == modeInfiltrator {
		word := deck.randomWord().Primary
		for i, id := range shuffled {
			p := r.players[id]
			if i == 0 {
				p.role = roleInfiltrator
				p.word = ""
			} else {
				p.role = roleCitizen
				p.word = word
			}
		}
	} else {
		primary, similar := deck.randomPair()
		for i, id := range shuffled {
			p := r.players[id]
			if i == 0 {
				p.role = roleSpy
				p.word = similar
			} else {
				p.role = roleAgent
				p.word = primary
			}
		}
	}

	r.state.phase = phaseRoleReveal
	r.state.round = 1
	r.state.speakingOrder = shuffled
	r.state.currentSpeakerIndex = 0
	r.state.votes = make(map[string]string)
	r.state.eliminated = nil
	r.state.winner = ""

	return nil
}

// startSpeakingPhase filters eliminated players out of the speaking order,
// preserving relative order, and rewinds to the first speaker.
func startSpeakingPhase(r *room) {
	r.state.phase = phaseSpeaking
	r.state.currentSpeakerIndex = 0

	alive := make([]string, 0, len(r.state.speakingOrder))
	for _, id := range r.state.speakingOrder {
		if !isEliminated(r, id) {
			alive = append(alive, id)
		}
	}
	r.state.speakingOrder = alive
}

func currentSpeaker(r *room) *player {
	if r.state.currentSpeakerIndex < 0 || r.state.currentSpeakerIndex >= len(r.state.speakingOrder) {
		return nil
	}
	return r.players[r.state.speakingOrder[r.state.currentSpeakerIndex]]
}

// nextSpeaker advances the turn. done is true exactly once, when the order
// is exhausted; otherwise the new current speaker is returned.
func nextSpeaker(r *room) (done bool, speaker *player) {
	r.state.currentSpeakerIndex++

	if r.state.currentSpeakerIndex >= len(r.state.speakingOrder) {
		return true, nil
	}

	return false, currentSpeaker(r)
}

func startVotingPhase(r *room) {
	r.state.phase = phaseVoting
	r.state.speakingDeadline = time.Time{}
	r.state.votes = make(map[string]string)
	for _, p := range r.players {
		p.hasVoted = false
		p.votedFor = ""
	}
}

// castVote records a vote. Votes from unknown, dead, or double voters are
// rejected, as are votes against already-eliminated targets. Self-votes
// are allowed.
func castVote(r *room, voterID, targetID string) bool {
	voter, ok := r.players[voterID]
	if !ok || voter.hasVoted || !voter.isAlive {
		return false
	}
	if isEliminated(r, targetID) {
		return false
	}

	voter.hasVoted = true
	voter.votedFor = targetID
	r.state.votes[voterID] = targetID

	return true
}

func allVotesCast(r *room) bool {
	for _, p := range r.players {
		if p.isAlive && !p.hasVoted {
			return false
		}
	}
	return true
}

// tallyVotes finds the target with strictly the most votes. Any shared
// maximum is a tie and nobody is eliminated; there is deliberately no
// tie-break rule, so the outcome is always auditable from the vote map.
func tallyVotes(r *room) (eliminatedID string, tie bool) {
	counts := make(map[string]int)
	for _, targetID := range r.state.votes {
		counts[targetID]++
	}

	maxVotes := 0
	var topCandidates []string
	for id, count := range counts {
		switch {
		case count > maxVotes:
			maxVotes = count
			topCandidates = []string{id}
		case count == maxVotes:
			topCandidates = append(topCandidates, id)
		}
	}

	if len(topCandidates) != 1 {
		return "", true
	}

	return topCandidates[0], false
}

func eliminatePlayer(r *room, playerID string) *player {
	p, ok := r.players[playerID]
	if !ok {
		return nil
	}

	p.isAlive = false
	r.state.eliminated = append(r.state.eliminated, playerID)
	r.state.phase = phaseElimination

	return p
}

func isEliminated(r *room, playerID string) bool {
	for _, id := range r.state.eliminated {
		if id == playerID {
			return true
		}
	}
	return false
}

// checkWinCondition evaluates the game over currently alive players. The
// majority wins once the odd player is gone; the odd player wins once two
// or fewer players remain alive. Detecting a win moves the room into the
// game over phase as a side effect.
func checkWinCondition(r *room) (gameOver bool, w winner) {
	oddRole, majorityWins, oddWins := roleInfiltrator, winnerCitizens, winnerInfiltrator
	if r.settings.mode == modeSpy {
		oddRole, majorityWins, oddWins = roleSpy, winnerAgents, winnerSpy
	}

	aliveCount := 0
	oddAlive := false
	for _, p := range r.players {
		if !p.isAlive {
			continue
		}
		aliveCount++
		if p.role == oddRole {
			oddAlive = true
		}
	}

	if !oddAlive {
		r.state.phase = phaseGameOver
		r.state.winner = majorityWins
		return true, majorityWins
	}

	if aliveCount <= 2 {
		r.state.phase = phaseGameOver
		r.state.winner = oddWins
		return true, oddWins
	}

	return false, ""
}

// resetToLobby replaces the game state wholesale and restores every player
// to their pre-game defaults, keeping the room and its members intact.
func resetToLobby(r *room) {
	r.state = newGameState()

	for _, p := range r.players {
		p.role = ""
		p.word = ""
		p.isAlive = true
		p.hasVoted = false
		p.votedFor = ""
	}
}

type roleInfo struct {
	Role role   `json:"role"`
	Word string `json:"word,omitempty"`
}

// roleRevealData maps player ids to their secret role and word. Delivered
// privately at reveal time, and publicly at game end via allRoles.
func roleRevealData(r *room) map[string]roleInfo {
	data := make(map[string]roleInfo, len(r.players))
	for id, p := range r.players {
		if p.role != "" {
			data[id] = roleInfo{Role: p.role, Word: p.word}
		}
	}
	return data
}

func allRoles(r *room) map[string]roleInfo {
	return roleRevealData(r)
}
