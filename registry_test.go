package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoomCode(t *testing.T) {
	t.Parallel()

	reg := newRegistry()
	seen := make(map[string]bool)

	for i := 0; i < 500; i++ {
		code := reg.newRoomCode()

		assert.Len(t, code, roomCodeLength)
		for _, c := range code {
			assert.Contains(t, roomCodeAlphabet, string(c))
		}

		assert.False(t, seen[code], "codes must be unique among live rooms")
		seen[code] = true

		// Register the code so the next generation must avoid it.
		reg.rooms[code] = &room{code: code}
	}
}

func TestCreateRoom(t *testing.T) {
	t.Parallel()

	reg := newRegistry()
	r := reg.createRoom("host-id", "alice", testSettings())

	assert.Equal(t, "host-id", r.hostID)
	assert.Equal(t, phaseLobby, r.state.phase)
	assert.False(t, r.createdAt.IsZero())

	host := r.players["host-id"]
	require.NotNil(t, host)
	assert.True(t, host.isHost)
	assert.True(t, host.isAlive)
	assert.False(t, host.hasVoted)

	assert.Same(t, r, reg.room(r.code))
	assert.Same(t, r, reg.roomByPlayer("host-id"))
}

func TestJoinRoom(t *testing.T) {
	t.Parallel()

	t.Run("case insensitive code", func(t *testing.T) {
		t.Parallel()

		reg := newRegistry()
		r := reg.createRoom("p1", "alice", testSettings())

		joined, err := reg.joinRoom(strings.ToLower(r.code), "p2", "bob")
		require.NoError(t, err)
		assert.Same(t, r, joined)
		assert.Same(t, r, reg.roomByPlayer("p2"))

		p := r.players["p2"]
		require.NotNil(t, p)
		assert.False(t, p.isHost)
	})

	t.Run("unknown code", func(t *testing.T) {
		t.Parallel()

		reg := newRegistry()
		_, err := reg.joinRoom("ZZZZZZ", "p1", "bob")
		assert.ErrorIs(t, err, errRoomNotFound)
	})

	t.Run("game in progress", func(t *testing.T) {
		t.Parallel()

		reg := newRegistry()
		r := testRoom(t, reg, 4)

		deck, err := newWordDeck(wordsJSON)
		require.NoError(t, err)
		require.NoError(t, startGame(r, modeInfiltrator, deck))

		_, err = reg.joinRoom(r.code, "late", "eve")
		assert.ErrorIs(t, err, errGameInProgress)
	})

	t.Run("room full", func(t *testing.T) {
		t.Parallel()

		reg := newRegistry()
		settings := testSettings()
		settings.maxPlayers = 2
		r := reg.createRoom("p1", "alice", settings)

		_, err := reg.joinRoom(r.code, "p2", "bob")
		require.NoError(t, err)

		_, err = reg.joinRoom(r.code, "p3", "eve")
		assert.ErrorIs(t, err, errRoomFull)
	})
}

func TestLeaveRoom(t *testing.T) {
	t.Parallel()

	t.Run("host departure elects earliest joiner", func(t *testing.T) {
		t.Parallel()

		reg := newRegistry()
		r := testRoom(t, reg, 4)

		left, wasHost := reg.leaveRoom("p1")
		require.Same(t, r, left)
		assert.True(t, wasHost)

		assert.Equal(t, "p2", r.hostID)

		hosts := 0
		for _, p := range r.players {
			if p.isHost {
				hosts++
			}
		}
		assert.Equal(t, 1, hosts)
		assert.Nil(t, reg.roomByPlayer("p1"))
	})

	t.Run("non-host departure keeps host", func(t *testing.T) {
		t.Parallel()

		reg := newRegistry()
		r := testRoom(t, reg, 3)

		left, wasHost := reg.leaveRoom("p3")
		require.Same(t, r, left)
		assert.False(t, wasHost)
		assert.Equal(t, "p1", r.hostID)
	})

	t.Run("last player destroys room", func(t *testing.T) {
		t.Parallel()

		reg := newRegistry()
		r := reg.createRoom("p1", "alice", testSettings())
		code := r.code

		left, wasHost := reg.leaveRoom("p1")
		assert.Nil(t, left)
		assert.True(t, wasHost)

		assert.Nil(t, reg.room(code))
		assert.Nil(t, reg.roomByPlayer("p1"))
	})

	t.Run("unknown player", func(t *testing.T) {
		t.Parallel()

		reg := newRegistry()
		left, wasHost := reg.leaveRoom("ghost")
		assert.Nil(t, left)
		assert.False(t, wasHost)
	})
}

func TestToPublicRoomStripsSecrets(t *testing.T) {
	t.Parallel()

	reg := newRegistry()
	r := testRoom(t, reg, 4)

	deck, err := newWordDeck(wordsJSON)
	require.NoError(t, err)
	require.NoError(t, startGame(r, modeSpy, deck))
	startVotingPhase(r)
	require.True(t, castVote(r, "p1", "p2"))
	require.True(t, castVote(r, "p2", "p2"))

	pub := toPublicRoom(r)

	assert.Equal(t, r.code, pub.Code)
	assert.Equal(t, "p1", pub.HostID)
	assert.Equal(t, 2, pub.State.VoteCount)
	assert.Equal(t, phaseVoting, pub.State.Phase)
	assert.Equal(t, r.state.speakingOrder, pub.State.SpeakingOrder)

	require.Len(t, pub.Players, 4)
	assert.Equal(t, "p1", pub.Players[0].ID, "players are listed in join order")

	for _, p := range pub.Players {
		if p.ID == "p1" || p.ID == "p2" {
			assert.True(t, p.HasVoted)
		} else {
			assert.False(t, p.HasVoted)
		}
	}

	// Neither the votes nor any secret word may survive serialization.
	encoded, err := json.Marshal(pub)
	require.NoError(t, err)
	for _, p := range r.players {
		assert.NotContains(t, string(encoded), p.word)
	}
	assert.NotContains(t, string(encoded), "votes")
}
