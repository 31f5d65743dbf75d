package main

// Messages coming from clients
type clientMessage struct {
	Type       string `json:"type"`                  // "create_room", "join_room", "leave_room", "start_game", "end_speaking", "cast_vote", "play_again"
	PlayerName string `json:"player_name,omitempty"` // create_room / join_room
	RoomCode   string `json:"room_code,omitempty"`   // join_room
	Mode       string `json:"mode,omitempty"`        // start_game
	TargetID   string `json:"target_id,omitempty"`   // cast_vote
}

// Messages sent to clients

type roomCreatedMessage struct {
	Type     string `json:"type"` // "room_created"
	RoomCode string `json:"room_code"`
}

type roomJoinedMessage struct {
	Type     string     `json:"type"` // "room_joined"
	Room     publicRoom `json:"room"`
	PlayerID string     `json:"player_id"`
}

type playerJoinedMessage struct {
	Type   string       `json:"type"` // "player_joined"
	Player publicPlayer `json:"player"`
}

type playerLeftMessage struct {
	Type      string `json:"type"` // "player_left"
	PlayerID  string `json:"player_id"`
	NewHostID string `json:"new_host_id,omitempty"`
}

// Sent to a single client when an action is rejected
type roomErrorMessage struct {
	Type    string `json:"type"`    // "room_error"
	Message string `json:"message"` // user-facing text
}

// Sent privately to each player at role reveal
type gameStartedMessage struct {
	Type string `json:"type"` // "game_started"
	Role role   `json:"role"`
	Word string `json:"word,omitempty"` // absent for the infiltrator
}

type phaseChangedMessage struct {
	Type          string   `json:"type"` // "phase_changed"
	Phase         phase    `json:"phase"`
	SpeakingOrder []string `json:"speaking_order,omitempty"`
}

type speakerChangedMessage struct {
	Type      string `json:"type"` // "speaker_changed"
	SpeakerID string `json:"speaker_id"`
	EndTime   int64  `json:"end_time"` // unix millis deadline for this turn
}

// Anonymous vote notification; the target is never broadcast
type voteReceivedMessage struct {
	Type    string `json:"type"` // "vote_received"
	VoterID string `json:"voter_id"`
}

type eliminationMessage struct {
	Type       string `json:"type"` // "elimination"
	PlayerID   string `json:"player_id"`
	Role       role   `json:"role"`
	PlayerName string `json:"player_name"`
}

// Full role disclosure is acceptable once the game is over
type gameOverMessage struct {
	Type   string              `json:"type"` // "game_over"
	Winner winner              `json:"winner"`
	Roles  map[string]roleInfo `json:"roles"`
}
