package main

// Messages coming from clients
type ClientMessage struct {
	Type     string `json:"type"`               // "createRoom", "joinRoom", "submitAnswer"
	Username string `json:"username,omitempty"` // createRoom / joinRoom
	Code     string `json:"code,omitempty"`     // joinRoom
	Term     string `json:"term,omitempty"`     // submitAnswer
}

// RoomCreatedMessage is sent to the creator with the code of their new room.
type RoomCreatedMessage struct {
	Type string `json:"type"` // "roomCreated"
	Code string `json:"code"`
}

// RoomJoinedMessage is sent to a joiner. Topic is set when a round is
// already in progress, so a late joiner can render the current prompt
// instead of a stale lobby view.
type RoomJoinedMessage struct {
	Type  string `json:"type"` // "roomJoined"
	Code  string `json:"code"`
	Topic string `json:"topic,omitempty"`
}

// ErrorMessage is sent only to the client whose command failed.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

// GameStartMessage is broadcast once, when a room reaches two players.
type GameStartMessage struct {
	Type string `json:"type"` // "gameStart"
}

// NewRoundMessage announces the topic of a new round.
type NewRoundMessage struct {
	Type  string `json:"type"` // "newRound"
	Topic string `json:"topic"`
}

// WaitingMessage tells players who have already answered how many
// submissions are still outstanding.
type WaitingMessage struct {
	Type  string `json:"type"` // "waitingForOpponent"
	Count int    `json:"count"`
}

// RevealAnswer pairs a term with the username that submitted it. The
// username is captured at submission time so the answer survives the
// player leaving before the reveal.
type RevealAnswer struct {
	Username string `json:"username"`
	Term     string `json:"term"`
}

// RoundRevealMessage broadcasts all answers at once, in submission order.
type RoundRevealMessage struct {
	Type    string         `json:"type"` // "roundReveal"
	Topic   string         `json:"topic"`
	Answers []RevealAnswer `json:"answers"`
}

// PlayerLeftMessage is broadcast to the remaining members of a room.
type PlayerLeftMessage struct {
	Type     string   `json:"type"` // "playerLeft"
	Username string   `json:"username"`
	Players  []string `json:"players"`
}

// GameStopMessage is the terminal event for a room; the room is
// destroyed immediately after it is sent.
type GameStopMessage struct {
	Type    string `json:"type"` // "gameStop"
	Message string `json:"message"`
}
