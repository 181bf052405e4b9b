package main

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 4

	// A room below this player count is destroyed.
	minPlayers = 2
)

// Player is one room member. The Client is owned by the transport
// layer and becomes invalid once its connection closes.
type Player struct {
	client   *Client
	username string
}

// roundAnswer keeps the submitting player's ID alongside the revealed
// fields so a pending answer can be discarded when that player leaves.
type roundAnswer struct {
	playerID string
	username string
	term     string
}

// Room is one isolated game session. All fields are guarded by the
// owning RoomManager's mutex.
type Room struct {
	code    string
	players []*Player // join order

	topic    string        // empty while no round is running
	answers  []roundAnswer // submission order
	revealed bool          // true between reveal and the next round
	round    int           // bumped by every new round; stale-timer check
}

func (r *Room) hasAnswered(playerID string) bool {
	for _, a := range r.answers {
		if a.playerID == playerID {
			return true
		}
	}
	return false
}

func (r *Room) usernames() []string {
	names := make([]string, 0, len(r.players))
	for _, p := range r.players {
		names = append(names, p.username)
	}
	return names
}

func (r *Room) broadcast(msg any) {
	for _, p := range r.players {
		trySend(p.client, msg)
	}
}

// RoomManager holds every live room plus an explicit player-to-room
// index, so membership never depends on transport-layer state. A single
// mutex serializes all commands and timer callbacks, so each one runs
// to completion before the next.
type RoomManager struct {
	mu     sync.Mutex
	cfg    *Config
	rooms  map[string]*Room
	joined map[string]string // playerID -> room code

	// afterFunc schedules the reveal-to-next-round delay. Tests swap it
	// out to fire the callback by hand.
	afterFunc func(d time.Duration, f func()) *time.Timer
}

func newRoomManager(cfg *Config) *RoomManager {
	return &RoomManager{
		cfg:       cfg,
		rooms:     make(map[string]*Room),
		joined:    make(map[string]string),
		afterFunc: time.AfterFunc,
	}
}

func (rm *RoomManager) lookup(code string) (*Room, bool) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, ok := rm.rooms[code]
	return room, ok
}

// newRoomCodeLocked generates a crypto-random room code and ensures it
// doesn't collide with any currently-live room. Codes of destroyed
// rooms may be handed out again.
func (rm *RoomManager) newRoomCodeLocked() string {
	for {
		buf := make([]byte, codeLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, codeLength)
		for i := range out {
			out[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
		}
		code := string(out)

		if _, exists := rm.rooms[code]; !exists {
			return code
		}
	}
}

// CreateRoom opens a new room with the caller as its only player and
// sends the generated code back to them.
func (rm *RoomManager) CreateRoom(c *Client, username string) {
	if username == "" {
		username = "Host"
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.joined[c.playerID] != "" {
		trySend(c, ErrorMessage{Type: "error", Message: errAlreadyInRoom.Error()})
		return
	}

	code := rm.newRoomCodeLocked()
	room := &Room{
		code:    code,
		players: []*Player{{client: c, username: username}},
	}
	rm.rooms[code] = room
	rm.joined[c.playerID] = code

	trySend(c, RoomCreatedMessage{Type: "roomCreated", Code: code})

	logf(rm.cfg, "ROOMS: %q created room %s", username, code)
}

// JoinRoom adds the caller to an existing room. Failures are reported
// to the caller only and leave all state unchanged.
func (rm *RoomManager) JoinRoom(c *Client, code, username string) {
	if username == "" {
		username = "Guest"
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if err := rm.joinRoomLocked(c, strings.ToUpper(code), username); err != nil {
		trySend(c, ErrorMessage{Type: "error", Message: err.Error()})
	}
}

func (rm *RoomManager) joinRoomLocked(c *Client, code, username string) error {
	if code == "" {
		return errMissingRoomCode
	}
	if rm.joined[c.playerID] != "" {
		return errAlreadyInRoom
	}

	room, ok := rm.rooms[code]
	if !ok {
		return errRoomNotFound
	}
	if len(room.players) >= rm.cfg.maxPlayers {
		return fmt.Errorf("%w (max %d players)", errRoomFull, rm.cfg.maxPlayers)
	}

	room.players = append(room.players, &Player{client: c, username: username})
	rm.joined[c.playerID] = code

	trySend(c, RoomJoinedMessage{Type: "roomJoined", Code: code, Topic: room.topic})

	logf(rm.cfg, "ROOMS: %q joined room %s (%d players)", username, code, len(room.players))

	if len(room.players) == minPlayers {
		// The room just became playable. Rooms are destroyed once they
		// drop below two players, so this happens at most once per room.
		room.broadcast(GameStartMessage{Type: "gameStart"})
		if room.topic == "" && len(room.answers) == 0 {
			rm.startNewRoundLocked(room)
		}
	} else if room.topic != "" {
		// Joining an active game must not restart the round; the late
		// joiner just needs the current prompt.
		trySend(c, NewRoundMessage{Type: "newRound", Topic: room.topic})
	}

	return nil
}

// SubmitAnswer records the caller's term for the current round. Repeat
// submissions within a round, and submissions while no round is
// collecting, are no-ops.
func (rm *RoomManager) SubmitAnswer(c *Client, term string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	code := rm.joined[c.playerID]
	room, ok := rm.rooms[code]
	if !ok {
		return
	}

	if room.topic == "" || room.revealed {
		return
	}
	if room.hasAnswered(c.playerID) {
		return
	}

	var username string
	for _, p := range room.players {
		if p.client.playerID == c.playerID {
			username = p.username
			break
		}
	}

	room.answers = append(room.answers, roundAnswer{
		playerID: c.playerID,
		username: username,
		term:     term,
	})

	rm.updateWaitingLocked(room)
	rm.checkRoundCompletionLocked(room)
}

// Disconnect removes the caller from their room, if any. Dropping the
// room below two players destroys it.
func (rm *RoomManager) Disconnect(c *Client) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	code := rm.joined[c.playerID]
	room, ok := rm.rooms[code]
	delete(rm.joined, c.playerID)
	if !ok {
		return
	}

	idx := -1
	for i, p := range room.players {
		if p.client.playerID == c.playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}

	username := room.players[idx].username
	room.players = append(room.players[:idx], room.players[idx+1:]...)

	// Discard the departed player's pending answer for this round. The
	// denormalized username keeps already-revealed answers intact.
	dst := room.answers[:0]
	for _, a := range room.answers {
		if a.playerID != c.playerID {
			dst = append(dst, a)
		}
	}
	room.answers = dst

	room.broadcast(PlayerLeftMessage{
		Type:     "playerLeft",
		Username: username,
		Players:  room.usernames(),
	})

	logf(rm.cfg, "ROOMS: %q left room %s (%d players)", username, code, len(room.players))

	if len(room.players) < minPlayers {
		room.broadcast(GameStopMessage{
			Type:    "gameStop",
			Message: "Game over: not enough players left.",
		})
		rm.destroyRoomLocked(room)
		return
	}

	// The denominator shrank, so the round may have just completed; if
	// not, players who already answered need the corrected count.
	if !rm.checkRoundCompletionLocked(room) && room.topic != "" && !room.revealed {
		rm.updateWaitingLocked(room)
	}
}

// updateWaitingLocked tells every player who has already answered how
// many submissions are still outstanding.
func (rm *RoomManager) updateWaitingLocked(room *Room) {
	remaining := len(room.players) - len(room.answers)

	for _, p := range room.players {
		if room.hasAnswered(p.client.playerID) {
			trySend(p.client, WaitingMessage{Type: "waitingForOpponent", Count: remaining})
		}
	}
}

// checkRoundCompletionLocked fires the reveal once every current player
// has answered, and reports whether it did. Only a collecting round can
// complete; a reveal in progress is never re-fired.
func (rm *RoomManager) checkRoundCompletionLocked(room *Room) bool {
	if room.topic == "" || room.revealed || len(room.players) == 0 {
		return false
	}
	if len(room.answers) != len(room.players) {
		return false
	}

	answers := make([]RevealAnswer, 0, len(room.answers))
	for _, a := range room.answers {
		answers = append(answers, RevealAnswer{Username: a.username, Term: a.term})
	}

	room.revealed = true
	room.broadcast(RoundRevealMessage{
		Type:    "roundReveal",
		Topic:   room.topic,
		Answers: answers,
	})

	logf(rm.cfg, "ROOMS: Round %d revealed in %s (%d answers)", room.round, room.code, len(answers))

	rm.scheduleNextRoundLocked(room)

	return true
}

// scheduleNextRoundLocked arms the reveal-to-next-round delay. The
// callback re-validates both room identity and round generation under
// the lock, so a room destroyed (or destroyed and recreated under the
// same code) while the timer was pending makes it a no-op.
func (rm *RoomManager) scheduleNextRoundLocked(room *Room) {
	code := room.code
	gen := room.round

	rm.afterFunc(rm.cfg.revealDuration, func() {
		rm.mu.Lock()
		defer rm.mu.Unlock()

		current, ok := rm.rooms[code]
		if !ok || current != room || room.round != gen {
			return
		}

		rm.startNewRoundLocked(room)
	})
}

// startNewRoundLocked clears the previous round's answers, picks a
// topic, and broadcasts it. A room that can no longer field a round is
// stopped and destroyed instead.
func (rm *RoomManager) startNewRoundLocked(room *Room) {
	if len(room.players) < minPlayers {
		room.broadcast(GameStopMessage{
			Type:    "gameStop",
			Message: "Game over: not enough players for a new round.",
		})
		rm.destroyRoomLocked(room)
		return
	}

	room.round++
	room.answers = nil
	room.revealed = false
	room.topic = randomTopic()

	room.broadcast(NewRoundMessage{Type: "newRound", Topic: room.topic})

	logf(rm.cfg, "ROOMS: Round %d started in %s with topic %q", room.round, room.code, room.topic)
}

// destroyRoomLocked removes the room from the registry and releases
// its remaining members back to the lobby. Idempotent.
func (rm *RoomManager) destroyRoomLocked(room *Room) {
	for _, p := range room.players {
		delete(rm.joined, p.client.playerID)
	}
	if rm.rooms[room.code] == room {
		delete(rm.rooms, room.code)
	}

	logf(rm.cfg, "ROOMS: Destroyed room %s", room.code)
}
