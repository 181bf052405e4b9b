// Wordwave
//
// A real-time word-association party game. Players share a room; each
// round the server broadcasts a topic, every player submits one term,
// and once everyone has answered the server reveals all answers at the
// same time, then starts the next round after a short pause.
//
// Features:
// - One WebSocket at /ws; rooms are chosen via createRoom/joinRoom commands
// - Random 4-char room codes via crypto/rand, with server-side collision check
// - Players identified by a per-connection UUID handle
// - Rooms start at 2 players and are destroyed below 2
// - Duplicate submissions within a round are ignored
// - Answers are revealed simultaneously, in submission order
// - Fixed reveal pause before each next round (default 10s)
// - In-browser QR button to share a room join link, backed by go-qrcode

package main

import (
	_ "embed"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
}

// trySend delivers msg without blocking room handling. A client whose
// send buffer is full loses the message rather than stalling the room.
func trySend(c *Client, msg any) {
	select {
	case c.send <- msg:
	default:
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (c *Client) readPump(rm *RoomManager) {
	defer func() {
		rm.Disconnect(c)
		close(c.send)
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		c.handleMessage(rm, msg)
	}
}

// A fault while handling one command must not take down the connection
// or the process; every manager method releases its lock via defer, so
// state stays consistent. The client just gets no success event.
func (c *Client) handleMessage(rm *RoomManager, msg ClientMessage) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("%s | ERROR: Recovered from %q command: %v", time.Now().Format(logDate), msg.Type, r)
		}
	}()

	switch msg.Type {
	case "createRoom":
		rm.CreateRoom(c, msg.Username)
	case "joinRoom":
		rm.JoinRoom(c, msg.Code, msg.Username)
	case "submitAnswer":
		rm.SubmitAnswer(c, msg.Term)
	default:
		// ignore unknown types
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// WebSocket handler; every connection gets a fresh handle, discarded
// again on disconnect.
func serveWS(cfg *Config, rm *RoomManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 8),
			playerID: uuid.NewString(),
		}

		logf(cfg, "ROOMS: Connection %s from %s", client.playerID, realIP(r))

		go client.writePump()
		client.readPump(rm)
	}
}

// QR handler: generates a PNG QR code for a room's join link using
// go-qrcode. Unknown codes 404 so stale links don't get shared around.
func qrHandler(cfg *Config, rm *RoomManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := strings.ToUpper(ps.ByName("code"))
		if _, ok := rm.lookup(code); !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		url := scheme + "://" + r.Host + cfg.prefix + "/?code=" + code

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

// ---- Static file paths ----

//go:embed assets/wordwave/index.html
var indexHTML []byte

//go:embed assets/wordwave/app.css
var wordwaveCSS []byte

//go:embed assets/wordwave/app.js
var wordwaveJS []byte

func getIndexHandler(cfg *Config) func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write(indexHTML)
	}
}

func getCssHandler(cfg *Config) func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write(wordwaveCSS)
	}
}

func getJsHandler(cfg *Config) func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write(wordwaveJS)
	}
}

// registerWordwave sets up routes so that:
//   - /                → HTML client (lobby + game view, ?code= deep link)
//   - /ws              → the game WebSocket
//   - /room/:code/qr   → PNG QR code linking into that room
func registerWordwave(cfg *Config, mux *httprouter.Router) *RoomManager {
	rm := newRoomManager(cfg)

	mux.GET(cfg.prefix+"/", getIndexHandler(cfg))

	// Shared assets
	mux.GET(cfg.prefix+"/assets/wordwave/app.css", getCssHandler(cfg))
	mux.GET(cfg.prefix+"/assets/wordwave/app.js", getJsHandler(cfg))

	mux.GET(cfg.prefix+"/ws", serveWS(cfg, rm))

	mux.GET(cfg.prefix+"/room/:code/qr", qrHandler(cfg, rm))

	return rm
}
