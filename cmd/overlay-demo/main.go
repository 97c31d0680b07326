package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hearthsim/hstracker-go/internal/tracker"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for demo
	},
}

// EntityView is the wire shape of one tracked entity.
type EntityView struct {
	ID     int    `json:"id"`
	CardID string `json:"card_id,omitempty"`
	Name   string `json:"name,omitempty"`
	Zone   string `json:"zone"`
	Side   string `json:"side"`
	Attack int    `json:"attack,omitempty"`
	Health int    `json:"health,omitempty"`
}

// TrackerView is the wire shape of the reconstructed state.
type TrackerView struct {
	State            string       `json:"state"`
	Turn             int          `json:"turn"`
	PlayerHand       int          `json:"player_hand"`
	PlayerDeck       int          `json:"player_deck"`
	OpponentHand     int          `json:"opponent_hand"`
	OpponentDeck     int          `json:"opponent_deck"`
	Board            []EntityView `json:"board"`
	Reset            bool         `json:"reset"`
	CountdownSeconds int          `json:"countdown_seconds,omitempty"`
}

type WSMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type Client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans tracker refreshes out to connected overlay clients. It implements
// tracker.RenderListener.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu        sync.Mutex
	engine    *tracker.Engine
	countdown int
}

func newHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			log.Printf("Overlay client connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("Overlay client disconnected")
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Refresh implements tracker.RenderListener.
func (h *Hub) Refresh(reset bool) {
	h.mu.Lock()
	engine := h.engine
	countdown := h.countdown
	if reset {
		h.countdown = 0
		countdown = 0
	}
	h.mu.Unlock()
	if engine == nil {
		return
	}

	view := TrackerView{
		State:            engine.State().String(),
		Turn:             engine.CurrentTurn(),
		PlayerHand:       engine.HandCount(tracker.SidePlayer),
		PlayerDeck:       engine.DeckCount(tracker.SidePlayer),
		OpponentHand:     engine.HandCount(tracker.SideOpponent),
		OpponentDeck:     engine.DeckCount(tracker.SideOpponent),
		Reset:            reset,
		CountdownSeconds: countdown,
	}
	for _, ent := range engine.Entities(func(e *tracker.Entity) bool {
		return e.IsMinion() && e.Zone() == tracker.ZonePlay
	}) {
		view.Board = append(view.Board, EntityView{
			ID:     ent.ID,
			CardID: ent.CardID,
			Name:   ent.Name,
			Zone:   ent.Zone().String(),
			Side:   ent.Controller().String(),
			Attack: ent.Tag(tracker.TagAtk),
			Health: ent.Tag(tracker.TagHealth) - ent.Tag(tracker.TagDamage),
		})
	}

	message, err := json.Marshal(WSMessage{Type: "tracker_state", Data: view})
	if err != nil {
		log.Printf("Error marshaling state: %v", err)
		return
	}
	select {
	case h.broadcast <- message:
	default:
	}
}

// TurnCountdown implements tracker.RenderListener.
func (h *Hub) TurnCountdown(seconds int) {
	h.mu.Lock()
	h.countdown = seconds
	h.mu.Unlock()
}

func (h *Hub) setEngine(engine *tracker.Engine) {
	h.mu.Lock()
	h.engine = engine
	h.mu.Unlock()
}

func (c *Client) readPump(hub *Hub) {
	defer func() {
		hub.unregister <- c
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
		// Overlay clients are read-only; inbound messages are ignored.
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			break
		}
	}
}

func serveWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, 256),
	}

	hub.register <- client

	go client.writePump()
	go client.readPump(hub)
}

// demoFacts is a small scripted match the demo engine plays on a loop.
func demoFacts() []tracker.Fact {
	return []tracker.Fact{
		{Type: tracker.FactGameStart},
		{Type: tracker.FactEntityCreated, EntityID: 1, Value: tracker.CardTypeGame},
		{Type: tracker.FactEntityCreated, EntityID: 2, Value: tracker.CardTypePlayer, Side: tracker.SidePlayer},
		{Type: tracker.FactEntityCreated, EntityID: 3, Value: tracker.CardTypePlayer, Side: tracker.SideOpponent},
		{Type: tracker.FactCreateInDeck, EntityID: 10, Side: tracker.SidePlayer},
		{Type: tracker.FactCreateInDeck, EntityID: 11, Side: tracker.SidePlayer},
		{Type: tracker.FactCreateInHand, EntityID: 12, CardID: "CS2_182", Name: "Chillwind Yeti", Side: tracker.SidePlayer},
		{Type: tracker.FactTagChange, EntityID: 12, Tag: tracker.TagCardType, Value: tracker.CardTypeMinion},
		{Type: tracker.FactTagChange, EntityID: 2, Tag: tracker.TagMulliganState, Value: tracker.MulliganDone},
		{Type: tracker.FactTagChange, EntityID: 3, Tag: tracker.TagMulliganState, Value: tracker.MulliganDone},
		{Type: tracker.FactTagChange, EntityID: 1, Tag: tracker.TagTurn, Value: 1},
		{Type: tracker.FactTurnStart, Side: tracker.SidePlayer, Turn: 1},
		{Type: tracker.FactPlay, EntityID: 12},
		{Type: tracker.FactGameEnd},
		{Type: tracker.FactEnteredMenu},
	}
}

func main() {
	hub := newHub()
	go hub.run()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	engine := tracker.NewEngine(tracker.EngineConfig{
		Render:          hub,
		RefreshInterval: 250 * time.Millisecond,
		StartDebounce:   time.Second,
	}, logger)
	defer engine.Close()
	hub.setEngine(engine)

	go func() {
		for {
			for _, fact := range demoFacts() {
				engine.Apply(fact)
				time.Sleep(750 * time.Millisecond)
			}
			time.Sleep(3 * time.Second)
		}
	}()

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, w, r)
	})

	log.Println("Overlay demo listening on :8090")
	log.Println("WebSocket endpoint: ws://localhost:8090/ws")

	if err := http.ListenAndServe(":8090", nil); err != nil {
		log.Fatal("ListenAndServe: ", err)
	}
}
