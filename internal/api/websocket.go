// internal/api/websocket.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Corphon/ReelBoard/internal/models"
	"github.com/Corphon/ReelBoard/internal/utils"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
	wsSendBuffer = 16
)

// Project websocket message types
const (
	MessageSnapshot       = "snapshot"
	MessageProjectUpdated = "project_updated"
)

// ProjectMessage is pushed to subscribers of one project
type ProjectMessage struct {
	Type    string          `json:"type"`
	Project *models.Project `json:"project"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// origins are enforced by the CORS layer
		return true
	},
}

// wsClient is one subscriber connection
type wsClient struct {
	conn      *websocket.Conn
	projectID string
	send      chan []byte
}

type projectBroadcast struct {
	projectID string
	payload   []byte
}

// ProjectHub fans project updates out to websocket subscribers. The registry is
// owned by the Run goroutine; a client's send channel is closed only there.
type ProjectHub struct {
	clients    map[string]map[*wsClient]struct{} // projectID -> clients
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan projectBroadcast
	done       chan struct{}
	stopOnce   sync.Once
	metrics    *utils.APIMetrics
}

// NewProjectHub creates a hub; call Run to start it
func NewProjectHub(metrics *utils.APIMetrics) *ProjectHub {
	return &ProjectHub{
		clients:    make(map[string]map[*wsClient]struct{}),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan projectBroadcast, 256),
		done:       make(chan struct{}),
		metrics:    metrics,
	}
}

// Run serves the registry until ctx is done
func (h *ProjectHub) Run(ctx context.Context) {
	defer h.stop()

	for {
		select {
		case client := <-h.register:
			if h.clients[client.projectID] == nil {
				h.clients[client.projectID] = make(map[*wsClient]struct{})
			}
			h.clients[client.projectID][client] = struct{}{}
			h.metrics.WebSocketConnected(1)
			utils.GetLogger().Debug("WebSocket client connected", map[string]interface{}{"project_id": client.projectID})

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			for client := range h.clients[msg.projectID] {
				select {
				case client.send <- msg.payload:
				default:
					// slow consumer
					h.remove(client)
				}
			}

		case <-ctx.Done():
			for _, set := range h.clients {
				for client := range set {
					h.remove(client)
				}
			}
			return
		}
	}
}

func (h *ProjectHub) stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *ProjectHub) remove(client *wsClient) {
	set, ok := h.clients[client.projectID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.projectID)
	}
	close(client.send)
	h.metrics.WebSocketConnected(-1)
}

// ProjectUpdated queues a project_updated message for the project's subscribers
func (h *ProjectHub) ProjectUpdated(project *models.Project) {
	payload, err := json.Marshal(&ProjectMessage{Type: MessageProjectUpdated, Project: project})
	if err != nil {
		utils.GetLogger().Error("Failed to encode project update", map[string]interface{}{"error": err.Error()})
		return
	}

	select {
	case h.broadcast <- projectBroadcast{projectID: project.ID, payload: payload}:
	case <-h.done:
	default:
		utils.GetLogger().Warn("Project update dropped, broadcast queue full", map[string]interface{}{"project_id": project.ID})
	}
}

// serve registers an upgraded connection, sends the snapshot and pumps until
// the peer goes away or the hub stops.
func (h *ProjectHub) serve(conn *websocket.Conn, project *models.Project) {
	snapshot, err := json.Marshal(&ProjectMessage{Type: MessageSnapshot, Project: project})
	if err != nil {
		conn.Close()
		return
	}

	client := &wsClient{
		conn:      conn,
		projectID: project.ID,
		send:      make(chan []byte, wsSendBuffer),
	}
	client.send <- snapshot

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump()

	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// readPump discards inbound frames and keeps the read deadline fresh
func (c *wsClient) readPump() {
	defer c.conn.Close()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				utils.GetLogger().Warn("WebSocket read error", map[string]interface{}{
					"project_id": c.projectID,
					"error":      err.Error(),
				})
			}
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
