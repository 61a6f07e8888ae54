package websockets

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"

	"server/internal/logger"
)

// Manager fans test-run progress out to connected browsers. Clients
// subscribe to the run ids they care about; unsubscribed connections
// receive nothing.
type Manager struct {
	mu          sync.RWMutex
	connections map[*websocket.Conn]map[string]bool
	log         logger.Logger
}

func New() *Manager {
	return &Manager{
		connections: make(map[*websocket.Conn]map[string]bool),
		log:         logger.New("websockets"),
	}
}

type clientMessage struct {
	Type  string `json:"type"`
	RunID string `json:"runId"`
}

// HandleWebSocket owns the connection for its lifetime: it registers
// the client, processes subscribe/unsubscribe messages, and cleans up
// on disconnect.
func (m *Manager) HandleWebSocket(conn *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")

	m.mu.Lock()
	m.connections[conn] = make(map[string]bool)
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.connections, conn)
		m.mu.Unlock()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Debug("websocket closed", "error", err)
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn("ignoring malformed websocket message", "error", err)
			continue
		}

		m.mu.Lock()
		switch msg.Type {
		case "subscribe":
			if msg.RunID != "" {
				m.connections[conn][msg.RunID] = true
			}
		case "unsubscribe":
			delete(m.connections[conn], msg.RunID)
		}
		m.mu.Unlock()
	}
}

// SendRunProgress pushes a progress payload to every subscriber of the
// run.
func (m *Manager) SendRunProgress(runID string, data map[string]any) {
	m.broadcast(runID, map[string]any{
		"type":  "runProgress",
		"runId": runID,
		"data":  data,
	})
}

// SendRunComplete pushes the final result to every subscriber of the
// run.
func (m *Manager) SendRunComplete(runID string, result map[string]any) {
	m.broadcast(runID, map[string]any{
		"type":   "runComplete",
		"runId":  runID,
		"result": result,
	})
}

// SendRunError notifies subscribers that the run failed.
func (m *Manager) SendRunError(runID string, errorMsg string) {
	m.broadcast(runID, map[string]any{
		"type":  "runError",
		"runId": runID,
		"error": errorMsg,
	})
}

func (m *Manager) broadcast(runID string, payload map[string]any) {
	log := m.log.Function("broadcast")

	data, err := json.Marshal(payload)
	if err != nil {
		log.Er("failed to marshal websocket payload", err, "runID", runID)
		return
	}

	m.mu.RLock()
	targets := make([]*websocket.Conn, 0, len(m.connections))
	for conn, subs := range m.connections {
		if subs[runID] {
			targets = append(targets, conn)
		}
	}
	m.mu.RUnlock()

	for _, conn := range targets {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Debug("failed to write to websocket", "runID", runID, "error", err)
		}
	}
}
