package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// SSEHub manages Server-Sent Events connections for per-admin upload
// completion notifications. Clients are keyed by admin id.
type SSEHub struct {
	clients map[string]map[chan []byte]bool
	mu      sync.RWMutex
}

// NewSSEHub creates a new SSE hub
func NewSSEHub() *SSEHub {
	return &SSEHub{
		clients: make(map[string]map[chan []byte]bool),
	}
}

// RegisterClient registers a new SSE client for an admin
func (h *SSEHub) RegisterClient(adminID string) chan []byte {
	h.mu.Lock()
	defer h.mu.Unlock()

	clientChan := make(chan []byte, 10) // Buffer size 10
	if h.clients[adminID] == nil {
		h.clients[adminID] = make(map[chan []byte]bool)
	}
	h.clients[adminID][clientChan] = true

	logrus.Infof("SSE client registered for admin %s (total clients: %d)", adminID, len(h.clients[adminID]))
	return clientChan
}

// UnregisterClient unregisters an SSE client
func (h *SSEHub) UnregisterClient(adminID string, clientChan chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[adminID] != nil {
		delete(h.clients[adminID], clientChan)
		close(clientChan)

		// Clean up empty maps
		if len(h.clients[adminID]) == 0 {
			delete(h.clients, adminID)
		}
	}

	logrus.Infof("SSE client unregistered for admin %s (remaining clients: %d)", adminID, len(h.clients[adminID]))
}

// Broadcast sends a payload to every client of the given admin. Slow
// clients with a full channel are skipped rather than blocking the
// notification path.
func (h *SSEHub) Broadcast(adminID string, event string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.clients[adminID]
	if len(clients) == 0 {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		logrus.Errorf("Failed to marshal SSE payload: %v", err)
		return
	}
	message := fmt.Sprintf("event: %s\ndata: %s\n\n", event, string(data))

	for clientChan := range clients {
		select {
		case clientChan <- []byte(message):
		default:
			logrus.Warnf("SSE client channel full, skipping: %s", adminID)
		}
	}
}

// SendHeartbeat sends a heartbeat comment to keep connections alive
func (h *SSEHub) SendHeartbeat(adminID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	heartbeat := fmt.Sprintf(": heartbeat %s\n\n", time.Now().Format(time.RFC3339))
	for clientChan := range h.clients[adminID] {
		select {
		case clientChan <- []byte(heartbeat):
		default:
			// Skip if channel is full
		}
	}
}

// GetClientCount returns the number of clients for a specific admin
func (h *SSEHub) GetClientCount(adminID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[adminID])
}
