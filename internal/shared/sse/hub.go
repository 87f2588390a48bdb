package sse

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Event is a single Server-Sent Event.
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client is one connected browser session.
type Client struct {
	ID      string
	OwnerID string
	Events  chan Event
}

// Hub tracks connected SSE clients. Constructed and owned by main; there is
// no package-level instance.
type Hub struct {
	mu      sync.RWMutex
	logger  *zap.Logger
	clients map[string]*Client
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[string]*Client),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	h.logger.Debug("SSE client registered",
		zap.String("client_id", client.ID),
		zap.String("owner_id", client.OwnerID),
		zap.Int("total", len(h.clients)))
}

// Unregister removes a client and closes its event channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		h.logger.Debug("SSE client unregistered",
			zap.String("client_id", clientID),
			zap.Int("total", len(h.clients)))
	}
}

// SendToOwner delivers an event to every session of one owner. Slow clients
// are skipped rather than blocking the sender.
func (h *Hub) SendToOwner(ownerID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.OwnerID != ownerID {
			continue
		}
		select {
		case client.Events <- event:
		default:
			h.logger.Warn("SSE client buffer full, dropping event",
				zap.String("client_id", client.ID))
		}
	}
}

// PublishNotification nudges the owner's sessions that a notification was
// created. The payload carries ids only; clients re-fetch the list.
func (h *Hub) PublishNotification(ownerID, notificationID, notificationType string) {
	payload, _ := json.Marshal(map[string]string{
		"notification_id": notificationID,
		"type":            notificationType,
	})
	h.SendToOwner(ownerID, Event{EventType: "notification", Data: string(payload)})
}
