package sse

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/openpulse/openpulse-backend/internal/pkg/logger"
)

type Event string

const (
	EventSessionAnalysisCompleted   Event = "SessionAnalysisCompleted"
	EventSignalAggregationCompleted Event = "SignalAggregationCompleted"
	EventSurveySynthesisCompleted   Event = "SurveySynthesisCompleted"
	EventNarrativeReportCompleted   Event = "NarrativeReportCompleted"
	EventPipelineRunFailed          Event = "PipelineRunFailed"
)

type Message struct {
	Channel string `json:"channel"`
	Event   Event  `json:"event"`
	Data    any    `json:"data,omitempty"`
}

// SurveyChannel names the per-survey event channel.
func SurveyChannel(surveyID uuid.UUID) string {
	return "survey:" + surveyID.String()
}

type Client struct {
	ID       uuid.UUID
	Channels map[string]bool
	Outbound chan Message
	done     chan struct{}
}

func (c *Client) Done() <-chan struct{} { return c.done }

type Hub struct {
	mu            sync.RWMutex
	log           *logger.Logger
	subscriptions map[string]map[*Client]bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:           log.With("component", "SSEHub"),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

func (hub *Hub) NewClient() *Client {
	return &Client{
		ID:       uuid.New(),
		Channels: make(map[string]bool),
		Outbound: make(chan Message, 16),
		done:     make(chan struct{}),
	}
}

func (hub *Hub) Subscribe(client *Client, channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}

	hub.mu.Lock()
	defer hub.mu.Unlock()

	client.Channels[channel] = true
	clients, exists := hub.subscriptions[channel]
	if !exists {
		clients = make(map[*Client]bool)
		hub.subscriptions[channel] = clients
	}
	clients[client] = true

	hub.log.Debug("SSE client subscribed", "client_id", client.ID, "channel", channel)
}

func (hub *Hub) Disconnect(client *Client) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	for channel := range client.Channels {
		if subMap, ok := hub.subscriptions[channel]; ok {
			delete(subMap, client)
			if len(subMap) == 0 {
				delete(hub.subscriptions, channel)
			}
		}
	}
	close(client.done)

	hub.log.Debug("SSE client disconnected", "client_id", client.ID)
}

// Publish fans the message out to every subscriber of its channel. Slow
// clients are skipped rather than blocked on.
func (hub *Hub) Publish(ctx context.Context, msg Message) error {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	for client := range hub.subscriptions[msg.Channel] {
		select {
		case client.Outbound <- msg:
		default:
			hub.log.Warn("SSE client outbound full; dropping message",
				"client_id", client.ID, "channel", msg.Channel, "event", msg.Event)
		}
	}
	return nil
}
