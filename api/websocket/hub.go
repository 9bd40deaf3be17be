package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/openalpha/poolparty/metrics"
)

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by channel
	clients  map[*Client]bool
	channels map[string]map[*Client]bool // channel -> clients

	// Inbound messages from clients
	broadcast chan []byte

	// Register/unregister requests
	register   chan *Client
	unregister chan *Client

	// Channel subscription requests
	subscribe   chan *SubscriptionRequest
	unsubscribe chan *SubscriptionRequest

	// Per-pool stats buffer, broadcast on an interval
	statsBuffer map[string]*PoolStatsMessage

	// Mutex for thread-safe operations
	mu sync.RWMutex

	// Configuration
	config *HubConfig
}

// HubConfig contains hub configuration
type HubConfig struct {
	// Update interval for buffered pool stats
	StatsInterval time.Duration // Default: 1s

	// Connection limits
	MaxClientsPerIP  int
	MaxSubscriptions int

	// Rate limiting
	MessageRateLimit int // Messages per second per client
}

// DefaultHubConfig returns default hub configuration
func DefaultHubConfig() *HubConfig {
	return &HubConfig{
		StatsInterval:    time.Second,
		MaxClientsPerIP:  10,
		MaxSubscriptions: 50,
		MessageRateLimit: 100,
	}
}

// SubscriptionRequest represents a subscription request
type SubscriptionRequest struct {
	Client  *Client
	Channel string
	Action  string // "subscribe" or "unsubscribe"
}

// NewHub creates a new Hub
func NewHub(config *HubConfig) *Hub {
	if config == nil {
		config = DefaultHubConfig()
	}

	return &Hub{
		clients:     make(map[*Client]bool),
		channels:    make(map[string]map[*Client]bool),
		broadcast:   make(chan []byte, 256),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan *SubscriptionRequest, 256),
		unsubscribe: make(chan *SubscriptionRequest, 256),
		statsBuffer: make(map[string]*PoolStatsMessage),
		config:      config,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	statsTicker := time.NewTicker(h.config.StatsInterval)
	defer statsTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case req := <-h.subscribe:
			h.handleSubscription(req)

		case req := <-h.unsubscribe:
			h.handleUnsubscription(req)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-statsTicker.C:
			h.broadcastStats()
		}
	}
}

// registerClient adds a new client
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	metrics.GetCollector().RecordWSConnection(1)
}

// unregisterClient removes a client
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)

		// Remove from all channels
		for channel, clients := range h.channels {
			if clients[client] {
				delete(clients, client)
				metrics.GetCollector().RecordWSSubscription(channel, -1)
			}
			if len(clients) == 0 {
				delete(h.channels, channel)
			}
		}

		close(client.send)
		metrics.GetCollector().RecordWSConnection(-1)
	}
}

// handleSubscription handles a subscription request
func (h *Hub) handleSubscription(req *SubscriptionRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channel := req.Channel
	client := req.Client

	if _, ok := h.channels[channel]; !ok {
		h.channels[channel] = make(map[*Client]bool)
	}
	if !h.channels[channel][client] {
		h.channels[channel][client] = true
		metrics.GetCollector().RecordWSSubscription(channel, 1)
	}

	// Send subscription confirmation
	confirmation := &WSMessage{
		Type:    "subscribed",
		Channel: channel,
		Data:    nil,
	}
	data, _ := json.Marshal(confirmation)
	client.send <- data
}

// handleUnsubscription handles an unsubscription request
func (h *Hub) handleUnsubscription(req *SubscriptionRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channel := req.Channel
	client := req.Client

	if clients, ok := h.channels[channel]; ok {
		if clients[client] {
			delete(clients, client)
			metrics.GetCollector().RecordWSSubscription(channel, -1)
		}
		if len(clients) == 0 {
			delete(h.channels, channel)
		}
	}

	// Send unsubscription confirmation
	confirmation := &WSMessage{
		Type:    "unsubscribed",
		Channel: channel,
		Data:    nil,
	}
	data, _ := json.Marshal(confirmation)
	client.send <- data
}

// broadcastMessage sends a message to all clients
func (h *Hub) broadcastMessage(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// Client buffer is full, skip
		}
	}
}

// BroadcastToChannel sends a message to all clients subscribed to a channel
func (h *Hub) BroadcastToChannel(channel string, message interface{}) {
	h.mu.RLock()
	clients, ok := h.channels[channel]
	if !ok {
		h.mu.RUnlock()
		return
	}

	// Make a copy of clients to avoid holding lock during send
	clientList := make([]*Client, 0, len(clients))
	for client := range clients {
		clientList = append(clientList, client)
	}
	h.mu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		return
	}

	metrics.GetCollector().RecordWSMessage(channel)
	for _, client := range clientList {
		select {
		case client.send <- data:
		default:
			// Client buffer is full, skip
		}
	}
}

// ============ Channel-specific broadcasts ============

// UpdatePoolStats updates the stats buffer for a pool
func (h *Hub) UpdatePoolStats(poolID string, stats *PoolStatsMessage) {
	h.mu.Lock()
	h.statsBuffer[poolID] = stats
	h.mu.Unlock()
}

// broadcastStats broadcasts all buffered pool stats updates
func (h *Hub) broadcastStats() {
	h.mu.RLock()
	stats := make(map[string]*PoolStatsMessage)
	for k, v := range h.statsBuffer {
		stats[k] = v
	}
	h.mu.RUnlock()

	for poolID, stat := range stats {
		channel := "pool:" + poolID
		msg := &WSMessage{
			Type:    "stats",
			Channel: channel,
			Data:    stat,
		}
		h.BroadcastToChannel(channel, msg)
	}
}

// BroadcastPhase broadcasts a phase transition to the pool channel and the
// public pools firehose
func (h *Hub) BroadcastPhase(poolID string, phase *PhaseMessage) {
	channel := "pool:" + poolID
	msg := &WSMessage{
		Type:    "phase",
		Channel: channel,
		Data:    phase,
	}
	h.BroadcastToChannel(channel, msg)

	firehose := &WSMessage{
		Type:    "phase",
		Channel: "pools",
		Data:    phase,
	}
	h.BroadcastToChannel("pools", firehose)
}

// BroadcastContribution broadcasts a contribution to the pool channel
func (h *Hub) BroadcastContribution(poolID string, contribution *ContributionMessage) {
	channel := "pool:" + poolID
	msg := &WSMessage{
		Type:    "contribution",
		Channel: channel,
		Data:    contribution,
	}
	h.BroadcastToChannel(channel, msg)
}

// BroadcastClaim broadcasts a claim to a specific participant
func (h *Hub) BroadcastClaim(address string, claim *ClaimMessage) {
	channel := "participant:" + address
	msg := &WSMessage{
		Type:    "claim",
		Channel: channel,
		Data:    claim,
	}
	h.BroadcastToChannel(channel, msg)
}

// ============ Message Types ============

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Channel string      `json:"channel"`
	Data    interface{} `json:"data,omitempty"`
}

// PoolStatsMessage is a periodic pool snapshot
type PoolStatsMessage struct {
	PoolID           string `json:"pool_id"`
	Phase            string `json:"phase"`
	TotalContributed string `json:"total_contributed"`
	ParticipantCount int    `json:"participant_count"`
	Watermark        string `json:"watermark"`
	Timestamp        int64  `json:"timestamp"`
}

// PhaseMessage represents a pool phase transition
type PhaseMessage struct {
	PoolID    string `json:"pool_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Timestamp int64  `json:"timestamp"`
}

// ContributionMessage represents a contribution or withdrawal
type ContributionMessage struct {
	PoolID           string `json:"pool_id"`
	Address          string `json:"address"`
	Amount           string `json:"amount"`
	Kind             string `json:"kind"` // "contribute", "leave" or "kick"
	TotalContributed string `json:"total_contributed"`
	Timestamp        int64  `json:"timestamp"`
}

// ClaimMessage represents a token or refund claim payout
type ClaimMessage struct {
	PoolID    string `json:"pool_id"`
	Address   string `json:"address"`
	Kind      string `json:"kind"` // "tokens" or "refund"
	Amount    string `json:"amount"`
	Timestamp int64  `json:"timestamp"`
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetChannelCount returns the number of active channels
func (h *Hub) GetChannelCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels)
}

// GetChannelClientCount returns the number of clients in a channel
func (h *Hub) GetChannelClientCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.channels[channel]; ok {
		return len(clients)
	}
	return 0
}

// ServeWS handles WebSocket upgrade requests
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		clientID = generateID()
	}

	address := r.URL.Query().Get("address")
	ip := getClientIPFromRequest(r)

	client := NewClient(h, conn, clientID, address, ip)

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// Helper function to get client IP
func getClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
	}
	return ip
}

// Generate a simple ID
func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
