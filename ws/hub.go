package ws

import (
	"log"
	"sync"
)

// sendRequest asks the hub to deliver a message to one user's connections.
type sendRequest struct {
	userID  string
	message []byte
}

// Hub maintains the set of active clients and routes chat events to the
// users they belong to. All map mutation and every channel close happens on
// the Run goroutine, so a connection's Send channel is closed exactly once.
type Hub struct {
	// Registered clients. Touched only by the Run goroutine.
	clients map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Delivery requests from HTTP handlers.
	send chan sendRequest

	// Map to quickly find clients by user ID (one user can hold several
	// connections, e.g. two browser tabs).
	userClients map[string][]*Client

	// Mutex to protect userClients, which IsUserOnline reads from
	// handler goroutines.
	mutex sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
		send:        make(chan sendRequest),
		clients:     make(map[*Client]bool),
		userClients: make(map[string][]*Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			h.addUserClient(client)
		case client := <-h.Unregister:
			h.dropClient(client)
		case req := <-h.send:
			for _, client := range h.clientsForUser(req.userID) {
				select {
				case client.Send <- req.message:
				default:
					// Slow consumer: drop the connection rather than
					// block the hub or leave a dead entry behind.
					h.dropClient(client)
				}
			}
		}
	}
}

// dropClient removes a client from both maps and closes its Send channel.
// It only runs on the Run goroutine and is a no-op for already-dropped
// clients, so a hub-side drop racing the connection's own unregister
// cannot close the channel twice.
func (h *Hub) dropClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	h.removeUserClient(client)
}

func (h *Hub) addUserClient(client *Client) {
	h.mutex.Lock()
	h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
	count := len(h.userClients[client.UserID])
	h.mutex.Unlock()

	log.Printf("User %s connected. Total connections for user: %d", client.UserID, count)
}

func (h *Hub) removeUserClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	userConns := h.userClients[client.UserID]
	for i, conn := range userConns {
		if conn == client {
			h.userClients[client.UserID] = append(userConns[:i], userConns[i+1:]...)
			break
		}
	}

	if len(h.userClients[client.UserID]) == 0 {
		delete(h.userClients, client.UserID)
		log.Printf("User %s disconnected", client.UserID)
	}
}

// clientsForUser snapshots a user's connections for delivery
func (h *Hub) clientsForUser(userID string) []*Client {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return append([]*Client(nil), h.userClients[userID]...)
}

// SendToUser sends a message to a specific user (all their active
// connections). Delivery happens on the hub goroutine.
func (h *Hub) SendToUser(userID string, message []byte) {
	h.send <- sendRequest{userID: userID, message: message}
}

// IsUserOnline checks if a user has any active WebSocket connection
func (h *Hub) IsUserOnline(userID string) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	clients, ok := h.userClients[userID]
	return ok && len(clients) > 0
}
