package handlers

import (
	"log"
	"sync"
)

// ClientManager manages connected editor sessions
type ClientManager struct {
	clients map[string]*ClientHandler // Map session ID to ClientHandler
	mutex   sync.RWMutex
}

// NewClientManager creates a new client manager
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients: make(map[string]*ClientHandler),
	}
}

// AddClient adds a session to the manager
func (cm *ClientManager) AddClient(sessionID string, handler *ClientHandler) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	cm.clients[sessionID] = handler
	log.Printf("Session registered, %d connected", len(cm.clients))
}

// RemoveClient removes a session from the manager
func (cm *ClientManager) RemoveClient(sessionID string) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	delete(cm.clients, sessionID)
	log.Printf("Session removed, %d connected", len(cm.clients))
}

// Count returns the number of connected sessions
func (cm *ClientManager) Count() int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return len(cm.clients)
}

// BroadcastToAll sends a message to all connected sessions
func (cm *ClientManager) BroadcastToAll(msg interface{}) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	for id, client := range cm.clients {
		if err := client.conn.SendMessage(msg); err != nil {
			log.Printf("Error broadcasting to session %s: %v", id, err)
		}
	}
}

// BroadcastToOthers sends a message to all connected sessions except
// the specified one
func (cm *ClientManager) BroadcastToOthers(excludeSessionID string, msg interface{}) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	for id, client := range cm.clients {
		if id == excludeSessionID {
			continue
		}
		if err := client.conn.SendMessage(msg); err != nil {
			log.Printf("Error broadcasting to session %s: %v", id, err)
		}
	}
}
