package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/devcomfort/instructable-pcgrl/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin during development
		// In production, restrict this to your client's domain
		return true
	},
}

// Routes configures the HTTP surface and returns the router
func Routes(editor *services.EditorService, state *services.StateService, history *services.HistoryService, clientManager *ClientManager) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Editor sessions connect here
	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			log.Printf("Failed to upgrade connection: %v", err)
			return
		}
		defer conn.Close()

		HandleClientConnection(conn, editor, state, history, clientManager)
	})

	// Share link for the current state
	r.Get("/share", func(w http.ResponseWriter, req *http.Request) {
		fragment, err := state.Fragment()
		if err != nil {
			log.Printf("Failed to build share fragment: %v", err)
			respondError(w, http.StatusInternalServerError, "failed to build share fragment")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"fragment": fragment})
	})

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
