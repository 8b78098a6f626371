package main

import (
	"log"
	"net/http"

	"github.com/devcomfort/instructable-pcgrl/config"
	"github.com/devcomfort/instructable-pcgrl/handlers"
	"github.com/devcomfort/instructable-pcgrl/models"
	"github.com/devcomfort/instructable-pcgrl/persistence"
	"github.com/devcomfort/instructable-pcgrl/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize the persistence sink
	sink, err := openSink(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize persistence: %v", err)
	}
	defer sink.Close()

	// Initialize services
	state := services.NewStateService(sink, cfg.Shape())
	if cfg.BootFragment != "" {
		if err := state.Restore(cfg.BootFragment); err != nil {
			log.Printf("Ignoring boot fragment: %v", err)
		}
	}

	// Seed the history with whatever the sink restored, so the first
	// undo steps back to the reloaded or shared state
	history := services.NewHistoryService(state.Map(), cfg.MaxHistory)
	editor := services.NewEditorService(history, state)
	clientManager := handlers.NewClientManager()

	// Every committed map change fans out to all connected editors
	state.Subscribe(func(m models.GridMap) {
		clientManager.BroadcastToAll(handlers.NewStateMessage(m, state, history))
	})

	// Set up HTTP routes
	router := handlers.Routes(editor, state, history, clientManager)

	log.Printf("Map editor server starting on %s (%s sink, %dx%d grid, history %d)",
		cfg.Addr, cfg.SinkBackend, cfg.GridRows, cfg.GridCols, cfg.MaxHistory)
	log.Fatal(http.ListenAndServe(cfg.Addr, router))
}

// openSink picks the persistence backend named by the configuration
func openSink(cfg *config.Config) (persistence.Sink, error) {
	switch cfg.SinkBackend {
	case config.BackendPostgres:
		log.Println("Using PostgreSQL persistence")
		return persistence.NewPostgresSink(cfg.DatabaseURL)
	case config.BackendJSON:
		log.Println("Using JSON persistence")
		return persistence.NewJSONSink(cfg.SinkFile)
	default:
		log.Println("Using in-memory persistence")
		return persistence.NewMemorySink(), nil
	}
}
