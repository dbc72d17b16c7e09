/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Warp Temporal Engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Load the rulebook (stored document first, then -rules file)
  4. Create the overtime engine and API handler
  5. Start the background scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: engine.db)
           Use ":memory:" for in-memory database
  -rules   Rulebook JSON file, used when no rulebook is stored yet

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database and a rulebook
  ./server -db="./data/engine.db" -rules="./rulebook.json"

  # Run with in-memory database
  ./server -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Background jobs
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/temporal-engine/api"
	"github.com/warp/temporal-engine/engine"
	"github.com/warp/temporal-engine/rulebook"
	"github.com/warp/temporal-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "engine.db", "SQLite database path")
	rulesPath := flag.String("rules", "", "rulebook JSON file")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Load rules: a stored rulebook wins over the file, so hot updates
	// survive restarts.
	rules := rulebook.NewProvider(engine.RuleSet{})
	if doc, err := store.LoadRulebook(context.Background()); err != nil {
		log.Printf("Warning: Failed to load stored rulebook: %v", err)
	} else if doc != "" {
		set, err := rulebook.Parse([]byte(doc))
		if err != nil {
			log.Fatalf("Stored rulebook is invalid: %v", err)
		}
		rules.Update(set)
		log.Println("Rulebook loaded from database")
	} else if *rulesPath != "" {
		set, err := rulebook.LoadFile(*rulesPath)
		if err != nil {
			log.Fatalf("Failed to load rulebook %s: %v", *rulesPath, err)
		}
		rules.Update(set)
		if data, err := os.ReadFile(*rulesPath); err == nil {
			if err := store.SaveRulebook(context.Background(), string(data)); err != nil {
				log.Printf("Warning: Failed to persist rulebook: %v", err)
			}
		}
		log.Printf("Rulebook loaded from %s", *rulesPath)
	} else {
		log.Println("Warning: No rulebook configured; all categories degrade to defaults")
	}

	// Initialize engine and handler
	notifier := engine.NewLogNotifier()
	eng := engine.NewOvertimeEngine(store, rules, notifier)
	handler := api.NewHandler(store, rules, eng)

	// Start scheduler
	scheduler := api.NewScheduler(store, eng, notifier)
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
