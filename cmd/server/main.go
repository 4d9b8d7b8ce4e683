/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the travel itinerary server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize SQLite store
  3. Optionally seed demo employees
  4. Create API handler with dependencies
  5. Start the completion sweeper
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: traveldesk.db)
           Use ":memory:" for in-memory database
  -seed    Insert demo employees on startup

ENVIRONMENT:
  JWT_SECRET   Token signing secret (required outside dev)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the sweeper and close the database
  4. Exit

EXAMPLES:
  # Run with file database and demo data
  ./server -db="./data/traveldesk.db" -seed

  # Run with in-memory database
  ./server -db=":memory:" -seed

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
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
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/warp/travel-desk/api"
	"github.com/warp/travel-desk/store/sqlite"
)

func main() {
	// .env is optional; flags and the real environment win.
	_ = godotenv.Load()

	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "traveldesk.db", "SQLite database path")
	seed := flag.Bool("seed", false, "insert demo employees on startup")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
		log.Println("Warning: JWT_SECRET not set, using insecure dev secret")
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	if *seed {
		if err := seedEmployees(context.Background(), store); err != nil {
			log.Fatalf("Failed to seed employees: %v", err)
		}
	}

	// Initialize handler and router
	handler := api.NewHandler(store, []byte(secret))
	router := api.NewRouter(handler)

	// Background completion sweeper
	sweeper := api.NewCompletionSweeper(store)
	sweeper.Start()
	defer sweeper.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
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

// seedEmployees inserts a small demo roster. The login convention is
// username = first+last name lowercased, password = FirstName@123.
func seedEmployees(ctx context.Context, store *sqlite.Store) error {
	demo := []sqlite.Employee{
		{
			EmployeeID: "EMP-001", FirstName: "Asha", LastName: "Rao",
			Email: "asha.rao@example.com", Contact: "9876543210",
			Designation: "Senior Engineer", Band: "B2",
			Department: "Platform", Location: "Mumbai",
		},
		{
			EmployeeID: "EMP-002", FirstName: "Vikram", LastName: "Shetty",
			Email: "vikram.shetty@example.com", Contact: "9876501234",
			Designation: "Engineering Manager", Band: "B3",
			Department: "Platform", Location: "Bengaluru",
		},
		{
			EmployeeID: "EMP-003", FirstName: "Meera", LastName: "Iyer",
			Email: "meera.iyer@example.com", Contact: "9876512345",
			Designation: "Product Analyst", Band: "B1",
			Department: "Product", Location: "Chennai",
		},
	}

	for _, emp := range demo {
		emp.Username = strings.ToLower(emp.FirstName + emp.LastName)
		hash, err := api.HashPassword(emp.FirstName + "@123")
		if err != nil {
			return err
		}
		emp.PasswordHash = hash
		if err := store.SaveEmployee(ctx, emp); err != nil {
			return err
		}
		log.Printf("Seeded employee %s (username %s)", emp.EmployeeID, emp.Username)
	}
	return nil
}
