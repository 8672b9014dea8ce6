package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/neon-grid/arcade/internal/arcade"
	"github.com/neon-grid/arcade/internal/auth"
	"github.com/neon-grid/arcade/internal/clickhouse"
	"github.com/neon-grid/arcade/internal/dal"
	"github.com/neon-grid/arcade/internal/handlers"
	"github.com/neon-grid/arcade/internal/logger"
	"github.com/neon-grid/arcade/internal/mocks"
	"github.com/neon-grid/arcade/internal/models"
	"github.com/neon-grid/arcade/internal/pubsub"
)

var (
	dataStore    dal.ResultDAL
	authProvider auth.AuthProvider
	hub          *arcade.Hub
)

func main() {
	// Initialize logger first
	logger.Init()

	logger.Info("Starting arcade simulation service")

	environment := os.Getenv("ENVIRONMENT")

	// Initialize database driver
	dbDriver := os.Getenv("DB_DRIVER")
	if dbDriver == "" {
		dbDriver = "memory"
	}

	var err error
	switch dbDriver {
	case "memory":
		dataStore = dal.NewMemoryDAL()
		logger.Info("Using in-memory data store")
	case "sqlite":
		sqliteFile := os.Getenv("SQLITE_FILE")
		if sqliteFile == "" {
			sqliteFile = "dev.sqlite"
		}
		dataStore, err = dal.NewSQLiteDAL(sqliteFile)
		if err != nil {
			logger.Error("Failed to initialize SQLite", "error", err)
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		logger.Info("Connected to SQLite database", "file", sqliteFile)
	case "postgres":
		dbConnString := os.Getenv("DATABASE_URL")
		if dbConnString == "" {
			logger.Error("DATABASE_URL environment variable is required for postgres driver")
			log.Fatal("DATABASE_URL environment variable is required for postgres driver")
		}
		dataStore, err = dal.NewPostgresDAL(dbConnString)
		if err != nil {
			logger.Error("Failed to initialize Postgres", "error", err)
			log.Fatalf("Failed to initialize Postgres: %v", err)
		}
		logger.Info("Connected to Postgres database")
	case "mock-postgres":
		sqliteFile := os.Getenv("SQLITE_FILE")
		if sqliteFile == "" {
			sqliteFile = "dev.sqlite"
		}
		dataStore, err = mocks.NewMockPostgresDAL(sqliteFile)
		if err != nil {
			logger.Error("Failed to initialize mock Postgres", "error", err)
			log.Fatalf("Failed to initialize mock Postgres: %v", err)
		}
	default:
		logger.Error("Unknown DB_DRIVER", "driver", dbDriver)
		log.Fatalf("Unknown DB_DRIVER: %s (valid: memory, sqlite, postgres, mock-postgres)", dbDriver)
	}

	// Initialize pub/sub (NATS JetStream or Embedded NATS for local development)
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}
	natsSubject := os.Getenv("NATS_SUBJECT")
	if natsSubject == "" {
		natsSubject = "arcade.events"
	}

	var upstream pubsub.Upstream
	var closeUpstream func()

	// Use embedded NATS in development mode, real NATS in production
	if environment == "" || environment == "development" {
		logger.Info("Starting embedded NATS server for local development")
		embeddedNats, err := pubsub.NewEmbeddedNATSPubSub(pubsub.EmbeddedNATSOptions{
			Port:       -1, // Random available port
			Subject:    natsSubject,
			StreamName: "ARCADE_EVENTS",
			StoreDir:   "", // In-memory storage
		})
		if err != nil {
			logger.Error("Failed to initialize embedded NATS", "error", err)
			log.Fatalf("Failed to initialize embedded NATS: %v", err)
		}
		upstream = embeddedNats
		closeUpstream = embeddedNats.Close
		logger.Info("Embedded NATS server ready", "url", embeddedNats.GetServerURL())
	} else {
		logger.Info("Using real NATS JetStream for production")
		realNats, err := pubsub.NewNATSPubSub(natsURL, natsSubject)
		if err != nil {
			// Degrade to the in-memory mock rather than crash-looping while
			// NATS comes up; events just stay process-local.
			logger.Error("Failed to connect to NATS, falling back to mock", "error", err, "url", natsURL)
			mockNats, _ := pubsub.NewMockNATSPubSub(natsURL, natsSubject)
			upstream = mockNats
			closeUpstream = mockNats.Close
		} else {
			upstream = realNats
			closeUpstream = realNats.Close
			logger.Info("Connected to NATS", "url", natsURL)
		}
	}

	ps := pubsub.NewWithUpstream(upstream)

	// Initialize ClickHouse analytics (or mock in development)
	var analytics arcade.Analytics
	if environment == "" || environment == "development" {
		analytics = mocks.NewMockAnalytics()
	} else {
		chAddr := os.Getenv("CLICKHOUSE_ADDR")
		if chAddr == "" {
			chAddr = "localhost:9000"
		}
		chDB := os.Getenv("CLICKHOUSE_DB")
		if chDB == "" {
			chDB = "default"
		}
		chUser := os.Getenv("CLICKHOUSE_USER")
		if chUser == "" {
			chUser = "default"
		}
		chPass := os.Getenv("CLICKHOUSE_PASSWORD")

		chClient, chErr := clickhouse.NewClient(chAddr, chDB, chUser, chPass)
		if chErr != nil {
			logger.Error("Failed to initialize ClickHouse", "error", chErr, "address", chAddr)
			log.Fatalf("Failed to initialize ClickHouse: %v", chErr)
		}
		analytics = chClient
		logger.Info("Connected to ClickHouse", "address", chAddr, "database", chDB)
	}

	// Initialize authentication
	// Use mock auth in development mode, Authentik OAuth2 in production
	if environment == "" || environment == "development" {
		logger.Info("Using mock authentication for local development (no Authentik server required)")
		authProvider = auth.NewMockAuth()
	} else {
		authentikBaseURL := os.Getenv("AUTHENTIK_BASE_URL")
		authentikClientID := os.Getenv("AUTHENTIK_CLIENT_ID")
		authentikClientSecret := os.Getenv("AUTHENTIK_CLIENT_SECRET")
		authentikRedirectURL := os.Getenv("AUTHENTIK_REDIRECT_URL")

		if authentikBaseURL == "" || authentikClientID == "" || authentikClientSecret == "" {
			logger.Error("AUTHENTIK_BASE_URL, AUTHENTIK_CLIENT_ID, and AUTHENTIK_CLIENT_SECRET environment variables are required for production")
			log.Fatal("AUTHENTIK_BASE_URL, AUTHENTIK_CLIENT_ID, and AUTHENTIK_CLIENT_SECRET environment variables are required for production")
		}

		if authentikRedirectURL == "" {
			authentikRedirectURL = "http://localhost:3000/auth/callback"
		}

		authProvider = auth.NewAuthentikAuth(&auth.AuthentikConfig{
			BaseURL:      authentikBaseURL,
			ClientID:     authentikClientID,
			ClientSecret: authentikClientSecret,
			RedirectURL:  authentikRedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
		})
		logger.Info("Connected to Authentik", "url", authentikBaseURL)
	}

	// Build the game hub
	hub = arcade.New(ps, dataStore, analytics)

	// Autostart the simulations unless explicitly disabled
	if os.Getenv("AUTOSTART") != "false" {
		intervalMs := int64(2000)
		if v := os.Getenv("GAME_INTERVAL_MS"); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				intervalMs = n
			}
		}
		interval := time.Duration(intervalMs) * time.Millisecond
		for _, name := range models.AllGames {
			eng, _ := hub.Engine(string(name))
			eng.Start(interval)
		}
		logger.Info("Autostarted all games", "interval_ms", intervalMs)
	}

	// Set up HTTP routes
	mux := http.NewServeMux()

	// Auth routes (public)
	mux.HandleFunc("/auth/login", authProvider.LoginHandler)
	mux.HandleFunc("/auth/callback", authProvider.CallbackHandler)
	mux.HandleFunc("/auth/logout", authProvider.LogoutHandler)

	// API routes
	api := handlers.NewAPIHandlers(hub, dataStore, ps)

	// Game API (reads are public, control actions require auth)
	mux.HandleFunc("/api/games", api.ListGames)
	mux.HandleFunc("/api/game/state", api.GetGameState)
	mux.HandleFunc("/api/game/log", api.GetGameLog)
	mux.HandleFunc("/api/game/start", authProvider.Middleware(api.StartGame))
	mux.HandleFunc("/api/game/stop", authProvider.Middleware(api.StopGame))
	mux.HandleFunc("/api/game/speed", authProvider.Middleware(api.SetGameSpeed))
	mux.HandleFunc("/api/game/reset", authProvider.Middleware(api.ResetGame))

	// Fantasy league API
	mux.HandleFunc("/api/dba/advance", authProvider.Middleware(api.AdvanceWeek))
	mux.HandleFunc("/api/dba/standings", api.GetStandings)
	mux.HandleFunc("/api/dba/team", api.GetUserTeam)
	mux.HandleFunc("/api/dba/players", api.GetLeaguePlayers)

	// Results API
	mux.HandleFunc("/api/results", api.ListResults)
	mux.HandleFunc("/api/leaderboard", api.GetLeaderboard)

	// Analytics API
	mux.HandleFunc("/api/analytics/actions", api.GetActionCounts)
	mux.HandleFunc("/api/analytics/actors", api.GetTopActors)

	// SSE for realtime updates
	mux.HandleFunc("/api/events", api.EventsSSE)

	// Health check endpoints
	mux.HandleFunc("/api/health", healthHandler)
	mux.HandleFunc("/healthz", livenessHandler) // Kubernetes liveness probe
	mux.HandleFunc("/readyz", readinessHandler) // Kubernetes readiness probe

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	addr := "0.0.0.0:" + port
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Info("Server starting", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			log.Fatal(err)
		}
	}()

	// Block until shutdown is requested, then drain everything
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}

	hub.StopAll()
	if closeUpstream != nil {
		closeUpstream()
	}
	if err := analytics.Close(); err != nil {
		logger.Error("Failed to close analytics", "error", err)
	}
	if err := dataStore.Close(); err != nil {
		logger.Error("Failed to close data store", "error", err)
	}
	logger.Info("Shutdown complete")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	// Check database connectivity
	if dataStore != nil {
		_, err := dataStore.ListResults("", 1)
		if err != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}
	} else {
		checks["database"] = map[string]interface{}{
			"status": "not_configured",
		}
	}

	// Report per-game engine status
	if hub != nil {
		games := make(map[string]interface{})
		for _, info := range hub.Games() {
			games[info.Name] = info.Status
		}
		checks["games"] = games
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(response)
}

// livenessHandler handles Kubernetes liveness probes
// Returns 200 if the application is running (doesn't check dependencies)
func livenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}

// readinessHandler handles Kubernetes readiness probes
// Returns 200 if the application is ready to serve traffic (checks critical dependencies)
func readinessHandler(w http.ResponseWriter, r *http.Request) {
	// Check database connectivity - this is critical for readiness
	if dataStore != nil {
		if _, err := dataStore.ListResults("", 1); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":    "not_ready",
				"reason":    "database_unavailable",
				"timestamp": time.Now().Unix(),
			})
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().Unix(),
	})
}
