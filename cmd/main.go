package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"pepperbackend/clients"
	anthropicclient "pepperbackend/clients/anthropic"
	googleclient "pepperbackend/clients/google"
	microsoftclient "pepperbackend/clients/microsoft"
	"pepperbackend/config"
	"pepperbackend/db"
	"pepperbackend/handlers"
	"pepperbackend/middleware"
	"pepperbackend/models"
	"pepperbackend/services/calendar"
	"pepperbackend/services/conversations"
	"pepperbackend/services/notes"
	"pepperbackend/services/oauth"
	"pepperbackend/services/txmanager"
	"pepperbackend/services/usage"
	"pepperbackend/services/users"
)

func main() {
	if err := run(); err != nil {
		log.Printf("❌ Fatal error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Initialize error alert middleware
	alertMiddleware := middleware.NewErrorAlertMiddleware(middleware.SlackAlertConfig{
		WebhookURL:  cfg.SlackConfig.AlertWebhookURL,
		Environment: cfg.Environment,
		AppName:     "pepperbackend",
		LogsURL:     cfg.ServerLogsURL,
	})

	// Initialize database connection
	dbConn, err := db.NewConnection(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	// Initialize repositories with shared connection
	usersRepo := db.NewPostgresUsersRepository(dbConn, cfg.DatabaseSchema)
	oauthSessionsRepo := db.NewPostgresOAuthSessionsRepository(dbConn, cfg.DatabaseSchema)
	providerTokensRepo := db.NewPostgresProviderTokensRepository(dbConn, cfg.DatabaseSchema)
	conversationsRepo := db.NewPostgresConversationsRepository(dbConn, cfg.DatabaseSchema)
	notesRepo := db.NewPostgresNotesRepository(dbConn, cfg.DatabaseSchema)
	usageRepo := db.NewPostgresConversationUsageRepository(dbConn, cfg.DatabaseSchema)

	// Initialize transaction manager
	txManager := txmanager.NewTransactionManager(dbConn)

	// Initialize provider clients. Unconfigured providers are simply left out
	// of the maps, which surfaces as an invalid-provider error to callers.
	googleCalendarClient := googleclient.NewClient(
		cfg.GoogleConfig.ClientID,
		cfg.GoogleConfig.ClientSecret,
	)
	microsoftCalendarClient := microsoftclient.NewClient(
		cfg.MicrosoftConfig.ClientID,
		cfg.MicrosoftConfig.TenantID,
	)

	oauthProviders := make(map[models.CalendarProvider]clients.OAuthProviderClient)
	calendarProviders := make(map[models.CalendarProvider]clients.CalendarClient)
	if cfg.GoogleConfig.IsConfigured() {
		oauthProviders[models.CalendarProviderGoogle] = googleCalendarClient
		calendarProviders[models.CalendarProviderGoogle] = googleCalendarClient
	}
	if cfg.MicrosoftConfig.IsConfigured() {
		oauthProviders[models.CalendarProviderMicrosoft] = microsoftCalendarClient
		calendarProviders[models.CalendarProviderMicrosoft] = microsoftCalendarClient
	}

	anthropicClient := anthropicclient.NewClient(cfg.AnthropicConfig.APIKey, cfg.AnthropicConfig.Model)

	// Initialize services
	usersService := users.NewUsersService(usersRepo)
	oauthService := oauth.NewOAuthService(oauthSessionsRepo, providerTokensRepo, oauthProviders, txManager)
	notesService := notes.NewNotesService(notesRepo)
	usageService := usage.NewUsageService(usageRepo)
	conversationsService := conversations.NewConversationsService(
		conversationsRepo,
		anthropicClient,
		notesService,
		usageService,
		txManager,
	)
	calendarService := calendar.NewCalendarService(oauthService, calendarProviders)

	// Initialize middleware and handlers
	authMiddleware := middleware.NewClerkAuthMiddleware(usersService, cfg.ClerkConfig.SecretKey)

	oauthHandler := handlers.NewOAuthHTTPHandler(oauthService)
	chatHandler := handlers.NewChatHTTPHandler(conversationsService, usageService)
	calendarHandler := handlers.NewCalendarHTTPHandler(calendarService)
	notesHandler := handlers.NewNotesHTTPHandler(notesService)
	usersHandler := handlers.NewUsersHTTPHandler()

	// Create a new router
	router := mux.NewRouter()

	oauthHandler.RegisterRoutes(router, authMiddleware.WithAuth)
	chatHandler.RegisterRoutes(router, authMiddleware.WithAuth)
	calendarHandler.RegisterRoutes(router, authMiddleware.WithAuth)
	notesHandler.RegisterRoutes(router, authMiddleware.WithAuth)
	usersHandler.RegisterRoutes(router, authMiddleware.WithAuth)

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			log.Printf("❌ Failed to write health check response: %v", err)
		}
	}).Methods("GET")

	// Setup CORS middleware
	allowedOrigins := strings.Split(cfg.CORSAllowedOrigins, ",")
	for i, origin := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(origin)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	// Setup and handle graceful shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           alertMiddleware.HTTPMiddleware(c.Handler(router)),
		ReadHeaderTimeout: 30 * time.Second,
	}

	return handleGracefulShutdown(server)
}

func handleGracefulShutdown(server *http.Server) error {
	// Channel to listen for interrupt signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		log.Printf("✅ Listening on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-stop
	log.Printf("🛑 Shutdown signal received, cleaning up...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown server gracefully
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Server shutdown error: %v", err)
		return err
	}

	log.Printf("✅ Server stopped gracefully")
	return nil
}
