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

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	discordclient "relaybackend/clients/discord"
	githubclient "relaybackend/clients/github"
	googlecalendarclient "relaybackend/clients/googlecalendar"
	trelloclient "relaybackend/clients/trello"
	"relaybackend/config"
	"relaybackend/db"
	"relaybackend/handlers"
	"relaybackend/middleware"
	"relaybackend/providers"
	githubprovider "relaybackend/providers/github"
	googlecalendarprovider "relaybackend/providers/googlecalendar"
	trelloprovider "relaybackend/providers/trello"
	"relaybackend/services/delivery"
	"relaybackend/services/googlecalendarwebhooks"
	"relaybackend/services/integrations"
	"relaybackend/services/notifications"
	"relaybackend/services/txmanager"
	"relaybackend/telemetry"
	"relaybackend/usecases/relay"
	"relaybackend/usecases/setup"
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

	alertMiddleware := middleware.NewErrorAlertMiddleware(middleware.SlackAlertConfig{
		WebhookURL:  cfg.SlackConfig.AlertWebhookURL,
		Environment: cfg.Environment,
		AppName:     "relaybackend",
		LogsURL:     cfg.ServerLogsURL,
	})

	dbConn, err := db.NewConnection(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	// Initialize repositories with shared connection
	integrationsRepo := db.NewPostgresIntegrationsRepository(dbConn, cfg.DatabaseSchema)
	credentialsRepo := db.NewPostgresCredentialsRepository(dbConn, cfg.DatabaseSchema)
	integrationServicesRepo := db.NewPostgresIntegrationServicesRepository(dbConn, cfg.DatabaseSchema)
	calendarWebhooksRepo := db.NewPostgresGoogleCalendarWebhooksRepository(dbConn, cfg.DatabaseSchema)

	txManager := txmanager.NewTransactionManager(dbConn)

	integrationsService := integrations.NewIntegrationsService(
		integrationsRepo,
		credentialsRepo,
		integrationServicesRepo,
		txManager,
	)
	calendarWebhooksService := googlecalendarwebhooks.NewGoogleCalendarWebhooksService(calendarWebhooksRepo, txManager)
	notificationGate := notifications.NewNotificationGate(integrationServicesRepo)

	// Discord is optional outside strict mode; without a session deliveries fail and are logged
	var session *discordgo.Session
	if cfg.DiscordConfig.IsConfigured() {
		session, err = discordclient.NewBotSession(cfg.DiscordConfig.BotToken)
		if err != nil {
			return err
		}
	}
	deliveryService := delivery.NewDeliveryService(discordclient.NewDiscordClient(session))

	providerHTTPClient := &http.Client{Timeout: cfg.RelayConfig.ProviderTimeout}
	registry, err := providers.NewRegistry(
		trelloprovider.NewTrelloAdapter(
			trelloclient.NewTrelloClient(providerHTTPClient),
			integrationsService,
			cfg.RelayConfig.WebhookSecret,
			cfg.RelayConfig.ServerOrigin,
			cfg.RelayConfig.TrelloWebhookConcurrency,
		),
		githubprovider.NewGitHubAdapter(
			githubclient.NewGitHubClient(providerHTTPClient),
			integrationsService,
			cfg.RelayConfig.WebhookSecret,
			cfg.RelayConfig.ServerOrigin,
		),
		googlecalendarprovider.NewGoogleCalendarAdapter(
			googlecalendarclient.NewGoogleCalendarClient(providerHTTPClient),
			integrationsService,
			calendarWebhooksService,
			cfg.RelayConfig.ServerOrigin,
		),
	)
	if err != nil {
		return err
	}

	relayUseCase := relay.NewRelayUseCase(registry, integrationsService, notificationGate, deliveryService)
	setupUseCase := setup.NewSetupUseCase(registry, integrationsService, txManager)

	router := mux.NewRouter()

	webhooksHandler := handlers.NewWebhooksHandler(
		relayUseCase,
		cfg.RelayConfig.RelayTimeout,
		cfg.RelayConfig.WebhookRateLimit,
	)
	webhooksHandler.SetupEndpoints(router)

	if cfg.AdminConfig.IsConfigured() {
		adminHandler := handlers.NewAdminHTTPHandler(setupUseCase)
		adminHandler.SetupEndpoints(router, middleware.NewAdminAuthMiddleware(cfg.AdminConfig.APIKey))
	}

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			log.Printf("❌ Failed to write health check response: %v", err)
		}
	}).Methods("GET")

	router.Handle("/metrics", promhttp.HandlerFor(telemetry.NewMetricsRegistry(), promhttp.HandlerOpts{})).
		Methods("GET")

	var discordHandler *handlers.DiscordEventsHandler
	if session != nil {
		discordHandler = handlers.NewDiscordEventsHandler(session, setupUseCase, alertMiddleware)
		if err := alertMiddleware.WrapBackgroundTask("discord bot startup", discordHandler.StartBot)(); err != nil {
			return err
		}
		defer discordHandler.StopBot()
	}

	allowedOrigins := strings.Split(cfg.CORSAllowedOrigins, ",")
	for i, origin := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(origin)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           alertMiddleware.HTTPMiddleware(c.Handler(router)),
		ReadHeaderTimeout: 30 * time.Second,
	}

	return handleGracefulShutdown(server)
}

func handleGracefulShutdown(server *http.Server) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("✅ Listening on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ Server error: %v", err)
		}
	}()

	<-stop
	log.Printf("🛑 Shutdown signal received, cleaning up...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Server shutdown error: %v", err)
		return err
	}

	log.Printf("✅ Server stopped gracefully")
	return nil
}
