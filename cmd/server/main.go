package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"pos/internal/app"
	"pos/internal/config"
	"pos/internal/crm"
	"pos/internal/handler"
	internalRedis "pos/internal/redis"
	"pos/internal/repository"
	"pos/internal/repository/postgres"
	"pos/internal/service"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "pos-server",
	Short:        "Transit card point-of-sale API",
	Long:         `Serves the POS front end: operator login, card issuance and the product checkout workflow, backed by the remote CRM.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the receipt journal schema",
	RunE:  runMigrate,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic first so the database and Redis are instrumented.
	nrApp := newNewRelic(cfg.NewRelic)
	if nrApp != nil {
		defer nrApp.Shutdown(5 * time.Second)
	}

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// The journal is an audit copy; the terminal sells without it.
	var journal repository.ReceiptJournal
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Printf("receipt journal disabled: %v", err)
	} else {
		defer db.Close()
		log.Println("Connected to PostgreSQL")
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Printf("receipt journal migration failed: %v", err)
		}
		journal = postgres.NewReceiptJournal(db)
	}

	server, checkoutService := wireServer(journal, redisClient, nrApp, cfg)

	go func() {
		log.Printf("Starting server on port %s (terminal %s)", cfg.Server.Port, cfg.Terminal.DeviceID)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if err := checkoutService.Shutdown(shutdownCtx); err != nil {
		log.Printf("open transactions did not finish: %v", err)
	}

	log.Println("Server exited")
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := app.NewDatabase(ctx, cfg.Database, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	log.Printf("receipt journal schema ready in %s", cfg.Database.DBName)
	return nil
}

func newNewRelic(cfg config.NewRelicConfig) *newrelic.Application {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		return nil
	}

	nrApp, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
	if err != nil {
		log.Printf("failed to initialize New Relic: %v", err)
		return nil
	}

	log.Printf("New Relic enabled: app=%s", cfg.AppName)
	return nrApp
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(journal repository.ReceiptJournal, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *service.CheckoutService) {
	// Initialize Redis stores.
	sessionStore := internalRedis.NewSessionStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Outbound CRM calls join the inbound request's New Relic transaction.
	var transport http.RoundTripper
	if nrApp != nil {
		transport = newrelic.NewRoundTripper(nil)
	}
	crmClient := crm.NewClient(crm.Config{
		BaseURL:   cfg.CRM.BaseURL,
		APIKey:    cfg.CRM.APIKey,
		Timeout:   cfg.CRM.Timeout,
		Transport: transport,
	}, sessionStore)

	terminal := service.Terminal{
		DeviceID: cfg.Terminal.DeviceID,
		Location: cfg.Terminal.Location,
	}

	// Initialize services.
	authService := service.NewAuthService(crmClient, sessionStore)
	cardService := service.NewCardService(crmClient, cacheStore, terminal)
	receiptService := service.NewReceiptService(terminal)
	checkoutService := service.NewCheckoutService(crmClient, lockStore, journal, service.CheckoutConfig{
		Countdown:         cfg.Checkout.Countdown,
		Tick:              cfg.Checkout.Tick,
		CardLockTTL:       cfg.Checkout.CardLockTTL,
		SideEffectTimeout: cfg.Checkout.SideEffectTTL,
		IdleTimeout:       cfg.Checkout.IdleTimeout,
	})

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		AuthHandler:     handler.NewAuthHandler(authService),
		CardHandler:     handler.NewCardHandler(cardService),
		CheckoutHandler: handler.NewCheckoutHandler(checkoutService, receiptService),
		Sessions:        sessionStore,
		RedisClient:     redisClient,
		NewRelicApp:     nrApp,
		AllowOrigin:     cfg.Server.AllowOrigin,
		DeviceID:        cfg.Terminal.DeviceID,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, checkoutService
}
