package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/tokenizelocal/tokenizelocal/internal/accounts"
	"github.com/tokenizelocal/tokenizelocal/internal/adapter"
	"github.com/tokenizelocal/tokenizelocal/internal/bot"
	"github.com/tokenizelocal/tokenizelocal/internal/config"
	"github.com/tokenizelocal/tokenizelocal/internal/ledger"
	"github.com/tokenizelocal/tokenizelocal/internal/logger"
	"github.com/tokenizelocal/tokenizelocal/internal/providers/checko"
	"github.com/tokenizelocal/tokenizelocal/internal/ratelimit"
	"github.com/tokenizelocal/tokenizelocal/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadBotConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "bot",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.Info("Starting TokenizeLocal bot", zap.String("database", cfg.Database.Path))

	// Open database and create schema
	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err), zap.String("path", cfg.Database.Path))
	}
	if err := store.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	dataStore := store.NewSQLiteStore(db)

	// Initialize services
	clock := adapter.NewClock()
	httpClient := ratelimit.WrapHTTPClient(
		adapter.NewHTTPClient(cfg.Registry.Timeout),
		cfg.Registry.RateLimit,
		cfg.Registry.Burst,
	)
	registry := checko.NewClient(httpClient, cfg.Registry.APIURL, cfg.Registry.APIKey)
	ledgerSvc := ledger.NewService(dataStore, clock)
	accountsMgr := accounts.NewManager(dataStore, nil)

	// Connect to Telegram
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal("Failed to connect to Telegram", zap.Error(err))
	}
	api.Debug = cfg.Debug
	logger.Info("Connected to Telegram", zap.String("username", api.Self.UserName))

	// Shut down on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	tgBot := bot.New(api, ledgerSvc, accountsMgr, registry, cfg.Telegram.PollTimeout)
	if err := tgBot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("Bot exited with error", zap.Error(err))
	}
	logger.Info("Bot stopped")
}
