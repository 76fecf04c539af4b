package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"rental-inspector/config"
	telegram "rental-inspector/internal/api"
	"rental-inspector/internal/container"
	"rental-inspector/internal/infrastructure/detector"
	"rental-inspector/internal/infrastructure/pdf"
	"rental-inspector/internal/infrastructure/storage"
	"rental-inspector/internal/infrastructure/vision"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	if cfg.TelegramToken == "" {
		log.Fatal().Msg("TELEGRAM_TOKEN is required")
	}

	pricing, err := config.LoadPricing(cfg.PricingFile, cfg.Currency)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load pricing table")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Собираем адаптеры и сервисы приложения
	appContainer := container.New(container.Deps{
		Users: storage.NewMemoryUserRepository(),
		Detector: detector.NewClient(detector.Options{
			BaseURL:        cfg.DetectorURL,
			Timeout:        cfg.DetectorTimeout,
			StrictSeverity: cfg.StrictSeverity,
		}),
		Renderer:   vision.NewRenderer(vision.NewDecoder(cfg.AnalysisTTL)),
		Exporter:   pdf.NewExporter(),
		Pricing:    pricing,
		SessionTTL: cfg.AnalysisTTL,
	})

	// Создаём бота
	bot, err := telegram.NewBot(cfg.TelegramToken, appContainer, cfg.AnalysisRate)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}

	log.Info().
		Str("detector", cfg.DetectorURL).
		Str("currency", pricing.Currency()).
		Int("categories", len(pricing.Categories())).
		Msg("bot is running")

	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("bot error")
	}
	log.Info().Msg("shutdown complete")
}
