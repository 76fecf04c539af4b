package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"rental-inspector/internal/domain/entity"
	"rental-inspector/internal/infrastructure/detector"
)

type Config struct {
	TelegramToken string

	DetectorURL     string
	DetectorTimeout time.Duration
	StrictSeverity  bool

	PricingFile string
	Currency    string

	AnalysisTTL  time.Duration // сколько живёт результат анализа в памяти
	AnalysisRate time.Duration // минимальный интервал между анализами одного пользователя

	LogLevel zerolog.Level
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		DetectorURL:   getEnv("DETECTOR_URL", detector.DefaultBaseURL),
		PricingFile:   os.Getenv("PRICING_FILE"),
		Currency:      getEnv("CURRENCY", entity.DefaultCurrency),
	}

	var err error
	if cfg.DetectorTimeout, err = durationEnv("DETECTOR_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if cfg.AnalysisTTL, err = durationEnv("ANALYSIS_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	// Один TTL на сессии и кэш декодированных снимков: без срока кэш не чистится.
	if cfg.AnalysisTTL == 0 {
		return nil, errors.New("parse ANALYSIS_TTL: must be positive")
	}
	if cfg.AnalysisRate, err = durationEnv("ANALYSIS_RATE", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.StrictSeverity, err = boolEnv("STRICT_SEVERITY", false); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = ParseLogLevel(os.Getenv("LOG_LEVEL")); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseLogLevel разбирает уровень логирования; пустая строка означает info.
func ParseLogLevel(s string) (zerolog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	return level, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("parse %s: negative duration %s", key, v)
	}
	return d, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}
