package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"rental-inspector/config"
	app "rental-inspector/internal/application"
	"rental-inspector/internal/container"
	"rental-inspector/internal/domain/entity"
	"rental-inspector/internal/domain/port"
	"rental-inspector/internal/infrastructure/detector"
	"rental-inspector/internal/infrastructure/pdf"
	"rental-inspector/internal/infrastructure/storage"
	"rental-inspector/internal/infrastructure/vision"
)

const decodeCacheTTL = 5 * time.Minute

func loadPricing() (*entity.PricingTable, error) {
	return config.LoadPricing(viper.GetString("pricing_file"), viper.GetString("currency"))
}

// newInspectionService собирает сервис так же, как бот. Без детектора
// сервис умеет только строить отчёт по готовому ответу.
func newInspectionService(withDetector bool) (*app.InspectionService, error) {
	pricing, err := loadPricing()
	if err != nil {
		return nil, err
	}

	var det port.DamageDetector
	if withDetector {
		det = detector.NewClient(detector.Options{
			BaseURL:        viper.GetString("detector_url"),
			Timeout:        viper.GetDuration("detector_timeout"),
			StrictSeverity: viper.GetBool("strict_severity"),
		})
	}

	c := container.New(container.Deps{
		Users:    storage.NewMemoryUserRepository(),
		Detector: det,
		Renderer: vision.NewRenderer(vision.NewDecoder(decodeCacheTTL)),
		Exporter: pdf.NewExporter(),
		Pricing:  pricing,
	})
	return c.InspectionService, nil
}

func readPair(beforePath, afterPath string) (before, after []byte, err error) {
	if beforePath == "" || afterPath == "" {
		return nil, nil, app.ErrMissingImage
	}
	if before, err = os.ReadFile(beforePath); err != nil {
		return nil, nil, fmt.Errorf("read before image: %w", err)
	}
	if after, err = os.ReadFile(afterPath); err != nil {
		return nil, nil, fmt.Errorf("read after image: %w", err)
	}
	return before, after, nil
}
