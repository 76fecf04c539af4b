package container

import (
	"time"

	app "rental-inspector/internal/application"
	"rental-inspector/internal/domain/entity"
	"rental-inspector/internal/domain/port"
)

type Container struct {
	UserService       *app.UserService
	InspectionService *app.InspectionService
}

// Deps адаптеры, из которых собираются сервисы приложения.
type Deps struct {
	Users    port.UserRepository
	Detector port.DamageDetector
	Renderer port.ImageRenderer
	Exporter port.ReportExporter
	Pricing  *entity.PricingTable

	SessionTTL time.Duration
}

func New(deps Deps) *Container {
	userService := app.NewUserService(deps.Users)
	inspectionService := app.NewInspectionService(
		userService,
		deps.Detector,
		deps.Renderer,
		deps.Exporter,
		deps.Pricing,
		deps.SessionTTL,
	)

	return &Container{
		UserService:       userService,
		InspectionService: inspectionService,
	}
}
