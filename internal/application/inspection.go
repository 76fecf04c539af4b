package app

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"rental-inspector/internal/domain/entity"
	"rental-inspector/internal/domain/port"
)

var (
	// ErrMissingImage для анализа нужны оба снимка.
	ErrMissingImage = errors.New("both before and after images are required")
	// ErrStaleAnalysis пока шёл анализ, пользователь прислал новые снимки.
	ErrStaleAnalysis = errors.New("analysis superseded by newer images")
	// ErrNoReport у пользователя нет готового отчёта.
	ErrNoReport = errors.New("no report available")

	errDetectorNotConfigured = errors.New("detector is not configured")
)

const defaultSessionTTL = 30 * time.Minute

// Analysis результат анализа пары снимков. Report неизменяем, его же
// использует и текстовый отчёт, и PDF.
type Analysis struct {
	Report *entity.Report

	Before []byte
	After  []byte

	HighlightedBefore []byte // может быть nil, если снимок не удалось разобрать
	HighlightedAfter  []byte
	Thumbnails        map[string][]byte
}

// session снимки и последний результат одного пользователя. generation
// меняется при каждом новом снимке: так отбрасываются устаревшие анализы.
type session struct {
	before     []byte
	after      []byte
	generation uint64
	analysis   *Analysis
}

type InspectionService struct {
	users    *UserService
	detector port.DamageDetector
	renderer port.ImageRenderer
	exporter port.ReportExporter
	pricing  *entity.PricingTable

	mu       sync.Mutex
	sessions *gocache.Cache
	seq      uint64

	now   func() time.Time
	newID func() string
}

// NewInspectionService создаёт сервис, который ведёт анализ от снимков до отчёта.
// Состояние пользователей хранится в памяти ttl с момента последнего изменения.
func NewInspectionService(
	users *UserService,
	detector port.DamageDetector,
	renderer port.ImageRenderer,
	exporter port.ReportExporter,
	pricing *entity.PricingTable,
	ttl time.Duration,
) *InspectionService {
	if pricing == nil {
		pricing = entity.DefaultPricingTable()
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	return &InspectionService{
		users:    users,
		detector: detector,
		renderer: renderer,
		exporter: exporter,
		pricing:  pricing,
		sessions: gocache.New(ttl, ttl),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Pricing возвращает действующую таблицу цен.
func (s *InspectionService) Pricing() *entity.PricingTable {
	return s.pricing
}

// AcceptBeforePhoto принимает снимок до аренды. Прежние снимки и отчёт
// сбрасываются, а идущий анализ станет устаревшим.
func (s *InspectionService) AcceptBeforePhoto(ctx context.Context, userID, chatID int64, photo []byte) (*entity.User, error) {
	if len(photo) == 0 {
		return nil, ErrMissingImage
	}

	s.mu.Lock()
	old, _ := s.session(userID)
	s.seq++
	s.sessions.SetDefault(sessionKey(userID), &session{before: photo, generation: s.seq})
	s.mu.Unlock()

	s.release(old)

	return s.users.SetState(ctx, userID, chatID, entity.StateAwaitingAfter)
}

// AcceptAfterPhoto принимает снимок после аренды и переводит пользователя
// в ожидание результата.
func (s *InspectionService) AcceptAfterPhoto(ctx context.Context, userID, chatID int64, photo []byte) (*entity.User, error) {
	if len(photo) == 0 {
		return nil, ErrMissingImage
	}

	s.mu.Lock()
	sess, ok := s.session(userID)
	if !ok || len(sess.before) == 0 {
		s.mu.Unlock()
		return nil, ErrMissingImage
	}
	s.seq++
	s.sessions.SetDefault(sessionKey(userID), &session{
		before:     sess.before,
		after:      photo,
		generation: s.seq,
	})
	s.mu.Unlock()

	return s.users.SetState(ctx, userID, chatID, entity.StateProcessing)
}

// Analyze анализирует текущую пару снимков пользователя. Если за время
// анализа снимки сменились, результат отбрасывается с ErrStaleAnalysis и
// состояние пользователя не трогается.
func (s *InspectionService) Analyze(ctx context.Context, userID, chatID int64) (*Analysis, error) {
	s.mu.Lock()
	sess, ok := s.session(userID)
	if !ok || len(sess.before) == 0 || len(sess.after) == 0 {
		s.mu.Unlock()
		return nil, ErrMissingImage
	}
	before, after, generation := sess.before, sess.after, sess.generation
	s.mu.Unlock()

	analysis, err := s.AnalyzePair(ctx, before, after)

	s.mu.Lock()
	current, ok := s.session(userID)
	if !ok || current.generation != generation {
		s.mu.Unlock()
		log.Info().Int64("userID", userID).Msg("discarding stale analysis")
		return nil, ErrStaleAnalysis
	}
	if err == nil {
		s.sessions.SetDefault(sessionKey(userID), &session{
			before:     current.before,
			after:      current.after,
			generation: current.generation,
			analysis:   analysis,
		})
	}
	// Сброс состояния только под той же блокировкой, что и проверка поколения.
	if _, stateErr := s.users.SetState(ctx, userID, chatID, entity.StateMainMenu); stateErr != nil {
		log.Error().Err(stateErr).Int64("userID", userID).Msg("failed to reset user state")
	}
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return analysis, nil
}

// AnalyzePair отправляет пару снимков в детектор и строит по ответу анализ.
// Состояние пользователей не используется.
func (s *InspectionService) AnalyzePair(ctx context.Context, before, after []byte) (*Analysis, error) {
	if len(before) == 0 || len(after) == 0 {
		return nil, ErrMissingImage
	}
	if s.detector == nil {
		return nil, errDetectorNotConfigured
	}

	detection, err := s.detector.Detect(ctx, before, after)
	if err != nil {
		return nil, err
	}

	return s.BuildAnalysis(ctx, detection, before, after)
}

// BuildAnalysis строит отчёт и изображения по готовому ответу детектора.
// Ошибки отрисовки отдельных изображений не прерывают анализ.
func (s *InspectionService) BuildAnalysis(ctx context.Context, detection *entity.DetectionResult, before, after []byte) (*Analysis, error) {
	report := s.ReportFromDetection(detection)
	analysis := &Analysis{
		Report: report,
		Before: before,
		After:  after,
	}

	log.Info().
		Str("reportID", report.ID).
		Str("inspectionID", report.InspectionID).
		Int("before", len(report.Before)).
		Int("after", len(report.After)).
		Int("chargeable", report.PayableTotal).
		Stringer("scenario", report.Scenario).
		Msg("report synthesized")

	if s.renderer == nil {
		return analysis, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		analysis.HighlightedBefore = s.highlight(gctx, before, annotationsOf(report.Before), entity.SourceBefore)
		return nil
	})
	g.Go(func() error {
		analysis.HighlightedAfter = s.highlight(gctx, after, linesOf(report.After), entity.SourceAfter)
		return nil
	})
	g.Go(func() error {
		analysis.Thumbnails = s.renderer.Thumbnails(gctx, before, after, report.Annotations())
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return analysis, nil
}

// ReportFromDetection собирает отчёт по ответу детектора с текущей таблицей цен.
func (s *InspectionService) ReportFromDetection(detection *entity.DetectionResult) *entity.Report {
	in := entity.ReportInput{
		ID:          s.newID(),
		GeneratedAt: s.now(),
		Pricing:     s.pricing,
	}
	if detection != nil {
		in.InspectionID = detection.InspectionID
		in.Message = detection.Message
		in.Annotations = detection.Annotations
	}
	return entity.Synthesize(in)
}

// CurrentAnalysis возвращает последний готовый анализ пользователя.
func (s *InspectionService) CurrentAnalysis(userID int64) (*Analysis, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.session(userID)
	if !ok || sess.analysis == nil {
		return nil, false
	}
	return sess.analysis, true
}

// Export выгружает в PDF последний отчёт пользователя. Используется тот же
// экземпляр отчёта, что был показан в чате.
func (s *InspectionService) Export(ctx context.Context, userID int64) ([]byte, error) {
	analysis, ok := s.CurrentAnalysis(userID)
	if !ok {
		return nil, ErrNoReport
	}
	return s.ExportAnalysis(ctx, analysis)
}

// ExportAnalysis выгружает анализ в PDF.
func (s *InspectionService) ExportAnalysis(ctx context.Context, analysis *Analysis) ([]byte, error) {
	if analysis == nil || analysis.Report == nil {
		return nil, ErrNoReport
	}
	if s.exporter == nil {
		return nil, errors.New("exporter is not configured")
	}
	return s.exporter.Export(ctx, analysis.Report, analysis.Thumbnails)
}

// Discard забывает снимки и отчёт пользователя. Идущий анализ станет устаревшим.
func (s *InspectionService) Discard(userID int64) {
	s.mu.Lock()
	old, _ := s.session(userID)
	s.seq++
	s.sessions.Delete(sessionKey(userID))
	s.mu.Unlock()

	s.release(old)
}

// release освобождает декодированные снимки старой сессии.
func (s *InspectionService) release(old *session) {
	if old == nil || s.renderer == nil {
		return
	}
	s.renderer.Release(old.before, old.after)
}

// session вызывается под s.mu.
func (s *InspectionService) session(userID int64) (*session, bool) {
	v, ok := s.sessions.Get(sessionKey(userID))
	if !ok {
		return nil, false
	}
	return v.(*session), true
}

func (s *InspectionService) highlight(ctx context.Context, data []byte, damages []entity.DamageAnnotation, source entity.SourceImage) []byte {
	out, err := s.renderer.Highlight(ctx, data, damages)
	if err != nil {
		log.Warn().Err(err).Str("source", string(source)).Msg("failed to highlight damages")
		return nil
	}
	return out
}

func sessionKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func annotationsOf(items []entity.PricedDamage) []entity.DamageAnnotation {
	out := make([]entity.DamageAnnotation, 0, len(items))
	for _, d := range items {
		out = append(out, d.DamageAnnotation)
	}
	return out
}

func linesOf(lines []entity.ReportLine) []entity.DamageAnnotation {
	out := make([]entity.DamageAnnotation, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.DamageAnnotation)
	}
	return out
}
