package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-inspector/internal/domain/entity"
	"rental-inspector/internal/infrastructure/storage"
)

type fakeDetector struct {
	mu      sync.Mutex
	calls   int
	result  *entity.DetectionResult
	err     error
	started chan struct{}
	release chan struct{}
}

func (d *fakeDetector) Detect(ctx context.Context, before, after []byte) (*entity.DetectionResult, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()

	if d.started != nil {
		d.started <- struct{}{}
	}
	if d.release != nil {
		select {
		case <-d.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return d.result, d.err
}

type fakeRenderer struct {
	highlightErr error

	mu       sync.Mutex
	released [][]byte
}

func (r *fakeRenderer) Release(images ...[]byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released = append(r.released, images...)
}

func (r *fakeRenderer) Highlight(_ context.Context, data []byte, damages []entity.DamageAnnotation) ([]byte, error) {
	if r.highlightErr != nil {
		return nil, r.highlightErr
	}
	return append([]byte("hl:"), data...), nil
}

func (r *fakeRenderer) Thumbnails(_ context.Context, _, _ []byte, damages []entity.DamageAnnotation) map[string][]byte {
	out := make(map[string][]byte, len(damages))
	for _, d := range damages {
		out[d.ID] = []byte(d.ID)
	}
	return out
}

type fakeExporter struct {
	reports []*entity.Report
}

func (e *fakeExporter) Export(_ context.Context, r *entity.Report, thumbs map[string][]byte) ([]byte, error) {
	e.reports = append(e.reports, r)
	return []byte("%PDF"), nil
}

func damage(id string, src entity.SourceImage, category, severity string) entity.DamageAnnotation {
	return entity.DamageAnnotation{
		ID:            id,
		Source:        src,
		Category:      category,
		SeverityLabel: severity,
		Severity:      entity.ParseSeverity(severity),
		Box:           entity.BoundingBox{X: 0.1, Y: 0.1, Width: 0.2, Height: 0.2},
	}
}

func sampleDetection() *entity.DetectionResult {
	return &entity.DetectionResult{
		InspectionID: "insp-1",
		Annotations: []entity.DamageAnnotation{
			damage("b1", entity.SourceBefore, "Scratch", "minor"),
			damage("a1", entity.SourceAfter, "Scratch", "minor"),
			damage("a2", entity.SourceAfter, "Dent", "severe"),
		},
	}
}

func newTestService(det *fakeDetector, exp *fakeExporter) *InspectionService {
	users := NewUserService(storage.NewMemoryUserRepository())
	svc := NewInspectionService(users, det, &fakeRenderer{}, exp, nil, time.Minute)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	svc.newID = func() string { return "report-1" }
	return svc
}

func TestInspectionService_PhotoFlow(t *testing.T) {
	svc := newTestService(&fakeDetector{result: sampleDetection()}, &fakeExporter{})
	ctx := context.Background()

	user, err := svc.AcceptBeforePhoto(ctx, 1, 10, []byte("before"))
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingAfter, user.State)

	user, err = svc.AcceptAfterPhoto(ctx, 1, 10, []byte("after"))
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, user.State)

	analysis, err := svc.Analyze(ctx, 1, 10)
	require.NoError(t, err)

	r := analysis.Report
	assert.Equal(t, "report-1", r.ID)
	assert.Equal(t, "insp-1", r.InspectionID)
	assert.Equal(t, entity.ScenarioBoth, r.Scenario)
	assert.Equal(t, 1, r.PreExistingCount)
	assert.Equal(t, 1, r.ChargeableCount)
	assert.Equal(t, 600, r.PayableTotal)

	assert.Equal(t, []byte("hl:before"), analysis.HighlightedBefore)
	assert.Equal(t, []byte("hl:after"), analysis.HighlightedAfter)
	assert.Len(t, analysis.Thumbnails, 3)

	stored, ok := svc.CurrentAnalysis(1)
	require.True(t, ok)
	assert.Same(t, analysis, stored)

	user, err = svc.users.Get(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, entity.StateMainMenu, user.State)
}

func TestInspectionService_MissingImage(t *testing.T) {
	det := &fakeDetector{result: sampleDetection()}
	svc := newTestService(det, &fakeExporter{})
	ctx := context.Background()

	_, err := svc.AcceptBeforePhoto(ctx, 1, 10, nil)
	assert.ErrorIs(t, err, ErrMissingImage)

	_, err = svc.AcceptAfterPhoto(ctx, 1, 10, []byte("after"))
	assert.ErrorIs(t, err, ErrMissingImage)

	_, err = svc.AcceptBeforePhoto(ctx, 1, 10, []byte("before"))
	require.NoError(t, err)
	_, err = svc.Analyze(ctx, 1, 10)
	assert.ErrorIs(t, err, ErrMissingImage)

	_, err = svc.AnalyzePair(ctx, []byte("before"), nil)
	assert.ErrorIs(t, err, ErrMissingImage)

	assert.Zero(t, det.calls)
}

func TestInspectionService_DetectorErrorResetsState(t *testing.T) {
	upstream := errors.New("upstream down")
	svc := newTestService(&fakeDetector{err: upstream}, &fakeExporter{})
	ctx := context.Background()

	_, err := svc.AcceptBeforePhoto(ctx, 1, 10, []byte("before"))
	require.NoError(t, err)
	_, err = svc.AcceptAfterPhoto(ctx, 1, 10, []byte("after"))
	require.NoError(t, err)

	_, err = svc.Analyze(ctx, 1, 10)
	require.ErrorIs(t, err, upstream)

	user, err := svc.users.Get(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, entity.StateMainMenu, user.State)

	_, ok := svc.CurrentAnalysis(1)
	assert.False(t, ok)
}

func TestInspectionService_StaleAnalysisIsDiscarded(t *testing.T) {
	det := &fakeDetector{
		result:  sampleDetection(),
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	svc := newTestService(det, &fakeExporter{})
	ctx := context.Background()

	_, err := svc.AcceptBeforePhoto(ctx, 1, 10, []byte("before"))
	require.NoError(t, err)
	_, err = svc.AcceptAfterPhoto(ctx, 1, 10, []byte("after"))
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		_, err := svc.Analyze(ctx, 1, 10)
		errCh <- err
	}()

	<-det.started
	// Новый снимок «до», пока анализ ещё идёт.
	user, err := svc.AcceptBeforePhoto(ctx, 1, 10, []byte("before-2"))
	require.NoError(t, err)
	close(det.release)

	require.ErrorIs(t, <-errCh, ErrStaleAnalysis)

	_, ok := svc.CurrentAnalysis(1)
	assert.False(t, ok)

	// Состояние новой проверки не сброшено устаревшим анализом.
	assert.Equal(t, entity.StateAwaitingAfter, user.State)
	current, err := svc.users.Get(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, entity.StateAwaitingAfter, current.State)
}

func TestInspectionService_DiscardMakesAnalysisStale(t *testing.T) {
	det := &fakeDetector{
		result:  sampleDetection(),
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	svc := newTestService(det, &fakeExporter{})
	ctx := context.Background()

	_, err := svc.AcceptBeforePhoto(ctx, 1, 10, []byte("before"))
	require.NoError(t, err)
	_, err = svc.AcceptAfterPhoto(ctx, 1, 10, []byte("after"))
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		_, err := svc.Analyze(ctx, 1, 10)
		errCh <- err
	}()

	<-det.started
	svc.Discard(1)
	close(det.release)

	assert.ErrorIs(t, <-errCh, ErrStaleAnalysis)
}

func TestInspectionService_DiscardReleasesImages(t *testing.T) {
	renderer := &fakeRenderer{}
	users := NewUserService(storage.NewMemoryUserRepository())
	svc := NewInspectionService(users, &fakeDetector{result: sampleDetection()}, renderer, &fakeExporter{}, nil, time.Minute)
	ctx := context.Background()

	_, err := svc.AcceptBeforePhoto(ctx, 1, 10, []byte("before"))
	require.NoError(t, err)
	_, err = svc.AcceptAfterPhoto(ctx, 1, 10, []byte("after"))
	require.NoError(t, err)

	svc.Discard(1)
	assert.Equal(t, [][]byte{[]byte("before"), []byte("after")}, renderer.released)

	svc.Discard(1)
	assert.Len(t, renderer.released, 2)
}

func TestInspectionService_ExportReusesReport(t *testing.T) {
	exp := &fakeExporter{}
	svc := newTestService(&fakeDetector{result: sampleDetection()}, exp)
	ctx := context.Background()

	_, err := svc.Export(ctx, 1)
	require.ErrorIs(t, err, ErrNoReport)

	_, err = svc.AcceptBeforePhoto(ctx, 1, 10, []byte("before"))
	require.NoError(t, err)
	_, err = svc.AcceptAfterPhoto(ctx, 1, 10, []byte("after"))
	require.NoError(t, err)
	analysis, err := svc.Analyze(ctx, 1, 10)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		doc, err := svc.Export(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF"), doc)
	}

	require.Len(t, exp.reports, 2)
	assert.Same(t, analysis.Report, exp.reports[0])
	assert.Same(t, analysis.Report, exp.reports[1])
}

func TestInspectionService_HighlightErrorDegrades(t *testing.T) {
	users := NewUserService(storage.NewMemoryUserRepository())
	svc := NewInspectionService(users, &fakeDetector{result: sampleDetection()},
		&fakeRenderer{highlightErr: errors.New("bad image")}, &fakeExporter{}, nil, 0)

	analysis, err := svc.AnalyzePair(context.Background(), []byte("before"), []byte("after"))
	require.NoError(t, err)
	assert.Nil(t, analysis.HighlightedBefore)
	assert.Nil(t, analysis.HighlightedAfter)
	assert.NotNil(t, analysis.Report)
}

func TestInspectionService_ReportFromDetection(t *testing.T) {
	svc := newTestService(&fakeDetector{}, &fakeExporter{})

	r := svc.ReportFromDetection(&entity.DetectionResult{
		Annotations: []entity.DamageAnnotation{damage("b1", entity.SourceBefore, "Dent", "moderate")},
	})
	assert.Equal(t, entity.ScenarioBeforeOnly, r.Scenario)
	assert.Zero(t, r.PayableTotal)
	assert.Equal(t, entity.ScenarioBeforeOnly.Message(), r.Message)

	r = svc.ReportFromDetection(&entity.DetectionResult{Message: "Detector degraded", Degraded: true})
	assert.Equal(t, entity.ScenarioNone, r.Scenario)
	assert.Equal(t, "Detector degraded", r.Message)
}

// pausingRepository останавливает первое сохранение состояния главного меню,
// пока тест не разрешит продолжить.
type pausingRepository struct {
	*storage.MemoryUserRepository

	once    sync.Once
	saving  chan struct{}
	proceed chan struct{}
}

func (r *pausingRepository) Save(ctx context.Context, user *entity.User) error {
	if user.State == entity.StateMainMenu {
		r.once.Do(func() {
			close(r.saving)
			<-r.proceed
		})
	}
	return r.MemoryUserRepository.Save(ctx, user)
}

func TestInspectionService_CheckDuringStateResetKeepsNewCheck(t *testing.T) {
	repo := &pausingRepository{
		MemoryUserRepository: storage.NewMemoryUserRepository(),
		saving:               make(chan struct{}),
		proceed:              make(chan struct{}),
	}
	users := NewUserService(repo)
	svc := NewInspectionService(users, &fakeDetector{result: sampleDetection()}, &fakeRenderer{}, &fakeExporter{}, nil, time.Minute)
	ctx := context.Background()

	_, err := svc.AcceptBeforePhoto(ctx, 1, 10, []byte("before"))
	require.NoError(t, err)
	_, err = svc.AcceptAfterPhoto(ctx, 1, 10, []byte("after"))
	require.NoError(t, err)

	analyzed := make(chan error, 1)
	go func() {
		_, err := svc.Analyze(ctx, 1, 10)
		analyzed <- err
	}()

	<-repo.saving
	// /check приходит, когда анализ уже сбрасывает состояние.
	checked := make(chan error, 1)
	go func() {
		svc.Discard(1)
		_, err := users.BeginCheck(ctx, 1, 10)
		checked <- err
	}()
	time.Sleep(20 * time.Millisecond)
	close(repo.proceed)

	require.NoError(t, <-analyzed)
	require.NoError(t, <-checked)

	user, err := users.Get(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, entity.StateAwaitingBefore, user.State)

	_, ok := svc.CurrentAnalysis(1)
	assert.False(t, ok, "discarded analysis must not survive /check")
}
