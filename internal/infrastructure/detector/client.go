package detector

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"rental-inspector/internal/domain/entity"
	"rental-inspector/internal/domain/port"
)

// ErrAnalysisFailed детектор недоступен или вернул ошибку. Подробности
// пишутся в лог и наружу не передаются.
var ErrAnalysisFailed = errors.New("damage analysis failed")

const (
	DefaultBaseURL = "http://localhost:8000"
	analyzePath    = "/analyze"
)

// Options настройки клиента детектора.
type Options struct {
	BaseURL        string
	Timeout        time.Duration // 0 отключает таймаут
	StrictSeverity bool          // отклонять ответ с неизвестной тяжестью
}

// Client отправляет пары снимков во внешний детектор повреждений.
type Client struct {
	http   *resty.Client
	strict bool
}

// NewClient создаёт клиент детектора.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := resty.New().
		SetDebug(false).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}

	return &Client{
		http:   httpClient,
		strict: opts.StrictSeverity,
	}
}

// Detect отправляет оба снимка одним multipart-запросом. Повторов нет:
// любая ошибка прерывает анализ целиком.
func (c *Client) Detect(ctx context.Context, before, after []byte) (*entity.DetectionResult, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetFileReader("before", "before.jpg", bytes.NewReader(before)).
		SetFileReader("after", "after.jpg", bytes.NewReader(after)).
		Post(analyzePath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Error().Err(err).Msg("detector request failed")
		return nil, ErrAnalysisFailed
	}
	if res.IsError() {
		log.Error().
			Int("status", res.StatusCode()).
			Str("body", truncateBody(res.Body())).
			Msg("detector returned error status")
		return nil, ErrAnalysisFailed
	}

	result, err := Parse(res.Body(), c.strict)
	if err != nil {
		log.Error().Err(err).Msg("detector response rejected")
		return nil, err
	}

	log.Info().
		Str("inspectionID", result.InspectionID).
		Int("damages", len(result.Annotations)).
		Bool("degraded", result.Degraded).
		Dur("took", res.Time()).
		Msg("detector analysis complete")

	return result, nil
}

func truncateBody(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

var _ port.DamageDetector = (*Client)(nil)
