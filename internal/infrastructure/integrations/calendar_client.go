package integrations

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/feedlot-pro/feedlot-api/internal/application/feedlot"
	"github.com/feedlot-pro/feedlot-api/pkg/config"
)

var _ feedlot.CalendarService = (*CalendarClient)(nil)

// CalendarClient cliente HTTP del calendario operativo (embarques, entregas).
// Best-effort igual que el financiero.
type CalendarClient struct {
	httpClient *resty.Client
}

// NewCalendarClient construye el cliente con la configuración de integraciones.
func NewCalendarClient(cfg config.IntegrationsConfig) *CalendarClient {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.CalendarURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)
	return &CalendarClient{httpClient: client}
}

type eventPayload struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	RelatedID string `json:"related_id"`
	Source    string `json:"source"`
}

// CreateEvent crea un evento en el calendario operativo.
func (c *CalendarClient) CreateEvent(ctx context.Context, title string, date time.Time, relatedID string) error {
	payload := eventPayload{
		Title:     title,
		Date:      date.Format("2006-01-02"),
		RelatedID: relatedID,
		Source:    "feedlot-api",
	}
	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetError(apiErr).
		Post("/events")
	if err != nil {
		return fmt.Errorf("create calendar event: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("calendar api error: status=%d, message=%s", resp.StatusCode(), apiErr.text())
	}
	return nil
}
