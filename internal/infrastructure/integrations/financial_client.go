package integrations

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/feedlot-pro/feedlot-api/internal/application/feedlot"
	"github.com/feedlot-pro/feedlot-api/pkg/config"
)

var _ feedlot.FinancialLedger = (*FinancialClient)(nil)

// FinancialClient cliente HTTP del servicio financiero externo. El caller lo
// usa best-effort: la falla se reporta pero nunca revierte el ledger.
type FinancialClient struct {
	httpClient *resty.Client
}

// NewFinancialClient construye el cliente con la configuración de integraciones.
func NewFinancialClient(cfg config.IntegrationsConfig) *FinancialClient {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.FinancialURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)
	return &FinancialClient{httpClient: client}
}

type incomePayload struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	RelatedID   string `json:"related_id"`
	Category    string `json:"category"`
}

type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e *apiError) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// RecordIncome registra un ingreso por venta en el módulo financiero.
func (c *FinancialClient) RecordIncome(ctx context.Context, description string, amount decimal.Decimal, date time.Time, relatedID string) error {
	payload := incomePayload{
		Description: description,
		Amount:      amount.StringFixed(2),
		Date:        date.Format("2006-01-02"),
		RelatedID:   relatedID,
		Category:    "cattle_sale",
	}
	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetError(apiErr).
		Post("/transactions/income")
	if err != nil {
		return fmt.Errorf("record income: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("financial api error: status=%d, message=%s", resp.StatusCode(), apiErr.text())
	}
	return nil
}
