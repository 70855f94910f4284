package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pozinox/backend/internal/application/trade"
)

const (
	mercadoPagoPreferencesPath = "/checkout/preferences"
	mercadoPagoPaymentPath     = "/v1/payments/%s"
)

// MercadoPagoAdapter implements trade.PaymentGateway for Mercado Pago Checkout Pro
type MercadoPagoAdapter struct {
	config     *MercadoPagoConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewMercadoPagoAdapter creates a new Mercado Pago adapter
func NewMercadoPagoAdapter(config *MercadoPagoConfig, logger *zap.Logger) (*MercadoPagoAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MercadoPagoAdapter{
		config:     config,
		httpClient: &http.Client{Timeout: config.timeout()},
		logger:     logger,
	}, nil
}

// CreatePreference creates a checkout preference
func (a *MercadoPagoAdapter) CreatePreference(ctx context.Context, req trade.PreferenceRequest) (*trade.Preference, error) {
	body := mpPreferenceRequest{
		BackURLs: mpBackURLs{
			Success: req.BackURLs.Success,
			Failure: req.BackURLs.Failure,
			Pending: req.BackURLs.Pending,
		},
		ExternalReference: req.ExternalReference,
		NotificationURL:   req.NotificationURL,
	}
	// auto_return is rejected unless a success URL is present
	if req.BackURLs.Success != "" {
		body.AutoReturn = "approved"
	}
	if req.PayerEmail != "" {
		body.Payer = &mpPayer{Email: req.PayerEmail}
	}
	for _, item := range req.Items {
		body.Items = append(body.Items, mpItem{
			Title:      item.Title,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice.InexactFloat64(),
			CurrencyID: item.CurrencyID,
		})
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: failed to marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, mercadoPagoPreferencesPath, bodyBytes)
	if err != nil {
		return nil, err
	}

	var resp mpPreferenceResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("mercadopago: failed to parse response: %w", err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: preference without id", ErrGatewayRequestFailed)
	}

	a.logger.Debug("Mercado Pago preference created",
		zap.String("preference_id", resp.ID),
		zap.String("external_reference", req.ExternalReference))

	return &trade.Preference{
		ID:               resp.ID,
		InitPoint:        resp.InitPoint,
		SandboxInitPoint: resp.SandboxInitPoint,
	}, nil
}

// GetPayment fetches a payment by its gateway id
func (a *MercadoPagoAdapter) GetPayment(ctx context.Context, paymentID string) (*trade.PaymentInfo, error) {
	if paymentID == "" {
		return nil, ErrPaymentNotFound
	}
	respBody, err := a.doRequest(ctx, http.MethodGet, fmt.Sprintf(mercadoPagoPaymentPath, url.PathEscape(paymentID)), nil)
	if err != nil {
		return nil, err
	}

	var resp mpPaymentResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("mercadopago: failed to parse payment: %w", err)
	}

	return &trade.PaymentInfo{
		ID:                resp.ID.String(),
		Status:            resp.Status,
		StatusDetail:      resp.StatusDetail,
		ExternalReference: resp.ExternalReference,
		TransactionAmount: resp.TransactionAmount,
		DateApproved:      resp.DateApproved,
	}, nil
}

// doRequest makes an authenticated request to the Mercado Pago API
func (a *MercadoPagoAdapter) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.baseURL()+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.config.AccessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Idempotency-Key", uuid.NewString())
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrPaymentNotFound
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrGatewayUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		var errResp mpErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return nil, fmt.Errorf("%w: %s - %s", ErrGatewayRequestFailed, errResp.Error, errResp.Message)
		}
		return nil, fmt.Errorf("%w: HTTP %d", ErrGatewayRequestFailed, resp.StatusCode)
	}

	return respBody, nil
}

// Ensure MercadoPagoAdapter implements trade.PaymentGateway
var _ trade.PaymentGateway = (*MercadoPagoAdapter)(nil)
