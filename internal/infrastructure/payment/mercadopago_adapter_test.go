package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pozinox/backend/internal/application/trade"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *MercadoPagoAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter, err := NewMercadoPagoAdapter(&MercadoPagoConfig{
		AccessToken: "TEST-123",
		BaseURL:     server.URL,
		Timeout:     5 * time.Second,
	}, nil)
	require.NoError(t, err)
	return adapter
}

func TestMercadoPagoConfig(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		_, err := NewMercadoPagoAdapter(&MercadoPagoConfig{AccessToken: " "}, nil)
		assert.ErrorIs(t, err, ErrMercadoPagoMissingAccessToken)
	})

	t.Run("defaults", func(t *testing.T) {
		c := &MercadoPagoConfig{AccessToken: "APP_USR-1"}
		assert.Equal(t, mercadoPagoAPIBaseURL, c.baseURL())
		assert.Equal(t, mercadoPagoDefaultWait, c.timeout())
		assert.False(t, c.IsSandbox())
		assert.True(t, (&MercadoPagoConfig{AccessToken: "TEST-1"}).IsSandbox())
	})
}

func TestMercadoPagoAdapter_CreatePreference(t *testing.T) {
	var got mpPreferenceRequest
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, mercadoPagoPreferencesPath, r.URL.Path)
		assert.Equal(t, "Bearer TEST-123", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Idempotency-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"pref-1","init_point":"https://mp/init","sandbox_init_point":"https://mp/sandbox"}`))
	})

	pref, err := adapter.CreatePreference(context.Background(), trade.PreferenceRequest{
		ExternalReference: "order-1",
		Items: []trade.PreferenceItem{{
			Title:      "Cotización POZ20240503001",
			Quantity:   1,
			UnitPrice:  decimal.NewFromInt(113050),
			CurrencyID: "CLP",
		}},
		PayerEmail: "ana@aceros.cl",
		BackURLs: trade.BackURLs{
			Success: "https://pozinox.cl/ok",
			Failure: "https://pozinox.cl/fail",
		},
		NotificationURL: "https://pozinox.cl/api/v1/payments/webhook",
	})
	require.NoError(t, err)

	assert.Equal(t, "pref-1", pref.ID)
	assert.Equal(t, "https://mp/init", pref.InitPoint)
	assert.Equal(t, "https://mp/sandbox", pref.SandboxInitPoint)

	require.Len(t, got.Items, 1)
	assert.Equal(t, float64(113050), got.Items[0].UnitPrice)
	assert.Equal(t, "CLP", got.Items[0].CurrencyID)
	assert.Equal(t, "order-1", got.ExternalReference)
	assert.Equal(t, "approved", got.AutoReturn)
	require.NotNil(t, got.Payer)
	assert.Equal(t, "ana@aceros.cl", got.Payer.Email)
}

func TestMercadoPagoAdapter_GetPayment(t *testing.T) {
	t.Run("approved payment", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/payments/987654", r.URL.Path)
			_, _ = w.Write([]byte(`{
				"id": 987654,
				"status": "approved",
				"status_detail": "accredited",
				"external_reference": "order-1",
				"transaction_amount": 113050,
				"date_approved": "2024-05-03T10:15:00.000-04:00"
			}`))
		})

		info, err := adapter.GetPayment(context.Background(), "987654")
		require.NoError(t, err)
		assert.Equal(t, "987654", info.ID)
		assert.Equal(t, trade.GatewayStatusApproved, info.Status)
		assert.Equal(t, "order-1", info.ExternalReference)
		assert.True(t, decimal.NewFromInt(113050).Equal(info.TransactionAmount))
		require.NotNil(t, info.DateApproved)
		assert.Equal(t, 14, info.DateApproved.UTC().Hour())
	})

	t.Run("pending payment has no approval date", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id": 1, "status": "in_process", "external_reference": "order-1", "transaction_amount": 10, "date_approved": null}`))
		})

		info, err := adapter.GetPayment(context.Background(), "1")
		require.NoError(t, err)
		assert.Equal(t, trade.GatewayStatusInProcess, info.Status)
		assert.Nil(t, info.DateApproved)
	})

	t.Run("unknown payment", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := adapter.GetPayment(context.Background(), "404")
		assert.ErrorIs(t, err, ErrPaymentNotFound)

		_, err = adapter.GetPayment(context.Background(), "")
		assert.ErrorIs(t, err, ErrPaymentNotFound)
	})

	t.Run("rejected request", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"invalid access token","error":"unauthorized","status":401}`))
		})

		_, err := adapter.GetPayment(context.Background(), "1")
		assert.ErrorIs(t, err, ErrGatewayRequestFailed)
		assert.Contains(t, err.Error(), "invalid access token")
	})

	t.Run("gateway down", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := adapter.GetPayment(context.Background(), "1")
		assert.ErrorIs(t, err, ErrGatewayUnavailable)
	})
}
