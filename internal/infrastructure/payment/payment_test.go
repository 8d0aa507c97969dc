package payment

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/orris-inc/tenancy/internal/application/payment/paymentgateway"
	"github.com/orris-inc/tenancy/internal/shared/logger"
)

const testWebhookSecret = "whsec_test"

func newTestStripeGateway(t *testing.T, handler http.HandlerFunc) *StripeGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return NewStripeGatewayWithBackend(StripeConfig{
		SecretKey:     "sk_test_123",
		WebhookSecret: testWebhookSecret,
		SuccessURL:    "https://app.test/success",
		CancelURL:     "https://app.test/cancel",
	}, backend, logger.NewNopLogger())
}

func TestStripeGateway_CreateCheckout(t *testing.T) {
	var form map[string]string
	g := newTestStripeGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.test/cs_test_1"}`)
	})

	checkout, err := g.CreateCheckout(context.Background(), paymentgateway.CheckoutRequest{
		Reference: "ref-1",
		TenantID:  7,
		PlanID:    2,
		PlanName:  "Pro",
		Amount:    2000,
		Currency:  "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", checkout.ExternalTransactionID)
	assert.Equal(t, "https://checkout.stripe.test/cs_test_1", checkout.URL)

	assert.Equal(t, "payment", form["mode"])
	assert.Equal(t, "ref-1", form["client_reference_id"])
	assert.Equal(t, "2000", form["line_items[0][price_data][unit_amount]"])
	assert.Equal(t, "usd", form["line_items[0][price_data][currency]"])
	assert.Equal(t, "7", form["metadata[tenant_id]"])
}

func TestStripeGateway_CreateCheckoutFailure(t *testing.T) {
	g := newTestStripeGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"type":"invalid_request_error","message":"bad currency"}}`)
	})

	_, err := g.CreateCheckout(context.Background(), paymentgateway.CheckoutRequest{Reference: "r", Amount: 1, Currency: "XXX"})
	require.Error(t, err)
}

func signedEvent(t *testing.T, eventType, paymentStatus string) (payload []byte, header string) {
	t.Helper()
	payload = []byte(fmt.Sprintf(`{"id":"evt_1","object":"event","type":%q,"api_version":%q,"data":{"object":{"id":"cs_test_1","object":"checkout.session","payment_status":%q}}}`,
		eventType, stripe.APIVersion, paymentStatus))
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

func TestStripeGateway_ParseWebhook(t *testing.T) {
	g := newTestStripeGateway(t, func(http.ResponseWriter, *http.Request) {})

	payload, header := signedEvent(t, "checkout.session.completed", "paid")
	id, ok, err := g.ParseWebhook(payload, header)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "cs_test_1", id)

	payload, header = signedEvent(t, "checkout.session.completed", "unpaid")
	_, ok, err = g.ParseWebhook(payload, header)
	require.NoError(t, err)
	assert.False(t, ok)

	payload, header = signedEvent(t, "invoice.paid", "paid")
	_, ok, err = g.ParseWebhook(payload, header)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = g.ParseWebhook(payload, "t=1,v1=bogus")
	assert.Error(t, err)
}

func TestManualGateway_CreateCheckout(t *testing.T) {
	g := NewManualGateway("https://billing.test/manual")
	checkout, err := g.CreateCheckout(context.Background(), paymentgateway.CheckoutRequest{Reference: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "manual_abc", checkout.ExternalTransactionID)
	assert.Equal(t, "https://billing.test/manual?reference=abc", checkout.URL)
}
