package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/orris-inc/tenancy/internal/application/payment/paymentgateway"
	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/tenancy/internal/shared/logger"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// StripeGateway creates one-off Checkout Sessions. The session ID is the
// external transaction ID, and checkout.session.completed confirms it.
type StripeGateway struct {
	config   StripeConfig
	sessions *session.Client
	logger   logger.Interface
}

func NewStripeGateway(config StripeConfig, log logger.Interface) *StripeGateway {
	return NewStripeGatewayWithBackend(config, stripe.GetBackend(stripe.APIBackend), log)
}

func NewStripeGatewayWithBackend(config StripeConfig, backend stripe.Backend, log logger.Interface) *StripeGateway {
	return &StripeGateway{
		config:   config,
		sessions: &session.Client{B: backend, Key: config.SecretKey},
		logger:   log,
	}
}

func (g *StripeGateway) Provider() vo.PaymentProvider {
	return vo.PaymentProviderStripe
}

func (g *StripeGateway) CreateCheckout(ctx context.Context, req paymentgateway.CheckoutRequest) (*paymentgateway.Checkout, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.config.SuccessURL),
		CancelURL:         stripe.String(g.config.CancelURL),
		ClientReferenceID: stripe.String(req.Reference),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(req.Currency)),
					UnitAmount: stripe.Int64(int64(req.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.PlanName),
					},
				},
			},
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.Reference)
	params.AddMetadata("reference", req.Reference)
	params.AddMetadata("tenant_id", strconv.FormatUint(uint64(req.TenantID), 10))
	params.AddMetadata("plan_id", strconv.FormatUint(uint64(req.PlanID), 10))

	s, err := g.sessions.New(params)
	if err != nil {
		g.logger.Errorw("failed to create stripe checkout session",
			"tenant_id", req.TenantID,
			"plan_id", req.PlanID,
			"error", err,
		)
		return nil, fmt.Errorf("failed to create stripe checkout session: %w", err)
	}

	g.logger.Infow("stripe checkout session created", "session_id", s.ID, "tenant_id", req.TenantID)
	return &paymentgateway.Checkout{URL: s.URL, ExternalTransactionID: s.ID}, nil
}

// ParseWebhook verifies the signature and returns the session ID of a paid
// checkout. Other event types report ok=false.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (sessionID string, ok bool, err error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return "", false, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
	default:
		g.logger.Debugw("ignoring stripe event", "type", event.Type, "id", event.ID)
		return "", false, nil
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return "", false, fmt.Errorf("failed to parse checkout session: %w", err)
	}
	// Delayed methods complete the session before the money arrives.
	if s.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		g.logger.Infow("stripe checkout completed without payment", "session_id", s.ID, "payment_status", s.PaymentStatus)
		return "", false, nil
	}
	return s.ID, true, nil
}
