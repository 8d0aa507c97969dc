package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	subdto "github.com/orris-inc/tenancy/internal/application/subscription/dto"
	"github.com/orris-inc/tenancy/internal/shared/errors"
	"github.com/orris-inc/tenancy/internal/shared/logger"
	"github.com/orris-inc/tenancy/internal/shared/utils"
)

const maxWebhookBytes = 64 << 10

type PaymentHandler struct {
	service paymentService
	stripe  webhookVerifier
	logger  logger.Interface
}

// NewPaymentHandler builds the payment endpoints. stripe may be nil when
// Stripe is not configured; its webhook then answers 404.
func NewPaymentHandler(service paymentService, stripe webhookVerifier, logger logger.Interface) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		stripe:  stripe,
		logger:  logger,
	}
}

// StripeWebhook confirms the checkout a verified Stripe event reports as paid.
// Stripe retries on non-2xx, so replays and unrelated events answer 200.
func (h *PaymentHandler) StripeWebhook(c *gin.Context) {
	if h.stripe == nil {
		utils.ErrorResponse(c, http.StatusNotFound, "stripe is not configured")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes))
	if err != nil {
		utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	sessionID, ok, err := h.stripe.ParseWebhook(payload, signature)
	if err != nil {
		h.logger.Warnw("rejected stripe webhook",
			"error", err,
			"signature", utils.Prefix(signature, 16),
		)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid webhook signature")
		return
	}
	if !ok {
		c.Status(http.StatusOK)
		return
	}

	result, err := h.service.ConfirmPayment(c.Request.Context(), sessionID)
	if errors.IsNotFoundError(err) {
		h.logger.Warnw("stripe session has no matching transaction", "session_id", sessionID)
		c.Status(http.StatusOK)
		return
	}
	if err != nil {
		h.logger.Errorw("failed to confirm stripe payment", "error", err, "session_id", sessionID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.logger.Infow("stripe payment processed",
		"session_id", sessionID,
		"activated", result.Activated,
		"already_confirmed", result.AlreadyConfirmed,
	)
	c.Status(http.StatusOK)
}

// ConfirmManual lets staff confirm an offline payment by its transaction id.
func (h *PaymentHandler) ConfirmManual(c *gin.Context) {
	externalID := c.Param("transaction_id")
	if externalID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "transaction ID is required")
		return
	}

	result, err := h.service.ConfirmPayment(c.Request.Context(), externalID)
	if err != nil {
		h.logger.Errorw("failed to confirm manual payment", "error", err, "transaction_id", externalID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	message := "payment confirmed"
	if result.AlreadyConfirmed {
		message = "payment was already confirmed"
	}
	utils.SuccessResponse(c, http.StatusOK, message, subdto.ToConfirmPaymentResultDTO(result, h.service.Now()))
}
