package handlers

import (
	"errors"
	"io"
	"net/http"

	apperrors "timetracker-backend/internal/errors"
	"timetracker-backend/internal/logger"
	"timetracker-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// signatureHeader carries the provider's HMAC signature of the payload.
const signatureHeader = "Billing-Signature"

// maxWebhookBody caps how much of a webhook payload is read.
const maxWebhookBody = 1 << 20

// WebhookHandler handles inbound billing provider webhooks
type WebhookHandler struct {
	webhookService *service.WebhookService
	log            *logger.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(webhookService *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		log:            logger.New(),
	}
}

// HandleBillingWebhook handles POST /webhooks/billing
// @Summary Ingest a billing provider webhook
// @Description Verify, log, and process one billing event. The endpoint acks with 200 once the event is durably logged; processing failures are retained on the event for reprocessing.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param Billing-Signature header string true "HMAC signature of the payload"
// @Success 200 {object} service.IngestResult "Event accepted"
// @Failure 400 {object} ErrorResponse "Invalid signature or malformed payload"
// @Router /webhooks/billing [post]
func (h *WebhookHandler) HandleBillingWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	result, err := h.webhookService.Ingest(c.Request.Context(), body, c.GetHeader(signatureHeader))
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidSignature) || apperrors.IsValidation(err) {
			h.log.WithError(err).Warn("rejected billing webhook")
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
