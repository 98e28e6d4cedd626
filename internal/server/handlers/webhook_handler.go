package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alrehman/poultrybooks/internal/domain/models"
	"github.com/alrehman/poultrybooks/internal/service/messaging"
)

// WebhookHandler exposes the WhatsApp channel over HTTP. Inbound callbacks
// carry the owner's chat commands ("/sale", "/receipt", ...); outbound lets
// other systems push a message through the same number.
type WebhookHandler struct {
	svc    messaging.MessagingService
	logger *zap.Logger
}

// NewWebhookHandler constructs the HTTP adapter over the messaging service.
func NewWebhookHandler(svc messaging.MessagingService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{svc: svc, logger: logger}
}

// Verify responds to Meta's webhook verification challenge.
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	resp, err := h.svc.VerifyWebhookToken(mode, token, challenge)
	if err != nil {
		h.logger.Warn("webhook verification failed", zap.String("mode", mode), zap.Error(err))
		c.String(http.StatusForbidden, "verification failed")
		return
	}

	c.String(http.StatusOK, resp)
}

// Receive ingests webhook callbacks from Meta. Once the payload decodes it
// always acks with 200: Meta redelivers on any other status, and replaying a
// "/sale" command would book the sale twice. Command failures are already
// answered in-chat by the messaging service.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("invalid webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := h.svc.HandleWebhook(c.Request.Context(), payload); err != nil {
		h.logger.Error("failed processing webhook", zap.Error(err))
	}

	c.Status(http.StatusOK)
}

// SendMessage pushes an outbound message through the books' WhatsApp number.
func (h *WebhookHandler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid outbound payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.svc.SendOutbound(c.Request.Context(), req); err != nil {
		h.logger.Error("failed sending outbound", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send message"})
		return
	}

	c.Status(http.StatusAccepted)
}
