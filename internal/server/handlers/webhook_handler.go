package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	service "github.com/mamadbah2/herdbook/internal/service/whatsapp"
)

// whatsAppObject is the only callback object type the herd bot reads.
const whatsAppObject = "whatsapp_business_account"

type verifyQuery struct {
	Mode      string `form:"hub.mode"`
	Token     string `form:"hub.verify_token"`
	Challenge string `form:"hub.challenge"`
}

// WebhookHandler serves the WhatsApp callbacks that carry herd queries.
type WebhookHandler struct {
	svc    service.MessagingService
	logger *zap.Logger
}

func NewWebhookHandler(svc service.MessagingService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{svc: svc, logger: logger}
}

// Verify answers the subscription handshake by echoing the challenge.
func (h *WebhookHandler) Verify(c *gin.Context) {
	var q verifyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badBody(c, err)
		return
	}
	challenge, err := h.svc.VerifyWebhookToken(q.Mode, q.Token, q.Challenge)
	if err != nil {
		h.logger.Warn("webhook handshake rejected", zap.String("mode", q.Mode), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorBody{Error: "verification failed"})
		return
	}
	c.String(http.StatusOK, challenge)
}

// Receive answers the queries in a callback. Meta retries anything but a 2xx,
// so processing failures are logged and still acknowledged.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("malformed webhook body", zap.Error(err))
		badBody(c, err)
		return
	}
	if payload.Object != "" && payload.Object != whatsAppObject {
		h.logger.Debug("ignoring webhook object", zap.String("object", payload.Object))
		c.Status(http.StatusOK)
		return
	}

	if err := h.svc.HandleWebhook(c.Request.Context(), payload); err != nil {
		h.logger.Error("herd query callback failed", zap.Int("entries", len(payload.Entry)), zap.Error(err))
	}
	c.Status(http.StatusOK)
}
