package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voyagehub/travel-backend/internal/apperr"
	"github.com/voyagehub/travel-backend/internal/models"
	"github.com/voyagehub/travel-backend/internal/services"
)

// webhookSignatureHeader carries the HMAC-SHA512 of the webhook body
const webhookSignatureHeader = "x-paystack-signature"

// maxWebhookBody bounds the webhook payload read into memory
const maxWebhookBody = 1 << 20

// PaymentHandler handles checkout initialization, gateway callbacks and
// payment administration
type PaymentHandler struct {
	payments *services.PaymentService
	audit    *AdminAudit
}

func NewPaymentHandler(payments *services.PaymentService, audit *AdminAudit) *PaymentHandler {
	return &PaymentHandler{payments: payments, audit: audit}
}

// Create handles POST /api/v1/payments
func (h *PaymentHandler) Create(c *gin.Context) {
	var req models.CreatePaymentRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.payments.Create(c.Request.Context(), actorFrom(c), req, metaFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Payment initialized", res)
}

// Callback handles GET /api/v1/payments/callback?reference=
func (h *PaymentHandler) Callback(c *gin.Context) {
	reference := c.Query("reference")
	if reference == "" {
		reference = c.Query("trxref")
	}
	if reference == "" {
		respondError(c, apperr.Validation(map[string]string{"reference": "reference is required"}))
		return
	}
	res, err := h.payments.HandleCallback(c.Request.Context(), reference, metaFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Payment verified", res)
}

// Webhook handles POST /api/v1/payments/webhook
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		respondError(c, apperr.InvalidInput("Unreadable webhook body"))
		return
	}
	res, err := h.payments.HandleWebhook(c.Request.Context(), body, c.GetHeader(webhookSignatureHeader), metaFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Webhook processed", res)
}

func (h *PaymentHandler) List(c *gin.Context) {
	var f models.PaymentFilter
	if !bindQuery(c, &f) {
		return
	}
	items, meta, err := h.payments.List(c.Request.Context(), actorFrom(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, "Payments retrieved", items, meta)
}

func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.payments.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Payment retrieved", p)
}

// GetByReference handles GET /api/v1/payments/reference/:reference
func (h *PaymentHandler) GetByReference(c *gin.Context) {
	p, err := h.payments.GetByReference(c.Request.Context(), actorFrom(c), c.Param("reference"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Payment retrieved", p)
}

// UpdateStatus handles PATCH /api/v1/payments/:id, the admin override
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.UpdatePaymentStatusRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.payments.UpdateStatus(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit.changed(c, "payment_status_override", "payment", id, map[string]interface{}{
		"status": req.Status,
		"reason": req.Reason,
	})
	respond(c, http.StatusOK, "Payment updated", p)
}

// Refund handles PATCH /api/v1/payments/:id/refund
func (h *PaymentHandler) Refund(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.RefundPaymentRequest
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}
	p, err := h.payments.Refund(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit.changed(c, "payment_refunded", "payment", id, map[string]interface{}{
		"amount": p.Amount,
		"reason": req.Reason,
	})
	respond(c, http.StatusOK, "Payment refunded", p)
}

func (h *PaymentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.payments.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.audit.deleted(c, "payment", id)
	respond(c, http.StatusOK, "Payment deleted", nil)
}

func (h *PaymentHandler) DeleteAll(c *gin.Context) {
	var f models.PaymentFilter
	if !bindQuery(c, &f) {
		return
	}
	n, err := h.payments.DeleteAll(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit.bulkDeleted(c, "payment", n)
	respond(c, http.StatusOK, "Payments deleted", gin.H{"deleted": n})
}
