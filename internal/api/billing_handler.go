package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shoply-backend-go/internal/core"
	"shoply-backend-go/internal/models"
)

// BillingHandler handles plans, subscriptions and invoices.
type BillingHandler struct {
	billingService core.BillingService
	logger         *zap.Logger
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(billingService core.BillingService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{billingService: billingService, logger: logger}
}

// ListPlans handles GET /api/v1/plans. Public: the pricing page calls this
// before sign-up.
func (h *BillingHandler) ListPlans(c *gin.Context) {
	plans, err := h.billingService.GetPlans(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

// GetPlan handles GET /api/v1/plans/:planId.
func (h *BillingHandler) GetPlan(c *gin.Context) {
	plan, err := h.billingService.GetPlan(c.Request.Context(), c.Param("planId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// CreateSubscription handles POST /api/v1/subscriptions. A paid plan also
// produces the first invoice.
func (h *BillingHandler) CreateSubscription(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	plan, err := h.billingService.GetPlan(c.Request.Context(), req.PlanID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	subID, err := h.billingService.CreateSubscription(c.Request.Context(), uid, req.PlanID, req.IsYearly)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if plan.Price > 0 {
		amount := plan.Price
		if req.IsYearly {
			// Yearly billing is ten months' price less 20%, per the
			// pricing page.
			amount = plan.Price * 10 * 0.8
		}
		invoice := &models.Invoice{
			UserID:        uid,
			InvoiceNumber: fmt.Sprintf("INV-%d", time.Now().UnixMilli()),
			Amount:        amount,
			Status:        "paid",
		}
		if _, err := h.billingService.CreateInvoice(c.Request.Context(), invoice); err != nil {
			// The subscription exists; report but do not roll it back.
			h.logger.Error("failed to create invoice for subscription",
				zap.String("subscriptionID", subID), zap.Error(err))
		}
	}

	c.JSON(http.StatusCreated, gin.H{"id": subID})
}

// GetActiveSubscription handles GET /api/v1/subscriptions/active. No active
// subscription yields a null body, matching the free tier.
func (h *BillingHandler) GetActiveSubscription(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	sub, err := h.billingService.GetActiveSubscription(c.Request.Context(), uid)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// CancelSubscription handles POST /api/v1/subscriptions/:subscriptionId/cancel.
// Only the owner's active subscription can be cancelled.
func (h *BillingHandler) CancelSubscription(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	subID := c.Param("subscriptionId")

	active, err := h.billingService.GetActiveSubscription(c.Request.Context(), uid)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if active == nil || active.ID != subID {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "subscription not found"})
		return
	}

	err = h.billingService.UpdateSubscription(c.Request.Context(), subID, map[string]interface{}{
		"status": models.SubscriptionStatusCancelled,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListInvoices handles GET /api/v1/invoices, newest first.
func (h *BillingHandler) ListInvoices(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	invoices, err := h.billingService.GetInvoices(c.Request.Context(), uid)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// GetInvoice handles GET /api/v1/invoices/:invoiceId. Another user's invoice
// is indistinguishable from a missing one.
func (h *BillingHandler) GetInvoice(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	invoice, err := h.billingService.GetInvoice(c.Request.Context(), c.Param("invoiceId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if invoice.UserID != uid {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "invoice not found"})
		return
	}
	c.JSON(http.StatusOK, invoice)
}
