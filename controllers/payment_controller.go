package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/rental-server/dtos"
	"github.com/vnkhanh/rental-server/services"
	"github.com/vnkhanh/rental-server/utils"
)

type PaymentController struct {
	payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

// POST /api/payments/process/
func (ctl *PaymentController) ProcessPayment(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req dtos.InitiatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := ctl.payments.InitiatePayment(c.Request.Context(), u, req.InvoiceID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// POST /api/payments/razorpay/callback/
func (ctl *PaymentController) RazorpayCallback(c *gin.Context) {
	var req dtos.RazorpayCallbackRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondErrorWithCode(c, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid callback payload", err)
		return
	}
	res, err := ctl.payments.ReconcileCallback(c.Request.Context(), services.CallbackInput{
		PaymentID: req.GatewayPaymentID(),
		OrderID:   req.OrderID,
		Signature: req.Signature,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/payments/razorpay/failure/
func (ctl *PaymentController) RazorpayFailure(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req dtos.PaymentFailureRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondErrorWithCode(c, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid failure payload", err)
		return
	}
	payment, err := ctl.payments.MarkFailed(c.Request.Context(), u.ID, req.OrderID, req.Reason)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": false,
		"message": "Payment marked as failed",
		"payment": dtos.NewPaymentResponse(*payment),
	})
}

// GET /api/payments/
func (ctl *PaymentController) ListPayments(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := ctl.payments.ListTenantPayments(c.Request.Context(), u.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.NewPaymentList(list))
}
