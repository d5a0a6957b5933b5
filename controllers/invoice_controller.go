package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/rental-server/dtos"
	"github.com/vnkhanh/rental-server/services"
	"github.com/vnkhanh/rental-server/utils"
)

type InvoiceController struct {
	invoices *services.InvoiceService
	exports  *services.ExportService
}

func NewInvoiceController(invoices *services.InvoiceService, exports *services.ExportService) *InvoiceController {
	return &InvoiceController{invoices: invoices, exports: exports}
}

// POST /api/invoices/create/:booking_id/
func (ctl *InvoiceController) CreateInvoice(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	bookingID, ok := paramID(c, "booking_id")
	if !ok {
		return
	}
	res, err := ctl.invoices.CreateInvoice(c.Request.Context(), u, bookingID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"invoice":       dtos.NewInvoiceResponse(*res.Invoice),
		"message":       res.Message,
		"pdf_generated": res.PDFGenerated,
	})
}

// GET /api/invoices/
func (ctl *InvoiceController) ListInvoices(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := ctl.invoices.ListTenantInvoices(c.Request.Context(), u.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.NewInvoiceList(list))
}

// GET /api/invoices/:id/download/
func (ctl *InvoiceController) DownloadInvoice(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	data, filename, err := ctl.invoices.DownloadInvoice(c.Request.Context(), u, id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

// POST /api/admin/invoices/mark-overdue/
func (ctl *InvoiceController) MarkOverdue(c *gin.Context) {
	n, err := ctl.invoices.MarkOverdue(c.Request.Context(), time.Now())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}
