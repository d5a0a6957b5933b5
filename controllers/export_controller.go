package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/rental-server/utils"
)

// GET /api/invoices/export/?format=csv|xlsx
func (ctl *InvoiceController) ExportInvoices(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	file, err := ctl.exports.ExportInvoices(c.Request.Context(), u.ID, c.DefaultQuery("format", "csv"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
