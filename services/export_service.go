package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vnkhanh/rental-server/models"
	"github.com/vnkhanh/rental-server/utils"
)

const (
	ExportCSV  = "csv"
	ExportXLSX = "xlsx"

	contentTypeCSV  = "text/csv"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var invoiceExportHeader = []string{
	"invoice_number", "room", "location", "issued_date", "due_date",
	"subtotal", "tax_amount", "total_amount", "status",
}

type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ExportService struct {
	invoices *InvoiceService
	now      func() time.Time
}

func NewExportService(invoices *InvoiceService) *ExportService {
	return &ExportService{invoices: invoices, now: time.Now}
}

func invoiceExportRow(inv models.Invoice) []string {
	return []string{
		inv.InvoiceNumber,
		inv.Booking.Room.Title,
		inv.Booking.Room.Location,
		utils.FormatDate(inv.IssuedDate),
		utils.FormatDate(inv.DueDate),
		inv.Subtotal.StringFixed(2),
		inv.TaxAmount.StringFixed(2),
		inv.TotalAmount.StringFixed(2),
		string(inv.Status),
	}
}

// ExportInvoices renders the tenant's invoices as csv (default) or xlsx.
func (s *ExportService) ExportInvoices(ctx context.Context, tenantID uint, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportCSV
	}
	if format != ExportCSV && format != ExportXLSX {
		return nil, utils.Validation("format must be csv or xlsx", nil)
	}

	invoices, err := s.invoices.ListTenantInvoices(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("invoices_%s.%s", s.now().UTC().Format("20060102"), format)
	if format == ExportXLSX {
		data, err := invoicesXLSX(invoices)
		if err != nil {
			return nil, err
		}
		return &ExportFile{Filename: name, ContentType: contentTypeXLSX, Data: data}, nil
	}

	data, err := invoicesCSV(invoices)
	if err != nil {
		return nil, err
	}
	return &ExportFile{Filename: name, ContentType: contentTypeCSV, Data: data}, nil
}

func invoicesCSV(invoices []models.Invoice) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(invoiceExportHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, inv := range invoices {
		if err := w.Write(invoiceExportRow(inv)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func invoicesXLSX(invoices []models.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			utils.Logger.WithError(err).Warn("close xlsx workbook")
		}
	}()

	sheet := "Invoices"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range invoiceExportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for r, inv := range invoices {
		for c, v := range invoiceExportRow(inv) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheet, cell, v)
		}
	}
	f.SetColWidth(sheet, "A", "A", 22)
	f.SetColWidth(sheet, "B", "C", 28)
	f.SetColWidth(sheet, "D", "I", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
