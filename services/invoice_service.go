package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/rental-server/models"
	"github.com/vnkhanh/rental-server/utils"
)

const invoiceDueDays = 7

const (
	msgInvoiceReady     = "Invoice created successfully"
	msgInvoicePDFFailed = "Invoice created, but the PDF could not be generated. You can still proceed with payment."
)

type CreateInvoiceResult struct {
	Invoice      *models.Invoice
	Message      string
	PDFGenerated bool
}

type InvoiceService struct {
	db       *gorm.DB
	renderer InvoiceRenderer
	store    PDFStore
	notifier Notifier
	now      func() time.Time
}

func NewInvoiceService(db *gorm.DB, renderer InvoiceRenderer, store PDFStore, notifier Notifier) *InvoiceService {
	return &InvoiceService{
		db:       db,
		renderer: renderer,
		store:    store,
		notifier: notifier,
		now:      time.Now,
	}
}

// tenantInvoices scopes an invoice query to invoices of bookings made by tenantID.
func (s *InvoiceService) tenantInvoices(ctx context.Context, tenantID uint) *gorm.DB {
	db := s.db.WithContext(ctx)
	return db.Where("booking_id IN (?)", db.Model(&models.Booking{}).Select("id").Where("user_id = ?", tenantID))
}

func (s *InvoiceService) CreateInvoice(ctx context.Context, tenant models.User, bookingID uint) (*CreateInvoiceResult, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).Preload("Room").Preload("Invoice").
		Where("id = ? AND user_id = ?", bookingID, tenant.ID).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Booking not found")
		}
		return nil, fmt.Errorf("load booking %d: %w", bookingID, err)
	}
	if booking.Status != models.BookingApproved {
		return nil, utils.InvalidOperation(utils.ErrCodeWrongStatus, "Invoice can only be created for approved bookings")
	}
	if booking.Invoice != nil {
		return nil, utils.InvalidOperation(utils.ErrCodeAlreadyExists, "Invoice already exists for this booking")
	}

	issued := utils.DateOnly(s.now().UTC())
	taxAmount := utils.Percent(booking.TotalRent, models.TaxRate)
	inv := models.Invoice{
		BookingID:     booking.ID,
		InvoiceNumber: fmt.Sprintf("INV-%s-%04d", issued.Format("20060102"), booking.ID),
		IssuedDate:    issued,
		DueDate:       issued.AddDate(0, 0, invoiceDueDays),
		Subtotal:      booking.TotalRent,
		TaxRate:       models.TaxRate,
		TaxAmount:     taxAmount,
		TotalAmount:   booking.TotalRent.Add(taxAmount),
		Status:        models.InvoiceDraft,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.InvalidOperation(utils.ErrCodeAlreadyExists, "Invoice already exists for this booking")
		}
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	fields := logrus.Fields{"invoice_id": inv.ID, "booking_id": booking.ID, "invoice_number": inv.InvoiceNumber}
	utils.Logger.WithFields(fields).Info("invoice created")

	result := &CreateInvoiceResult{Invoice: &inv, Message: msgInvoicePDFFailed}
	if err := s.publish(ctx, &inv, &booking, &tenant); err != nil {
		utils.Logger.WithFields(fields).WithError(err).Warn("invoice pdf not generated, invoice stays draft")
		return result, nil
	}
	result.Message = msgInvoiceReady
	result.PDFGenerated = true

	bestEffort("notify tenant of invoice", fields, func() error {
		return s.notifier.Notify(ctx, tenant.ID, "Invoice generated",
			fmt.Sprintf("Invoice %s for %s is ready. Amount due: %s by %s.",
				inv.InvoiceNumber, booking.Room.Title, inv.TotalAmount.StringFixed(2), utils.FormatDate(inv.DueDate)),
			"/invoices")
	})
	bestEffort("notify owner of invoice", fields, func() error {
		return s.notifier.Notify(ctx, booking.OwnerID, "Invoice issued",
			fmt.Sprintf("Invoice %s was issued to %s for %s.", inv.InvoiceNumber, tenant.DisplayName(), booking.Room.Title),
			"/bookings/received")
	})

	return result, nil
}

// publish renders and stores the PDF, then moves the invoice draft -> sent.
func (s *InvoiceService) publish(ctx context.Context, inv *models.Invoice, booking *models.Booking, tenant *models.User) error {
	pdf, err := s.renderer.Render(inv, booking, &booking.Room, tenant)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("invoices/invoice_%s.pdf", inv.InvoiceNumber)
	if err := s.store.Save(ctx, key, pdf); err != nil {
		return fmt.Errorf("store invoice pdf: %w", err)
	}

	res := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("id = ? AND status = ?", inv.ID, models.InvoiceDraft).
		Updates(map[string]interface{}{"status": models.InvoiceSent, "pdf_path": key})
	if res.Error != nil {
		return fmt.Errorf("mark invoice sent: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.New("invoice left draft state concurrently")
	}
	inv.Status = models.InvoiceSent
	inv.PDFPath = key
	return nil
}

func (s *InvoiceService) GetTenantInvoice(ctx context.Context, tenantID, invoiceID uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.tenantInvoices(ctx, tenantID).Preload("Booking.Room").
		Where("id = ?", invoiceID).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Invoice not found")
		}
		return nil, fmt.Errorf("load invoice %d: %w", invoiceID, err)
	}
	return &inv, nil
}

// DownloadInvoice returns the stored PDF and its download filename.
func (s *InvoiceService) DownloadInvoice(ctx context.Context, tenant models.User, invoiceID uint) ([]byte, string, error) {
	inv, err := s.GetTenantInvoice(ctx, tenant.ID, invoiceID)
	if err != nil {
		return nil, "", err
	}
	if inv.PDFPath == "" {
		return nil, "", utils.NotFound("Invoice PDF not available")
	}
	data, err := s.store.Load(ctx, inv.PDFPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", utils.NotFound("Invoice PDF not available")
		}
		return nil, "", utils.DependencyFailure("Could not read invoice PDF", err)
	}
	return data, fmt.Sprintf("invoice_%s.pdf", inv.InvoiceNumber), nil
}

func (s *InvoiceService) ListTenantInvoices(ctx context.Context, tenantID uint) ([]models.Invoice, error) {
	var out []models.Invoice
	err := s.tenantInvoices(ctx, tenantID).Preload("Booking.Room").
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return out, nil
}

// MarkOverdue flips unpaid invoices past their due date to overdue and
// returns how many changed. Paid invoices are never touched.
func (s *InvoiceService) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	today := utils.DateOnly(now.UTC())

	var due []models.Invoice
	err := s.db.WithContext(ctx).Preload("Booking").
		Where("status IN ? AND due_date < ?", []models.InvoiceStatus{models.InvoiceDraft, models.InvoiceSent}, today).
		Find(&due).Error
	if err != nil {
		return 0, fmt.Errorf("find overdue invoices: %w", err)
	}

	changed := 0
	for _, inv := range due {
		res := s.db.WithContext(ctx).Model(&models.Invoice{}).
			Where("id = ? AND status = ?", inv.ID, inv.Status).
			Update("status", models.InvoiceOverdue)
		if res.Error != nil {
			return changed, fmt.Errorf("mark invoice %d overdue: %w", inv.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			continue
		}
		changed++

		inv := inv
		fields := logrus.Fields{"invoice_id": inv.ID, "invoice_number": inv.InvoiceNumber}
		bestEffort("notify tenant of overdue invoice", fields, func() error {
			return s.notifier.Notify(ctx, inv.Booking.UserID, "Invoice overdue",
				fmt.Sprintf("Invoice %s was due on %s and is now overdue.", inv.InvoiceNumber, utils.FormatDate(inv.DueDate)),
				"/invoices")
		})
	}

	if changed > 0 {
		utils.Logger.WithField("count", changed).Info("invoices marked overdue")
	}
	return changed, nil
}
