package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vnkhanh/rental-server/models"
	"github.com/vnkhanh/rental-server/utils"
)

const maxAgreementTerms = 1000

type Agreement struct {
	BookingID   uint      `json:"booking_id"`
	Text        string    `json:"agreement"`
	AIGenerated bool      `json:"ai_generated"`
	GeneratedAt time.Time `json:"generated_at"`
}

type AgreementGenerator interface {
	Generate(ctx context.Context, user models.User, bookingID uint, extraTerms string) (*Agreement, error)
}

// RentalAgreementGenerator drafts a rental agreement for an approved booking.
// Without a working completer it fills a fixed template.
type RentalAgreementGenerator struct {
	db       *gorm.DB
	llm      Completer
	currency string
	now      func() time.Time
}

func NewRentalAgreementGenerator(db *gorm.DB, llm Completer, currency string) *RentalAgreementGenerator {
	return &RentalAgreementGenerator{db: db, llm: llm, currency: currency, now: time.Now}
}

// Generate only serves the booking's tenant or owner; anyone else gets NotFound.
func (g *RentalAgreementGenerator) Generate(ctx context.Context, user models.User, bookingID uint, extraTerms string) (*Agreement, error) {
	extraTerms = strings.TrimSpace(extraTerms)
	if len(extraTerms) > maxAgreementTerms {
		return nil, utils.Validation(fmt.Sprintf("additional_terms must be at most %d characters", maxAgreementTerms), nil)
	}

	var b models.Booking
	err := g.db.WithContext(ctx).Preload("Room").Preload("User").Preload("Owner").
		Where("id = ? AND (user_id = ? OR owner_id = ?)", bookingID, user.ID, user.ID).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("Booking not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load booking %d: %w", bookingID, err)
	}
	if b.Status != models.BookingApproved {
		return nil, utils.InvalidOperation(utils.ErrCodeWrongStatus, "An agreement can only be generated for an approved booking")
	}

	out := &Agreement{BookingID: b.ID, GeneratedAt: g.now().UTC()}
	text, err := g.llm.Complete(ctx,
		"You are a legal assistant drafting clear, plain-language residential rental agreements.",
		agreementPrompt(&b, g.currency, extraTerms), 900)
	if err != nil {
		if !errors.Is(err, ErrAIDisabled) {
			utils.Logger.WithError(err).WithField("booking_id", b.ID).Warn("agreement completion failed, using template")
		}
		out.Text = templateAgreement(&b, g.currency, extraTerms, out.GeneratedAt)
		return out, nil
	}
	out.Text = text
	out.AIGenerated = true
	return out, nil
}

func agreementPrompt(b *models.Booking, currency, extraTerms string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `Draft a residential rental agreement with these details.

Landlord: %s
Tenant: %s
Property: %s, %s
Monthly rent: %s %s
Term: %d months, from %s to %s
Total rent for the term: %s %s
`,
		b.Owner.DisplayName(), b.User.DisplayName(),
		b.Room.Title, b.Room.Location,
		currency, b.Room.Price.StringFixed(2),
		b.Months, utils.FormatDate(b.StartDate), utils.FormatDate(b.EndDate),
		currency, b.TotalRent.StringFixed(2))
	if extraTerms != "" {
		fmt.Fprintf(&sb, "Additional terms requested by the parties: %s\n", extraTerms)
	}
	sb.WriteString("\nCover rent payment, security deposit, maintenance, house rules, termination and signatures. Use numbered sections.")
	return sb.String()
}

func templateAgreement(b *models.Booking, currency, extraTerms string, at time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "RENTAL AGREEMENT\n\nThis agreement is made on %s between %s (\"Landlord\") and %s (\"Tenant\").\n\n",
		utils.FormatDate(at), b.Owner.DisplayName(), b.User.DisplayName())
	fmt.Fprintf(&sb, "1. Property. The Landlord rents to the Tenant the room \"%s\" located at %s.\n\n", b.Room.Title, b.Room.Location)
	fmt.Fprintf(&sb, "2. Term. The tenancy runs for %d months from %s to %s.\n\n",
		b.Months, utils.FormatDate(b.StartDate), utils.FormatDate(b.EndDate))
	fmt.Fprintf(&sb, "3. Rent. Monthly rent is %s %s, payable against invoices issued through the platform. Total rent for the term is %s %s.\n\n",
		currency, b.Room.Price.StringFixed(2), currency, b.TotalRent.StringFixed(2))
	sb.WriteString("4. Maintenance. The Tenant keeps the room clean and reports damage promptly. The Landlord handles structural repairs.\n\n")
	sb.WriteString("5. Termination. Either party may end the tenancy early with 30 days written notice.\n\n")
	n := 6
	if extraTerms != "" {
		fmt.Fprintf(&sb, "%d. Additional terms. %s\n\n", n, extraTerms)
		n++
	}
	fmt.Fprintf(&sb, "%d. Signatures.\n\nLandlord: ____________________\n\nTenant: ____________________\n", n)
	return sb.String()
}
