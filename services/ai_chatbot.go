package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/vnkhanh/rental-server/models"
	"github.com/vnkhanh/rental-server/utils"
)

const maxChatMessage = 1000

const chatSystemPrompt = `You are a helpful assistant for a room rental platform. You help users with:
- Room details and features
- The booking process (request, owner approval, invoice, payment)
- Payments, invoices and cancellations
- Locations and nearby facilities
Be concise, friendly and accurate. If you don't know something, suggest contacting support.`

type Chatbot interface {
	Reply(ctx context.Context, user *models.User, roomID *uint, message string) (string, error)
}

type fallbackReply struct {
	keywords []string
	reply    string
}

var chatFallbacks = []fallbackReply{
	{[]string{"book", "booking", "reserve"},
		"To book a room, open its details page, choose a start date and the number of months, and send the request. The owner will approve or reject it, and you'll get a notification either way."},
	{[]string{"price", "cost", "rate", "payment", "pay"},
		"Room prices are monthly and shown on each listing. Once your booking is approved you can generate an invoice (18% tax is added) and pay it securely online."},
	{[]string{"invoice", "bill", "receipt"},
		"Invoices are created from approved bookings. You can download the PDF from your invoices page and pay within 7 days of issue."},
	{[]string{"agreement", "contract", "terms"},
		"Rental terms are agreed between you and the owner. Check the room description and contact the owner for the specific agreement before paying."},
	{[]string{"location", "area", "nearby", "facilities"},
		"Each listing includes its location. You can filter rooms by location to find options in your preferred area."},
	{[]string{"cancel", "cancellation", "refund"},
		"You can cancel a booking while it is still pending. Once the owner approves it, please contact the owner about cancellation or refunds."},
	{[]string{"recommend", "suggest", "ai"},
		"Try the recommendations page: it suggests rooms based on the locations and prices of your past bookings."},
	{[]string{"help", "support", "contact"},
		"For more help, contact support or reach the room owner through the contact details on the listing."},
}

const chatDefaultReply = "I'm here to help with room details, bookings, invoices, payments and locations. What would you like to know?"

// fallbackChatReply answers from keyword rules.
func fallbackChatReply(message string) string {
	msg := strings.ToLower(message)
	for _, fb := range chatFallbacks {
		for _, kw := range fb.keywords {
			if strings.Contains(msg, kw) {
				return fb.reply
			}
		}
	}
	return chatDefaultReply
}

type AssistantChatbot struct {
	db  *gorm.DB
	llm Completer
}

func NewAssistantChatbot(db *gorm.DB, llm Completer) *AssistantChatbot {
	return &AssistantChatbot{db: db, llm: llm}
}

func (b *AssistantChatbot) Reply(ctx context.Context, user *models.User, roomID *uint, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", utils.Validation("message is required", nil)
	}
	if len(message) > maxChatMessage {
		return "", utils.Validation(fmt.Sprintf("message must be at most %d characters", maxChatMessage), nil)
	}

	prompt, err := b.prompt(ctx, user, roomID, message)
	if err != nil {
		return "", err
	}
	reply, err := b.llm.Complete(ctx, chatSystemPrompt, prompt, 300)
	if err != nil {
		if !errors.Is(err, ErrAIDisabled) {
			utils.Logger.WithError(err).Warn("chatbot completion failed, using fallback")
		}
		return fallbackChatReply(message), nil
	}
	return reply, nil
}

func (b *AssistantChatbot) prompt(ctx context.Context, user *models.User, roomID *uint, message string) (string, error) {
	var sb strings.Builder
	db := b.db.WithContext(ctx)

	if roomID != nil {
		var room models.Room
		if err := db.First(&room, *roomID).Error; err == nil {
			fmt.Fprintf(&sb, "Current room: %s\nLocation: %s\nPrice: %s per month\n", room.Title, room.Location, room.Price.StringFixed(2))
			if room.ContactPhone != "" || room.ContactEmail != "" {
				fmt.Fprintf(&sb, "Contact: %s %s\n", room.ContactPhone, room.ContactEmail)
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("load room %d: %w", *roomID, err)
		}
	}

	if user != nil {
		fmt.Fprintf(&sb, "User: %s\n", user.DisplayName())
		var bookings []models.Booking
		if err := db.Preload("Room").Where("user_id = ?", user.ID).
			Order("created_at DESC").Limit(5).Find(&bookings).Error; err != nil {
			return "", fmt.Errorf("load bookings: %w", err)
		}
		if len(bookings) > 0 {
			sb.WriteString("Recent bookings:\n")
			for _, bk := range bookings {
				fmt.Fprintf(&sb, "- %s (%s) - %s\n", bk.Room.Title, bk.Room.Location, bk.Status)
			}
		}
	}

	var rooms []models.Room
	if err := db.Order("created_at DESC").Limit(5).Find(&rooms).Error; err != nil {
		return "", fmt.Errorf("load rooms: %w", err)
	}
	if len(rooms) > 0 {
		sb.WriteString("Available rooms:\n")
		for _, r := range rooms {
			fmt.Fprintf(&sb, "- %s (%s) - %s\n", r.Title, r.Location, r.Price.StringFixed(2))
		}
	}

	fmt.Fprintf(&sb, "\nUser question: %s", message)
	return sb.String(), nil
}
