package app

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/vnkhanh/rental-server/config"
	"github.com/vnkhanh/rental-server/controllers"
	"github.com/vnkhanh/rental-server/middleware"
	"github.com/vnkhanh/rental-server/routes"
	"github.com/vnkhanh/rental-server/services"
	"github.com/vnkhanh/rental-server/utils"
)

// Deps are the external collaborators. Tests swap in fakes.
type Deps struct {
	DB          *gorm.DB
	Gateway     services.PaymentGateway
	Mailer      services.Mailer
	SMS         services.SMSSender
	PDFStore    services.PDFStore
	Renderer    services.InvoiceRenderer
	Images      services.ImageStore
	LLM         services.Completer
	Currency    string
	CallbackURL string
	CORSOrigins []string
}

type App struct {
	Router        *gin.Engine
	Notifications *services.NotificationService
	Bookings      *services.BookingService
	Invoices      *services.InvoiceService
	Payments      *services.PaymentService
	Rooms         *services.RoomService
	Users         *services.UserService

	limiters *middleware.Limiters
}

// DepsFromConfig builds real integrations, falling back to local or no-op
// implementations for anything not configured.
func DepsFromConfig(cfg *config.Config, db *gorm.DB) Deps {
	d := Deps{
		DB:          db,
		Gateway:     services.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret),
		Mailer:      services.LogMailer{},
		SMS:         services.NopSMS{},
		PDFStore:    services.NewLocalPDFStore(cfg.PDFDir),
		Renderer:    services.FPDFRenderer{Currency: cfg.Currency},
		LLM:         services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel),
		Currency:    cfg.Currency,
		CallbackURL: cfg.CallbackURL,
		CORSOrigins: cfg.CORSOrigins,
	}
	if cfg.SendGridAPIKey != "" {
		d.Mailer = services.NewSendGridMailer(cfg.SendGridAPIKey, cfg.SendGridFrom, cfg.SendGridSandbox)
	}
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		d.SMS = services.NewTwilioSMS(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom)
	}
	if storage := utils.NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket); storage != nil {
		d.PDFStore = services.NewSupabasePDFStore(storage)
		d.Images = storage
	}
	return d
}

func New(d Deps) *App {
	notifications := services.NewNotificationService(d.DB)
	bookings := services.NewBookingService(d.DB, notifications, d.Mailer, d.SMS)
	invoices := services.NewInvoiceService(d.DB, d.Renderer, d.PDFStore, notifications)
	payments := services.NewPaymentService(d.DB, d.Gateway, notifications, d.Mailer, d.Currency, d.CallbackURL)
	rooms := services.NewRoomService(d.DB, d.Images)
	users := services.NewUserService(d.DB)

	predictor := services.NewLocationPricePredictor(d.DB)
	handlers := routes.Handlers{
		Auth:          controllers.NewAuthController(users),
		Rooms:         controllers.NewRoomController(rooms, predictor),
		Bookings:      controllers.NewBookingController(bookings),
		Invoices:      controllers.NewInvoiceController(invoices, services.NewExportService(invoices)),
		Payments:      controllers.NewPaymentController(payments),
		Notifications: controllers.NewNotificationController(notifications),
		AI: controllers.NewAIController(
			rooms,
			predictor,
			services.NewHistoryRecommender(d.DB),
			services.NewAssistantChatbot(d.DB, d.LLM),
			services.NewNegotiationAssistant(d.DB, predictor, d.LLM),
			services.NewRentalAgreementGenerator(d.DB, d.LLM, d.Currency),
		),
	}

	r := gin.Default()
	r.Use(middleware.RequestID())
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if err := r.SetTrustedProxies(nil); err != nil {
		panic(err)
	}
	r.GET("/", func(c *gin.Context) {
		c.String(200, "Rental server is running")
	})

	limiters := middleware.NewLimiters()
	routes.SetupRoutes(r, d.DB, handlers, limiters)

	return &App{
		Router:        r,
		Notifications: notifications,
		Bookings:      bookings,
		Invoices:      invoices,
		Payments:      payments,
		Rooms:         rooms,
		Users:         users,
		limiters:      limiters,
	}
}

// Close stops background goroutines owned by the router.
func (a *App) Close() {
	a.limiters.Stop()
}

// StartScheduler runs the overdue-invoice sweep on the given schedule (standard 5-field cron).
func (a *App) StartScheduler(schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := a.Invoices.MarkOverdue(ctx, time.Now()); err != nil {
			utils.Logger.WithError(err).Error("overdue invoice sweep failed")
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
