package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/rental-server/controllers"
	"github.com/vnkhanh/rental-server/middleware"
	"github.com/vnkhanh/rental-server/utils"
)

type Handlers struct {
	Auth          *controllers.AuthController
	Rooms         *controllers.RoomController
	Bookings      *controllers.BookingController
	Invoices      *controllers.InvoiceController
	Payments      *controllers.PaymentController
	Notifications *controllers.NotificationController
	AI            *controllers.AIController
}

func SetupRoutes(r *gin.Engine, db *gorm.DB, h Handlers, lim *middleware.Limiters) {
	utils.RegisterValidators()

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck(db))

	auth := middleware.AuthJWT(db)

	api := r.Group("/api")
	{
		api.POST("/auth/login/", h.Auth.Login)

		api.GET("/rooms/", h.Rooms.ListRooms)
		api.GET("/rooms/:id/", h.Rooms.GetRoomDetail)

		// gateway redirect, authenticated by signature
		api.POST("/payments/razorpay/callback/", middleware.RateLimitByIP(lim.Callback), h.Payments.RazorpayCallback)

		api.POST("/chatbot/message/", middleware.RateLimitByIP(lim.Chatbot), middleware.OptionalAuth(db), h.AI.ChatMessage)
		api.POST("/ml/predict-price/", h.AI.PredictPrice)
	}

	protected := api.Group("/")
	protected.Use(auth)
	{
		protected.GET("/user/", h.Auth.Me)
		protected.GET("/profile/", h.Auth.GetProfile)
		protected.PUT("/profile/", h.Auth.UpdateProfile)

		owner := protected.Group("/owner/rooms")
		{
			owner.GET("/", h.Rooms.ListMyRooms)
			owner.POST("/", h.Rooms.CreateRoom)
			owner.PUT("/:id/", middleware.CheckRoomOwner(db), h.Rooms.UpdateRoom)
			owner.DELETE("/:id/", middleware.CheckRoomOwner(db), h.Rooms.DeleteRoom)
			owner.POST("/:id/image/", middleware.CheckRoomOwner(db), h.Rooms.UploadRoomImage)
		}

		bookings := protected.Group("/bookings")
		{
			bookings.POST("/add/", middleware.RateLimitByIP(lim.BookingCreate), h.Bookings.CreateBooking)
			bookings.GET("/my/", h.Bookings.MyBookings)
			bookings.GET("/received/", h.Bookings.ReceivedBookings)
			bookings.PUT("/approve/:id/", h.Bookings.ApproveBooking)
			bookings.PUT("/reject/:id/", h.Bookings.RejectBooking)
			bookings.PUT("/cancel/:id/", h.Bookings.CancelBooking)
		}

		invoices := protected.Group("/invoices")
		{
			invoices.GET("/", h.Invoices.ListInvoices)
			invoices.GET("/export/", h.Invoices.ExportInvoices)
			invoices.POST("/create/:booking_id/", h.Invoices.CreateInvoice)
			invoices.GET("/:id/download/", h.Invoices.DownloadInvoice)
		}

		payments := protected.Group("/payments")
		{
			payments.GET("/", h.Payments.ListPayments)
			payments.POST("/process/", middleware.RateLimitByIP(lim.Payment), h.Payments.ProcessPayment)
			payments.POST("/razorpay/failure/", middleware.RateLimitByIP(lim.Payment), h.Payments.RazorpayFailure)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("/", h.Notifications.List)
			notifications.GET("/unread-count/", h.Notifications.UnreadCount)
			notifications.PUT("/read-all/", h.Notifications.MarkAllRead)
			notifications.PUT("/:id/read/", h.Notifications.MarkRead)
		}

		admin := protected.Group("/admin", middleware.RequireStaff())
		{
			admin.POST("/invoices/mark-overdue/", h.Invoices.MarkOverdue)
		}

		protected.GET("/ml/recommendations/", h.AI.Recommendations)
		protected.POST("/negotiation/analyze/", h.AI.AnalyzeNegotiation)
		protected.POST("/generate-agreement/", middleware.RateLimitByIP(lim.Chatbot), h.AI.GenerateAgreement)
	}
}
