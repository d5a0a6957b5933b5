package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/rental-server/dtos"
	"github.com/vnkhanh/rental-server/middleware"
	"github.com/vnkhanh/rental-server/models"
	"github.com/vnkhanh/rental-server/services"
	"github.com/vnkhanh/rental-server/utils"
)

type AIController struct {
	rooms       *services.RoomService
	predictor   services.PricePredictor
	recommender services.Recommender
	chatbot     services.Chatbot
	negotiator  services.Negotiator
	agreements  services.AgreementGenerator
}

func NewAIController(
	rooms *services.RoomService,
	predictor services.PricePredictor,
	recommender services.Recommender,
	chatbot services.Chatbot,
	negotiator services.Negotiator,
	agreements services.AgreementGenerator,
) *AIController {
	return &AIController{
		rooms:       rooms,
		predictor:   predictor,
		recommender: recommender,
		chatbot:     chatbot,
		negotiator:  negotiator,
		agreements:  agreements,
	}
}

// POST /api/ml/predict-price/
func (ctl *AIController) PredictPrice(c *gin.Context) {
	var req dtos.PredictPriceRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := ctl.rooms.GetRoom(c.Request.Context(), req.RoomID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	price, err := ctl.predictor.PredictPrice(c.Request.Context(), room)
	if err != nil {
		utils.RespondError(c, utils.DependencyFailure("Price prediction failed", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"room_id":         room.ID,
		"current_price":   room.Price.StringFixed(2),
		"predicted_price": price.StringFixed(2),
	})
}

// GET /api/ml/recommendations/?limit=
func (ctl *AIController) Recommendations(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultRecommendations)))
	if limit <= 0 || limit > 50 {
		limit = services.DefaultRecommendations
	}

	ids, err := ctl.recommender.Recommend(c.Request.Context(), u.ID, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	rooms := make([]dtos.RoomResponse, 0, len(ids))
	for _, id := range ids {
		room, err := ctl.rooms.GetRoom(c.Request.Context(), id)
		if err != nil {
			continue
		}
		rooms = append(rooms, dtos.NewRoomResponse(*room))
	}
	c.JSON(http.StatusOK, gin.H{"room_ids": ids, "rooms": rooms})
}

// POST /api/chatbot/message/  (OptionalAuth)
func (ctl *AIController) ChatMessage(c *gin.Context) {
	var req dtos.ChatRequest
	if !bindJSON(c, &req) {
		return
	}
	var user *models.User
	if u, ok := middleware.CurrentUser(c); ok {
		user = &u
	}
	reply, err := ctl.chatbot.Reply(c.Request.Context(), user, req.RoomID, req.Message)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// POST /api/negotiation/analyze/
func (ctl *AIController) AnalyzeNegotiation(c *gin.Context) {
	var req dtos.NegotiationRequest
	if !bindJSON(c, &req) {
		return
	}
	analysis, err := ctl.negotiator.Analyze(c.Request.Context(), req.RoomID, req.OwnerMinPrice, req.TenantOffer, req.Tone)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// POST /api/generate-agreement/
func (ctl *AIController) GenerateAgreement(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req dtos.AgreementRequest
	if !bindJSON(c, &req) {
		return
	}
	agreement, err := ctl.agreements.Generate(c.Request.Context(), u, req.BookingID, req.AdditionalTerms)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, agreement)
}
