package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shoply-backend-go/internal/core"
)

// ChatbotHandler handles the authenticated user's chatbots.
type ChatbotHandler struct {
	chatbotService core.ChatbotService
}

// NewChatbotHandler creates a new ChatbotHandler.
func NewChatbotHandler(chatbotService core.ChatbotService) *ChatbotHandler {
	return &ChatbotHandler{chatbotService: chatbotService}
}

// CreateChatbot handles POST /api/v1/chatbots.
func (h *ChatbotHandler) CreateChatbot(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateChatbotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	bot, err := h.chatbotService.Create(c.Request.Context(), uid, core.CreateChatbotInput{
		Name:              req.Name,
		Description:       req.Description,
		Model:             req.Model,
		Language:          req.Language,
		Tone:              req.Tone,
		Personality:       req.Personality,
		MaxResponseLength: req.MaxResponseLength,
		Temperature:       req.Temperature,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bot)
}

// ListChatbots handles GET /api/v1/chatbots for the authenticated user.
func (h *ChatbotHandler) ListChatbots(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	bots, err := h.chatbotService.ListByUser(c.Request.Context(), uid)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, bots)
}

// GetChatbot handles GET /api/v1/chatbots/:chatbotId. Another user's chatbot
// is indistinguishable from a missing one.
func (h *ChatbotHandler) GetChatbot(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	bot, err := h.chatbotService.GetByID(c.Request.Context(), c.Param("chatbotId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if bot.UserID != uid {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "chatbot not found"})
		return
	}
	c.JSON(http.StatusOK, bot)
}

// UpdateChatbot handles PUT /api/v1/chatbots/:chatbotId.
func (h *ChatbotHandler) UpdateChatbot(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	chatbotID := c.Param("chatbotId")

	existing, err := h.chatbotService.GetByID(c.Request.Context(), chatbotID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if existing.UserID != uid {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "chatbot not found"})
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	bot, err := h.chatbotService.Update(c.Request.Context(), chatbotID, updates)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, bot)
}
