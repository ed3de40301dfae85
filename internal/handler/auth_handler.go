package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pomodoro/timer/internal/service"
)

type AuthHandler struct {
	tokens *service.TokenService
}

type tokenRequest struct {
	Secret  string `json:"secret"`
	Subject string `json:"subject"`
}

func NewAuthHandler(tokens *service.TokenService) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

func (h *AuthHandler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}

	token, err := h.tokens.Exchange(req.Secret, req.Subject)
	if err != nil {
		WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}
