package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "pomodoro/timer/internal/errors"
	"pomodoro/timer/internal/service"
)

const defaultDailyDays = 7

type TimerHandler struct {
	timer *service.TimerService
}

func NewTimerHandler(timer *service.TimerService) *TimerHandler {
	return &TimerHandler{timer: timer}
}

func (h *TimerHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.timer.State()})
}

func (h *TimerHandler) Start(c *gin.Context) {
	h.respond(c, h.timer.Start)
}

func (h *TimerHandler) Pause(c *gin.Context) {
	h.respond(c, h.timer.Pause)
}

func (h *TimerHandler) Resume(c *gin.Context) {
	h.respond(c, h.timer.Resume)
}

func (h *TimerHandler) Stop(c *gin.Context) {
	h.respond(c, h.timer.Stop)
}

func (h *TimerHandler) Skip(c *gin.Context) {
	h.respond(c, func() (service.StateView, error) {
		return h.timer.Skip(c.Request.Context())
	})
}

func (h *TimerHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"settings": h.timer.Settings()})
}

// UpdateSettings overlays the request body on the current settings, so
// clients may send only the fields they change.
func (h *TimerHandler) UpdateSettings(c *gin.Context) {
	candidate := h.timer.Settings()
	if err := c.ShouldBindJSON(&candidate); err != nil {
		invalidJSON(c)
		return
	}

	updated, err := h.timer.UpdateSettings(candidate)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": updated})
}

func (h *TimerHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stats": h.timer.Stats()})
}

func (h *TimerHandler) GetDaily(c *gin.Context) {
	days := defaultDailyDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(c, apperrors.BadRequest("invalid_days", "days must be an integer"))
			return
		}
		days = parsed
	}

	counts, err := h.timer.Daily(days)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": counts})
}

func (h *TimerHandler) respond(c *gin.Context, fn func() (service.StateView, error)) {
	state, err := fn()
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}
