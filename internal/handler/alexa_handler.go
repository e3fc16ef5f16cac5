package handler

import (
	"net/http"

	"Care_Community/internal/voice"

	"github.com/gin-gonic/gin"
)

// AlexaHandler 语音平台 webhook，始终返回 200
type AlexaHandler struct {
	dispatcher *voice.Dispatcher
}

func NewAlexaHandler(d *voice.Dispatcher) *AlexaHandler {
	return &AlexaHandler{dispatcher: d}
}

func (h *AlexaHandler) Actions(c *gin.Context) {
	var env voice.Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		c.JSON(http.StatusOK, h.dispatcher.Handle(c.Request.Context(), nil))
		return
	}
	c.JSON(http.StatusOK, h.dispatcher.Handle(c.Request.Context(), &env))
}
