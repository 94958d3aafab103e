package handlers

import (
	"github.com/andresuchdata/stockbin/internal/service"
	"github.com/gin-gonic/gin"
)

type CommandHandler struct {
	commands      *service.CommandService
	confirmations *service.ConfirmationService
}

func NewCommandHandler(commands *service.CommandService, confirmations *service.ConfirmationService) *CommandHandler {
	return &CommandHandler{commands: commands, confirmations: confirmations}
}

type commandRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *CommandHandler) Stock(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.commands.RunStockCommand(c.Request.Context(), session(c), req.Text)
	respondResult(c, res, err)
}

func (h *CommandHandler) Bin(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.commands.RunBinCommand(c.Request.Context(), session(c), req.Text)
	respondResult(c, res, err)
}

type confirmRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

func (h *CommandHandler) Confirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.confirmations.Resolve(c.Request.Context(), session(c), c.Param("token"), *req.Accept)
	respondResult(c, res, err)
}
