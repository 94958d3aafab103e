package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/andresuchdata/stockbin/internal/service"
	"github.com/gin-gonic/gin"
)

type BinHandler struct {
	ledger *service.BinLedger
}

func NewBinHandler(ledger *service.BinLedger) *BinHandler {
	return &BinHandler{ledger: ledger}
}

func (h *BinHandler) Aggregate(c *gin.Context) {
	date, err := parseDate(c.Query("date"))
	if err != nil {
		badRequest(c, fmt.Errorf("invalid date: %w", err))
		return
	}
	agg, err := h.ledger.Aggregate(c.Request.Context(), session(c), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, agg.View())
}

func (h *BinHandler) History(c *gin.Context) {
	entries, err := h.ledger.History(c.Request.Context(), session(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *BinHandler) RecordMovement(c *gin.Context) {
	var in domain.MovementInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.ledger.RecordMovement(c.Request.Context(), session(c), in)
	respondResult(c, res, err)
}

func (h *BinHandler) PrepareEdit(c *gin.Context) {
	var in service.DirectEditInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.ledger.PrepareDirectEdit(c.Request.Context(), session(c), in)
	respondResult(c, res, err)
}

type statusCountRequest struct {
	BinTypeID string `json:"bin_type_id" binding:"required"`
	Status    string `json:"status" binding:"required"`
	Value     int    `json:"value"`
}

func (h *BinHandler) UpdateStatus(c *gin.Context) {
	var req statusCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.ledger.UpdateStatusCount(c.Request.Context(), session(c), req.Status, req.BinTypeID, req.Value)
	respondResult(c, res, err)
}

type noteRequest struct {
	Text string `json:"text"`
}

// SaveNote answers with the aggregate carrying the pending note; the write itself is debounced.
func (h *BinHandler) SaveNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s := session(c)
	h.ledger.SaveNote(s, req.Text)

	agg, err := h.ledger.Aggregate(c.Request.Context(), s, time.Time{})
	if err != nil {
		respondError(c, err)
		return
	}
	view := agg.View()
	c.JSON(http.StatusAccepted, service.Result{Message: "Note saved", Bins: &view})
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *BinHandler) AddParty(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.ledger.AddParty(c.Request.Context(), session(c), req.Name)
	respondResult(c, res, err)
}

func (h *BinHandler) RemoveParty(c *gin.Context) {
	res, err := h.ledger.PrepareRemoveParty(c.Request.Context(), session(c), c.Param("id"))
	respondResult(c, res, err)
}

func (h *BinHandler) AddBinType(c *gin.Context) {
	var in service.BinTypeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.ledger.AddBinType(c.Request.Context(), session(c), in)
	respondResult(c, res, err)
}

func (h *BinHandler) RemoveBinType(c *gin.Context) {
	res, err := h.ledger.RemoveBinType(c.Request.Context(), session(c), c.Param("id"))
	respondResult(c, res, err)
}

type binTypePatch struct {
	Color         *string `json:"color"`
	OwnedQuantity *int    `json:"owned_quantity"`
}

func (h *BinHandler) UpdateBinType(c *gin.Context) {
	var req binTypePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Color == nil && req.OwnedQuantity == nil {
		respondError(c, fmt.Errorf("%w: nothing to update", domain.ErrValidation))
		return
	}

	ctx, s, id := c.Request.Context(), session(c), c.Param("id")
	var (
		res *service.Result
		err error
	)
	if req.Color != nil {
		if res, err = h.ledger.UpdateBinTypeColor(ctx, s, id, *req.Color); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.OwnedQuantity != nil {
		res, err = h.ledger.UpdateOwnedQuantity(ctx, s, id, *req.OwnedQuantity)
	}
	respondResult(c, res, err)
}

type customTypeRequest struct {
	Name   string                  `json:"name" binding:"required"`
	Parent domain.MixedSubCategory `json:"parent" binding:"required"`
}

func (h *BinHandler) AddCustomType(c *gin.Context) {
	var req customTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.ledger.AddCustomBinType(c.Request.Context(), session(c), req.Name, req.Parent)
	respondResult(c, res, err)
}

func (h *BinHandler) RemoveCustomType(c *gin.Context) {
	res, err := h.ledger.RemoveCustomBinType(c.Request.Context(), session(c), c.Param("id"))
	respondResult(c, res, err)
}

type countRequest struct {
	Count *int `json:"count" binding:"required"`
}

func (h *BinHandler) UpdateCustomCount(c *gin.Context) {
	var req countRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.ledger.UpdateCustomCount(c.Request.Context(), session(c), c.Param("id"), *req.Count)
	respondResult(c, res, err)
}

type rolloverRequest struct {
	Date string `json:"date"`
}

func (h *BinHandler) Rollover(c *gin.Context) {
	var req rolloverRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		badRequest(c, fmt.Errorf("invalid date: %w", err))
		return
	}
	if date.IsZero() {
		date = time.Now()
	}
	res, err := h.ledger.Rollover(c.Request.Context(), session(c), date)
	respondResult(c, res, err)
}
