package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/andresuchdata/stockbin/internal/report"
	"github.com/andresuchdata/stockbin/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type StockHandler struct {
	stock    *service.StockService
	archiver *report.Archiver
}

// NewStockHandler builds the stock routes; archiver may be nil when object storage is off.
func NewStockHandler(stock *service.StockService, archiver *report.Archiver) *StockHandler {
	return &StockHandler{stock: stock, archiver: archiver}
}

func (h *StockHandler) List(c *gin.Context) {
	res, err := h.stock.List(c.Request.Context(), session(c))
	respondResult(c, res, err)
}

func (h *StockHandler) Suppliers(c *gin.Context) {
	res, err := h.stock.List(c.Request.Context(), session(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suppliers": res.Suppliers})
}

func (h *StockHandler) Add(c *gin.Context) {
	var in service.AddStockInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.stock.AddStock(c.Request.Context(), session(c), in)
	respondResult(c, res, err)
}

type updateStockRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

func (h *StockHandler) Update(c *gin.Context) {
	var req updateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.stock.UpdateStock(c.Request.Context(), session(c), service.UpdateStockInput{
		Name:  c.Param("name"),
		Field: req.Field,
		Value: req.Value,
	})
	respondResult(c, res, err)
}

func (h *StockHandler) NewDay(c *gin.Context) {
	res, err := h.stock.NewDay(c.Request.Context(), session(c))
	respondResult(c, res, err)
}

func (h *StockHandler) Activity(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = n
	}
	entries, err := h.stock.Activity(c.Request.Context(), session(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// Report returns JSON by default and an XLSX workbook for format=xlsx.
func (h *StockHandler) Report(c *gin.Context) {
	from, err := parseDate(c.Query("from"))
	if err != nil {
		badRequest(c, fmt.Errorf("invalid from date: %w", err))
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		badRequest(c, fmt.Errorf("invalid to date: %w", err))
		return
	}
	today := domain.Day(time.Now())
	if from.IsZero() {
		from = today
	}
	if to.IsZero() {
		to = today
	}

	s := session(c)
	rep, err := h.stock.Report(c.Request.Context(), s, domain.DateRange{From: from, To: to})
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") != "xlsx" {
		c.JSON(http.StatusOK, rep)
		return
	}

	data, err := report.XLSX(*rep)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.archiver != nil {
		if key, err := h.archiver.Archive(c.Request.Context(), s.TeamID, *rep, data); err != nil {
			log.Warn().Err(err).Str("team_id", s.TeamID).Msg("report: archive upload failed")
		} else {
			c.Header("X-Report-Archive", key)
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(*rep)))
	c.Data(http.StatusOK, report.ContentType, data)
}
