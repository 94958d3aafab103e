package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/andresuchdata/stockbin/internal/auth"
	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/andresuchdata/stockbin/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// statusFor maps the domain sentinels to HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, domain.ErrConfirmationExpired):
		return http.StatusGone, "Confirmation expired"
	case errors.Is(err, domain.ErrMalformedAIResponse):
		return http.StatusBadGateway, "Could not understand the command"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "Data store unavailable"
	case errors.Is(err, domain.ErrAIUnavailable):
		return http.StatusServiceUnavailable, "Command interpreter unavailable"
	case errors.Is(err, domain.ErrNoTeam):
		return http.StatusForbidden, "No team"
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, "Unauthenticated"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func respondError(c *gin.Context, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Int("status", status).Msg(message)
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}

// respondResult writes a mutation result; pending confirmations answer 409.
func respondResult(c *gin.Context, res *service.Result, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	if res.NeedsConfirmation() {
		c.JSON(http.StatusConflict, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
}

func session(c *gin.Context) domain.Session {
	s, _ := auth.SessionFrom(c)
	return s
}

// parseDate reads a YYYY-MM-DD value; empty means the zero time.
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(domain.DateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
