package handlers

import (
	"fmt"
	"net/http"

	"github.com/andresuchdata/stockbin/internal/auth"
	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/andresuchdata/stockbin/internal/service"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	teams    *service.TeamService
	resolver *auth.MembershipResolver
}

func NewSessionHandler(teams *service.TeamService, resolver *auth.MembershipResolver) *SessionHandler {
	return &SessionHandler{teams: teams, resolver: resolver}
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	s := session(c)
	c.JSON(http.StatusOK, gin.H{
		"user_id":  s.UserID,
		"email":    s.Email,
		"team_id":  s.TeamID,
		"has_team": s.TeamID != "",
	})
}

type createTeamRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *SessionHandler) CreateTeam(c *gin.Context) {
	s := session(c)
	if s.TeamID != "" {
		respondError(c, fmt.Errorf("%w: user already belongs to a team", domain.ErrValidation))
		return
	}

	var req createTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	membership, err := h.teams.CreateTeam(c.Request.Context(), s.UserID, s.Actor(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	if claims, ok := auth.ClaimsFrom(c); ok {
		h.resolver.Remember(c.Request.Context(), claims, membership)
	}
	s.TeamID = membership.TeamID
	auth.SetSession(c, s)

	c.JSON(http.StatusCreated, membership)
}
