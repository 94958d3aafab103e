package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/andresuchdata/stockbin/internal/repository"
	"github.com/rs/zerolog/log"
)

type TeamService struct {
	repo            repository.TeamRepository
	ledger          *BinLedger
	defaultBinTypes []string
}

func NewTeamService(repo repository.TeamRepository, ledger *BinLedger, defaultBinTypes []string) *TeamService {
	return &TeamService{repo: repo, ledger: ledger, defaultBinTypes: defaultBinTypes}
}

// CreateTeam makes the user the owner of a new team and seeds the default bin types.
func (t *TeamService) CreateTeam(ctx context.Context, userID, actor, name string) (*domain.TeamMembership, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: team name is required", domain.ErrValidation)
	}

	membership, err := t.repo.CreateTeam(ctx, &domain.Team{Name: name}, userID)
	if err != nil {
		return nil, err
	}

	if t.ledger != nil && len(t.defaultBinTypes) > 0 {
		s := domain.Session{UserID: userID, Email: actor, TeamID: membership.TeamID}
		if _, err := t.ledger.SeedDefaultBinTypes(ctx, s, t.defaultBinTypes); err != nil {
			log.Warn().Err(err).Str("team_id", membership.TeamID).Msg("team: seeding default bin types failed")
		}
	}
	return membership, nil
}
