package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type teamRepository struct {
	db *DB
}

func NewTeamRepository(db *DB) *teamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) GetMembership(ctx context.Context, userID string) (*domain.TeamMembership, error) {
	query := `
		SELECT m.team_id, t.name AS team_name, m.user_id, m.role
		FROM team_members m
		JOIN teams t ON t.id = m.team_id
		WHERE m.user_id = $1
	`
	var m domain.TeamMembership
	err := r.db.Do(ctx, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &m, query, userID)
	})
	if err != nil {
		return nil, translate(err, "team membership")
	}
	return &m, nil
}

func (r *teamRepository) CreateTeam(ctx context.Context, team *domain.Team, owner string) (*domain.TeamMembership, error) {
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx,
			`INSERT INTO teams (id, name, created_at) VALUES ($1, $2, NOW()) RETURNING created_at`,
			team.ID, team.Name,
		).Scan(&team.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert team: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO team_members (team_id, user_id, role, created_at) VALUES ($1, $2, 'owner', NOW())`,
			team.ID, owner,
		)
		return translate(err, "team membership")
	})
	if err != nil {
		return nil, err
	}
	return &domain.TeamMembership{TeamID: team.ID, TeamName: team.Name, UserID: owner, Role: "owner"}, nil
}
