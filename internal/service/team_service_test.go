package service

import (
	"context"
	"testing"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTeamSeedsDefaultBinTypes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teams := NewTeamService(f.store, f.ledger, []string{"Chep Plastic", "Loscam"})

	membership, err := teams.CreateTeam(ctx, "user-7", "new@example.com", "  Night Shift ")
	require.NoError(t, err)
	assert.Equal(t, "Night Shift", membership.TeamName)
	assert.Equal(t, "owner", membership.Role)

	types, err := f.store.ListBinTypes(ctx, membership.TeamID)
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "Chep Plastic", types[0].Name)

	stored, err := f.store.GetMembership(ctx, "user-7")
	require.NoError(t, err)
	assert.Equal(t, membership.TeamID, stored.TeamID)
}

func TestCreateTeamValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teams := NewTeamService(f.store, nil, nil)

	_, err := teams.CreateTeam(ctx, "user-7", "new@example.com", " ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = teams.CreateTeam(ctx, "user-7", "new@example.com", "Day Shift")
	require.NoError(t, err)
	_, err = teams.CreateTeam(ctx, "user-7", "new@example.com", "Second Team")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
