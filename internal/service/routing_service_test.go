package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/civic-report-service/internal/domain"
	apperrors "github.com/spec-kit/civic-report-service/pkg/util"
)

func TestRouteSingleMatchWins(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	roadTeam := env.teams.add(domain.Team{
		Name:        "Road Crew",
		CategoryIDs: []string{"cat-road"},
		DistrictIDs: []string{"dist-center"},
	})

	team, err := env.routingSvc.Route(ctx, "cat-road", "dist-center")
	require.NoError(t, err)
	assert.Equal(t, roadTeam.ID, team.ID)
}

func TestRouteZeroMatchesFallsBack(t *testing.T) {
	env := newTestEnv()
	team, err := env.routingSvc.Route(context.Background(), "cat-road", "dist-center")
	require.NoError(t, err)
	assert.True(t, team.IsFallback)
}

func TestRouteAmbiguousMatchFallsBack(t *testing.T) {
	env := newTestEnv()
	env.teams.add(domain.Team{
		Name:        "Road Crew A",
		CategoryIDs: []string{"cat-road"},
		DistrictIDs: []string{"dist-center"},
	})
	env.teams.add(domain.Team{
		Name:        "Road Crew B",
		CategoryIDs: []string{"cat-road"},
		DistrictIDs: []string{"dist-center"},
	})

	team, err := env.routingSvc.Route(context.Background(), "cat-road", "dist-center")
	require.NoError(t, err)
	assert.True(t, team.IsFallback, "ambiguous coverage routes to fallback")
}

func TestRoutePartialMatchDoesNotCount(t *testing.T) {
	env := newTestEnv()
	env.teams.add(domain.Team{
		Name:        "Road Crew",
		CategoryIDs: []string{"cat-road"},
		DistrictIDs: []string{"dist-north"},
	})

	team, err := env.routingSvc.Route(context.Background(), "cat-road", "dist-center")
	require.NoError(t, err)
	assert.True(t, team.IsFallback, "category match without district match is no match")
}

func TestDeleteTeamCascadesToFallback(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	team := env.teams.add(domain.Team{Name: "Parks"})
	member := env.users.add(domain.User{Name: "Ranger", Role: domain.RoleSupport, TeamID: &team.ID, Active: true})
	ticket := env.seedTicket(domain.TicketStatusNew, func(tk *domain.Ticket) {
		tk.TeamID = &team.ID
	})

	require.NoError(t, env.routingSvc.DeleteTeam(ctx, env.manager, team.ID))

	movedTicket, err := env.tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, movedTicket.TeamID)
	assert.Equal(t, env.fallback.ID, *movedTicket.TeamID)

	movedUser, err := env.users.GetByID(ctx, member.ID)
	require.NoError(t, err)
	assert.Nil(t, movedUser.TeamID)

	_, err = env.routingSvc.GetTeam(ctx, team.ID)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestDeleteFallbackTeamRejected(t *testing.T) {
	env := newTestEnv()
	err := env.routingSvc.DeleteTeam(context.Background(), env.manager, env.fallback.ID)
	assert.True(t, apperrors.IsCode(err, "PROTECTED_RESOURCE"))
}

func TestTeamAdministrationManagerOnly(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.routingSvc.CreateTeam(ctx, env.support, TeamInput{Name: "Parks"})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	team, err := env.routingSvc.CreateTeam(ctx, env.manager, TeamInput{Name: "Parks"})
	require.NoError(t, err)
	assert.False(t, team.IsFallback)

	err = env.routingSvc.DeleteTeam(ctx, env.citizen, team.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestReassignTicket(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	team := env.teams.add(domain.Team{Name: "Parks"})
	ticket := env.seedTicket(domain.TicketStatusInProgress)

	updated, err := env.routingSvc.Reassign(ctx, env.manager, ticket.ID, team.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.TeamID)
	assert.Equal(t, team.ID, *updated.TeamID)

	// reassignment is not a lifecycle transition
	logs, err := env.ticketSvc.History(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)

	_, err = env.routingSvc.Reassign(ctx, env.support, ticket.ID, team.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}
