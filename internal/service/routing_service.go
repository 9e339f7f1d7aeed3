package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spec-kit/civic-report-service/internal/authz"
	"github.com/spec-kit/civic-report-service/internal/domain"
	"github.com/spec-kit/civic-report-service/internal/events"
	"github.com/spec-kit/civic-report-service/internal/repository"
	apperrors "github.com/spec-kit/civic-report-service/pkg/util"
)

// RoutingService owns team selection and team administration.
type RoutingService struct {
	teams      repository.TeamRepository
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// RoutingDependencies bundles collaborators.
type RoutingDependencies struct {
	TeamRepo   repository.TeamRepository
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// TeamInput describes team create/update payloads.
type TeamInput struct {
	Name        string
	Description string
	CategoryIDs []string
	DistrictIDs []string
}

// NewRoutingService constructs the service.
func NewRoutingService(deps RoutingDependencies) *RoutingService {
	return &RoutingService{
		teams:      deps.TeamRepo,
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Route selects the team covering the category and district. A single
// explicit match wins; zero or multiple matches route to the fallback
// team, which always exists.
func (s *RoutingService) Route(ctx context.Context, categoryID, districtID string) (*domain.Team, error) {
	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	var match *domain.Team
	matches := 0
	for i := range teams {
		if teams[i].Matches(categoryID, districtID) {
			match = &teams[i]
			matches++
		}
	}
	if matches == 1 {
		return match, nil
	}

	fallback, err := s.teams.GetFallback(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return fallback, nil
}

// Reassign moves a ticket to another team. This is a manager override,
// not a status transition: no audit log entry is written, but the new
// team's members are notified.
func (s *RoutingService) Reassign(ctx context.Context, actor *domain.User, ticketID, teamID string) (*domain.Ticket, error) {
	if err := authz.Authorize(actor, authz.ActionReassignTicket, authz.Resource{}); err != nil {
		return nil, err
	}
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket.TeamID = &team.ID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		ActorID:  &actor.ID,
		Payload: events.TicketAssignedPayload{
			TeamID: team.ID,
			Title:  ticket.Title,
		},
	})
	return ticket, nil
}

// CreateTeam registers a new support team. The fallback team is seeded
// at deployment and never created through this path.
func (s *RoutingService) CreateTeam(ctx context.Context, actor *domain.User, input TeamInput) (*domain.Team, error) {
	if err := authz.Authorize(actor, authz.ActionManageTeams, authz.Resource{}); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("team name required", nil)
	}

	team := &domain.Team{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		IsFallback:  false,
		CategoryIDs: input.CategoryIDs,
		DistrictIDs: input.DistrictIDs,
	}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, apperrors.MapError(err)
	}
	return team, nil
}

// UpdateTeam changes a team's name and coverage sets.
func (s *RoutingService) UpdateTeam(ctx context.Context, actor *domain.User, teamID string, input TeamInput) (*domain.Team, error) {
	if err := authz.Authorize(actor, authz.ActionManageTeams, authz.Resource{}); err != nil {
		return nil, err
	}
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		team.Name = name
	}
	team.Description = strings.TrimSpace(input.Description)
	team.CategoryIDs = input.CategoryIDs
	team.DistrictIDs = input.DistrictIDs
	if err := s.teams.Update(ctx, team); err != nil {
		return nil, apperrors.MapError(err)
	}
	return team, nil
}

// DeleteTeam removes a team, re-routing its tickets and members to the
// fallback team. Deleting the fallback team itself is rejected.
func (s *RoutingService) DeleteTeam(ctx context.Context, actor *domain.User, teamID string) error {
	if err := authz.Authorize(actor, authz.ActionManageTeams, authz.Resource{}); err != nil {
		return err
	}
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if team.IsFallback {
		return apperrors.NewProtectedResource("fallback team cannot be deleted")
	}

	fallback, err := s.teams.GetFallback(ctx)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if _, err := s.tickets.ReassignTeam(ctx, team.ID, fallback.ID); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.users.ClearTeam(ctx, team.ID); err != nil {
		return apperrors.MapError(err)
	}
	return apperrors.MapError(s.teams.Delete(ctx, team.ID))
}

// GetTeam fetches a team.
func (s *RoutingService) GetTeam(ctx context.Context, teamID string) (*domain.Team, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return team, nil
}

// ListTeams returns all teams.
func (s *RoutingService) ListTeams(ctx context.Context) ([]domain.Team, error) {
	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return teams, nil
}

func (s *RoutingService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
