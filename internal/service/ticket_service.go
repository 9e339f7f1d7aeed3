package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spec-kit/civic-report-service/internal/authz"
	"github.com/spec-kit/civic-report-service/internal/domain"
	"github.com/spec-kit/civic-report-service/internal/events"
	"github.com/spec-kit/civic-report-service/internal/geo"
	"github.com/spec-kit/civic-report-service/internal/repository"
	apperrors "github.com/spec-kit/civic-report-service/pkg/util"
)

// allowedTransitions is the ticket lifecycle. CLOSED is terminal; the
// ESCALATED -> NEW edge exists only for escalation-rejection reverts.
var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusNew:        {domain.TicketStatusInProgress, domain.TicketStatusEscalated},
	domain.TicketStatusInProgress: {domain.TicketStatusResolved, domain.TicketStatusEscalated},
	domain.TicketStatusResolved:   {domain.TicketStatusClosed, domain.TicketStatusInProgress},
	domain.TicketStatusEscalated:  {domain.TicketStatusInProgress, domain.TicketStatusNew},
	domain.TicketStatusClosed:     {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// TicketService coordinates the ticket lifecycle.
type TicketService struct {
	tickets    repository.TicketRepository
	statusLogs repository.StatusLogRepository
	categories repository.CategoryRepository
	districts  repository.DistrictRepository
	comments   repository.CommentRepository
	photos     repository.PhotoRepository
	router     *RoutingService
	dispatcher events.Dispatcher
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo    repository.TicketRepository
	StatusLogRepo repository.StatusLogRepository
	CategoryRepo  repository.CategoryRepository
	DistrictRepo  repository.DistrictRepository
	CommentRepo   repository.CommentRepository
	PhotoRepo     repository.PhotoRepository
	Router        *RoutingService
	Dispatcher    events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	CategoryID  string
	Latitude    float64
	Longitude   float64
	Address     string
	DistrictID  string
}

// NearbyTicket pairs a ticket with its distance from the query point.
type NearbyTicket struct {
	Ticket   domain.Ticket
	Distance float64
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		statusLogs: deps.StatusLogRepo,
		categories: deps.CategoryRepo,
		districts:  deps.DistrictRepo,
		comments:   deps.CommentRepo,
		photos:     deps.PhotoRepo,
		router:     deps.Router,
		dispatcher: deps.Dispatcher,
		now:        time.Now,
	}
}

// Create reports a new issue: the zero-to-NEW transition. The ticket is
// routed to a team, the creation audit entry is written with a nil old
// status, and the routed team's members are notified.
func (s *TicketService) Create(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if err := authz.Authorize(actor, authz.ActionCreateTicket, authz.Resource{}); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}

	category, err := s.categories.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !category.IsActive {
		return nil, apperrors.NewValidationError("category inactive", map[string]any{"category_id": category.ID})
	}
	district, err := s.districts.GetByID(ctx, input.DistrictID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	team, err := s.router.Route(ctx, category.ID, district.ID)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusNew,
		CategoryID:  category.ID,
		Location: domain.Location{
			Latitude:   input.Latitude,
			Longitude:  input.Longitude,
			Address:    strings.TrimSpace(input.Address),
			DistrictID: district.ID,
			City:       district.City,
		},
		ReporterID: actor.ID,
		TeamID:     &team.ID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	entry := &domain.StatusLog{
		TicketID:  ticket.ID,
		OldStatus: nil,
		NewStatus: domain.TicketStatusNew,
		ActorID:   &actor.ID,
	}
	if err := s.statusLogs.Create(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  &actor.ID,
		Payload: events.TicketCreatedPayload{
			Title:      ticket.Title,
			CategoryID: ticket.CategoryID,
			DistrictID: ticket.Location.DistrictID,
			ReporterID: ticket.ReporterID,
			TeamID:     ticket.TeamID,
		},
	})
	return ticket, nil
}

// Transition moves a ticket along the lifecycle on behalf of a staff
// actor. Illegal edges are rejected before any write.
func (s *TicketService) Transition(ctx context.Context, actor *domain.User, ticketID string, newStatus domain.TicketStatus, comment string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := authz.Authorize(actor, authz.ActionUpdateStatus, authz.TicketResource(ticket)); err != nil {
		return nil, err
	}
	return s.applyTransition(ctx, ticket, newStatus, &actor.ID, comment)
}

// ApplyReviewedTransition applies a transition on behalf of the
// escalation workflow, which performs its own authorization. A nil
// actorID records a system-initiated change.
func (s *TicketService) ApplyReviewedTransition(ctx context.Context, ticketID string, newStatus domain.TicketStatus, actorID *string, comment string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.applyTransition(ctx, ticket, newStatus, actorID, comment)
}

func (s *TicketService) applyTransition(ctx context.Context, ticket *domain.Ticket, newStatus domain.TicketStatus, actorID *string, comment string) (*domain.Ticket, error) {
	if !isValidTransition(ticket.Status, newStatus) {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(newStatus))
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	if newStatus.IsResolvedLike() {
		now := s.now()
		ticket.ResolvedAt = &now
	} else {
		ticket.ResolvedAt = nil
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	entry := &domain.StatusLog{
		TicketID:  ticket.ID,
		OldStatus: &oldStatus,
		NewStatus: newStatus,
		ActorID:   actorID,
		Comment:   comment,
	}
	if err := s.statusLogs.Create(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		ActorID:  actorID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus:  oldStatus,
			NewStatus:  newStatus,
			ReporterID: ticket.ReporterID,
			Comment:    comment,
		},
	})
	return ticket, nil
}

// Follow subscribes a citizen to ticket updates. Reporters are
// implicitly interested and cannot follow their own tickets.
func (s *TicketService) Follow(ctx context.Context, actor *domain.User, ticketID string) error {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := authz.Authorize(actor, authz.ActionFollowTicket, authz.TicketResource(ticket)); err != nil {
		return err
	}
	return apperrors.MapError(s.tickets.AddFollower(ctx, ticket.ID, actor.ID))
}

// Unfollow removes a follow subscription.
func (s *TicketService) Unfollow(ctx context.Context, actor *domain.User, ticketID string) error {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := authz.Authorize(actor, authz.ActionFollowTicket, authz.TicketResource(ticket)); err != nil {
		return err
	}
	return apperrors.MapError(s.tickets.RemoveFollower(ctx, ticket.ID, actor.ID))
}

// AddComment appends a message to the ticket thread.
func (s *TicketService) AddComment(ctx context.Context, actor *domain.User, ticketID, body string, isInternal bool) (*domain.Comment, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	action := authz.ActionCreateComment
	if isInternal {
		action = authz.ActionCreateInternalComment
	}
	if err := authz.Authorize(actor, action, authz.TicketResource(ticket)); err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("comment body required", nil)
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		AuthorID:   actor.ID,
		Body:       body,
		IsInternal: isInternal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.tickets.IncrementCommentCount(ctx, ticket.ID); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticket.ID,
		ActorID:  &actor.ID,
		Payload: events.CommentAddedPayload{
			CommentID:  comment.ID,
			ReporterID: ticket.ReporterID,
			IsInternal: comment.IsInternal,
			Preview:    stringPreview(comment.Body, 120),
		},
	})
	return comment, nil
}

// ListComments returns the thread; internal notes only for staff.
func (s *TicketService) ListComments(ctx context.Context, actor *domain.User, ticketID string) ([]domain.Comment, error) {
	includeInternal := authz.Authorize(actor, authz.ActionViewInternalComments, authz.Resource{}) == nil
	comments, err := s.comments.ListByTicket(ctx, ticketID, includeInternal)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

// AddPhoto records photo metadata for a ticket.
func (s *TicketService) AddPhoto(ctx context.Context, actor *domain.User, ticketID, storageKey, mimeType string, photoType domain.PhotoType) (*domain.TicketPhoto, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if strings.TrimSpace(storageKey) == "" {
		return nil, apperrors.NewValidationError("storage_key required", nil)
	}
	if photoType != domain.PhotoTypeReport && photoType != domain.PhotoTypeResolution {
		return nil, apperrors.NewValidationError("unknown photo type", map[string]any{"photo_type": photoType})
	}

	photo := &domain.TicketPhoto{
		TicketID:   ticket.ID,
		UploaderID: actor.ID,
		StorageKey: storageKey,
		MimeType:   mimeType,
		Type:       photoType,
	}
	if err := s.photos.Create(ctx, photo); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.tickets.IncrementPhotoCount(ctx, ticket.ID); err != nil {
		return nil, apperrors.MapError(err)
	}
	return photo, nil
}

// Get fetches a single ticket.
func (s *TicketService) Get(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// List returns tickets matching the filter.
func (s *TicketService) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// History returns the transition audit trail for a ticket.
func (s *TicketService) History(ctx context.Context, ticketID string) ([]domain.StatusLog, error) {
	logs, err := s.statusLogs.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return logs, nil
}

// FindNearby returns non-closed tickets within radiusMeters of the
// point, nearest first. A bounding box prefilter narrows the scan; the
// haversine distance decides membership.
func (s *TicketService) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, categoryID *string) ([]NearbyTicket, error) {
	if radiusMeters <= 0 {
		return nil, apperrors.NewValidationError("radius must be positive", nil)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, apperrors.NewValidationError("coordinates out of range", nil)
	}

	box := geo.NewBoundingBox(lat, lon, radiusMeters)
	candidates, err := s.tickets.ListOpenInBox(ctx, box, categoryID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	var result []NearbyTicket
	for i := range candidates {
		d := geo.Haversine(lat, lon, candidates[i].Location.Latitude, candidates[i].Location.Longitude)
		if d <= radiusMeters {
			result = append(result, NearbyTicket{Ticket: candidates[i], Distance: d})
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Distance < result[j].Distance
	})
	return result, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
