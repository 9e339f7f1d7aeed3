package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/civic-report-service/internal/domain"
	"github.com/spec-kit/civic-report-service/internal/events"
	"github.com/spec-kit/civic-report-service/internal/geo"
	"github.com/spec-kit/civic-report-service/internal/repository"
)

// In-memory repository fakes. They honor the same pgx.ErrNoRows
// contract as the real repositories so services behave identically.

type idSource struct {
	mu   sync.Mutex
	next int
}

func (s *idSource) newID(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%s-%d", prefix, s.next)
}

var ids idSource

type fakeTicketRepo struct {
	mu        sync.Mutex
	tickets   map[string]*domain.Ticket
	followers map[string]map[string]bool

	// when set, Update fails with this error
	updateErr error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets:   make(map[string]*domain.Ticket),
		followers: make(map[string]map[string]bool),
	}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket.ID = ids.newID("ticket")
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}
	ticket.UpdatedAt = ticket.CreatedAt
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.CategoryID != nil && ticket.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.DistrictID != nil && ticket.Location.DistrictID != *filter.DistrictID {
			continue
		}
		if filter.TeamID != nil && (ticket.TeamID == nil || *ticket.TeamID != *filter.TeamID) {
			continue
		}
		if filter.ReporterID != nil && ticket.ReporterID != *filter.ReporterID {
			continue
		}
		if len(filter.Statuses) > 0 && !statusIn(ticket.Status, filter.Statuses) {
			continue
		}
		result = append(result, *ticket)
	}
	return result, nil
}

func (r *fakeTicketRepo) ListCreatedSince(_ context.Context, since time.Time) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if !ticket.CreatedAt.Before(since) {
			result = append(result, *ticket)
		}
	}
	return result, nil
}

func (r *fakeTicketRepo) ListOpenInBox(_ context.Context, box geo.BoundingBox, categoryID *string) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.Status == domain.TicketStatusClosed {
			continue
		}
		if categoryID != nil && ticket.CategoryID != *categoryID {
			continue
		}
		lat, lon := ticket.Location.Latitude, ticket.Location.Longitude
		if lat < box.MinLat || lat > box.MaxLat || lon < box.MinLon || lon > box.MaxLon {
			continue
		}
		result = append(result, *ticket)
	}
	return result, nil
}

func (r *fakeTicketRepo) ReassignTeam(_ context.Context, fromTeamID, toTeamID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var moved int64
	for _, ticket := range r.tickets {
		if ticket.TeamID != nil && *ticket.TeamID == fromTeamID {
			to := toTeamID
			ticket.TeamID = &to
			moved++
		}
	}
	return moved, nil
}

func (r *fakeTicketRepo) CountByCategory(_ context.Context, categoryID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, ticket := range r.tickets {
		if ticket.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (r *fakeTicketRepo) AddFollower(_ context.Context, ticketID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.followers[ticketID]
	if !ok {
		set = make(map[string]bool)
		r.followers[ticketID] = set
	}
	if !set[userID] {
		set[userID] = true
		if ticket, ok := r.tickets[ticketID]; ok {
			ticket.FollowerCount++
		}
	}
	return nil
}

func (r *fakeTicketRepo) RemoveFollower(_ context.Context, ticketID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.followers[ticketID]; ok && set[userID] {
		delete(set, userID)
		if ticket, ok := r.tickets[ticketID]; ok && ticket.FollowerCount > 0 {
			ticket.FollowerCount--
		}
	}
	return nil
}

func (r *fakeTicketRepo) ListFollowerIDs(_ context.Context, ticketID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []string
	for id := range r.followers[ticketID] {
		result = append(result, id)
	}
	return result, nil
}

func (r *fakeTicketRepo) IsFollower(_ context.Context, ticketID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.followers[ticketID][userID], nil
}

func (r *fakeTicketRepo) IncrementCommentCount(_ context.Context, ticketID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket, ok := r.tickets[ticketID]; ok {
		ticket.CommentCount++
	}
	return nil
}

func (r *fakeTicketRepo) IncrementPhotoCount(_ context.Context, ticketID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket, ok := r.tickets[ticketID]; ok {
		ticket.PhotoCount++
	}
	return nil
}

func statusIn(status domain.TicketStatus, set []domain.TicketStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

type fakeStatusLogRepo struct {
	mu      sync.Mutex
	entries []domain.StatusLog
}

func (r *fakeStatusLogRepo) Create(_ context.Context, entry *domain.StatusLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = ids.newID("log")
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeStatusLogRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.StatusLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.StatusLog
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

type fakeEscalationRepo struct {
	mu          sync.Mutex
	escalations map[string]*domain.Escalation
}

func newFakeEscalationRepo() *fakeEscalationRepo {
	return &fakeEscalationRepo{escalations: make(map[string]*domain.Escalation)}
}

func (r *fakeEscalationRepo) Create(_ context.Context, escalation *domain.Escalation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	escalation.ID = ids.newID("esc")
	escalation.CreatedAt = time.Now()
	clone := *escalation
	r.escalations[escalation.ID] = &clone
	return nil
}

func (r *fakeEscalationRepo) GetByID(_ context.Context, id string) (*domain.Escalation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	escalation, ok := r.escalations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *escalation
	return &clone, nil
}

func (r *fakeEscalationRepo) FindPendingByTicket(_ context.Context, ticketID string) (*domain.Escalation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, escalation := range r.escalations {
		if escalation.TicketID == ticketID && escalation.Status == domain.EscalationStatusPending {
			clone := *escalation
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeEscalationRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Escalation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Escalation
	for _, escalation := range r.escalations {
		if escalation.TicketID == ticketID {
			result = append(result, *escalation)
		}
	}
	return result, nil
}

func (r *fakeEscalationRepo) ListPending(_ context.Context, _, _ int) ([]domain.Escalation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Escalation
	for _, escalation := range r.escalations {
		if escalation.Status == domain.EscalationStatusPending {
			result = append(result, *escalation)
		}
	}
	return result, nil
}

func (r *fakeEscalationRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.escalations, id)
	return nil
}

func (r *fakeEscalationRepo) Review(_ context.Context, id string, status domain.EscalationStatus, reviewerID string, comment *string, reviewedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	escalation, ok := r.escalations[id]
	if !ok || escalation.Status != domain.EscalationStatusPending {
		return false, nil
	}
	escalation.Status = status
	escalation.ReviewerID = &reviewerID
	escalation.ReviewComment = comment
	at := reviewedAt
	escalation.ReviewedAt = &at
	return true, nil
}

type fakeTeamRepo struct {
	mu    sync.Mutex
	teams map[string]*domain.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[string]*domain.Team)}
}

func (r *fakeTeamRepo) add(team domain.Team) *domain.Team {
	r.mu.Lock()
	defer r.mu.Unlock()
	if team.ID == "" {
		team.ID = ids.newID("team")
	}
	clone := team
	r.teams[team.ID] = &clone
	return &clone
}

func (r *fakeTeamRepo) Create(_ context.Context, team *domain.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	team.ID = ids.newID("team")
	team.CreatedAt = time.Now()
	team.UpdatedAt = team.CreatedAt
	clone := *team
	r.teams[team.ID] = &clone
	return nil
}

func (r *fakeTeamRepo) Update(_ context.Context, team *domain.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[team.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *team
	r.teams[team.ID] = &clone
	return nil
}

func (r *fakeTeamRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.teams[id]
	if !ok || team.IsFallback {
		return pgx.ErrNoRows
	}
	delete(r.teams, id)
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id string) (*domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.teams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *team
	return &clone, nil
}

func (r *fakeTeamRepo) GetFallback(_ context.Context) (*domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, team := range r.teams {
		if team.IsFallback {
			clone := *team
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTeamRepo) List(_ context.Context) ([]domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Team
	for _, team := range r.teams {
		result = append(result, *team)
	}
	return result, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) add(user domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = ids.newID("user")
	}
	clone := user
	r.users[user.ID] = &clone
	return &clone
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = ids.newID("user")
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, user := range r.users {
		if user.Role == role && user.Active {
			result = append(result, *user)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) ListByTeam(_ context.Context, teamID string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, user := range r.users {
		if user.TeamID != nil && *user.TeamID == teamID && user.Active {
			result = append(result, *user)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) CountByTeam(ctx context.Context, teamID string) (int64, error) {
	members, _ := r.ListByTeam(ctx, teamID)
	return int64(len(members)), nil
}

func (r *fakeUserRepo) ClearTeam(_ context.Context, teamID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.TeamID != nil && *user.TeamID == teamID {
			user.TeamID = nil
		}
	}
	return nil
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[string]*domain.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[string]*domain.Category)}
}

func (r *fakeCategoryRepo) add(category domain.Category) *domain.Category {
	r.mu.Lock()
	defer r.mu.Unlock()
	if category.ID == "" {
		category.ID = ids.newID("cat")
	}
	clone := category
	r.categories[category.ID] = &clone
	return &clone
}

func (r *fakeCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	category.ID = ids.newID("cat")
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	clone := *category
	r.categories[category.ID] = &clone
	return nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[category.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *category
	r.categories[category.ID] = &clone
	return nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.categories, id)
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	category, ok := r.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *category
	return &clone, nil
}

func (r *fakeCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Category
	for _, category := range r.categories {
		result = append(result, *category)
	}
	return result, nil
}

type fakeDistrictRepo struct {
	mu        sync.Mutex
	districts map[string]*domain.District
}

func newFakeDistrictRepo() *fakeDistrictRepo {
	return &fakeDistrictRepo{districts: make(map[string]*domain.District)}
}

func (r *fakeDistrictRepo) add(district domain.District) *domain.District {
	r.mu.Lock()
	defer r.mu.Unlock()
	if district.ID == "" {
		district.ID = ids.newID("dist")
	}
	clone := district
	r.districts[district.ID] = &clone
	return &clone
}

func (r *fakeDistrictRepo) GetByID(_ context.Context, id string) (*domain.District, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	district, ok := r.districts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *district
	return &clone, nil
}

func (r *fakeDistrictRepo) List(_ context.Context) ([]domain.District, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.District
	for _, district := range r.districts {
		result = append(result, *district)
	}
	return result, nil
}

type fakeFeedbackRepo struct {
	mu       sync.Mutex
	feedback map[string]*domain.Feedback
}

func newFakeFeedbackRepo() *fakeFeedbackRepo {
	return &fakeFeedbackRepo{feedback: make(map[string]*domain.Feedback)}
}

func (r *fakeFeedbackRepo) Create(_ context.Context, feedback *domain.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	feedback.ID = ids.newID("fb")
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now()
	}
	clone := *feedback
	r.feedback[feedback.TicketID] = &clone
	return nil
}

func (r *fakeFeedbackRepo) GetByTicket(_ context.Context, ticketID string) (*domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	feedback, ok := r.feedback[ticketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *feedback
	return &clone, nil
}

func (r *fakeFeedbackRepo) ExistsForTicket(_ context.Context, ticketID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.feedback[ticketID]
	return ok, nil
}

func (r *fakeFeedbackRepo) ListCreatedSince(_ context.Context, since time.Time) ([]domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Feedback
	for _, feedback := range r.feedback {
		if !feedback.CreatedAt.Before(since) {
			result = append(result, *feedback)
		}
	}
	return result, nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []domain.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notification.ID = ids.newID("notif")
	notification.CreatedAt = time.Now()
	r.notifications = append(r.notifications, *notification)
	return nil
}

func (r *fakeNotificationRepo) CreateBatch(ctx context.Context, notifications []domain.Notification) error {
	for i := range notifications {
		if err := r.Create(ctx, &notifications[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeNotificationRepo) ListByRecipient(_ context.Context, recipientID string, unreadOnly bool, _, _ int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Notification
	for _, notification := range r.notifications {
		if notification.RecipientID != recipientID {
			continue
		}
		if unreadOnly && notification.IsRead {
			continue
		}
		result = append(result, notification)
	}
	return result, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, notification := range r.notifications {
		if notification.RecipientID == recipientID && !notification.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == id && r.notifications[i].RecipientID == recipientID {
			r.notifications[i].IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].RecipientID == recipientID {
			r.notifications[i].IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) byRecipient(recipientID string) []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Notification
	for _, notification := range r.notifications {
		if notification.RecipientID == recipientID {
			result = append(result, notification)
		}
	}
	return result
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments []domain.Comment
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.ID = ids.newID("comment")
	comment.CreatedAt = time.Now()
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string, includeInternal bool) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Comment
	for _, comment := range r.comments {
		if comment.TicketID != ticketID {
			continue
		}
		if comment.IsInternal && !includeInternal {
			continue
		}
		result = append(result, comment)
	}
	return result, nil
}

type fakePhotoRepo struct {
	mu     sync.Mutex
	photos []domain.TicketPhoto
}

func (r *fakePhotoRepo) Create(_ context.Context, photo *domain.TicketPhoto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	photo.ID = ids.newID("photo")
	photo.CreatedAt = time.Now()
	r.photos = append(r.photos, *photo)
	return nil
}

func (r *fakePhotoRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketPhoto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TicketPhoto
	for _, photo := range r.photos {
		if photo.TicketID == ticketID {
			result = append(result, photo)
		}
	}
	return result, nil
}

// testEnv wires all services over the fakes, mirroring the production
// dependency graph in cmd/api.
type testEnv struct {
	tickets       *fakeTicketRepo
	statusLogs    *fakeStatusLogRepo
	escalations   *fakeEscalationRepo
	teams         *fakeTeamRepo
	users         *fakeUserRepo
	categories    *fakeCategoryRepo
	districts     *fakeDistrictRepo
	feedback      *fakeFeedbackRepo
	notifications *fakeNotificationRepo
	comments      *fakeCommentRepo
	photos        *fakePhotoRepo
	dispatcher    events.Dispatcher

	ticketSvc     *TicketService
	routingSvc    *RoutingService
	escalationSvc *EscalationService
	feedbackSvc   *FeedbackService

	fallback *domain.Team
	citizen  *domain.User
	support  *domain.User
	manager  *domain.User
}

func newTestEnv() *testEnv {
	env := &testEnv{
		tickets:       newFakeTicketRepo(),
		statusLogs:    &fakeStatusLogRepo{},
		escalations:   newFakeEscalationRepo(),
		teams:         newFakeTeamRepo(),
		users:         newFakeUserRepo(),
		categories:    newFakeCategoryRepo(),
		districts:     newFakeDistrictRepo(),
		feedback:      newFakeFeedbackRepo(),
		notifications: &fakeNotificationRepo{},
		comments:      &fakeCommentRepo{},
		photos:        &fakePhotoRepo{},
		dispatcher:    events.NewInMemoryDispatcher(zap.NewNop()),
	}

	env.routingSvc = NewRoutingService(RoutingDependencies{
		TeamRepo:   env.teams,
		TicketRepo: env.tickets,
		UserRepo:   env.users,
		Dispatcher: env.dispatcher,
	})
	env.ticketSvc = NewTicketService(TicketDependencies{
		TicketRepo:    env.tickets,
		StatusLogRepo: env.statusLogs,
		CategoryRepo:  env.categories,
		DistrictRepo:  env.districts,
		CommentRepo:   env.comments,
		PhotoRepo:     env.photos,
		Router:        env.routingSvc,
		Dispatcher:    env.dispatcher,
	})
	env.escalationSvc = NewEscalationService(EscalationDependencies{
		EscalationRepo: env.escalations,
		TicketRepo:     env.tickets,
		TicketService:  env.ticketSvc,
		Dispatcher:     env.dispatcher,
	})
	env.feedbackSvc = NewFeedbackService(env.feedback, env.tickets)

	env.fallback = env.teams.add(domain.Team{Name: "General Services", IsFallback: true})
	env.citizen = env.users.add(domain.User{Name: "Resident", Role: domain.RoleCitizen, Active: true})
	env.support = env.users.add(domain.User{Name: "Agent", Role: domain.RoleSupport, TeamID: &env.fallback.ID, Active: true})
	env.manager = env.users.add(domain.User{Name: "Chief", Role: domain.RoleManager, Active: true})
	return env
}

// seedTicket inserts a ticket directly, bypassing routing.
func (env *testEnv) seedTicket(status domain.TicketStatus, mutate ...func(*domain.Ticket)) *domain.Ticket {
	ticket := &domain.Ticket{
		Title:       "Pothole on Elm Street",
		Description: "Deep pothole near the crosswalk",
		Status:      status,
		CategoryID:  "cat-road",
		Location: domain.Location{
			Latitude:   52.52,
			Longitude:  13.405,
			DistrictID: "dist-center",
			City:       "Springfield",
		},
		ReporterID: env.citizen.ID,
		TeamID:     &env.fallback.ID,
	}
	for _, fn := range mutate {
		fn(ticket)
	}
	_ = env.tickets.Create(context.Background(), ticket)
	return ticket
}
