package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/civic-report-service/internal/domain"
	"github.com/spec-kit/civic-report-service/internal/events"
	"github.com/spec-kit/civic-report-service/internal/observability"
)

func newNotificationEnv(t *testing.T) (*testEnv, *NotificationService) {
	t.Helper()
	env := newTestEnv()
	svc := NewNotificationService(NotificationDependencies{
		NotificationRepo: env.notifications,
		UserRepo:         env.users,
		TicketRepo:       env.tickets,
		Dispatcher:       env.dispatcher,
		Logger:           zap.NewNop(),
	})
	svc.RegisterHandlers()
	return env, svc
}

func TestTicketCreatedNotifiesTeamMembers(t *testing.T) {
	env, _ := newNotificationEnv(t)
	ctx := context.Background()
	category := env.categories.add(domain.Category{Name: "Roads", IsActive: true})
	district := env.districts.add(domain.District{Name: "Center", City: "Springfield"})

	// routing falls back, and support belongs to the fallback team
	_, err := env.ticketSvc.Create(ctx, env.citizen, TicketCreateInput{
		Title:       "Pothole",
		Description: "Deep",
		CategoryID:  category.ID,
		DistrictID:  district.ID,
	})
	require.NoError(t, err)

	inbox := env.notifications.byRecipient(env.support.ID)
	require.Len(t, inbox, 1)
	assert.Equal(t, domain.NotificationTicketCreated, inbox[0].Type)

	assert.Empty(t, env.notifications.byRecipient(env.citizen.ID), "reporter is not notified of own report")
}

func TestStatusChangeNotifiesReporterAndFollowers(t *testing.T) {
	env, _ := newNotificationEnv(t)
	ctx := context.Background()
	ticket := env.seedTicket(domain.TicketStatusNew)
	follower := env.users.add(domain.User{Name: "Neighbor", Role: domain.RoleCitizen, Active: true})
	require.NoError(t, env.ticketSvc.Follow(ctx, follower, ticket.ID))

	_, err := env.ticketSvc.Transition(ctx, env.support, ticket.ID, domain.TicketStatusInProgress, "")
	require.NoError(t, err)

	reporterInbox := env.notifications.byRecipient(env.citizen.ID)
	require.Len(t, reporterInbox, 1)
	assert.Equal(t, domain.NotificationTicketStatusChanged, reporterInbox[0].Type)

	followerInbox := env.notifications.byRecipient(follower.ID)
	require.Len(t, followerInbox, 1)
}

func TestInternalCommentsProduceNoNotifications(t *testing.T) {
	env, _ := newNotificationEnv(t)
	ctx := context.Background()
	ticket := env.seedTicket(domain.TicketStatusInProgress)

	_, err := env.ticketSvc.AddComment(ctx, env.support, ticket.ID, "vendor quote pending", true)
	require.NoError(t, err)
	assert.Empty(t, env.notifications.byRecipient(env.citizen.ID))
}

func TestPublicCommentNotifiesReporterNotAuthor(t *testing.T) {
	env, _ := newNotificationEnv(t)
	ctx := context.Background()
	ticket := env.seedTicket(domain.TicketStatusInProgress)

	_, err := env.ticketSvc.AddComment(ctx, env.support, ticket.ID, "crew scheduled for Monday", false)
	require.NoError(t, err)

	reporterInbox := env.notifications.byRecipient(env.citizen.ID)
	require.Len(t, reporterInbox, 1)
	assert.Equal(t, domain.NotificationCommentAdded, reporterInbox[0].Type)

	// the reporter commenting does not notify themselves
	_, err = env.ticketSvc.AddComment(ctx, env.citizen, ticket.ID, "thanks", false)
	require.NoError(t, err)
	assert.Len(t, env.notifications.byRecipient(env.citizen.ID), 1)
}

func TestEscalationRequestNotifiesManagers(t *testing.T) {
	env, _ := newNotificationEnv(t)
	ctx := context.Background()
	ticket := env.seedTicket(domain.TicketStatusNew)
	secondManager := env.users.add(domain.User{Name: "Deputy", Role: domain.RoleManager, Active: true})

	_, err := env.escalationSvc.Request(ctx, env.support, ticket.ID, "stalled")
	require.NoError(t, err)

	for _, managerID := range []string{env.manager.ID, secondManager.ID} {
		inbox := env.notifications.byRecipient(managerID)
		found := false
		for _, n := range inbox {
			if n.Type == domain.NotificationEscalationRequested {
				found = true
			}
		}
		assert.True(t, found, "manager %s should see the escalation request", managerID)
	}
}

func TestEscalationReviewNotifiesRequester(t *testing.T) {
	env, _ := newNotificationEnv(t)
	ctx := context.Background()
	ticket := env.seedTicket(domain.TicketStatusNew)

	escalation, err := env.escalationSvc.Request(ctx, env.support, ticket.ID, "stalled")
	require.NoError(t, err)
	_, err = env.escalationSvc.Review(ctx, env.manager, escalation.ID, domain.EscalationStatusRejected, "crew is on it")
	require.NoError(t, err)

	inbox := env.notifications.byRecipient(env.support.ID)
	found := false
	for _, n := range inbox {
		if n.Type == domain.NotificationEscalationRejected {
			found = true
		}
	}
	assert.True(t, found)
}

func TestNotificationReadModel(t *testing.T) {
	env, svc := newNotificationEnv(t)
	ctx := context.Background()
	ticket := env.seedTicket(domain.TicketStatusNew)

	_, err := env.ticketSvc.Transition(ctx, env.support, ticket.ID, domain.TicketStatusInProgress, "")
	require.NoError(t, err)
	_, err = env.ticketSvc.Transition(ctx, env.support, ticket.ID, domain.TicketStatusResolved, "")
	require.NoError(t, err)

	count, err := svc.CountUnread(ctx, env.citizen)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	items, err := svc.ListForUser(ctx, env.citizen, true, 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NoError(t, svc.MarkRead(ctx, env.citizen, items[0].ID))
	count, err = svc.CountUnread(ctx, env.citizen)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, svc.MarkAllRead(ctx, env.citizen))
	count, err = svc.CountUnread(ctx, env.citizen)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestNotificationMetricsCounters(t *testing.T) {
	env := newTestEnv()
	metrics := observability.NewMetrics()
	svc := NewNotificationService(NotificationDependencies{
		NotificationRepo: env.notifications,
		UserRepo:         env.users,
		TicketRepo:       env.tickets,
		Dispatcher:       env.dispatcher,
		Metrics:          metrics,
		Logger:           zap.NewNop(),
	})
	svc.RegisterHandlers()
	ctx := context.Background()
	ticket := env.seedTicket(domain.TicketStatusNew)
	follower := env.users.add(domain.User{Name: "Neighbor", Role: domain.RoleCitizen, Active: true})
	require.NoError(t, env.ticketSvc.Follow(ctx, follower, ticket.ID))

	// reporter + follower rows for one status change
	_, err := env.ticketSvc.Transition(ctx, env.support, ticket.ID, domain.TicketStatusInProgress, "")
	require.NoError(t, err)

	assert.EqualValues(t, 1, metrics.EventCount(string(events.EventTicketStatusChanged)))
	assert.EqualValues(t, 2, metrics.NotificationsCreated())
}
