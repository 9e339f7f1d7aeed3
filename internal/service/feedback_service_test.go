package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/civic-report-service/internal/domain"
	apperrors "github.com/spec-kit/civic-report-service/pkg/util"
)

func TestSubmitFeedback(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	ticket := env.seedTicket(domain.TicketStatusResolved)

	feedback, err := env.feedbackSvc.Submit(ctx, env.citizen, ticket.ID, 4, "quick fix, thanks")
	require.NoError(t, err)
	assert.Equal(t, 4, feedback.Rating)
	assert.Equal(t, env.citizen.ID, feedback.AuthorID)

	stored, err := env.feedbackSvc.GetForTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, feedback.ID, stored.ID)
}

func TestSubmitFeedbackOnlyReporter(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	ticket := env.seedTicket(domain.TicketStatusResolved)
	other := env.users.add(domain.User{Name: "Other", Role: domain.RoleCitizen, Active: true})

	_, err := env.feedbackSvc.Submit(ctx, other, ticket.ID, 5, "")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = env.feedbackSvc.Submit(ctx, env.manager, ticket.ID, 5, "")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestSubmitFeedbackRequiresResolved(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	for _, status := range []domain.TicketStatus{
		domain.TicketStatusNew,
		domain.TicketStatusInProgress,
		domain.TicketStatusEscalated,
		domain.TicketStatusClosed,
	} {
		ticket := env.seedTicket(status)
		_, err := env.feedbackSvc.Submit(ctx, env.citizen, ticket.ID, 3, "")
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"), "status %s should reject feedback", status)
	}
}

func TestSubmitFeedbackRatingBounds(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	ticket := env.seedTicket(domain.TicketStatusResolved)

	_, err := env.feedbackSvc.Submit(ctx, env.citizen, ticket.ID, 0, "")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = env.feedbackSvc.Submit(ctx, env.citizen, ticket.ID, 6, "")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestSubmitFeedbackOncePerTicket(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	ticket := env.seedTicket(domain.TicketStatusResolved)

	_, err := env.feedbackSvc.Submit(ctx, env.citizen, ticket.ID, 5, "")
	require.NoError(t, err)

	_, err = env.feedbackSvc.Submit(ctx, env.citizen, ticket.ID, 1, "changed my mind")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}
