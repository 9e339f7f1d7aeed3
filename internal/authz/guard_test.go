package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/civic-report-service/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestAuthorizeMatrix(t *testing.T) {
	teamA := "team-a"
	teamB := "team-b"

	citizen := &domain.User{ID: "u-citizen", Role: domain.RoleCitizen, Active: true}
	support := &domain.User{ID: "u-support", Role: domain.RoleSupport, TeamID: &teamA, Active: true}
	manager := &domain.User{ID: "u-manager", Role: domain.RoleManager, Active: true}
	inactive := &domain.User{ID: "u-gone", Role: domain.RoleManager, Active: false}

	ownTicket := &domain.Ticket{ID: "t1", ReporterID: citizen.ID, TeamID: &teamA}
	otherTicket := &domain.Ticket{ID: "t2", ReporterID: "someone-else", TeamID: &teamB}

	cases := []struct {
		name    string
		actor   *domain.User
		action  Action
		res     Resource
		allowed bool
	}{
		{"citizen creates ticket", citizen, ActionCreateTicket, Resource{}, true},
		{"support cannot create ticket", support, ActionCreateTicket, Resource{}, false},
		{"manager cannot create ticket", manager, ActionCreateTicket, Resource{}, false},

		{"support updates own team ticket", support, ActionUpdateStatus, TicketResource(ownTicket), true},
		{"support blocked on other team ticket", support, ActionUpdateStatus, TicketResource(otherTicket), false},
		{"manager updates any ticket", manager, ActionUpdateStatus, TicketResource(otherTicket), true},
		{"citizen cannot update status", citizen, ActionUpdateStatus, TicketResource(ownTicket), false},

		{"citizen follows other ticket", citizen, ActionFollowTicket, TicketResource(otherTicket), true},
		{"reporter cannot follow own ticket", citizen, ActionFollowTicket, TicketResource(ownTicket), false},
		{"support cannot follow", support, ActionFollowTicket, TicketResource(otherTicket), false},

		{"citizen posts public comment", citizen, ActionCreateComment, TicketResource(ownTicket), true},
		{"citizen cannot post internal comment", citizen, ActionCreateInternalComment, TicketResource(ownTicket), false},
		{"support posts internal comment", support, ActionCreateInternalComment, TicketResource(ownTicket), true},
		{"citizen cannot view internal comments", citizen, ActionViewInternalComments, Resource{}, false},
		{"manager views internal comments", manager, ActionViewInternalComments, Resource{}, true},

		{"reporter submits feedback", citizen, ActionSubmitFeedback, TicketResource(ownTicket), true},
		{"non reporter cannot submit feedback", citizen, ActionSubmitFeedback, TicketResource(otherTicket), false},

		{"support requests escalation", support, ActionRequestEscalation, Resource{}, true},
		{"manager requests escalation", manager, ActionRequestEscalation, Resource{}, true},
		{"citizen cannot request escalation", citizen, ActionRequestEscalation, Resource{}, false},

		{"manager reviews escalation", manager, ActionReviewEscalation, Resource{}, true},
		{"support cannot review escalation", support, ActionReviewEscalation, Resource{}, false},

		{"manager reassigns ticket", manager, ActionReassignTicket, Resource{}, true},
		{"support cannot reassign", support, ActionReassignTicket, Resource{}, false},
		{"manager manages teams", manager, ActionManageTeams, Resource{}, true},
		{"support cannot manage users", support, ActionManageUsers, Resource{}, false},
		{"manager manages categories", manager, ActionManageCategories, Resource{}, true},

		{"inactive user denied everything", inactive, ActionManageTeams, Resource{}, false},
		{"nil actor denied", nil, ActionCreateTicket, Resource{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.actor, tc.action, tc.res)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestAuthorizeSupportWithoutTeam(t *testing.T) {
	support := &domain.User{ID: "u", Role: domain.RoleSupport, Active: true}
	ticket := &domain.Ticket{ID: "t", TeamID: strPtr("team-a")}
	assert.Error(t, Authorize(support, ActionUpdateStatus, TicketResource(ticket)))

	unassigned := &domain.Ticket{ID: "t2"}
	teamed := &domain.User{ID: "u2", Role: domain.RoleSupport, TeamID: strPtr("team-a"), Active: true}
	assert.Error(t, Authorize(teamed, ActionUpdateStatus, TicketResource(unassigned)))
}

func TestAuthorizeUnknownAction(t *testing.T) {
	manager := &domain.User{ID: "u", Role: domain.RoleManager, Active: true}
	assert.Error(t, Authorize(manager, Action("launch_rockets"), Resource{}))
}
