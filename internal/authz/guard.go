// Package authz centralizes every allow/deny decision behind a single
// guard keyed by (role, action, resource ownership). Services call the
// guard before any read-modify-write; a denial produces no state change.
package authz

import (
	"github.com/spec-kit/civic-report-service/internal/domain"
	apperrors "github.com/spec-kit/civic-report-service/pkg/util"
)

// Action identifies a guarded operation.
type Action string

const (
	ActionCreateTicket          Action = "create_ticket"
	ActionUpdateStatus          Action = "update_status"
	ActionFollowTicket          Action = "follow_ticket"
	ActionCreateComment         Action = "create_comment"
	ActionCreateInternalComment Action = "create_internal_comment"
	ActionViewInternalComments  Action = "view_internal_comments"
	ActionSubmitFeedback        Action = "submit_feedback"
	ActionRequestEscalation     Action = "request_escalation"
	ActionReviewEscalation      Action = "review_escalation"
	ActionReassignTicket        Action = "reassign_ticket"
	ActionManageTeams           Action = "manage_teams"
	ActionManageUsers           Action = "manage_users"
	ActionManageCategories      Action = "manage_categories"
)

// Resource carries the entity the action targets, when ownership matters.
type Resource struct {
	Ticket *domain.Ticket
}

// TicketResource wraps a ticket for guard checks.
func TicketResource(ticket *domain.Ticket) Resource {
	return Resource{Ticket: ticket}
}

// Authorize decides whether actor may perform action on the resource.
// It is pure: no persistence reads, no side effects. Stateful business
// rules (duplicate escalations, existing feedback) live in the services.
func Authorize(actor *domain.User, action Action, res Resource) error {
	if actor == nil || !actor.Active {
		return apperrors.NewForbidden("no active principal")
	}

	switch action {
	case ActionCreateTicket:
		if actor.Role != domain.RoleCitizen {
			return apperrors.NewForbidden("only citizens can report issues")
		}

	case ActionUpdateStatus:
		if !actor.Role.IsStaff() {
			return apperrors.NewForbidden("only staff can update ticket status")
		}
		if actor.Role == domain.RoleSupport {
			if res.Ticket == nil || res.Ticket.TeamID == nil || actor.TeamID == nil || *res.Ticket.TeamID != *actor.TeamID {
				return apperrors.NewForbidden("support can only update tickets assigned to their team")
			}
		}

	case ActionFollowTicket:
		if actor.Role != domain.RoleCitizen {
			return apperrors.NewForbidden("only citizens follow tickets")
		}
		if res.Ticket != nil && res.Ticket.ReporterID == actor.ID {
			return apperrors.NewForbidden("reporters already follow their own tickets")
		}

	case ActionCreateComment:
		// any active principal may post a public comment

	case ActionCreateInternalComment, ActionViewInternalComments:
		if !actor.Role.IsStaff() {
			return apperrors.NewForbidden("internal comments are staff only")
		}

	case ActionSubmitFeedback:
		if res.Ticket == nil || res.Ticket.ReporterID != actor.ID {
			return apperrors.NewForbidden("only the original reporter can submit feedback")
		}

	case ActionRequestEscalation:
		if !actor.Role.IsStaff() {
			return apperrors.NewForbidden("only staff can request escalation")
		}

	case ActionReviewEscalation:
		if actor.Role != domain.RoleManager {
			return apperrors.NewForbidden("only managers review escalations")
		}

	case ActionReassignTicket, ActionManageTeams, ActionManageUsers, ActionManageCategories:
		if actor.Role != domain.RoleManager {
			return apperrors.NewForbidden("manager role required")
		}

	default:
		return apperrors.NewForbidden("unknown action")
	}

	return nil
}
