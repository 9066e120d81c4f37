package membership

import (
	"github.com/google/uuid"

	"teamforge/models"
)

// Role is the relationship between an actor and a project. It is always
// derived from the project's creator and the membership rows, never stored.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleAccepted Role = "accepted"
	RolePending  Role = "pending"
	RoleRejected Role = "rejected"
	RoleNone     Role = "none"
)

// Action is something the actor may do on a project page.
type Action string

const (
	ActionSignIn         Action = "sign_in"
	ActionRequestJoin    Action = "request_join"
	ActionDecideRequests Action = "decide_requests"
)

// Anonymous is the absent actor.
var Anonymous = uuid.NullUUID{}

// Actor wraps a user id as a present actor.
func Actor(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: true}
}

// ClassifyRole derives the actor's role on project from the project's
// membership records. records may contain rows for any user of the project.
func ClassifyRole(project models.Project, actor uuid.NullUUID, records []models.MembershipRequest) Role {
	if !actor.Valid {
		return RoleNone
	}
	if actor.UUID == project.CreatorID {
		return RoleOwner
	}
	for _, r := range records {
		if r.UserID != actor.UUID || r.ProjectID != project.ID {
			continue
		}
		switch r.Status {
		case models.StatusPending:
			return RolePending
		case models.StatusAccepted:
			return RoleAccepted
		case models.StatusRejected:
			return RoleRejected
		}
	}
	return RoleNone
}

// PermittedActions lists the actions open to an actor holding role.
// Rejected requesters get nothing: rejection is terminal.
func PermittedActions(role Role, actor uuid.NullUUID) []Action {
	if !actor.Valid {
		return []Action{ActionSignIn}
	}
	switch role {
	case RoleOwner:
		return []Action{ActionDecideRequests}
	case RoleNone:
		return []Action{ActionRequestJoin}
	default:
		return []Action{}
	}
}
