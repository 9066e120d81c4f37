package membership

import (
	"github.com/google/uuid"

	"teamforge/models"
)

// Decision is the owner's verdict on a pending request.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// RequestToJoin validates a join request and returns the pending row to insert.
// existing is the actor's current row for the project, if any, in any status.
//
// The returned row has no ID or timestamp; the store assigns both. The
// existence check here only short-circuits the common case: the store's
// (project_id, user_id) constraint is what actually rejects duplicates.
func RequestToJoin(project models.Project, actor uuid.NullUUID, existing *models.MembershipRequest) (models.MembershipRequest, error) {
	if !actor.Valid {
		return models.MembershipRequest{}, ErrNotAuthenticated
	}
	if actor.UUID == project.CreatorID {
		return models.MembershipRequest{}, ErrSelfJoinNotAllowed
	}
	if existing != nil {
		return models.MembershipRequest{}, ErrAlreadyRequested
	}
	return models.MembershipRequest{
		ProjectID: project.ID,
		UserID:    actor.UUID,
		Status:    models.StatusPending,
	}, nil
}

// DecideRequest applies the owner's decision to a pending request and returns
// the updated row. Capacity is advisory: accepting past max_team_size is allowed.
func DecideRequest(request models.MembershipRequest, actor uuid.NullUUID, project models.Project, decision Decision) (models.MembershipRequest, error) {
	var next models.MembershipStatus
	switch decision {
	case DecisionAccept:
		next = models.StatusAccepted
	case DecisionReject:
		next = models.StatusRejected
	default:
		return models.MembershipRequest{}, ErrInvalidDecision
	}

	if !actor.Valid {
		return models.MembershipRequest{}, ErrNotAuthenticated
	}
	if actor.UUID != project.CreatorID {
		return models.MembershipRequest{}, ErrNotAuthorized
	}
	if request.ProjectID != project.ID {
		return models.MembershipRequest{}, ErrNotFound
	}
	if request.Status != models.StatusPending {
		return models.MembershipRequest{}, ErrAlreadyDecided
	}

	request.Status = next
	return request, nil
}
