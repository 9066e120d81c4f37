package membership

import (
	"github.com/google/uuid"

	"teamforge/models"
)

// Policy selects how project visibility is applied to reads.
type Policy string

const (
	// PolicyLenient ignores is_public: every project is listed and readable.
	PolicyLenient Policy = "lenient"
	// PolicyStrict hides private projects from actors who are neither the
	// owner nor an accepted or pending member.
	PolicyStrict Policy = "strict"
)

// Valid reports whether p names a known policy.
func (p Policy) Valid() bool {
	return p == PolicyLenient || p == PolicyStrict
}

// CanView reports whether actor may read project. record is the actor's own
// membership row for the project, or nil.
func CanView(project models.Project, actor uuid.NullUUID, record *models.MembershipRequest, policy Policy) bool {
	if policy != PolicyStrict || project.Public() {
		return true
	}
	if !actor.Valid {
		return false
	}
	if actor.UUID == project.CreatorID {
		return true
	}
	if record == nil || record.UserID != actor.UUID || record.ProjectID != project.ID {
		return false
	}
	return record.Status == models.StatusAccepted || record.Status == models.StatusPending
}

// ListVisible filters the "all projects" listing. actorRecords are the
// actor's membership rows across projects; only the strict policy reads them.
func ListVisible(projects []models.Project, actor uuid.NullUUID, actorRecords []models.MembershipRequest, policy Policy) []models.Project {
	if policy != PolicyStrict {
		return projects
	}
	byProject := make(map[uuid.UUID]*models.MembershipRequest, len(actorRecords))
	for i := range actorRecords {
		byProject[actorRecords[i].ProjectID] = &actorRecords[i]
	}
	visible := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if CanView(p, actor, byProject[p.ID], policy) {
			visible = append(visible, p)
		}
	}
	return visible
}

// ListMine returns the projects actor created. An absent actor owns nothing.
func ListMine(projects []models.Project, actor uuid.NullUUID) []models.Project {
	mine := make([]models.Project, 0)
	if !actor.Valid {
		return mine
	}
	for _, p := range projects {
		if p.CreatorID == actor.UUID {
			mine = append(mine, p)
		}
	}
	return mine
}
