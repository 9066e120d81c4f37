package membership

import (
	"github.com/google/uuid"

	"teamforge/models"
)

// Placeholder display names for members whose profile is missing or unnamed.
const (
	UnknownOwnerName   = "Unknown"
	UnknownMemberName  = "Member"
	UnknownPendingName = "User"
)

// ProfileLookup resolves a user id to a profile. ok is false when no profile exists.
type ProfileLookup func(userID uuid.UUID) (profile models.Profile, ok bool)

// Member is one person on a team view.
type Member struct {
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	Placeholder bool      `json:"placeholder,omitempty"`
}

// PendingMember pairs a pending requester with the request id the owner acts on.
type PendingMember struct {
	RequestID uuid.UUID `json:"request_id"`
	Member
}

// ProjectComposition is the materialized team of a project. It is recomputed
// from the membership rows on every read.
type ProjectComposition struct {
	Owner         Member          `json:"owner"`
	Accepted      []Member        `json:"accepted"`
	Pending       []PendingMember `json:"pending"`
	AcceptedCount int             `json:"accepted_count"`
	MaxTeamSize   int             `json:"max_team_size"`
}

// OverCapacity reports whether more members were accepted than the advisory limit.
func (c ProjectComposition) OverCapacity() bool {
	return c.AcceptedCount > c.MaxTeamSize
}

// ComposeTeam partitions records into accepted and pending members and
// resolves their profiles. Rows for the creator are ignored, as are rows
// belonging to other projects and rejected rows.
func ComposeTeam(project models.Project, records []models.MembershipRequest, lookup ProfileLookup) ProjectComposition {
	team := ProjectComposition{
		Owner:       resolve(project.CreatorID, lookup, UnknownOwnerName),
		Accepted:    []Member{},
		Pending:     []PendingMember{},
		MaxTeamSize: project.TeamSizeLimit(),
	}

	for _, r := range records {
		if r.UserID == project.CreatorID || r.ProjectID != project.ID {
			continue
		}
		switch r.Status {
		case models.StatusAccepted:
			team.Accepted = append(team.Accepted, resolve(r.UserID, lookup, UnknownMemberName))
		case models.StatusPending:
			team.Pending = append(team.Pending, PendingMember{
				RequestID: r.ID,
				Member:    resolve(r.UserID, lookup, UnknownPendingName),
			})
		}
	}
	team.AcceptedCount = len(team.Accepted)
	return team
}

func resolve(userID uuid.UUID, lookup ProfileLookup, fallback string) Member {
	m := Member{UserID: userID, Name: fallback}
	if lookup == nil {
		m.Placeholder = true
		return m
	}
	p, ok := lookup(userID)
	if !ok {
		m.Placeholder = true
		return m
	}
	if p.Name != nil && *p.Name != "" {
		m.Name = *p.Name
	}
	m.AvatarURL = p.AvatarURL
	return m
}

// LookupFromProfiles builds a ProfileLookup over a fetched batch of profiles.
func LookupFromProfiles(profiles []models.Profile) ProfileLookup {
	byID := make(map[uuid.UUID]models.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.UserID] = p
	}
	return func(userID uuid.UUID) (models.Profile, bool) {
		p, ok := byID[userID]
		return p, ok
	}
}
