package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultMaxTeamSize is used when a project row carries no max_team_size.
const DefaultMaxTeamSize = 5

// Domain tags a project with one of a fixed set of fields.
type Domain string

const (
	DomainWebDevelopment Domain = "Web Development"
	DomainMobileApps     Domain = "Mobile Apps"
	DomainAIML           Domain = "AI/ML"
	DomainDataScience    Domain = "Data Science"
	DomainBlockchain     Domain = "Blockchain"
	DomainOther          Domain = "Other"
)

// Domains lists every accepted domain tag.
var Domains = []Domain{
	DomainWebDevelopment,
	DomainMobileApps,
	DomainAIML,
	DomainDataScience,
	DomainBlockchain,
	DomainOther,
}

// Project represents the structure of a project in the database.
type Project struct {
	ID             uuid.UUID `json:"id,omitempty"`
	CreatorID      uuid.UUID `json:"creator_id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"` // Use a pointer for nullable TEXT fields
	Domain         *Domain   `json:"domain,omitempty"`
	RequiredSkills []string  `json:"required_skills"`
	MaxTeamSize    *int      `json:"max_team_size,omitempty"` // Nullable INT, see TeamSizeLimit
	IsPublic       *bool     `json:"is_public,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// TeamSizeLimit returns the advisory team size, falling back to DefaultMaxTeamSize.
func (p Project) TeamSizeLimit() int {
	if p.MaxTeamSize == nil || *p.MaxTeamSize <= 0 {
		return DefaultMaxTeamSize
	}
	return *p.MaxTeamSize
}

// Public reports the visibility flag. A NULL column counts as public, matching the column default.
func (p Project) Public() bool {
	return p.IsPublic == nil || *p.IsPublic
}

// DomainLabel is the display label for the domain tag.
func (p Project) DomainLabel() string {
	if p.Domain == nil || *p.Domain == "" {
		return "General"
	}
	return string(*p.Domain)
}
