package membership

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"teamforge/models"
)

// ProjectInput is the owner-supplied part of a new project.
type ProjectInput struct {
	Title          string   `json:"title" validate:"required,max=200"`
	Description    string   `json:"description" validate:"max=5000"`
	Domain         string   `json:"domain" validate:"omitempty,project_domain"`
	RequiredSkills []string `json:"required_skills" validate:"max=30,dive,max=50"`
	MaxTeamSize    *int     `json:"max_team_size" validate:"omitempty,min=2,max=20"`
	IsPublic       *bool    `json:"is_public"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("project_domain", func(fl validator.FieldLevel) bool {
		d := models.Domain(fl.Field().String())
		for _, known := range models.Domains {
			if d == known {
				return true
			}
		}
		return false
	})
	if err != nil {
		panic(fmt.Sprintf("register project_domain validation: %v", err))
	}
	return v
}

// NewProject validates input and builds the project row owned by actor.
// Validation failures wrap ErrInvalidProject and the validator.ValidationErrors.
func NewProject(actor uuid.NullUUID, input ProjectInput) (models.Project, error) {
	if !actor.Valid {
		return models.Project{}, ErrNotAuthenticated
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Domain = strings.TrimSpace(input.Domain)
	input.RequiredSkills = NormalizeSkills(input.RequiredSkills)
	if input.MaxTeamSize != nil && *input.MaxTeamSize == 0 {
		input.MaxTeamSize = nil
	}

	if err := validate.Struct(input); err != nil {
		return models.Project{}, fmt.Errorf("%w: %w", ErrInvalidProject, err)
	}

	size := models.DefaultMaxTeamSize
	if input.MaxTeamSize != nil {
		size = *input.MaxTeamSize
	}
	public := true
	if input.IsPublic != nil {
		public = *input.IsPublic
	}

	p := models.Project{
		CreatorID:      actor.UUID,
		Title:          input.Title,
		RequiredSkills: input.RequiredSkills,
		MaxTeamSize:    &size,
		IsPublic:       &public,
	}
	if input.Description != "" {
		p.Description = &input.Description
	}
	if input.Domain != "" {
		d := models.Domain(input.Domain)
		p.Domain = &d
	}
	return p, nil
}

// NormalizeSkills trims skills and drops blanks and case-insensitive duplicates,
// keeping the first spelling seen.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
