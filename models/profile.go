package models

import "github.com/google/uuid"

// Profile maps to the profiles table. Only the fields the team view renders are read.
type Profile struct {
	UserID    uuid.UUID `json:"user_id"`
	Name      *string   `json:"name,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}
