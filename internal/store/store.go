// Package store defines the persistence contracts for projects, membership
// requests and profiles. Implementations live in the supabase and sqlite
// subpackages.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"teamforge/models"
)

var (
	// ErrNotFound means the referenced row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate means a uniqueness constraint rejected an insert.
	ErrDuplicate = errors.New("duplicate record")
	// ErrPreconditionFailed means a conditional update matched no row in the expected state.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrUnavailable wraps transport and database failures. A failed read
	// changed nothing. A write that timed out may still have been applied,
	// so callers re-read before reporting it as not applied.
	ErrUnavailable = errors.New("store unavailable")
)

// DefaultCallTimeout bounds a single store call when no timeout is configured.
const DefaultCallTimeout = 5 * time.Second

// ProjectFilter narrows ListProjects. Zero value lists everything, newest first.
type ProjectFilter struct {
	CreatorID uuid.NullUUID
	Limit     int
}

// ProjectStore persists projects.
type ProjectStore interface {
	CreateProject(ctx context.Context, project models.Project) (models.Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (models.Project, error)
	ListProjects(ctx context.Context, filter ProjectFilter) ([]models.Project, error)
}

// MembershipStore persists join requests. CreateMembershipRequest must reject
// a second row for the same (project, user) with ErrDuplicate, and
// UpdateMembershipRequestStatus must only apply when the row currently holds
// expected, returning ErrPreconditionFailed otherwise.
type MembershipStore interface {
	CreateMembershipRequest(ctx context.Context, projectID, userID uuid.UUID) (models.MembershipRequest, error)
	// GetMembershipRequest returns nil, nil when the user has no row for the project.
	GetMembershipRequest(ctx context.Context, projectID, userID uuid.UUID) (*models.MembershipRequest, error)
	GetMembershipRequestByID(ctx context.Context, id uuid.UUID) (models.MembershipRequest, error)
	// ListMembershipRequests lists a project's rows, oldest first. No statuses means all.
	ListMembershipRequests(ctx context.Context, projectID uuid.UUID, statuses ...models.MembershipStatus) ([]models.MembershipRequest, error)
	ListMembershipRequestsByUser(ctx context.Context, userID uuid.UUID) ([]models.MembershipRequest, error)
	UpdateMembershipRequestStatus(ctx context.Context, id uuid.UUID, status, expected models.MembershipStatus) (models.MembershipRequest, error)
}

// ProfileStore reads user profiles.
type ProfileStore interface {
	// GetProfile returns nil, nil when the user has no profile.
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	ListProfiles(ctx context.Context, userIDs []uuid.UUID) ([]models.Profile, error)
}

// Pinger checks that the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store is the full set of capabilities a backend provides.
type Store interface {
	ProjectStore
	MembershipStore
	ProfileStore
	Pinger
	Close() error
}
