// Package supabase implements the store contracts on top of Supabase's
// PostgREST API. The unique index on project_members(project_id, user_id)
// and the conditional status update are enforced by Postgres.
package supabase

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	postgrest "github.com/supabase-community/postgrest-go"

	"teamforge/internal/store"
	"teamforge/models"
)

const (
	projectsTable = "projects"
	membersTable  = "project_members"
	profilesTable = "profiles"
)

// Store talks to the projects, project_members and profiles tables.
type Store struct {
	client *postgrest.Client
	log    *logrus.Logger
}

// NewClient builds a PostgREST client for a Supabase project using the service
// key. timeout bounds connecting and waiting for response headers, so a call
// abandoned by exec still ends against a stalled upstream.
func NewClient(supabaseURL, serviceKey string, timeout time.Duration) (*postgrest.Client, error) {
	if supabaseURL == "" || serviceKey == "" {
		return nil, fmt.Errorf("supabase url and service key are required")
	}
	client := postgrest.NewClient(strings.TrimRight(supabaseURL, "/")+"/rest/v1", "", map[string]string{
		"apikey":        serviceKey,
		"Authorization": fmt.Sprintf("Bearer %s", serviceKey),
	})
	if client.ClientError != nil {
		return nil, fmt.Errorf("failed to initialize postgrest client: %w", client.ClientError)
	}
	client.Transport.Parent = newTransport(timeout)
	return client, nil
}

func newTransport(timeout time.Duration) *http.Transport {
	if timeout <= 0 {
		timeout = store.DefaultCallTimeout
	}
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DialContext = (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext
	t.TLSHandshakeTimeout = timeout
	t.ResponseHeaderTimeout = timeout
	return t
}

// New wraps an initialized PostgREST client.
func New(client *postgrest.Client, log *logrus.Logger) *Store {
	return &Store{client: client, log: log}
}

// CreateProject inserts a project and returns the stored row.
func (s *Store) CreateProject(ctx context.Context, p models.Project) (models.Project, error) {
	// Leave id and created_at to the column defaults.
	row := map[string]interface{}{
		"creator_id":      p.CreatorID.String(),
		"title":           p.Title,
		"required_skills": skills(p.RequiredSkills),
	}
	if p.Description != nil {
		row["description"] = *p.Description
	}
	if p.Domain != nil {
		row["domain"] = string(*p.Domain)
	}
	if p.MaxTeamSize != nil {
		row["max_team_size"] = *p.MaxTeamSize
	}
	if p.IsPublic != nil {
		row["is_public"] = *p.IsPublic
	}

	var results []models.Project
	err := s.exec(ctx, "create project", func() error {
		_, err := s.client.From(projectsTable).
			Insert(row, false, "", "representation", "").
			ExecuteTo(&results)
		return err
	})
	if err != nil {
		return models.Project{}, err
	}
	if len(results) == 0 {
		return models.Project{}, fmt.Errorf("%w: project insert returned no row", store.ErrUnavailable)
	}
	s.log.WithField("project_id", results[0].ID).Debug("project inserted")
	return results[0], nil
}

// GetProject fetches one project by id.
func (s *Store) GetProject(ctx context.Context, id uuid.UUID) (models.Project, error) {
	var results []models.Project
	err := s.exec(ctx, "get project", func() error {
		_, err := s.client.From(projectsTable).
			Select("*", "", false).
			Eq("id", id.String()).
			Limit(1, "").
			ExecuteTo(&results)
		return err
	})
	if err != nil {
		return models.Project{}, err
	}
	if len(results) == 0 {
		return models.Project{}, store.ErrNotFound
	}
	return results[0], nil
}

// ListProjects lists projects newest first.
func (s *Store) ListProjects(ctx context.Context, filter store.ProjectFilter) ([]models.Project, error) {
	var results []models.Project
	err := s.exec(ctx, "list projects", func() error {
		q := s.client.From(projectsTable).Select("*", "", false)
		if filter.CreatorID.Valid {
			q = q.Eq("creator_id", filter.CreatorID.UUID.String())
		}
		q = q.Order("created_at", &postgrest.OrderOpts{Ascending: false})
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit, "")
		}
		_, err := q.ExecuteTo(&results)
		return err
	})
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []models.Project{}
	}
	return results, nil
}

// CreateMembershipRequest inserts a pending request. A second request for the
// same (project, user) fails on the unique index with ErrDuplicate.
func (s *Store) CreateMembershipRequest(ctx context.Context, projectID, userID uuid.UUID) (models.MembershipRequest, error) {
	row := map[string]interface{}{
		"project_id": projectID.String(),
		"user_id":    userID.String(),
		"status":     models.StatusPending,
	}

	var results []models.MembershipRequest
	err := s.exec(ctx, "create membership request", func() error {
		_, err := s.client.From(membersTable).
			Insert(row, false, "", "representation", "").
			ExecuteTo(&results)
		return err
	})
	if err != nil {
		return models.MembershipRequest{}, err
	}
	if len(results) == 0 {
		return models.MembershipRequest{}, fmt.Errorf("%w: membership insert returned no row", store.ErrUnavailable)
	}
	return results[0], nil
}

// GetMembershipRequest returns the user's row for a project, or nil.
func (s *Store) GetMembershipRequest(ctx context.Context, projectID, userID uuid.UUID) (*models.MembershipRequest, error) {
	var results []models.MembershipRequest
	err := s.exec(ctx, "get membership request", func() error {
		_, err := s.client.From(membersTable).
			Select("*", "", false).
			Eq("project_id", projectID.String()).
			Eq("user_id", userID.String()).
			Limit(1, "").
			ExecuteTo(&results)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// GetMembershipRequestByID fetches one request by id.
func (s *Store) GetMembershipRequestByID(ctx context.Context, id uuid.UUID) (models.MembershipRequest, error) {
	var results []models.MembershipRequest
	err := s.exec(ctx, "get membership request", func() error {
		_, err := s.client.From(membersTable).
			Select("*", "", false).
			Eq("id", id.String()).
			Limit(1, "").
			ExecuteTo(&results)
		return err
	})
	if err != nil {
		return models.MembershipRequest{}, err
	}
	if len(results) == 0 {
		return models.MembershipRequest{}, store.ErrNotFound
	}
	return results[0], nil
}

// ListMembershipRequests lists a project's requests, oldest first.
func (s *Store) ListMembershipRequests(ctx context.Context, projectID uuid.UUID, statuses ...models.MembershipStatus) ([]models.MembershipRequest, error) {
	var results []models.MembershipRequest
	err := s.exec(ctx, "list membership requests", func() error {
		q := s.client.From(membersTable).
			Select("*", "", false).
			Eq("project_id", projectID.String())
		if len(statuses) > 0 {
			values := make([]string, len(statuses))
			for i, st := range statuses {
				values[i] = string(st)
			}
			q = q.In("status", values)
		}
		_, err := q.Order("created_at", &postgrest.OrderOpts{Ascending: true}).ExecuteTo(&results)
		return err
	})
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []models.MembershipRequest{}
	}
	return results, nil
}

// ListMembershipRequestsByUser lists every request a user has made, newest first.
func (s *Store) ListMembershipRequestsByUser(ctx context.Context, userID uuid.UUID) ([]models.MembershipRequest, error) {
	var results []models.MembershipRequest
	err := s.exec(ctx, "list user membership requests", func() error {
		_, err := s.client.From(membersTable).
			Select("*", "", false).
			Eq("user_id", userID.String()).
			Order("created_at", &postgrest.OrderOpts{Ascending: false}).
			ExecuteTo(&results)
		return err
	})
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []models.MembershipRequest{}
	}
	return results, nil
}

// UpdateMembershipRequestStatus sets status only where the row still holds
// expected. When nothing matches, the row is re-read to tell a missing
// request (ErrNotFound) from a lost race (ErrPreconditionFailed).
func (s *Store) UpdateMembershipRequestStatus(ctx context.Context, id uuid.UUID, status, expected models.MembershipStatus) (models.MembershipRequest, error) {
	if !status.Valid() || !expected.Valid() {
		return models.MembershipRequest{}, fmt.Errorf("invalid membership status transition %q -> %q", expected, status)
	}
	var results []models.MembershipRequest
	err := s.exec(ctx, "update membership request", func() error {
		_, err := s.client.From(membersTable).
			Update(map[string]interface{}{"status": status}, "representation", "").
			Eq("id", id.String()).
			Eq("status", string(expected)).
			ExecuteTo(&results)
		return err
	})
	if err != nil {
		return models.MembershipRequest{}, err
	}
	if len(results) > 0 {
		return results[0], nil
	}

	if _, err := s.GetMembershipRequestByID(ctx, id); err != nil {
		return models.MembershipRequest{}, err
	}
	return models.MembershipRequest{}, store.ErrPreconditionFailed
}

// GetProfile fetches one profile, or nil when the user has none.
func (s *Store) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profiles, err := s.ListProfiles(ctx, []uuid.UUID{userID})
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return &profiles[0], nil
}

// ListProfiles fetches the profiles of the given users. Users without a profile are absent.
func (s *Store) ListProfiles(ctx context.Context, userIDs []uuid.UUID) ([]models.Profile, error) {
	if len(userIDs) == 0 {
		return []models.Profile{}, nil
	}
	ids := make([]string, len(userIDs))
	for i, id := range userIDs {
		ids[i] = id.String()
	}

	var results []models.Profile
	err := s.exec(ctx, "list profiles", func() error {
		_, err := s.client.From(profilesTable).
			Select("user_id,name,avatar_url", "", false).
			In("user_id", ids).
			ExecuteTo(&results)
		return err
	})
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []models.Profile{}
	}
	return results, nil
}

// Ping issues a minimal read against the projects table.
func (s *Store) Ping(ctx context.Context) error {
	return s.exec(ctx, "ping", func() error {
		_, _, err := s.client.From(projectsTable).Select("id", "", false).Limit(1, "").Execute()
		return err
	})
}

// Close is a no-op; the PostgREST client holds no pooled resources of its own.
func (s *Store) Close() error {
	return nil
}

// exec runs one PostgREST call under ctx. The client has no context support,
// so the call runs in its own goroutine and is abandoned on cancellation; the
// transport timeouts set in NewClient end it shortly after. An abandoned write
// may still have been applied upstream.
func (s *Store) exec(ctx context.Context, op string, call func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s: %v", store.ErrUnavailable, op, err)
	}
	done := make(chan error, 1)
	go func() { done <- call() }()

	select {
	case err := <-done:
		if err == nil {
			return nil
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s: %v", store.ErrDuplicate, op, err)
		}
		s.log.WithError(err).WithField("op", op).Warn("postgrest call failed")
		return fmt.Errorf("%w: %s: %v", store.ErrUnavailable, op, err)
	case <-ctx.Done():
		s.log.WithField("op", op).Warn("postgrest call abandoned")
		return fmt.Errorf("%w: %s: %v", store.ErrUnavailable, op, ctx.Err())
	}
}

// isUniqueViolation matches Postgres unique_violation (SQLSTATE 23505) as
// surfaced in PostgREST error bodies.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}

func skills(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var _ store.Store = (*Store)(nil)
