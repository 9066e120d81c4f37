// Package sqlite provides a SQLite-backed store for local development and
// tests. It enforces the same (project_id, user_id) uniqueness and
// conditional status update as the Supabase schema.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"teamforge/internal/store"
	"teamforge/models"
)

//go:embed schema.sql
var schema string

// Store persists projects, membership requests and profiles in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer keeps SQLITE_BUSY out of the picture; uniqueness is still
	// decided by the constraint, not by the serialization.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := sqlDB.Exec(stmt); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.sqlDB.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// CreateProject inserts a project, assigning id and created_at.
func (s *Store) CreateProject(ctx context.Context, p models.Project) (models.Project, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = fromMillis(toMillis(s.now()))
	if p.RequiredSkills == nil {
		p.RequiredSkills = []string{}
	}
	skills, err := json.Marshal(p.RequiredSkills)
	if err != nil {
		return models.Project{}, fmt.Errorf("encode required skills: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
		INSERT INTO projects (id, creator_id, title, description, domain, required_skills, max_team_size, is_public, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID.String(), p.CreatorID.String(), p.Title, p.Description, p.Domain,
		string(skills), p.MaxTeamSize, p.IsPublic, toMillis(p.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Project{}, fmt.Errorf("%w: project %s", store.ErrDuplicate, p.ID)
		}
		return models.Project{}, unavailable("create project", err)
	}
	return p, nil
}

const projectColumns = `id, creator_id, title, description, domain, required_skills, max_team_size, is_public, created_at`

// GetProject fetches one project by id.
func (s *Store) GetProject(ctx context.Context, id uuid.UUID) (models.Project, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id.String())
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, store.ErrNotFound
	}
	if err != nil {
		return models.Project{}, unavailable("get project", err)
	}
	return p, nil
}

// ListProjects lists projects newest first.
func (s *Store) ListProjects(ctx context.Context, filter store.ProjectFilter) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	var args []interface{}
	if filter.CreatorID.Valid {
		query += ` WHERE creator_id = ?`
		args = append(args, filter.CreatorID.UUID.String())
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("list projects", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, unavailable("list projects", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list projects", err)
	}
	return projects, nil
}

// CreateMembershipRequest inserts a pending request. The UNIQUE (project_id,
// user_id) constraint turns a concurrent second insert into ErrDuplicate.
func (s *Store) CreateMembershipRequest(ctx context.Context, projectID, userID uuid.UUID) (models.MembershipRequest, error) {
	r := models.MembershipRequest{
		ID:        uuid.New(),
		ProjectID: projectID,
		UserID:    userID,
		Status:    models.StatusPending,
		CreatedAt: fromMillis(toMillis(s.now())),
	}
	_, err := s.sqlDB.ExecContext(ctx, `
		INSERT INTO project_members (id, project_id, user_id, status, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		r.ID.String(), projectID.String(), userID.String(), string(r.Status), toMillis(r.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.MembershipRequest{}, fmt.Errorf("%w: request for project %s by %s", store.ErrDuplicate, projectID, userID)
		}
		if isForeignKeyViolation(err) {
			return models.MembershipRequest{}, fmt.Errorf("%w: project %s", store.ErrNotFound, projectID)
		}
		return models.MembershipRequest{}, unavailable("create membership request", err)
	}
	return r, nil
}

const memberColumns = `id, project_id, user_id, status, created_at`

// GetMembershipRequest returns the user's row for a project, or nil.
func (s *Store) GetMembershipRequest(ctx context.Context, projectID, userID uuid.UUID) (*models.MembershipRequest, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM project_members WHERE project_id = ? AND user_id = ?`,
		projectID.String(), userID.String())
	r, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("get membership request", err)
	}
	return &r, nil
}

// GetMembershipRequestByID fetches one request by id.
func (s *Store) GetMembershipRequestByID(ctx context.Context, id uuid.UUID) (models.MembershipRequest, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM project_members WHERE id = ?`, id.String())
	r, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MembershipRequest{}, store.ErrNotFound
	}
	if err != nil {
		return models.MembershipRequest{}, unavailable("get membership request", err)
	}
	return r, nil
}

// ListMembershipRequests lists a project's requests, oldest first.
func (s *Store) ListMembershipRequests(ctx context.Context, projectID uuid.UUID, statuses ...models.MembershipStatus) ([]models.MembershipRequest, error) {
	query := `SELECT ` + memberColumns + ` FROM project_members WHERE project_id = ?`
	args := []interface{}{projectID.String()}
	if len(statuses) > 0 {
		query += ` AND status IN (?` + strings.Repeat(`, ?`, len(statuses)-1) + `)`
		for _, st := range statuses {
			args = append(args, string(st))
		}
	}
	query += ` ORDER BY created_at ASC, rowid ASC`
	return s.listMembers(ctx, "list membership requests", query, args...)
}

// ListMembershipRequestsByUser lists every request a user has made, newest first.
func (s *Store) ListMembershipRequestsByUser(ctx context.Context, userID uuid.UUID) ([]models.MembershipRequest, error) {
	return s.listMembers(ctx, "list user membership requests",
		`SELECT `+memberColumns+` FROM project_members WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`,
		userID.String())
}

func (s *Store) listMembers(ctx context.Context, op, query string, args ...interface{}) ([]models.MembershipRequest, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable(op, err)
	}
	defer rows.Close()

	out := []models.MembershipRequest{}
	for rows.Next() {
		r, err := scanMember(rows)
		if err != nil {
			return nil, unavailable(op, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(op, err)
	}
	return out, nil
}

// UpdateMembershipRequestStatus sets status only where the row still holds expected.
func (s *Store) UpdateMembershipRequestStatus(ctx context.Context, id uuid.UUID, status, expected models.MembershipStatus) (models.MembershipRequest, error) {
	if !status.Valid() || !expected.Valid() {
		return models.MembershipRequest{}, fmt.Errorf("invalid membership status transition %q -> %q", expected, status)
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE project_members SET status = ? WHERE id = ? AND status = ?`,
		string(status), id.String(), string(expected))
	if err != nil {
		return models.MembershipRequest{}, unavailable("update membership request", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.MembershipRequest{}, unavailable("update membership request", err)
	}

	r, err := s.GetMembershipRequestByID(ctx, id)
	if err != nil {
		return models.MembershipRequest{}, err
	}
	if n == 0 {
		return models.MembershipRequest{}, fmt.Errorf("%w: request %s is %s", store.ErrPreconditionFailed, id, r.Status)
	}
	return r, nil
}

// PutProfile inserts or replaces a profile. Profiles are owned by the
// identity side of the product; this exists for seeding local databases.
func (s *Store) PutProfile(ctx context.Context, p models.Profile) error {
	_, err := s.sqlDB.ExecContext(ctx, `
		INSERT INTO profiles (user_id, name, avatar_url) VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET name = excluded.name, avatar_url = excluded.avatar_url`,
		p.UserID.String(), p.Name, p.AvatarURL)
	if err != nil {
		return unavailable("put profile", err)
	}
	return nil
}

// GetProfile fetches one profile, or nil when the user has none.
func (s *Store) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT user_id, name, avatar_url FROM profiles WHERE user_id = ?`, userID.String(),
	).Scan(&p.UserID, &p.Name, &p.AvatarURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("get profile", err)
	}
	return &p, nil
}

// ListProfiles fetches the profiles of the given users.
func (s *Store) ListProfiles(ctx context.Context, userIDs []uuid.UUID) ([]models.Profile, error) {
	out := []models.Profile{}
	if len(userIDs) == 0 {
		return out, nil
	}
	args := make([]interface{}, len(userIDs))
	for i, id := range userIDs {
		args[i] = id.String()
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT user_id, name, avatar_url FROM profiles WHERE user_id IN (?`+strings.Repeat(`, ?`, len(userIDs)-1)+`)`,
		args...)
	if err != nil {
		return nil, unavailable("list profiles", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.UserID, &p.Name, &p.AvatarURL); err != nil {
			return nil, unavailable("list profiles", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list profiles", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row scanner) (models.Project, error) {
	var (
		p         models.Project
		domain    sql.NullString
		skills    string
		size      sql.NullInt64
		public    sql.NullBool
		createdAt int64
	)
	if err := row.Scan(&p.ID, &p.CreatorID, &p.Title, &p.Description, &domain, &skills, &size, &public, &createdAt); err != nil {
		return models.Project{}, err
	}
	if domain.Valid {
		d := models.Domain(domain.String)
		p.Domain = &d
	}
	if err := json.Unmarshal([]byte(skills), &p.RequiredSkills); err != nil {
		return models.Project{}, fmt.Errorf("decode required skills: %w", err)
	}
	if size.Valid {
		v := int(size.Int64)
		p.MaxTeamSize = &v
	}
	if public.Valid {
		v := public.Bool
		p.IsPublic = &v
	}
	p.CreatedAt = fromMillis(createdAt)
	return p, nil
}

func scanMember(row scanner) (models.MembershipRequest, error) {
	var (
		r         models.MembershipRequest
		status    string
		createdAt int64
	)
	if err := row.Scan(&r.ID, &r.ProjectID, &r.UserID, &status, &createdAt); err != nil {
		return models.MembershipRequest{}, err
	}
	r.Status = models.MembershipStatus(status)
	r.CreatedAt = fromMillis(createdAt)
	return r, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", store.ErrUnavailable, op, err)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}

var _ store.Store = (*Store)(nil)
