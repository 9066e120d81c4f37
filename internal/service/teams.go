// Package service orchestrates the membership engine over the stores: it
// fetches the facts a page needs, runs the pure engine functions on them and
// writes the results back.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"teamforge/internal/membership"
	"teamforge/internal/store"
	"teamforge/models"
)

// DefaultStoreTimeout bounds a single store call when TeamsConfig.Timeout is zero.
const DefaultStoreTimeout = store.DefaultCallTimeout

// ProjectListing is the projects page: every visible project plus the actor's own.
type ProjectListing struct {
	All  []models.Project `json:"all"`
	Mine []models.Project `json:"mine"`
}

// ProjectDetail is the project page as seen by one actor. Request is the row
// written by RequestToJoin or DecideRequest. Stale marks a page rebuilt from
// that row alone because the re-read after the write failed.
type ProjectDetail struct {
	Project      models.Project                `json:"project"`
	DomainLabel  string                        `json:"domain_label"`
	Role         membership.Role               `json:"role"`
	Actions      []membership.Action           `json:"actions"`
	Team         membership.ProjectComposition `json:"team"`
	OverCapacity bool                          `json:"over_capacity"`
	Request      *models.MembershipRequest     `json:"request,omitempty"`
	Stale        bool                          `json:"stale,omitempty"`
}

// Teams handles project and membership business logic.
type Teams struct {
	projects    store.ProjectStore
	memberships store.MembershipStore
	profiles    store.ProfileStore
	policy      membership.Policy
	timeout     time.Duration
	log         *logrus.Logger
}

// TeamsConfig holds the dependencies of the team service.
type TeamsConfig struct {
	Projects    store.ProjectStore
	Memberships store.MembershipStore
	Profiles    store.ProfileStore
	Policy      membership.Policy
	Timeout     time.Duration
	Logger      *logrus.Logger
}

// NewTeams creates a new team service.
func NewTeams(cfg TeamsConfig) *Teams {
	t := &Teams{
		projects:    cfg.Projects,
		memberships: cfg.Memberships,
		profiles:    cfg.Profiles,
		policy:      cfg.Policy,
		timeout:     cfg.Timeout,
		log:         cfg.Logger,
	}
	if !t.policy.Valid() {
		t.policy = membership.PolicyLenient
	}
	if t.timeout <= 0 {
		t.timeout = DefaultStoreTimeout
	}
	if t.log == nil {
		t.log = logrus.StandardLogger()
	}
	return t
}

// CreateProject validates input and stores a new project owned by actor.
func (t *Teams) CreateProject(ctx context.Context, actor uuid.NullUUID, input membership.ProjectInput) (models.Project, error) {
	project, err := membership.NewProject(actor, input)
	if err != nil {
		return models.Project{}, err
	}

	callCtx, cancel := t.call(ctx)
	defer cancel()
	created, err := t.projects.CreateProject(callCtx, project)
	if err != nil {
		return models.Project{}, storeError("create project", err)
	}

	t.log.WithFields(logrus.Fields{
		"project_id": created.ID,
		"actor_id":   actor.UUID,
	}).Info("Project created")
	return created, nil
}

// ListProjects returns every project visible to actor and the projects actor owns.
// Both lists are ordered newest first.
func (t *Teams) ListProjects(ctx context.Context, actor uuid.NullUUID) (ProjectListing, error) {
	var (
		all, mine []models.Project
		records   []models.MembershipRequest
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		callCtx, cancel := t.call(gctx)
		defer cancel()
		var err error
		all, err = t.projects.ListProjects(callCtx, store.ProjectFilter{})
		return err
	})
	if actor.Valid {
		g.Go(func() error {
			callCtx, cancel := t.call(gctx)
			defer cancel()
			var err error
			mine, err = t.projects.ListProjects(callCtx, store.ProjectFilter{CreatorID: actor})
			return err
		})
		if t.policy == membership.PolicyStrict {
			g.Go(func() error {
				callCtx, cancel := t.call(gctx)
				defer cancel()
				var err error
				records, err = t.memberships.ListMembershipRequestsByUser(callCtx, actor.UUID)
				return err
			})
		}
	}
	if err := g.Wait(); err != nil {
		return ProjectListing{}, storeError("list projects", err)
	}

	listing := ProjectListing{
		All:  membership.ListVisible(all, actor, records, t.policy),
		Mine: membership.ListMine(mine, actor),
	}
	if listing.All == nil {
		listing.All = []models.Project{}
	}
	return listing, nil
}

// GetProjectDetail loads a project with the actor's role, permitted actions
// and the current team. Pending requesters are only listed for the owner.
func (t *Teams) GetProjectDetail(ctx context.Context, actor uuid.NullUUID, projectID uuid.UUID) (ProjectDetail, error) {
	callCtx, cancel := t.call(ctx)
	project, err := t.projects.GetProject(callCtx, projectID)
	cancel()
	if err != nil {
		return ProjectDetail{}, storeError("get project", err)
	}

	var (
		records []models.MembershipRequest
		owner   *models.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		callCtx, cancel := t.call(gctx)
		defer cancel()
		var err error
		records, err = t.memberships.ListMembershipRequests(callCtx, project.ID)
		return err
	})
	g.Go(func() error {
		callCtx, cancel := t.call(gctx)
		defer cancel()
		var err error
		owner, err = t.profiles.GetProfile(callCtx, project.CreatorID)
		return err
	})
	if err := g.Wait(); err != nil {
		return ProjectDetail{}, storeError("get project detail", err)
	}

	if !membership.CanView(project, actor, actorRecord(records, actor), t.policy) {
		return ProjectDetail{}, fmt.Errorf("project %s: %w", projectID, membership.ErrNotFound)
	}

	role := membership.ClassifyRole(project, actor, records)
	visible := records
	if role != membership.RoleOwner {
		visible = withoutPending(records)
	}

	profiles, err := t.memberProfiles(ctx, project, visible)
	if err != nil {
		return ProjectDetail{}, err
	}
	if owner != nil {
		profiles = append(profiles, *owner)
	}

	team := membership.ComposeTeam(project, visible, membership.LookupFromProfiles(profiles))
	return ProjectDetail{
		Project:      project,
		DomainLabel:  project.DomainLabel(),
		Role:         role,
		Actions:      membership.PermittedActions(role, actor),
		Team:         team,
		OverCapacity: team.OverCapacity(),
	}, nil
}

// RequestToJoin files a pending request for actor on the project and returns
// the refreshed project page. Once the request is stored the call succeeds;
// if the page cannot be re-read, a stale page built from the stored row is
// returned instead of an error.
func (t *Teams) RequestToJoin(ctx context.Context, actor uuid.NullUUID, projectID uuid.UUID) (ProjectDetail, error) {
	if !actor.Valid {
		return ProjectDetail{}, membership.ErrNotAuthenticated
	}
	logger := t.log.WithFields(logrus.Fields{
		"project_id": projectID,
		"actor_id":   actor.UUID,
	})

	callCtx, cancel := t.call(ctx)
	project, err := t.projects.GetProject(callCtx, projectID)
	cancel()
	if err != nil {
		return ProjectDetail{}, storeError("get project", err)
	}

	callCtx, cancel = t.call(ctx)
	existing, err := t.memberships.GetMembershipRequest(callCtx, project.ID, actor.UUID)
	cancel()
	if err != nil {
		return ProjectDetail{}, storeError("get membership request", err)
	}
	if !membership.CanView(project, actor, existing, t.policy) {
		return ProjectDetail{}, fmt.Errorf("project %s: %w", projectID, membership.ErrNotFound)
	}

	row, err := membership.RequestToJoin(project, actor, existing)
	if err != nil {
		logger.WithError(err).Debug("Join request refused")
		return ProjectDetail{}, err
	}

	callCtx, cancel = t.call(ctx)
	created, err := t.memberships.CreateMembershipRequest(callCtx, row.ProjectID, row.UserID)
	cancel()
	if errors.Is(err, store.ErrUnavailable) {
		created, err = t.reconcileJoin(ctx, row, err)
	}
	if err != nil {
		return ProjectDetail{}, storeError("create membership request", err)
	}
	logger.WithField("request_id", created.ID).Info("Join request created")

	return t.refresh(ctx, actor, project, created, logger), nil
}

// reconcileJoin re-reads the actor's row after an insert failed with an
// unavailable store, since a timed-out insert may still have landed.
func (t *Teams) reconcileJoin(ctx context.Context, row models.MembershipRequest, cause error) (models.MembershipRequest, error) {
	callCtx, cancel := t.call(ctx)
	defer cancel()
	stored, err := t.memberships.GetMembershipRequest(callCtx, row.ProjectID, row.UserID)
	if err != nil || stored == nil || stored.Status != models.StatusPending {
		return models.MembershipRequest{}, cause
	}
	return *stored, nil
}

// DecideRequest lets the project owner accept or reject a pending request and
// returns the refreshed project page. Of two concurrent decisions on the same
// request exactly one is applied; the other gets ErrAlreadyDecided. Once the
// decision is stored the call succeeds, with a stale page if the re-read fails.
func (t *Teams) DecideRequest(ctx context.Context, actor uuid.NullUUID, projectID, requestID uuid.UUID, decision membership.Decision) (ProjectDetail, error) {
	if decision != membership.DecisionAccept && decision != membership.DecisionReject {
		return ProjectDetail{}, membership.ErrInvalidDecision
	}
	if !actor.Valid {
		return ProjectDetail{}, membership.ErrNotAuthenticated
	}
	logger := t.log.WithFields(logrus.Fields{
		"project_id": projectID,
		"request_id": requestID,
		"actor_id":   actor.UUID,
		"decision":   decision,
	})

	var (
		project models.Project
		request models.MembershipRequest
		own     *models.MembershipRequest
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		callCtx, cancel := t.call(gctx)
		defer cancel()
		var err error
		project, err = t.projects.GetProject(callCtx, projectID)
		if err != nil || !t.mayBeHidden(project, actor) {
			return err
		}
		own, err = t.memberships.GetMembershipRequest(callCtx, project.ID, actor.UUID)
		return err
	})
	g.Go(func() error {
		callCtx, cancel := t.call(gctx)
		defer cancel()
		var err error
		request, err = t.memberships.GetMembershipRequestByID(callCtx, requestID)
		return err
	})
	if err := g.Wait(); err != nil {
		return ProjectDetail{}, storeError("load membership request", err)
	}
	if !membership.CanView(project, actor, own, t.policy) {
		return ProjectDetail{}, fmt.Errorf("project %s: %w", projectID, membership.ErrNotFound)
	}

	decided, err := membership.DecideRequest(request, actor, project, decision)
	if err != nil {
		logger.WithError(err).Debug("Decision refused")
		return ProjectDetail{}, err
	}

	callCtx, cancel := t.call(ctx)
	updated, err := t.memberships.UpdateMembershipRequestStatus(callCtx, decided.ID, decided.Status, models.StatusPending)
	cancel()
	if errors.Is(err, store.ErrUnavailable) {
		updated, err = t.reconcileDecision(ctx, decided, err)
	}
	if err != nil {
		return ProjectDetail{}, storeError("update membership request", err)
	}
	logger.WithField("status", updated.Status).Info("Join request decided")

	return t.refresh(ctx, actor, project, updated, logger), nil
}

// reconcileDecision re-reads the request after an update failed with an
// unavailable store. Finding the row in the decided status means this
// decision was applied.
func (t *Teams) reconcileDecision(ctx context.Context, decided models.MembershipRequest, cause error) (models.MembershipRequest, error) {
	callCtx, cancel := t.call(ctx)
	defer cancel()
	stored, err := t.memberships.GetMembershipRequestByID(callCtx, decided.ID)
	if err != nil || stored.Status != decided.Status {
		return models.MembershipRequest{}, cause
	}
	return stored, nil
}

// refresh re-reads the project page after a committed write. On failure it
// falls back to a page derived from the written row and marks it stale.
func (t *Teams) refresh(ctx context.Context, actor uuid.NullUUID, project models.Project, written models.MembershipRequest, logger *logrus.Entry) ProjectDetail {
	detail, err := t.GetProjectDetail(ctx, actor, project.ID)
	if err == nil {
		detail.Request = &written
		return detail
	}
	logger.WithError(err).Warn("Write applied but page refresh failed")

	records := []models.MembershipRequest{written}
	role := membership.ClassifyRole(project, actor, records)
	if role != membership.RoleOwner {
		records = withoutPending(records)
	}
	team := membership.ComposeTeam(project, records, nil)
	return ProjectDetail{
		Project:      project,
		DomainLabel:  project.DomainLabel(),
		Role:         role,
		Actions:      membership.PermittedActions(role, actor),
		Team:         team,
		OverCapacity: team.OverCapacity(),
		Request:      &written,
		Stale:        true,
	}
}

// mayBeHidden reports whether CanView needs the actor's own row for project.
func (t *Teams) mayBeHidden(project models.Project, actor uuid.NullUUID) bool {
	return t.policy == membership.PolicyStrict && !project.Public() && actor.UUID != project.CreatorID
}

// ListMyRequests returns the actor's membership requests across all projects.
func (t *Teams) ListMyRequests(ctx context.Context, actor uuid.NullUUID) ([]models.MembershipRequest, error) {
	if !actor.Valid {
		return nil, membership.ErrNotAuthenticated
	}
	callCtx, cancel := t.call(ctx)
	defer cancel()
	records, err := t.memberships.ListMembershipRequestsByUser(callCtx, actor.UUID)
	if err != nil {
		return nil, storeError("list membership requests", err)
	}
	if records == nil {
		records = []models.MembershipRequest{}
	}
	return records, nil
}

// Ping reports whether the project store is reachable, when it can tell.
func (t *Teams) Ping(ctx context.Context) error {
	p, ok := t.projects.(store.Pinger)
	if !ok {
		return nil
	}
	callCtx, cancel := t.call(ctx)
	defer cancel()
	if err := p.Ping(callCtx); err != nil {
		return storeError("ping", err)
	}
	return nil
}

func (t *Teams) memberProfiles(ctx context.Context, project models.Project, records []models.MembershipRequest) ([]models.Profile, error) {
	ids := make([]uuid.UUID, 0, len(records))
	for _, r := range records {
		if r.Status == models.StatusRejected || r.UserID == project.CreatorID {
			continue
		}
		ids = append(ids, r.UserID)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	callCtx, cancel := t.call(ctx)
	defer cancel()
	profiles, err := t.profiles.ListProfiles(callCtx, ids)
	if err != nil {
		return nil, storeError("list profiles", err)
	}
	return profiles, nil
}

func (t *Teams) call(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, t.timeout)
}

func actorRecord(records []models.MembershipRequest, actor uuid.NullUUID) *models.MembershipRequest {
	if !actor.Valid {
		return nil
	}
	for i := range records {
		if records[i].UserID == actor.UUID {
			return &records[i]
		}
	}
	return nil
}

func withoutPending(records []models.MembershipRequest) []models.MembershipRequest {
	out := make([]models.MembershipRequest, 0, len(records))
	for _, r := range records {
		if r.Status != models.StatusPending {
			out = append(out, r)
		}
	}
	return out
}

// storeError translates store failures into engine errors.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%s: %w", op, membership.ErrNotFound)
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%s: %w", op, membership.ErrAlreadyRequested)
	case errors.Is(err, store.ErrPreconditionFailed):
		return fmt.Errorf("%s: %w", op, membership.ErrAlreadyDecided)
	default:
		return fmt.Errorf("%s: %w: %w", op, membership.ErrStoreUnavailable, err)
	}
}
