package membership

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamforge/models"
)

func newTestProject(owner uuid.UUID) models.Project {
	size := 3
	return models.Project{
		ID:          uuid.New(),
		CreatorID:   owner,
		Title:       "Smart Attendance System",
		MaxTeamSize: &size,
	}
}

func record(p models.Project, user uuid.UUID, status models.MembershipStatus) models.MembershipRequest {
	return models.MembershipRequest{ID: uuid.New(), ProjectID: p.ID, UserID: user, Status: status}
}

func TestClassifyRole(t *testing.T) {
	t.Parallel()

	owner, alice, bob, carol, dave := uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()
	p := newTestProject(owner)
	records := []models.MembershipRequest{
		record(p, alice, models.StatusPending),
		record(p, bob, models.StatusAccepted),
		record(p, carol, models.StatusRejected),
	}

	tests := []struct {
		name  string
		actor uuid.NullUUID
		want  Role
	}{
		{"anonymous", Anonymous, RoleNone},
		{"owner", Actor(owner), RoleOwner},
		{"pending requester", Actor(alice), RolePending},
		{"accepted member", Actor(bob), RoleAccepted},
		{"rejected requester", Actor(carol), RoleRejected},
		{"stranger", Actor(dave), RoleNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRole(p, tt.actor, records))
		})
	}
}

func TestClassifyRole_OwnerWinsOverStrayRecord(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	p := newTestProject(owner)
	stray := []models.MembershipRequest{record(p, owner, models.StatusRejected)}

	assert.Equal(t, RoleOwner, ClassifyRole(p, Actor(owner), stray))
}

func TestClassifyRole_IgnoresOtherProjects(t *testing.T) {
	t.Parallel()

	owner, alice := uuid.New(), uuid.New()
	p := newTestProject(owner)
	other := newTestProject(owner)

	assert.Equal(t, RoleNone, ClassifyRole(p, Actor(alice), []models.MembershipRequest{record(other, alice, models.StatusAccepted)}))
}

func TestClassifyRole_OwnerIffCreatorAndStable(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	p := newTestProject(owner)
	users := []uuid.UUID{owner, uuid.New(), uuid.New(), uuid.New()}
	statuses := []models.MembershipStatus{models.StatusPending, models.StatusAccepted, models.StatusRejected}
	valid := map[Role]bool{RoleOwner: true, RoleAccepted: true, RolePending: true, RoleRejected: true, RoleNone: true}

	for _, u := range users {
		for _, s := range statuses {
			records := []models.MembershipRequest{record(p, u, s)}
			got := ClassifyRole(p, Actor(u), records)

			assert.True(t, valid[got], "unexpected role %q", got)
			assert.Equal(t, u == owner, got == RoleOwner)
			assert.Equal(t, got, ClassifyRole(p, Actor(u), records), "classification must be stable")
		}
	}
}

func TestPermittedActions(t *testing.T) {
	t.Parallel()

	user := Actor(uuid.New())
	assert.Equal(t, []Action{ActionSignIn}, PermittedActions(RoleNone, Anonymous))
	assert.Equal(t, []Action{ActionRequestJoin}, PermittedActions(RoleNone, user))
	assert.Equal(t, []Action{ActionDecideRequests}, PermittedActions(RoleOwner, user))
	assert.Empty(t, PermittedActions(RolePending, user))
	assert.Empty(t, PermittedActions(RoleAccepted, user))
	assert.Empty(t, PermittedActions(RoleRejected, user))
}

func TestRequestToJoin(t *testing.T) {
	t.Parallel()

	owner, alice := uuid.New(), uuid.New()
	p := newTestProject(owner)

	t.Run("creates pending row", func(t *testing.T) {
		r, err := RequestToJoin(p, Actor(alice), nil)
		require.NoError(t, err)
		assert.Equal(t, p.ID, r.ProjectID)
		assert.Equal(t, alice, r.UserID)
		assert.Equal(t, models.StatusPending, r.Status)
		assert.Equal(t, uuid.Nil, r.ID)
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := RequestToJoin(p, Anonymous, nil)
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("owner", func(t *testing.T) {
		_, err := RequestToJoin(p, Actor(owner), nil)
		assert.ErrorIs(t, err, ErrSelfJoinNotAllowed)
	})

	for _, s := range []models.MembershipStatus{models.StatusPending, models.StatusAccepted, models.StatusRejected} {
		t.Run("existing "+string(s), func(t *testing.T) {
			existing := record(p, alice, s)
			_, err := RequestToJoin(p, Actor(alice), &existing)
			assert.ErrorIs(t, err, ErrAlreadyRequested)
		})
	}
}

func TestDecideRequest(t *testing.T) {
	t.Parallel()

	owner, alice := uuid.New(), uuid.New()
	p := newTestProject(owner)
	pending := record(p, alice, models.StatusPending)

	t.Run("accept", func(t *testing.T) {
		r, err := DecideRequest(pending, Actor(owner), p, DecisionAccept)
		require.NoError(t, err)
		assert.Equal(t, models.StatusAccepted, r.Status)
		assert.Equal(t, pending.ID, r.ID)
	})

	t.Run("reject", func(t *testing.T) {
		r, err := DecideRequest(pending, Actor(owner), p, DecisionReject)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, r.Status)
	})

	t.Run("unknown decision", func(t *testing.T) {
		_, err := DecideRequest(pending, Actor(owner), p, Decision("maybe"))
		assert.ErrorIs(t, err, ErrInvalidDecision)
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := DecideRequest(pending, Anonymous, p, DecisionAccept)
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("non owner", func(t *testing.T) {
		_, err := DecideRequest(pending, Actor(alice), p, DecisionAccept)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("request from another project", func(t *testing.T) {
		other := newTestProject(owner)
		_, err := DecideRequest(record(other, alice, models.StatusPending), Actor(owner), p, DecisionAccept)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	for _, s := range []models.MembershipStatus{models.StatusAccepted, models.StatusRejected} {
		for _, d := range []Decision{DecisionAccept, DecisionReject} {
			t.Run("already "+string(s)+" then "+string(d), func(t *testing.T) {
				_, err := DecideRequest(record(p, alice, s), Actor(owner), p, d)
				assert.ErrorIs(t, err, ErrAlreadyDecided)
			})
		}
	}

	t.Run("accept past advisory capacity", func(t *testing.T) {
		size := 2
		small := p
		small.MaxTeamSize = &size
		_, err := DecideRequest(pending, Actor(owner), small, DecisionAccept)
		assert.NoError(t, err)
	})
}

// The numbered scenarios of the membership workflow, run against the pure engine.
func TestMembershipScenarios(t *testing.T) {
	t.Parallel()

	a, b, c := uuid.New(), uuid.New(), uuid.New()
	p := newTestProject(a)
	var records []models.MembershipRequest

	find := func(user uuid.UUID) *models.MembershipRequest {
		for i := range records {
			if records[i].UserID == user {
				return &records[i]
			}
		}
		return nil
	}
	join := func(user uuid.UUID) (models.MembershipRequest, error) {
		r, err := RequestToJoin(p, Actor(user), find(user))
		if err != nil {
			return r, err
		}
		r.ID = uuid.New()
		records = append(records, r)
		return r, nil
	}
	decide := func(r models.MembershipRequest, actor uuid.UUID, d Decision) (models.MembershipRequest, error) {
		updated, err := DecideRequest(r, Actor(actor), p, d)
		if err != nil {
			return updated, err
		}
		*find(updated.UserID) = updated
		return updated, nil
	}

	// 1: B requests to join.
	r1, err := join(b)
	require.NoError(t, err)
	assert.Equal(t, RolePending, ClassifyRole(p, Actor(b), records))

	// 2: A accepts.
	r1, err = decide(r1, a, DecisionAccept)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, r1.Status)
	assert.Equal(t, RoleAccepted, ClassifyRole(p, Actor(b), records))
	team := ComposeTeam(p, records, nil)
	require.Len(t, team.Accepted, 1)
	assert.Equal(t, b, team.Accepted[0].UserID)
	assert.Empty(t, team.Pending)

	// 3: C requests twice.
	r2, err := join(c)
	require.NoError(t, err)
	_, err = join(c)
	assert.ErrorIs(t, err, ErrAlreadyRequested)

	// 4: B tries to decide C's request.
	_, err = decide(r2, b, DecisionAccept)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	// 5: A rejects, C cannot re-request.
	r2, err = decide(r2, a, DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, r2.Status)
	_, err = join(c)
	assert.ErrorIs(t, err, ErrAlreadyRequested)
	assert.Equal(t, RoleRejected, ClassifyRole(p, Actor(c), records))

	assert.Len(t, records, 2, "one row per (project, requester)")
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	assert.True(t, IsRetryable(ErrStoreUnavailable))
	for _, err := range []error{ErrNotAuthenticated, ErrSelfJoinNotAllowed, ErrAlreadyRequested, ErrNotAuthorized, ErrAlreadyDecided, ErrNotFound} {
		assert.False(t, IsRetryable(err), err.Error())
	}
}
