package membership

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"teamforge/models"
)

func private(p models.Project) models.Project {
	f := false
	p.IsPublic = &f
	return p
}

func TestListVisible_LenientReturnsEverything(t *testing.T) {
	t.Parallel()

	projects := []models.Project{newTestProject(uuid.New()), private(newTestProject(uuid.New()))}

	assert.Equal(t, projects, ListVisible(projects, Anonymous, nil, PolicyLenient))
	assert.Equal(t, projects, ListVisible(projects, Actor(uuid.New()), nil, ""))
}

func TestListVisible_Strict(t *testing.T) {
	t.Parallel()

	owner, member, requester, rejected, stranger := uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()
	pub := newTestProject(owner)
	priv := private(newTestProject(owner))
	projects := []models.Project{pub, priv}

	tests := []struct {
		name    string
		actor   uuid.NullUUID
		records []models.MembershipRequest
		want    []models.Project
	}{
		{"anonymous", Anonymous, nil, []models.Project{pub}},
		{"stranger", Actor(stranger), nil, []models.Project{pub}},
		{"owner", Actor(owner), nil, projects},
		{"accepted", Actor(member), []models.MembershipRequest{record(priv, member, models.StatusAccepted)}, projects},
		{"pending", Actor(requester), []models.MembershipRequest{record(priv, requester, models.StatusPending)}, projects},
		{"rejected", Actor(rejected), []models.MembershipRequest{record(priv, rejected, models.StatusRejected)}, []models.Project{pub}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ListVisible(projects, tt.actor, tt.records, PolicyStrict))
		})
	}
}

func TestCanView_NullVisibilityCountsAsPublic(t *testing.T) {
	t.Parallel()

	p := newTestProject(uuid.New())
	p.IsPublic = nil

	assert.True(t, CanView(p, Anonymous, nil, PolicyStrict))
}

func TestListMine(t *testing.T) {
	t.Parallel()

	me, other := uuid.New(), uuid.New()
	mine := newTestProject(me)
	projects := []models.Project{mine, newTestProject(other)}

	assert.Equal(t, []models.Project{mine}, ListMine(projects, Actor(me)))
	assert.Empty(t, ListMine(projects, Anonymous))
}
