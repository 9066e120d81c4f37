package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamforge/internal/store"
	"teamforge/models"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestStore(t *testing.T, h http.HandlerFunc) *Store {
	t.Helper()
	return newTestStoreWithTimeout(t, h, time.Second)
}

func newTestStoreWithTimeout(t *testing.T, h http.HandlerFunc, timeout time.Duration) *Store {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, "service-key", timeout)
	require.NoError(t, err)
	return New(client, quietLogger())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewClient("", "key", time.Second)
	assert.Error(t, err)
	_, err = NewClient("https://example.supabase.co", "", time.Second)
	assert.Error(t, err)
}

func TestCreateMembershipRequest(t *testing.T) {
	t.Parallel()

	projectID, userID := uuid.New(), uuid.New()
	auth := make(chan string, 1)
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		auth <- r.Header.Get("Authorization")
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/rest/v1/project_members"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "pending", body["status"])

		writeJSON(w, http.StatusCreated, []models.MembershipRequest{{
			ID: uuid.New(), ProjectID: projectID, UserID: userID, Status: models.StatusPending, CreatedAt: time.Now(),
		}})
	})

	got, err := s.CreateMembershipRequest(context.Background(), projectID, userID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, "Bearer service-key", <-auth)
}

func TestCreateMembershipRequest_UniqueViolation(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{
			"code":    "23505",
			"message": `duplicate key value violates unique constraint "project_members_project_id_user_id_key"`,
		})
	})

	_, err := s.CreateMembershipRequest(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestGetProject_NotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.Project{})
	})

	_, err := s.GetProject(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetProject_ServerErrorIsUnavailable(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"code": "PGRST000", "message": "could not connect"})
	})

	_, err := s.GetProject(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrUnavailable)
}

func TestUpdateMembershipRequestStatus_LostRace(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			assert.Contains(t, r.URL.RawQuery, "status=eq.pending")
			writeJSON(w, http.StatusOK, []models.MembershipRequest{})
		default:
			writeJSON(w, http.StatusOK, []models.MembershipRequest{{ID: id, Status: models.StatusRejected}})
		}
	})

	_, err := s.UpdateMembershipRequestStatus(context.Background(), id, models.StatusAccepted, models.StatusPending)
	assert.ErrorIs(t, err, store.ErrPreconditionFailed)
}

func TestUpdateMembershipRequestStatus_Missing(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.MembershipRequest{})
	})

	_, err := s.UpdateMembershipRequestStatus(context.Background(), uuid.New(), models.StatusAccepted, models.StatusPending)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListProfiles_EmptyInputSkipsQuery(t *testing.T) {
	t.Parallel()

	var calls int32
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusOK, []models.Profile{})
	})

	got, err := s.ListProfiles(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestExec_CancelledContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte("[]"))
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.ListProjects(ctx, store.ProjectFilter{})
	assert.ErrorIs(t, err, store.ErrUnavailable)
}

func TestStalledUpstreamCallsEnd(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	s := newTestStoreWithTimeout(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte("[]"))
	}, 50*time.Millisecond)
	// Cleanups run last-in first-out: handlers are released before the server closes.
	t.Cleanup(func() { close(release) })

	start := time.Now()
	_, err := s.CreateMembershipRequest(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestUpdateMembershipRequestStatus_RejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	var calls int32
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusOK, []models.MembershipRequest{})
	})

	_, err := s.UpdateMembershipRequestStatus(context.Background(), uuid.New(), models.StatusAccepted, "")
	assert.Error(t, err)
	assert.Zero(t, atomic.LoadInt32(&calls))
}
