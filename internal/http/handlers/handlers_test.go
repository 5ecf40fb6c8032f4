package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"pool-tracker-service/internal/scoring"
	"pool-tracker-service/internal/sync"
	"pool-tracker-service/internal/teststubs"
	"pool-tracker-service/internal/testutil"
	"pool-tracker-service/internal/user"
)

func newTestHandler(t *testing.T, backend *teststubs.FakeBackend, statusFn func() sync.Status) (*Handler, *sync.Service) {
	t.Helper()
	svc := sync.NewService(backend, sync.Options{})
	h := NewHandler(svc, scoring.NewManager(), user.NewRegistry(), nil, nil, statusFn)
	return h, svc
}

func TestHealthReportsBackend(t *testing.T) {
	h, _ := newTestHandler(t, teststubs.NewFakeBackend(), nil)

	rr := testutil.Serve(http.HandlerFunc(h.Health), http.MethodGet, "/health", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var body map[string]string
	testutil.DecodeJSON(t, rr, &body)
	if body["status"] != "ok" || body["backend"] != "fake" {
		t.Fatalf("unexpected health body %v", body)
	}
}

func TestReadyWhileLoading(t *testing.T) {
	h, _ := newTestHandler(t, teststubs.NewFakeBackend(), nil)

	rr := testutil.Serve(http.HandlerFunc(h.Ready), http.MethodGet, "/ready", nil)
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
}

func TestReadyAfterLoad(t *testing.T) {
	h, svc := newTestHandler(t, teststubs.NewFakeBackend(), nil)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	rr := testutil.Serve(http.HandlerFunc(h.Ready), http.MethodGet, "/ready", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestReadyHonorsReconcilerStatus(t *testing.T) {
	notReady := func() sync.Status {
		return sync.Status{ConsecutiveFailures: 5, LastError: "connection refused"}
	}
	h, svc := newTestHandler(t, teststubs.NewFakeBackend(), notReady)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	rr := testutil.Serve(http.HandlerFunc(h.Ready), http.MethodGet, "/ready", nil)
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)

	var body map[string]string
	testutil.DecodeJSON(t, rr, &body)
	if body["error"] != "connection refused" {
		t.Fatalf("expected reconciler error surfaced, got %v", body)
	}
}

func TestCreateMatchRejectsBadBody(t *testing.T) {
	h, _ := newTestHandler(t, teststubs.NewFakeBackend(), nil)

	rr := testutil.Serve(http.HandlerFunc(h.CreateMatch), http.MethodPost, "/matches", strings.NewReader("{not json"))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestCreateMatchRejectsMissingPlayers(t *testing.T) {
	h, _ := newTestHandler(t, teststubs.NewFakeBackend(), nil)

	rr := testutil.Serve(http.HandlerFunc(h.CreateMatch), http.MethodPost, "/matches",
		strings.NewReader(`{"playerB":"p2"}`))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestClearMatchesBlockedOnRestrictedBackend(t *testing.T) {
	backend := teststubs.NewFakeBackend()
	backend.AllowBulk = false
	h, _ := newTestHandler(t, backend, nil)

	rr := testutil.Serve(http.HandlerFunc(h.ClearMatches), http.MethodDelete, "/matches", nil)
	testutil.AssertStatus(t, rr, http.StatusForbidden)
}

func TestMigrateUnavailableWithoutTarget(t *testing.T) {
	h, _ := newTestHandler(t, teststubs.NewFakeBackend(), nil)

	rr := testutil.Serve(http.HandlerFunc(h.Migrate), http.MethodPost, "/migrate", nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}
