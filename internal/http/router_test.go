package http

import (
	"context"
	nethttp "net/http"
	"strings"
	"testing"

	"pool-tracker-service/internal/domain"
	"pool-tracker-service/internal/http/handlers"
	"pool-tracker-service/internal/scoring"
	"pool-tracker-service/internal/sync"
	"pool-tracker-service/internal/teststubs"
	"pool-tracker-service/internal/testutil"
	"pool-tracker-service/internal/user"
)

func newTestRouter(t *testing.T, backend *teststubs.FakeBackend) nethttp.Handler {
	t.Helper()
	svc := sync.NewService(backend, sync.Options{})
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	handler := handlers.NewHandler(svc, scoring.NewManager(), user.NewRegistry(), nil, nil, nil)
	return NewRouter(handler, nil)
}

func TestMatchLifecycle(t *testing.T) {
	router := newTestRouter(t, teststubs.NewFakeBackend())

	rr := testutil.Serve(router, nethttp.MethodPost, "/matches",
		strings.NewReader(`{"playerA":"p1","playerB":"p2"}`))
	testutil.AssertStatus(t, rr, nethttp.StatusCreated)

	var created struct {
		domain.Match
		SyncStatus sync.RecordState `json:"syncStatus"`
	}
	testutil.DecodeJSON(t, rr, &created)
	if created.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if created.SyncStatus != sync.StateConfirmed {
		t.Fatalf("expected confirmed status, got %s", created.SyncStatus)
	}

	rr = testutil.Serve(router, nethttp.MethodGet, "/matches/"+created.ID, nil)
	testutil.AssertStatus(t, rr, nethttp.StatusOK)

	rr = testutil.Serve(router, nethttp.MethodGet, "/matches", nil)
	testutil.AssertStatus(t, rr, nethttp.StatusOK)
	var list []domain.Match
	testutil.DecodeJSON(t, rr, &list)
	if len(list) != 1 {
		t.Fatalf("expected 1 match, got %d", len(list))
	}

	rr = testutil.Serve(router, nethttp.MethodDelete, "/matches/"+created.ID, nil)
	testutil.AssertStatus(t, rr, nethttp.StatusOK)

	rr = testutil.Serve(router, nethttp.MethodGet, "/matches/"+created.ID, nil)
	testutil.AssertStatus(t, rr, nethttp.StatusNotFound)
}

func TestSeasonLifecycle(t *testing.T) {
	backend := teststubs.NewFakeBackend()
	router := newTestRouter(t, backend)

	rr := testutil.Serve(router, nethttp.MethodPost, "/seasons",
		strings.NewReader(`{"name":"Winter League","gameTypes":["9-ball"],"matchesToWin":5}`))
	testutil.AssertStatus(t, rr, nethttp.StatusCreated)
	var season struct {
		domain.Season
		SyncStatus sync.RecordState `json:"syncStatus"`
	}
	testutil.DecodeJSON(t, rr, &season)
	if !season.Active {
		t.Fatalf("expected active season")
	}

	rr = testutil.Serve(router, nethttp.MethodPost, "/matches",
		strings.NewReader(`{"playerA":"p1","playerB":"p2"}`))
	testutil.AssertStatus(t, rr, nethttp.StatusCreated)
	var m domain.Match
	testutil.DecodeJSON(t, rr, &m)

	rr = testutil.Serve(router, nethttp.MethodPost, "/seasons/"+season.ID+"/matches",
		strings.NewReader(`{"matchId":"`+m.ID+`"}`))
	testutil.AssertStatus(t, rr, nethttp.StatusOK)
	testutil.DecodeJSON(t, rr, &season)
	if len(season.MatchIDs) != 1 || season.MatchIDs[0] != m.ID {
		t.Fatalf("expected match membership, got %v", season.MatchIDs)
	}
	if links := backend.Links(); len(links) != 1 {
		t.Fatalf("expected link write, got %v", links)
	}

	rr = testutil.Serve(router, nethttp.MethodGet, "/seasons/"+season.ID+"/standings", nil)
	testutil.AssertStatus(t, rr, nethttp.StatusOK)

	rr = testutil.Serve(router, nethttp.MethodPost, "/seasons/"+season.ID+"/end",
		strings.NewReader(`{"winner":"p1"}`))
	testutil.AssertStatus(t, rr, nethttp.StatusOK)
	testutil.DecodeJSON(t, rr, &season)
	if season.Active || season.EndDate == nil || season.Winner != "p1" {
		t.Fatalf("expected closed season, got %+v", season.Season)
	}

	// Adding matches to an ended season is refused.
	rr = testutil.Serve(router, nethttp.MethodPost, "/seasons/"+season.ID+"/matches",
		strings.NewReader(`{"matchId":"`+m.ID+`"}`))
	testutil.AssertStatus(t, rr, nethttp.StatusBadRequest)
}

func TestListMatchesDateFilter(t *testing.T) {
	router := newTestRouter(t, teststubs.NewFakeBackend())

	rr := testutil.Serve(router, nethttp.MethodPost, "/matches",
		strings.NewReader(`{"playerA":"p1","playerB":"p2","date":"2026-03-01T20:00:00Z"}`))
	testutil.AssertStatus(t, rr, nethttp.StatusCreated)
	rr = testutil.Serve(router, nethttp.MethodPost, "/matches",
		strings.NewReader(`{"playerA":"p1","playerB":"p2","date":"2026-03-02T20:00:00Z"}`))
	testutil.AssertStatus(t, rr, nethttp.StatusCreated)

	rr = testutil.Serve(router, nethttp.MethodGet, "/matches?date=2026-03-01", nil)
	testutil.AssertStatus(t, rr, nethttp.StatusOK)
	var list []domain.Match
	testutil.DecodeJSON(t, rr, &list)
	if len(list) != 1 {
		t.Fatalf("expected 1 match on 2026-03-01, got %d", len(list))
	}

	rr = testutil.Serve(router, nethttp.MethodGet, "/matches?date=03-01-2026", nil)
	testutil.AssertStatus(t, rr, nethttp.StatusBadRequest)
}

func TestBulkDeleteBlockedOnRestrictedBackend(t *testing.T) {
	backend := teststubs.NewFakeBackend()
	backend.AllowBulk = false
	router := newTestRouter(t, backend)

	rr := testutil.Serve(router, nethttp.MethodDelete, "/matches", nil)
	testutil.AssertStatus(t, rr, nethttp.StatusForbidden)

	rr = testutil.Serve(router, nethttp.MethodDelete, "/seasons", nil)
	testutil.AssertStatus(t, rr, nethttp.StatusForbidden)
}

func TestSessionFlowToFinalizedMatch(t *testing.T) {
	router := newTestRouter(t, teststubs.NewFakeBackend())

	rr := testutil.Serve(router, nethttp.MethodPost, "/sessions",
		strings.NewReader(`{"playerA":"p1","playerB":"p2","variant":"9-ball","gamesToWin":2,"breakRule":"winner"}`))
	testutil.AssertStatus(t, rr, nethttp.StatusCreated)

	var state struct {
		ID        string           `json:"id"`
		NextBreak domain.Side      `json:"nextBreak"`
		WinsA     int              `json:"winsA"`
		Finished  bool             `json:"finished"`
		BreakRule domain.BreakRule `json:"breakRule"`
	}
	testutil.DecodeJSON(t, rr, &state)
	if state.ID == "" {
		t.Fatalf("expected session id")
	}

	score := func(side string) {
		rr := testutil.Serve(router, nethttp.MethodPost, "/sessions/"+state.ID+"/score",
			strings.NewReader(`{"side":"`+side+`","delta":1}`))
		testutil.AssertStatus(t, rr, nethttp.StatusOK)
	}
	finish := func(winner string) {
		rr := testutil.Serve(router, nethttp.MethodPost, "/sessions/"+state.ID+"/games",
			strings.NewReader(`{"winner":"`+winner+`"}`))
		testutil.AssertStatus(t, rr, nethttp.StatusOK)
		testutil.DecodeJSON(t, rr, &state)
	}

	score("A")
	finish("A")
	if state.Finished {
		t.Fatalf("one win of two should not finish the session")
	}
	score("A")
	finish("A")
	if !state.Finished {
		t.Fatalf("expected finished session after two wins")
	}

	rr = testutil.Serve(router, nethttp.MethodPost, "/sessions/"+state.ID+"/finalize",
		strings.NewReader(`{"notes":"league night"}`))
	testutil.AssertStatus(t, rr, nethttp.StatusCreated)

	var match domain.Match
	testutil.DecodeJSON(t, rr, &match)
	if match.Winner != "p1" {
		t.Fatalf("expected p1 winner, got %q", match.Winner)
	}
	if match.Notes != "league night" {
		t.Fatalf("expected notes carried, got %q", match.Notes)
	}

	// The session is gone once finalized.
	rr = testutil.Serve(router, nethttp.MethodGet, "/sessions/"+state.ID, nil)
	testutil.AssertStatus(t, rr, nethttp.StatusNotFound)
}

func TestSessionScoreRejectsUnknownSide(t *testing.T) {
	router := newTestRouter(t, teststubs.NewFakeBackend())

	rr := testutil.Serve(router, nethttp.MethodPost, "/sessions",
		strings.NewReader(`{"playerA":"p1","playerB":"p2"}`))
	var state struct {
		ID string `json:"id"`
	}
	testutil.DecodeJSON(t, rr, &state)

	rr = testutil.Serve(router, nethttp.MethodPost, "/sessions/"+state.ID+"/score",
		strings.NewReader(`{"side":"C","delta":1}`))
	testutil.AssertStatus(t, rr, nethttp.StatusBadRequest)
}

func TestUserRoutes(t *testing.T) {
	router := newTestRouter(t, teststubs.NewFakeBackend())

	rr := testutil.Serve(router, nethttp.MethodPost, "/users",
		strings.NewReader(`{"name":"Ana","login":"ana","secret":"pw"}`))
	testutil.AssertStatus(t, rr, nethttp.StatusCreated)

	var created map[string]any
	testutil.DecodeJSON(t, rr, &created)
	if _, leaked := created["secret"]; leaked {
		t.Fatalf("secret must not be serialized")
	}

	rr = testutil.Serve(router, nethttp.MethodPost, "/users",
		strings.NewReader(`{"name":"Dup","login":"ANA","secret":"pw"}`))
	testutil.AssertStatus(t, rr, nethttp.StatusConflict)

	rr = testutil.Serve(router, nethttp.MethodPost, "/login",
		strings.NewReader(`{"login":"ana","secret":"pw"}`))
	testutil.AssertStatus(t, rr, nethttp.StatusOK)

	rr = testutil.Serve(router, nethttp.MethodPost, "/login",
		strings.NewReader(`{"login":"ana","secret":"nope"}`))
	testutil.AssertStatus(t, rr, nethttp.StatusUnauthorized)

	rr = testutil.Serve(router, nethttp.MethodGet, "/users", nil)
	testutil.AssertStatus(t, rr, nethttp.StatusOK)
}

func TestPlayerStatsRoute(t *testing.T) {
	router := newTestRouter(t, teststubs.NewFakeBackend())

	rr := testutil.Serve(router, nethttp.MethodPost, "/matches",
		strings.NewReader(`{"playerA":"p1","playerB":"p2","winner":"p1"}`))
	testutil.AssertStatus(t, rr, nethttp.StatusCreated)

	rr = testutil.Serve(router, nethttp.MethodGet, "/players/p1/stats", nil)
	testutil.AssertStatus(t, rr, nethttp.StatusOK)
	var summary struct {
		Matches int `json:"matches"`
		Wins    int `json:"wins"`
	}
	testutil.DecodeJSON(t, rr, &summary)
	if summary.Matches != 1 || summary.Wins != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}
