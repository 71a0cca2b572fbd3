package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"autoroom/internal/domain/model"
	"autoroom/internal/handler/auth"
	"autoroom/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRooms struct {
	rooms []model.MonitoredRoom
	err   error
}

func (s stubRooms) AllMonitoredRooms(context.Context) ([]model.MonitoredRoom, error) {
	return s.rooms, s.err
}

type stubReconciler struct {
	summary usecase.Summary
	err     error
	calls   int
}

func (s *stubReconciler) RunSweep(context.Context) (usecase.Summary, error) {
	s.calls++
	return s.summary, s.err
}

func (s *stubReconciler) SweepMonitoredRooms(context.Context) (usecase.MonitoredSweepSummary, error) {
	return s.summary.Monitored, s.err
}

func (s *stubReconciler) SweepCategories(context.Context) (usecase.CategorySweepSummary, error) {
	return s.summary.Categories, s.err
}

func serve(t *testing.T, h http.Handler, method, path string, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newRoutes(t *testing.T, rooms RoomLister, rec *stubReconciler) (http.Handler, string) {
	t.Helper()
	tm := auth.NewJWTTokenManager("secret", time.Hour)
	token, err := tm.Generate("alice")
	require.NoError(t, err)
	log := zap.NewNop()
	router := NewRouter(tm, log,
		NewRoomHandler(rooms, rec, log),
		NewProfileHandler(&stubProfiles{}, log),
		NewTemplateHandler(newStubTemplates(), log),
	)
	return router, token
}

func TestHealthz(t *testing.T) {
	h, _ := newRoutes(t, stubRooms{}, &stubReconciler{})

	rec := serve(t, h, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRoomsList(t *testing.T) {
	rooms := stubRooms{rooms: []model.MonitoredRoom{{ChannelID: 5, OwnerID: 7}}}
	h, token := newRoutes(t, rooms, &stubReconciler{})

	assert.Equal(t, http.StatusUnauthorized, serve(t, h, http.MethodGet, "/rooms", "").Code)

	rec := serve(t, h, http.MethodGet, "/rooms", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"channelId":5,"ownerId":7}]`, rec.Body.String())
}

func TestRoomsList_Empty(t *testing.T) {
	h, token := newRoutes(t, stubRooms{}, &stubReconciler{})

	rec := serve(t, h, http.MethodGet, "/rooms", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRoomsList_StoreError(t *testing.T) {
	h, token := newRoutes(t, stubRooms{err: stderrors.New("db down")}, &stubReconciler{})

	rec := serve(t, h, http.MethodGet, "/rooms", token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSweep(t *testing.T) {
	reconciler := &stubReconciler{summary: usecase.Summary{
		SweepID:   "sweep-1",
		Monitored: usecase.MonitoredSweepSummary{Monitored: 2, Outdated: 1, EmptyDeleted: 1, RowsRemoved: 2},
	}}
	h, token := newRoutes(t, stubRooms{}, reconciler)

	assert.Equal(t, http.StatusMethodNotAllowed, serve(t, h, http.MethodGet, "/sweep", token).Code)

	rec := serve(t, h, http.MethodPost, "/sweep", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, reconciler.calls)

	var got usecase.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, reconciler.summary, got)
}

func TestSweep_Failure(t *testing.T) {
	reconciler := &stubReconciler{summary: usecase.Summary{SweepID: "sweep-2"}, err: stderrors.New("store down")}
	h, token := newRoutes(t, stubRooms{}, reconciler)

	rec := serve(t, h, http.MethodPost, "/sweep", token)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sweepId":"sweep-2"`)
	assert.Contains(t, rec.Body.String(), `"error":"sweep incomplete"`)
}
