package api

import (
	"context"
	"net/http"

	"autoroom/internal/constant"
	"autoroom/internal/domain/model"
	"autoroom/internal/usecase"

	"go.uber.org/zap"
)

// RoomLister is the read side of the monitored room store.
type RoomLister interface {
	AllMonitoredRooms(ctx context.Context) ([]model.MonitoredRoom, error)
}

type RoomHandler struct {
	rooms      RoomLister
	reconciler usecase.ReconcileUsecase
	log        *zap.Logger
}

func NewRoomHandler(rooms RoomLister, reconciler usecase.ReconcileUsecase, log *zap.Logger) *RoomHandler {
	return &RoomHandler{rooms: rooms, reconciler: reconciler, log: log}
}

func (rh *RoomHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rh *RoomHandler) RoomsList(w http.ResponseWriter, r *http.Request) {
	rooms, err := rh.rooms.AllMonitoredRooms(r.Context())
	if err != nil {
		rh.log.Error("list monitored rooms", zap.Error(err))
		http.Error(w, "list monitored rooms", http.StatusInternalServerError)
		return
	}
	if rooms == nil {
		rooms = []model.MonitoredRoom{}
	}

	writeJSON(w, http.StatusOK, rooms)
}

// Sweep runs a reconciliation on demand. The summary is returned even when
// one of the sweeps failed.
func (rh *RoomHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	operator, _ := constant.GetOperator(r.Context())

	summary, err := rh.reconciler.RunSweep(r.Context())
	if err != nil {
		rh.log.Error("sweep requested by operator",
			zap.String("operator", operator), zap.String("sweep_id", summary.SweepID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, struct {
			usecase.Summary
			Error string `json:"error"`
		}{Summary: summary, Error: "sweep incomplete"})
		return
	}

	rh.log.Info("Sweep requested by operator", zap.String("operator", operator), zap.String("sweep_id", summary.SweepID))
	writeJSON(w, http.StatusOK, summary)
}

