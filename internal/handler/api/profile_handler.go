package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"autoroom/internal/domain/model"
	"autoroom/internal/usecase"

	"go.uber.org/zap"
)

type ProfileHandler struct {
	profiles usecase.ProfileUsecase
	log      *zap.Logger
}

func NewProfileHandler(profiles usecase.ProfileUsecase, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, log: log}
}

type profileDTO struct {
	ID         int64  `json:"id"`
	OwnerID    int64  `json:"ownerId"`
	Name       string `json:"name"`
	RoomName   string `json:"roomName"`
	TemplateID int64  `json:"templateId"`
}

func newProfileDTO(p model.SavedRoomProfile) profileDTO {
	return profileDTO{
		ID:         p.ID,
		OwnerID:    p.OwnerID,
		Name:       p.Name,
		RoomName:   p.RoomName,
		TemplateID: p.TemplateID,
	}
}

// SaveProfile — POST /rooms/{roomID}/profiles {"name": "..."}
func (ph *ProfileHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(r, "roomID")
	if !ok {
		http.Error(w, "Invalid room id", http.StatusBadRequest)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request format", http.StatusBadRequest)
			return
		}
	}

	id, err := ph.profiles.SaveCurrentRoomAsProfile(r.Context(), roomID, req.Name)
	if err != nil {
		ph.log.Warn("save profile", zap.Int64("channel_id", roomID), zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// ListProfiles — GET /rooms/{roomID}/profiles?owner=<userID>
func (ph *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(r, "roomID")
	if !ok {
		http.Error(w, "Invalid room id", http.StatusBadRequest)
		return
	}
	ownerID, err := strconv.ParseInt(r.URL.Query().Get("owner"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid owner id", http.StatusBadRequest)
		return
	}

	profiles, err := ph.profiles.ListProfiles(r.Context(), ownerID, roomID)
	if err != nil {
		ph.log.Warn("list profiles", zap.Int64("channel_id", roomID), zap.Int64("owner_id", ownerID), zap.Error(err))
		writeError(w, err)
		return
	}

	out := make([]profileDTO, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, newProfileDTO(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// ReplayProfile — POST /rooms/{roomID}/profiles/{profileID}/replay
func (ph *ProfileHandler) ReplayProfile(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(r, "roomID")
	if !ok {
		http.Error(w, "Invalid room id", http.StatusBadRequest)
		return
	}
	profileID, ok := pathID(r, "profileID")
	if !ok {
		http.Error(w, "Invalid profile id", http.StatusBadRequest)
		return
	}

	granted, err := ph.profiles.ReplayProfile(r.Context(), profileID, roomID)
	if err != nil {
		ph.log.Warn("replay profile", zap.Int64("profile_id", profileID), zap.Int64("channel_id", roomID), zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]int64{"granted": granted})
}
