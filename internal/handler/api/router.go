package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"autoroom/internal/domain/errors"
	"autoroom/internal/handler/auth"
	"autoroom/internal/handler/middleware"

	"go.uber.org/zap"
)

// NewRouter — operator API mux. Everything but /healthz needs a token.
func NewRouter(
	tm auth.TokenManager,
	log *zap.Logger,
	rooms *RoomHandler,
	profiles *ProfileHandler,
	templates *TemplateHandler,
) http.Handler {
	mux := http.NewServeMux()
	protect := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(tm, log, h)
	}

	mux.Handle("GET /healthz", http.HandlerFunc(rooms.Healthz))
	mux.Handle("GET /rooms", protect(rooms.RoomsList))
	mux.Handle("POST /sweep", protect(rooms.Sweep))

	mux.Handle("POST /rooms/{roomID}/profiles", protect(profiles.SaveProfile))
	mux.Handle("GET /rooms/{roomID}/profiles", protect(profiles.ListProfiles))
	mux.Handle("POST /rooms/{roomID}/profiles/{profileID}/replay", protect(profiles.ReplayProfile))

	mux.Handle("GET /guilds/{guildID}/templates", protect(templates.ListTemplates))
	mux.Handle("POST /templates", protect(templates.CreateTemplate))
	mux.Handle("DELETE /templates/{channelID}", protect(templates.DeleteTemplate))

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code and a message safe to show.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.KindOf(err) {
	case errors.KindNotFound, errors.KindInvariantViolation:
		status = http.StatusNotFound
	case errors.KindPlatform:
		status = http.StatusBadGateway
	}
	if errors.Is(err, errors.ErrRevokeOwner) {
		status = http.StatusConflict
	}

	writeJSON(w, status, map[string]string{"error": errors.UserMessage(err)})
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}
