package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"autoroom/internal/domain/model"

	"go.uber.org/zap"
)

// maxSuffixLen matches room_template.suffix.
const maxSuffixLen = 16

// TemplateStore — admin side of the template repository
type TemplateStore interface {
	CreateTemplate(ctx context.Context, template *model.RoomTemplate) error
	TemplatesByGuild(ctx context.Context, guildID int64) ([]model.RoomTemplate, error)
	DeleteTemplate(ctx context.Context, channelID int64) error
}

type TemplateHandler struct {
	templates TemplateStore
	log       *zap.Logger
}

func NewTemplateHandler(templates TemplateStore, log *zap.Logger) *TemplateHandler {
	return &TemplateHandler{templates: templates, log: log}
}

type templateDTO struct {
	ChannelID  int64  `json:"channelId"`
	GuildID    int64  `json:"guildId"`
	CategoryID int64  `json:"categoryId"`
	Suffix     string `json:"suffix"`
}

func (th *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	guildID, ok := pathID(r, "guildID")
	if !ok {
		http.Error(w, "Invalid guild id", http.StatusBadRequest)
		return
	}

	templates, err := th.templates.TemplatesByGuild(r.Context(), guildID)
	if err != nil {
		th.log.Error("list templates", zap.Int64("guild_id", guildID), zap.Error(err))
		writeError(w, err)
		return
	}

	out := make([]templateDTO, 0, len(templates))
	for _, t := range templates {
		out = append(out, templateDTO{ChannelID: t.ChannelID, GuildID: t.GuildID, CategoryID: t.CategoryID, Suffix: t.Suffix})
	}
	writeJSON(w, http.StatusOK, out)
}

func (th *TemplateHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	req.Suffix = strings.TrimSpace(req.Suffix)
	if req.ChannelID <= 0 || req.GuildID <= 0 || req.CategoryID <= 0 || req.Suffix == "" || len([]rune(req.Suffix)) > maxSuffixLen {
		http.Error(w, "channelId, guildId, categoryId and a suffix of at most 16 characters are required", http.StatusBadRequest)
		return
	}

	template := model.NewRoomTemplate(req.ChannelID, req.GuildID, req.CategoryID, req.Suffix)
	if err := th.templates.CreateTemplate(r.Context(), template); err != nil {
		th.log.Error("create template", zap.Int64("channel_id", req.ChannelID), zap.Error(err))
		writeError(w, err)
		return
	}

	th.log.Info("Template created", zap.Int64("channel_id", req.ChannelID), zap.Int64("category_id", req.CategoryID))
	writeJSON(w, http.StatusCreated, req)
}

func (th *TemplateHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	channelID, ok := pathID(r, "channelID")
	if !ok {
		http.Error(w, "Invalid channel id", http.StatusBadRequest)
		return
	}

	if err := th.templates.DeleteTemplate(r.Context(), channelID); err != nil {
		th.log.Error("delete template", zap.Int64("channel_id", channelID), zap.Error(err))
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
