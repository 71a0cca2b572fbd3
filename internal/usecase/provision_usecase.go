package usecase

import (
	"context"
	"fmt"

	"autoroom/internal/domain/errors"
	"autoroom/internal/domain/event"
	"autoroom/internal/domain/model"
	"autoroom/internal/infrastructure/platform"
	"autoroom/internal/infrastructure/repository"

	"go.uber.org/zap"
)

type ProvisionUsecase interface {
	ProvisionOnJoin(ctx context.Context, ev event.MemberJoined) (*model.MonitoredRoom, error)
}

type ProvisionUC struct {
	gateway      platform.Gateway
	templateRepo repository.TemplateRepository
	roomRepo     repository.MonitoredRoomRepository
	permissions  PermissionUsecase
	log          *zap.Logger
}

func NewProvisionUC(
	gateway platform.Gateway,
	templateRepo repository.TemplateRepository,
	roomRepo repository.MonitoredRoomRepository,
	permissions PermissionUsecase,
	log *zap.Logger,
) *ProvisionUC {
	return &ProvisionUC{
		gateway:      gateway,
		templateRepo: templateRepo,
		roomRepo:     roomRepo,
		permissions:  permissions,
		log:          log,
	}
}

// ProvisionOnJoin creates a personal room when a member joins a template
// lobby. Joining any other channel returns (nil, nil).
//
// Once the platform room exists, a failure before the monitored row is stored
// leaves an orphan room; the category sweep adopts or deletes it.
func (p *ProvisionUC) ProvisionOnJoin(ctx context.Context, ev event.MemberJoined) (*model.MonitoredRoom, error) {
	template, err := p.templateRepo.TemplateByChannelID(ctx, ev.ChannelID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("provision room: %w", err)
	}

	log := p.log.With(
		zap.Int64("guild_id", ev.GuildID),
		zap.Int64("template_id", template.ChannelID),
		zap.Int64("owner_id", ev.UserID),
	)

	bitrate := model.BitrateForTier(ev.PremiumTier)
	roomID, err := p.gateway.CreateVoiceChannel(ctx, ev.GuildID, template.CategoryID, template.RoomName(ev.UserName), bitrate)
	if err != nil {
		log.Error("create room", zap.Int64("category_id", template.CategoryID), zap.Error(err))
		return nil, fmt.Errorf("provision room: %w", err)
	}
	log = log.With(zap.Int64("channel_id", roomID))

	if err := p.permissions.GrantOwner(ctx, roomID, ev.UserID); err != nil {
		if delErr := p.gateway.DeleteChannel(ctx, roomID); delErr != nil && !errors.IsNotFound(delErr) {
			log.Error("delete room after failed owner grant", zap.Error(delErr))
		}
		return nil, fmt.Errorf("provision room: %w", err)
	}

	if err := p.gateway.MoveMember(ctx, ev.GuildID, ev.UserID, roomID); err != nil {
		log.Error("move owner into room", zap.Error(err))
	}

	room := model.NewMonitoredRoom(roomID, ev.UserID)
	if err := p.roomRepo.AddMonitoredRoom(ctx, room); err != nil {
		log.Error("record monitored room", zap.Error(err))
		return nil, fmt.Errorf("provision room: %w", err)
	}

	log.Info("Room provisioned", zap.Int("bitrate", bitrate))
	return room, nil
}
