package usecase

import (
	"context"
	"fmt"

	"autoroom/internal/domain/errors"
	"autoroom/internal/domain/model"
	"autoroom/internal/infrastructure/platform"
	"autoroom/internal/infrastructure/repository"

	"go.uber.org/zap"
)

type PermissionUsecase interface {
	GrantOwner(ctx context.Context, roomID, userID int64) error
	GrantGuest(ctx context.Context, roomID, userID int64) error
	RevokeGuest(ctx context.Context, roomID, userID int64) error
	StagedGuests(roomID int64) []int64
}

// PermissionUC grants room access. Grants overwrite the member's entry on the
// room, so repeating one is harmless.
type PermissionUC struct {
	gateway     platform.Gateway
	roomRepo    repository.MonitoredRoomRepository
	stagingRepo repository.GuestStagingRepository
	log         *zap.Logger
}

func NewPermissionUC(
	gateway platform.Gateway,
	roomRepo repository.MonitoredRoomRepository,
	stagingRepo repository.GuestStagingRepository,
	log *zap.Logger,
) *PermissionUC {
	return &PermissionUC{gateway: gateway, roomRepo: roomRepo, stagingRepo: stagingRepo, log: log}
}

func (p *PermissionUC) GrantOwner(ctx context.Context, roomID, userID int64) error {
	if err := p.gateway.SetAccessControl(ctx, roomID, userID, model.OwnerPermissions, 0); err != nil {
		p.log.Error("grant owner privileges",
			zap.Int64("channel_id", roomID), zap.Int64("user_id", userID), zap.Error(err))
		return fmt.Errorf("grant owner: %w", err)
	}
	return nil
}

// GrantGuest lets userID into a monitored room and stages them for a saved
// profile. The cache is touched only after the platform accepted the grant.
func (p *PermissionUC) GrantGuest(ctx context.Context, roomID, userID int64) error {
	room, err := p.monitoredRoom(ctx, roomID)
	if err != nil {
		return fmt.Errorf("grant guest: %w", err)
	}

	if err := p.gateway.SetAccessControl(ctx, roomID, userID, model.GuestPermissions, 0); err != nil {
		p.log.Error("grant guest privileges",
			zap.Int64("channel_id", roomID), zap.Int64("owner_id", room.OwnerID),
			zap.Int64("user_id", userID), zap.Error(err))
		return fmt.Errorf("grant guest: %w", err)
	}

	p.stagingRepo.AddGuest(roomID, room.OwnerID, userID)
	p.log.Debug("guest granted",
		zap.Int64("channel_id", roomID), zap.Int64("owner_id", room.OwnerID), zap.Int64("user_id", userID))
	return nil
}

func (p *PermissionUC) RevokeGuest(ctx context.Context, roomID, userID int64) error {
	room, err := p.monitoredRoom(ctx, roomID)
	if err != nil {
		return fmt.Errorf("revoke guest: %w", err)
	}
	if room.OwnerID == userID {
		return fmt.Errorf("revoke guest: %w", errors.ErrRevokeOwner)
	}

	if err := p.gateway.RemoveAccessControl(ctx, roomID, userID); err != nil && !errors.IsNotFound(err) {
		p.log.Error("revoke guest privileges",
			zap.Int64("channel_id", roomID), zap.Int64("user_id", userID), zap.Error(err))
		return fmt.Errorf("revoke guest: %w", err)
	}

	p.stagingRepo.RemoveGuest(roomID, userID)
	return nil
}

func (p *PermissionUC) StagedGuests(roomID int64) []int64 {
	record, err := p.stagingRepo.Record(roomID)
	if err != nil {
		return nil
	}
	return record.GuestIDs()
}

func (p *PermissionUC) monitoredRoom(ctx context.Context, roomID int64) (*model.MonitoredRoom, error) {
	room, err := p.roomRepo.MonitoredRoomByID(ctx, roomID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NotFound("monitored room", errors.ErrRoomNotMonitored)
		}
		return nil, err
	}
	return room, nil
}
