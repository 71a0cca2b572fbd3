package usecase

import (
	"context"
	"fmt"
	"time"

	"autoroom/internal/domain/errors"
	"autoroom/internal/domain/event"
	"autoroom/internal/infrastructure/platform"
	"autoroom/internal/infrastructure/repository"

	"go.uber.org/zap"
)

type ReaperUsecase interface {
	ReapOnLeave(ctx context.Context, ev event.MemberLeft) error
}

type ReaperUC struct {
	gateway     platform.Gateway
	roomRepo    repository.MonitoredRoomRepository
	stagingRepo repository.GuestStagingRepository
	log         *zap.Logger

	// gracePeriod > 0 re-checks an empty room after the delay before tearing it down.
	gracePeriod time.Duration
}

func NewReaperUC(
	gateway platform.Gateway,
	roomRepo repository.MonitoredRoomRepository,
	stagingRepo repository.GuestStagingRepository,
	gracePeriod time.Duration,
	log *zap.Logger,
) *ReaperUC {
	return &ReaperUC{
		gateway:     gateway,
		roomRepo:    roomRepo,
		stagingRepo: stagingRepo,
		gracePeriod: gracePeriod,
		log:         log,
	}
}

// ReapOnLeave tears down a monitored room once its last member has left.
// A room the platform no longer has counts as empty.
func (r *ReaperUC) ReapOnLeave(ctx context.Context, ev event.MemberLeft) error {
	room, err := r.roomRepo.MonitoredRoomByID(ctx, ev.ChannelID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("reap room %d: %w", ev.ChannelID, err)
	}
	log := r.log.With(zap.Int64("channel_id", room.ChannelID), zap.Int64("owner_id", room.OwnerID))

	empty, gone, err := r.emptiness(ctx, room.ChannelID)
	if err != nil {
		log.Error("check room members", zap.Error(err))
		return fmt.Errorf("reap room %d: %w", room.ChannelID, err)
	}
	if !empty {
		return nil
	}

	if !gone && r.gracePeriod > 0 {
		timer := time.NewTimer(r.gracePeriod)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		empty, gone, err = r.emptiness(ctx, room.ChannelID)
		if err != nil {
			log.Error("re-check room members", zap.Error(err))
			return fmt.Errorf("reap room %d: %w", room.ChannelID, err)
		}
		if !empty {
			return nil
		}
	}

	if !gone {
		if err := r.gateway.DeleteChannel(ctx, room.ChannelID); err != nil && !errors.IsNotFound(err) {
			log.Error("delete room", zap.Error(err))
			return fmt.Errorf("reap room %d: %w", room.ChannelID, err)
		}
	}
	r.stagingRepo.Evict(room.ChannelID)

	if _, err := r.roomRepo.DeleteMonitoredRoom(ctx, room.ChannelID); err != nil {
		log.Error("remove monitored room", zap.Error(err))
		return fmt.Errorf("reap room %d: %w", room.ChannelID, err)
	}

	log.Info("Room removed", zap.Bool("already_gone", gone))
	return nil
}

// emptiness reports whether the room has no members and whether the platform
// no longer knows it at all.
func (r *ReaperUC) emptiness(ctx context.Context, channelID int64) (empty, gone bool, err error) {
	channel, err := r.gateway.ResolveChannel(ctx, channelID)
	if err != nil {
		if errors.IsNotFound(err) {
			return true, true, nil
		}
		return false, false, err
	}
	if channel.ID != channelID {
		r.log.Warn("resolved room id mismatch",
			zap.Int64("channel_id", channelID), zap.Int64("resolved_id", channel.ID))
		return true, true, nil
	}

	members, err := r.gateway.ListMembers(ctx, channelID)
	if err != nil {
		if errors.IsNotFound(err) {
			return true, true, nil
		}
		return false, false, err
	}
	return len(members) == 0, false, nil
}
