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

// maxProfileNameRunes matches saved_profile.name.
const maxProfileNameRunes = 32

type ProfileUsecase interface {
	SaveCurrentRoomAsProfile(ctx context.Context, roomID int64, name string) (int64, error)
	ListProfiles(ctx context.Context, ownerID, roomID int64) ([]model.SavedRoomProfile, error)
	ReplayProfile(ctx context.Context, profileID, roomID int64) ([]int64, error)
}

type ProfileUC struct {
	gateway      platform.Gateway
	templateRepo repository.TemplateRepository
	profileRepo  repository.ProfileRepository
	stagingRepo  repository.GuestStagingRepository
	permissions  PermissionUsecase
	log          *zap.Logger
}

func NewProfileUC(
	gateway platform.Gateway,
	templateRepo repository.TemplateRepository,
	profileRepo repository.ProfileRepository,
	stagingRepo repository.GuestStagingRepository,
	permissions PermissionUsecase,
	log *zap.Logger,
) *ProfileUC {
	return &ProfileUC{
		gateway:      gateway,
		templateRepo: templateRepo,
		profileRepo:  profileRepo,
		stagingRepo:  stagingRepo,
		permissions:  permissions,
		log:          log,
	}
}

// SaveCurrentRoomAsProfile persists the guests staged for roomID under name.
// An empty name falls back to the room's current name.
func (p *ProfileUC) SaveCurrentRoomAsProfile(ctx context.Context, roomID int64, name string) (int64, error) {
	record, err := p.stagingRepo.Record(roomID)
	if err != nil || len(record.Guests) == 0 {
		return 0, fmt.Errorf("save profile: %w", errors.NotFound("staged guests", errors.ErrNothingToSave))
	}

	template, room, err := p.roomTemplate(ctx, roomID)
	if err != nil {
		return 0, fmt.Errorf("save profile: %w", err)
	}

	if name == "" {
		name = room.Name
	}
	profile := &model.SavedRoomProfile{
		OwnerID:    record.OwnerID,
		Name:       truncateRunes(name, maxProfileNameRunes),
		RoomName:   room.Name,
		TemplateID: template.ChannelID,
	}

	id, err := p.profileRepo.CreateProfile(ctx, profile, record.GuestIDs())
	if err != nil {
		p.log.Error("create profile",
			zap.Int64("channel_id", roomID), zap.Int64("owner_id", record.OwnerID), zap.Error(err))
		return 0, fmt.Errorf("save profile: %w", err)
	}

	p.log.Info("Profile saved",
		zap.Int64("profile_id", id),
		zap.Int64("channel_id", roomID),
		zap.Int64("owner_id", record.OwnerID),
		zap.Int("guests", len(record.Guests)),
	)
	return id, nil
}

// ListProfiles returns the owner's profiles saved under the template that
// owns roomID's category.
func (p *ProfileUC) ListProfiles(ctx context.Context, ownerID, roomID int64) ([]model.SavedRoomProfile, error) {
	template, _, err := p.roomTemplate(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	profiles, err := p.profileRepo.ProfilesByOwnerAndTemplate(ctx, ownerID, template.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// ReplayProfile grants every saved guest of profileID access to roomID.
// The profile must belong to the template owning the room's category.
// Guests that fail are logged and skipped.
func (p *ProfileUC) ReplayProfile(ctx context.Context, profileID, roomID int64) ([]int64, error) {
	profile, err := p.profileRepo.ProfileByID(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("replay profile %d: %w", profileID, err)
	}

	template, _, err := p.roomTemplate(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("replay profile %d: %w", profileID, err)
	}
	if template.ChannelID != profile.TemplateID {
		return nil, fmt.Errorf("replay profile %d: %w", profileID,
			errors.NotFound("saved profile", errors.ErrProfileOutsideTemplate))
	}

	guests, err := p.profileRepo.ProfileGuests(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("replay profile %d: %w", profileID, err)
	}

	log := p.log.With(zap.Int64("profile_id", profileID), zap.Int64("channel_id", roomID))

	granted := make([]int64, 0, len(guests))
	for _, guestID := range guests {
		if err := p.permissions.GrantGuest(ctx, roomID, guestID); err != nil {
			log.Warn("replay guest", zap.Int64("user_id", guestID), zap.Error(err))
			continue
		}
		granted = append(granted, guestID)
	}

	log.Info("Profile replayed", zap.Int("granted", len(granted)), zap.Int("saved", len(guests)))
	return granted, nil
}

func (p *ProfileUC) roomTemplate(ctx context.Context, roomID int64) (*model.RoomTemplate, *model.Channel, error) {
	room, err := p.gateway.ResolveChannel(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	if room.ID != roomID {
		return nil, nil, errors.Invariant("resolve room", errors.ErrChannelIDMismatch)
	}

	template, err := p.templateRepo.TemplateByCategoryID(ctx, room.ParentID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil, errors.NotFound("room template", errors.ErrOutsideTemplate)
		}
		return nil, nil, err
	}
	return template, room, nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
