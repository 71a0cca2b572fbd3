package event

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"autoroom/internal/domain/errors"
	domainevent "autoroom/internal/domain/event"
	"autoroom/internal/domain/model"
	"autoroom/internal/usecase"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// InviteAcceptPrefix prefixes the custom id of an invite button. The rest is
// the inviter's user id.
const InviteAcceptPrefix = "invite_accept:"

// OwnerRoomFinder finds the monitored room owned by a member.
type OwnerRoomFinder interface {
	MonitoredRoomByOwner(ctx context.Context, ownerID int64) (*model.MonitoredRoom, error)
}

type EventHandler struct {
	provision   usecase.ProvisionUsecase
	reaper      usecase.ReaperUsecase
	permissions usecase.PermissionUsecase
	reconciler  usecase.ReconcileUsecase
	rooms       OwnerRoomFinder
	log         *zap.Logger
}

func NewEventHandler(
	provision usecase.ProvisionUsecase,
	reaper usecase.ReaperUsecase,
	permissions usecase.PermissionUsecase,
	reconciler usecase.ReconcileUsecase,
	rooms OwnerRoomFinder,
	log *zap.Logger,
) *EventHandler {
	return &EventHandler{
		provision:   provision,
		reaper:      reaper,
		permissions: permissions,
		reconciler:  reconciler,
		rooms:       rooms,
		log:         log,
	}
}

// Register attaches the handlers to s. Each callback runs in its own
// goroutine and uses ctx for every downstream call.
func (h *EventHandler) Register(ctx context.Context, s *discordgo.Session) {
	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		h.onReady(ctx, r)
	})
	s.AddHandler(func(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
		h.onVoiceStateUpdate(ctx, s, vs)
	})
	s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		h.onInteraction(ctx, s, i)
	})
}

func (h *EventHandler) onReady(ctx context.Context, r *discordgo.Ready) {
	if r.User != nil {
		h.log.Info("Connected to gateway", zap.String("user", r.User.Username), zap.Int("guilds", len(r.Guilds)))
	}

	summary, err := h.reconciler.RunSweep(ctx)
	if err != nil {
		h.log.Error("startup sweep", zap.String("sweep_id", summary.SweepID), zap.Error(err))
	}
}

func (h *EventHandler) onVoiceStateUpdate(ctx context.Context, s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	tier := 0
	if vs.VoiceState != nil && vs.GuildID != "" {
		if guild, err := s.State.Guild(vs.GuildID); err == nil {
			tier = int(guild.PremiumTier)
		}
	}

	left, joined := voiceEvents(vs, tier)
	h.HandleVoiceChange(ctx, left, joined)
}

// HandleVoiceChange reaps the channel a member left, then provisions for the
// channel they joined. Either may be nil.
func (h *EventHandler) HandleVoiceChange(ctx context.Context, left *domainevent.MemberLeft, joined *domainevent.MemberJoined) {
	if left != nil {
		if err := h.reaper.ReapOnLeave(ctx, *left); err != nil {
			h.log.Error("reap on leave",
				zap.String("event", domainevent.TypeMemberLeft),
				zap.Int64("channel_id", left.ChannelID),
				zap.Int64("guild_id", left.GuildID),
				zap.Int64("user_id", left.UserID),
				zap.Error(err),
			)
		}
	}

	if joined != nil {
		if _, err := h.provision.ProvisionOnJoin(ctx, *joined); err != nil {
			h.log.Error("provision on join",
				zap.String("event", domainevent.TypeMemberJoined),
				zap.Int64("channel_id", joined.ChannelID),
				zap.Int64("guild_id", joined.GuildID),
				zap.Int64("user_id", joined.UserID),
				zap.Error(err),
			)
		}
	}
}

func (h *EventHandler) onInteraction(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	inviterID, ok := ParseInviteCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}

	ev := domainevent.InviteAccepted{InviterID: inviterID, GranteeID: interactionUserID(i)}
	content := "You have joined the room."
	if err := h.HandleInviteAccepted(ctx, ev); err != nil {
		content = errors.UserMessage(err)
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		h.log.Error("respond to invite", zap.Int64("inviter_id", ev.InviterID), zap.Int64("user_id", ev.GranteeID), zap.Error(err))
	}
}

// HandleInviteAccepted grants the grantee access to the inviter's room.
func (h *EventHandler) HandleInviteAccepted(ctx context.Context, ev domainevent.InviteAccepted) error {
	room, err := h.rooms.MonitoredRoomByOwner(ctx, ev.InviterID)
	if err != nil {
		if errors.IsNotFound(err) {
			err = errors.NotFound("inviter room", errors.ErrRoomNotMonitored)
		}
		h.log.Warn("invite accepted",
			zap.String("event", domainevent.TypeInviteAccepted),
			zap.Int64("inviter_id", ev.InviterID),
			zap.Int64("user_id", ev.GranteeID),
			zap.Error(err),
		)
		return fmt.Errorf("accept invite: %w", err)
	}

	if err := h.permissions.GrantGuest(ctx, room.ChannelID, ev.GranteeID); err != nil {
		h.log.Error("invite accepted",
			zap.String("event", domainevent.TypeInviteAccepted),
			zap.Int64("channel_id", room.ChannelID),
			zap.Int64("inviter_id", ev.InviterID),
			zap.Int64("user_id", ev.GranteeID),
			zap.Error(err),
		)
		return fmt.Errorf("accept invite: %w", err)
	}
	return nil
}

// InviteCustomID — custom id of the accept button for inviterID
func InviteCustomID(inviterID int64) string {
	return InviteAcceptPrefix + strconv.FormatInt(inviterID, 10)
}

func ParseInviteCustomID(customID string) (int64, bool) {
	raw, ok := strings.CutPrefix(customID, InviteAcceptPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// voiceEvents splits a voice state update into the channel left and the
// channel joined. Mute and deafen toggles produce neither.
func voiceEvents(vs *discordgo.VoiceStateUpdate, tier int) (*domainevent.MemberLeft, *domainevent.MemberJoined) {
	if vs == nil || vs.VoiceState == nil {
		return nil, nil
	}

	before := ""
	if vs.BeforeUpdate != nil {
		before = vs.BeforeUpdate.ChannelID
	}
	if before == vs.ChannelID {
		return nil, nil
	}

	userID := parseID(vs.UserID)

	var left *domainevent.MemberLeft
	if before != "" {
		left = &domainevent.MemberLeft{
			ChannelID: parseID(before),
			GuildID:   parseID(vs.GuildID),
			UserID:    userID,
		}
	}

	var joined *domainevent.MemberJoined
	if vs.ChannelID != "" {
		joined = &domainevent.MemberJoined{
			ChannelID:   parseID(vs.ChannelID),
			GuildID:     parseID(vs.GuildID),
			UserID:      userID,
			UserName:    memberName(vs.Member),
			PremiumTier: tier,
		}
	}

	return left, joined
}

func memberName(m *discordgo.Member) string {
	if m == nil || m.User == nil {
		return ""
	}
	return m.User.Username
}

func interactionUserID(i *discordgo.InteractionCreate) int64 {
	if i.Member != nil && i.Member.User != nil {
		return parseID(i.Member.User.ID)
	}
	if i.User != nil {
		return parseID(i.User.ID)
	}
	return 0
}

func parseID(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
