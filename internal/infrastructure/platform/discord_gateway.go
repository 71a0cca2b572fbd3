package platform

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"

	"autoroom/internal/domain/errors"
	"autoroom/internal/domain/model"

	"github.com/bwmarrin/discordgo"
)

// DiscordGateway implements Gateway over a discordgo session. Reads prefer the
// session state cache and fall back to REST.
type DiscordGateway struct {
	session *discordgo.Session
}

func NewDiscordGateway(session *discordgo.Session) *DiscordGateway {
	return &DiscordGateway{session: session}
}

func (d *DiscordGateway) CreateVoiceChannel(ctx context.Context, guildID, categoryID int64, name string, bitrate int) (int64, error) {
	channel, err := d.session.GuildChannelCreateComplex(
		formatID(guildID),
		discordgo.GuildChannelCreateData{
			Name:     name,
			Type:     discordgo.ChannelTypeGuildVoice,
			Bitrate:  bitrate,
			ParentID: formatID(categoryID),
		},
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return 0, classifyErr("create voice channel", err)
	}

	return parseID(channel.ID), nil
}

// DeleteChannel returns a NotFound error when the channel is already gone.
func (d *DiscordGateway) DeleteChannel(ctx context.Context, channelID int64) error {
	if _, err := d.session.ChannelDelete(formatID(channelID), discordgo.WithContext(ctx)); err != nil {
		return classifyErr("delete channel", err)
	}
	return nil
}

func (d *DiscordGateway) SetAccessControl(ctx context.Context, channelID, userID int64, allow, deny model.Permission) error {
	err := d.session.ChannelPermissionSet(
		formatID(channelID),
		formatID(userID),
		discordgo.PermissionOverwriteTypeMember,
		int64(allow),
		int64(deny),
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return classifyErr("set channel permission", err)
	}
	return nil
}

func (d *DiscordGateway) RemoveAccessControl(ctx context.Context, channelID, userID int64) error {
	err := d.session.ChannelPermissionDelete(formatID(channelID), formatID(userID), discordgo.WithContext(ctx))
	if err != nil {
		return classifyErr("delete channel permission", err)
	}
	return nil
}

func (d *DiscordGateway) MoveMember(ctx context.Context, guildID, userID, channelID int64) error {
	target := formatID(channelID)
	err := d.session.GuildMemberMove(formatID(guildID), formatID(userID), &target, discordgo.WithContext(ctx))
	if err != nil {
		return classifyErr("move member", err)
	}
	return nil
}

func (d *DiscordGateway) ResolveChannel(ctx context.Context, channelID int64) (*model.Channel, error) {
	channel, err := d.channel(ctx, channelID)
	if err != nil {
		return nil, err
	}

	resolved := toChannel(channel)
	return &resolved, nil
}

func (d *DiscordGateway) ResolveCategory(ctx context.Context, categoryID int64) (*model.Category, []model.Channel, error) {
	category, err := d.channel(ctx, categoryID)
	if err != nil {
		return nil, nil, err
	}

	channels, err := d.guildChannels(ctx, category.GuildID)
	if err != nil {
		return nil, nil, err
	}

	resolved := toChannel(category)
	children := make([]model.Channel, 0)
	for _, ch := range channels {
		if ch.ParentID == category.ID {
			children = append(children, toChannel(ch))
		}
	}

	return &resolved, children, nil
}

// ListMembers returns users connected to the voice channel according to the
// gateway voice state cache.
func (d *DiscordGateway) ListMembers(ctx context.Context, channelID int64) ([]int64, error) {
	channel, err := d.channel(ctx, channelID)
	if err != nil {
		return nil, err
	}

	guild, err := d.session.State.Guild(channel.GuildID)
	if err != nil {
		return nil, errors.Platform("list members", err)
	}

	d.session.State.RLock()
	defer d.session.State.RUnlock()

	return voiceMembers(guild.VoiceStates, channel.ID), nil
}

func (d *DiscordGateway) SelfID() int64 {
	if d.session.State == nil || d.session.State.User == nil {
		return 0
	}
	return parseID(d.session.State.User.ID)
}

func (d *DiscordGateway) channel(ctx context.Context, channelID int64) (*discordgo.Channel, error) {
	id := formatID(channelID)

	if channel, err := d.session.State.Channel(id); err == nil {
		return channel, nil
	}

	channel, err := d.session.Channel(id, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classifyErr("resolve channel", err)
	}
	return channel, nil
}

func (d *DiscordGateway) guildChannels(ctx context.Context, guildID string) ([]*discordgo.Channel, error) {
	if guild, err := d.session.State.Guild(guildID); err == nil {
		d.session.State.RLock()
		channels := make([]*discordgo.Channel, len(guild.Channels))
		copy(channels, guild.Channels)
		d.session.State.RUnlock()
		return channels, nil
	}

	channels, err := d.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classifyErr("list guild channels", err)
	}
	return channels, nil
}

func toChannel(ch *discordgo.Channel) model.Channel {
	return model.Channel{
		ID:       parseID(ch.ID),
		GuildID:  parseID(ch.GuildID),
		ParentID: parseID(ch.ParentID),
		OwnerID:  ownerFromOverwrites(ch.PermissionOverwrites),
		Name:     ch.Name,
		Kind:     channelKind(ch.Type),
	}
}

func channelKind(t discordgo.ChannelType) model.ChannelKind {
	switch t {
	case discordgo.ChannelTypeGuildText:
		return model.ChannelKindText
	case discordgo.ChannelTypeGuildVoice:
		return model.ChannelKindVoice
	case discordgo.ChannelTypeGuildStageVoice:
		return model.ChannelKindStage
	case discordgo.ChannelTypeGuildCategory:
		return model.ChannelKindCategory
	default:
		return model.ChannelKindOther
	}
}

// ownerFromOverwrites picks the member granted manage-channel on the room, 0 if none.
func ownerFromOverwrites(overwrites []*discordgo.PermissionOverwrite) int64 {
	for _, ow := range overwrites {
		if ow == nil || ow.Type != discordgo.PermissionOverwriteTypeMember {
			continue
		}
		if model.Permission(ow.Allow).Has(model.PermissionManageChannels) {
			return parseID(ow.ID)
		}
	}
	return 0
}

func voiceMembers(states []*discordgo.VoiceState, channelID string) []int64 {
	members := make([]int64, 0)
	for _, vs := range states {
		if vs != nil && vs.ChannelID == channelID {
			members = append(members, parseID(vs.UserID))
		}
	}
	return members
}

func classifyErr(op string, err error) error {
	var restErr *discordgo.RESTError
	if stderrors.As(err, &restErr) {
		if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownChannel {
			return errors.NotFound(op, err)
		}
		if restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
			return errors.NotFound(op, err)
		}
	}
	return errors.Platform(op, err)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
