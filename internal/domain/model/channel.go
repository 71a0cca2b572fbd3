package model

// ChannelKind — platform channel type as far as rooms care
type ChannelKind uint8

const (
	ChannelKindOther ChannelKind = iota
	ChannelKindText
	ChannelKindVoice
	ChannelKindStage
	ChannelKindCategory
)

// Channel — platform view of a guild channel
type Channel struct {
	ID       int64
	GuildID  int64
	ParentID int64
	// OwnerID is the member holding manage-channel rights on the room, 0 when unknown.
	OwnerID int64
	Name    string
	Kind    ChannelKind
}

// IsVoice reports whether members can connect to the channel.
func (c *Channel) IsVoice() bool {
	return c.Kind == ChannelKindVoice || c.Kind == ChannelKindStage
}

func (c *Channel) IsCategory() bool {
	return c.Kind == ChannelKindCategory
}

// Category — a channel of kind category
type Category = Channel
