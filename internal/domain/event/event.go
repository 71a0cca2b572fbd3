package event

// Inbound platform events consumed by the room controller
const (
	TypeMemberJoined   = "member_joined"
	TypeMemberLeft     = "member_left"
	TypeInviteAccepted = "invite_accepted"
)

// MemberJoined — a member connected to a voice channel
type MemberJoined struct {
	ChannelID   int64
	GuildID     int64
	UserID      int64
	UserName    string
	PremiumTier int
}

// MemberLeft — a member disconnected from (or moved out of) a voice channel
type MemberLeft struct {
	ChannelID int64
	GuildID   int64
	UserID    int64
}

// InviteAccepted — Grantee accepted an invite into Inviter's room
type InviteAccepted struct {
	InviterID int64
	GranteeID int64
}
