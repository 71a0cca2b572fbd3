package model

// Permission — access-control bitset, bit values match Discord's
type Permission int64

const (
	PermissionManageChannels Permission = 1 << 4
	PermissionViewChannel    Permission = 1 << 10
	PermissionSendMessages   Permission = 1 << 11
	PermissionMuteMembers    Permission = 1 << 22
	PermissionDeafenMembers  Permission = 1 << 23
)

const (
	OwnerPermissions = PermissionViewChannel |
		PermissionSendMessages |
		PermissionManageChannels |
		PermissionMuteMembers |
		PermissionDeafenMembers
	GuestPermissions = PermissionViewChannel | PermissionSendMessages
)

func (p Permission) Has(other Permission) bool {
	return p&other == other
}
