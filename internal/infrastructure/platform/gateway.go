package platform

import (
	"context"

	"autoroom/internal/domain/model"
)

// Gateway — capabilities the room controller needs from the chat platform.
// Lookups of absent channels return an error for which errors.IsNotFound is true.
type Gateway interface {
	CreateVoiceChannel(ctx context.Context, guildID, categoryID int64, name string, bitrate int) (int64, error)
	DeleteChannel(ctx context.Context, channelID int64) error
	SetAccessControl(ctx context.Context, channelID, userID int64, allow, deny model.Permission) error
	RemoveAccessControl(ctx context.Context, channelID, userID int64) error
	MoveMember(ctx context.Context, guildID, userID, channelID int64) error
	ResolveChannel(ctx context.Context, channelID int64) (*model.Channel, error)
	ResolveCategory(ctx context.Context, categoryID int64) (*model.Category, []model.Channel, error)
	ListMembers(ctx context.Context, channelID int64) ([]int64, error)
	SelfID() int64
}
