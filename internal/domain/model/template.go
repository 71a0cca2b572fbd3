package model

import "fmt"

// RoomTemplate — admin-configured lobby: joining ChannelID provisions a room
// under CategoryID named after the joiner and Suffix
type RoomTemplate struct {
	ChannelID  int64
	GuildID    int64
	CategoryID int64
	Suffix     string
}

// NewRoomTemplate — create a template for a lobby channel
func NewRoomTemplate(channelID, guildID, categoryID int64, suffix string) *RoomTemplate {
	return &RoomTemplate{
		ChannelID:  channelID,
		GuildID:    guildID,
		CategoryID: categoryID,
		Suffix:     suffix,
	}
}

// RoomName — name of the room provisioned for userName
func (t *RoomTemplate) RoomName(userName string) string {
	return fmt.Sprintf("%s's %s", userName, t.Suffix)
}
