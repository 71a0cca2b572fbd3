package dbo

import "autoroom/internal/domain/model"

type RoomTemplate struct {
	ChannelID  int64  `db:"channel_id"`
	GuildID    int64  `db:"guild_id"`
	CategoryID int64  `db:"category_id"`
	Suffix     string `db:"suffix"`
}

func NewRoomTemplateFromDomain(t *model.RoomTemplate) *RoomTemplate {
	return &RoomTemplate{ChannelID: t.ChannelID, GuildID: t.GuildID, CategoryID: t.CategoryID, Suffix: t.Suffix}
}

func NewDomainRoomTemplateFromDBO(t *RoomTemplate) *model.RoomTemplate {
	return &model.RoomTemplate{
		ChannelID:  t.ChannelID,
		GuildID:    t.GuildID,
		CategoryID: t.CategoryID,
		Suffix:     t.Suffix,
	}
}
