package dbo

import "autoroom/internal/domain/model"

type MonitoredRoom struct {
	ChannelID int64 `db:"channel_id"`
	OwnerID   int64 `db:"owner_id"`
}

func NewMonitoredRoomFromDomain(room *model.MonitoredRoom) *MonitoredRoom {
	return &MonitoredRoom{ChannelID: room.ChannelID, OwnerID: room.OwnerID}
}

func NewDomainMonitoredRoomFromDBO(room *MonitoredRoom) *model.MonitoredRoom {
	return &model.MonitoredRoom{ChannelID: room.ChannelID, OwnerID: room.OwnerID}
}

func NewDomainMonitoredRoomsFromDBO(rooms []MonitoredRoom) []model.MonitoredRoom {
	out := make([]model.MonitoredRoom, 0, len(rooms))
	for i := range rooms {
		out = append(out, *NewDomainMonitoredRoomFromDBO(&rooms[i]))
	}
	return out
}
