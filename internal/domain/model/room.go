package model

// MonitoredRoom — a provisioned room currently tracked for ownership and cleanup
type MonitoredRoom struct {
	ChannelID int64 `json:"channelId"`
	OwnerID   int64 `json:"ownerId"`
}

func NewMonitoredRoom(channelID, ownerID int64) *MonitoredRoom {
	return &MonitoredRoom{ChannelID: channelID, OwnerID: ownerID}
}

// MonitoredRoomIDs returns the channel ids of rooms in order.
func MonitoredRoomIDs(rooms []MonitoredRoom) []int64 {
	ids := make([]int64, 0, len(rooms))
	for _, room := range rooms {
		ids = append(ids, room.ChannelID)
	}
	return ids
}
