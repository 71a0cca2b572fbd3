package model

// SavedRoomProfile — replayable snapshot of a room's guest list
type SavedRoomProfile struct {
	ID         int64
	OwnerID    int64
	Name       string
	RoomName   string
	TemplateID int64
}

type SavedRoomGuest struct {
	ProfileID int64
	GuestID   int64
}

// GuestStagingRecord — guests invited into a live room since it was created.
// Lives in memory only.
type GuestStagingRecord struct {
	OwnerID int64
	Guests  map[int64]struct{}
}

func NewGuestStagingRecord(ownerID int64) *GuestStagingRecord {
	return &GuestStagingRecord{
		OwnerID: ownerID,
		Guests:  make(map[int64]struct{}),
	}
}

// GuestIDs — staged guests in no particular order
func (r *GuestStagingRecord) GuestIDs() []int64 {
	ids := make([]int64, 0, len(r.Guests))
	for id := range r.Guests {
		ids = append(ids, id)
	}
	return ids
}

// Clone returns a deep copy safe to use outside the cache lock.
func (r *GuestStagingRecord) Clone() *GuestStagingRecord {
	clone := NewGuestStagingRecord(r.OwnerID)
	for id := range r.Guests {
		clone.Guests[id] = struct{}{}
	}
	return clone
}
