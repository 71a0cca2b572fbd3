package repository

import (
	"sync"

	"autoroom/internal/domain/errors"
	"autoroom/internal/domain/model"
)

// GuestStagingRepository keeps, per live room, the guests invited since the room was created.
type GuestStagingRepository interface {
	AddGuest(roomID, ownerID, guestID int64)
	RemoveGuest(roomID, guestID int64)
	Record(roomID int64) (*model.GuestStagingRecord, error)
	Evict(roomID int64)
}

type GuestStagingRepo struct {
	store map[int64]*model.GuestStagingRecord
	mu    sync.RWMutex
}

func NewGuestStagingRepo() *GuestStagingRepo {
	return &GuestStagingRepo{store: make(map[int64]*model.GuestStagingRecord)}
}

// AddGuest creates the room's record with ownerID when absent, then stages guestID.
func (g *GuestStagingRepo) AddGuest(roomID, ownerID, guestID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	record, ok := g.store[roomID]
	if !ok {
		record = model.NewGuestStagingRecord(ownerID)
		g.store[roomID] = record
	}
	record.Guests[guestID] = struct{}{}
}

func (g *GuestStagingRepo) RemoveGuest(roomID, guestID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if record, ok := g.store[roomID]; ok {
		delete(record.Guests, guestID)
	}
}

// Record returns a copy of the room's record.
func (g *GuestStagingRepo) Record(roomID int64) (*model.GuestStagingRecord, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	record, ok := g.store[roomID]
	if !ok {
		return nil, errors.NotFound("staged guests", nil)
	}

	return record.Clone(), nil
}

func (g *GuestStagingRepo) Evict(roomID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.store, roomID)
}

func (g *GuestStagingRepo) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.store)
}
