package repository

import (
	"context"

	"autoroom/internal/domain/errors"
	"autoroom/internal/domain/model"
	"autoroom/internal/infrastructure/repository/dbo"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type MonitoredRoomRepository interface {
	AddMonitoredRoom(ctx context.Context, room *model.MonitoredRoom) error
	MonitoredRoomByID(ctx context.Context, channelID int64) (*model.MonitoredRoom, error)
	MonitoredRoomByOwner(ctx context.Context, ownerID int64) (*model.MonitoredRoom, error)
	AllMonitoredRooms(ctx context.Context) ([]model.MonitoredRoom, error)
	InsertMonitoredRoomsIfAbsent(ctx context.Context, rooms []model.MonitoredRoom) (int64, error)
	DeleteMonitoredRoom(ctx context.Context, channelID int64) (bool, error)
	DeleteMonitoredRoomsByIDs(ctx context.Context, channelIDs []int64) (int64, error)
}

type MonitoredRoomPostgresRepo struct {
	db *sqlx.DB
}

func NewMonitoredRoomPostgresRepo(db *sqlx.DB) *MonitoredRoomPostgresRepo {
	return &MonitoredRoomPostgresRepo{db: db}
}

// AddMonitoredRoom records a freshly provisioned room. The provisioner knows
// the real owner, so it overrides an owner guessed by a sweep.
func (r *MonitoredRoomPostgresRepo) AddMonitoredRoom(ctx context.Context, room *model.MonitoredRoom) error {
	row := dbo.NewMonitoredRoomFromDomain(room)

	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO monitored_room (channel_id, owner_id) VALUES ($1, $2)
                                    ON CONFLICT (channel_id) DO UPDATE SET owner_id = EXCLUDED.owner_id`,
		row.ChannelID, row.OwnerID,
	)
	if err != nil {
		return errors.Store("insert monitored room", err)
	}

	return nil
}

func (r *MonitoredRoomPostgresRepo) MonitoredRoomByID(ctx context.Context, channelID int64) (*model.MonitoredRoom, error) {
	var row dbo.MonitoredRoom
	err := r.db.GetContext(ctx, &row, `SELECT channel_id, owner_id FROM monitored_room WHERE channel_id = $1`, channelID)
	if err != nil {
		return nil, classify("monitored room by id", err)
	}

	return dbo.NewDomainMonitoredRoomFromDBO(&row), nil
}

func (r *MonitoredRoomPostgresRepo) MonitoredRoomByOwner(ctx context.Context, ownerID int64) (*model.MonitoredRoom, error) {
	var row dbo.MonitoredRoom
	err := r.db.GetContext(
		ctx, &row,
		`SELECT channel_id, owner_id FROM monitored_room WHERE owner_id = $1 ORDER BY channel_id LIMIT 1`, ownerID,
	)
	if err != nil {
		return nil, classify("monitored room by owner", err)
	}

	return dbo.NewDomainMonitoredRoomFromDBO(&row), nil
}

func (r *MonitoredRoomPostgresRepo) AllMonitoredRooms(ctx context.Context) ([]model.MonitoredRoom, error) {
	var rows []dbo.MonitoredRoom
	err := r.db.SelectContext(ctx, &rows, `SELECT channel_id, owner_id FROM monitored_room`)
	if err != nil {
		return nil, errors.Store("all monitored rooms", err)
	}
	return dbo.NewDomainMonitoredRoomsFromDBO(rows), nil
}

func (r *MonitoredRoomPostgresRepo) InsertMonitoredRoomsIfAbsent(ctx context.Context, rooms []model.MonitoredRoom) (int64, error) {
	if len(rooms) == 0 {
		return 0, nil
	}

	channelIDs := make([]int64, 0, len(rooms))
	ownerIDs := make([]int64, 0, len(rooms))
	for _, room := range rooms {
		channelIDs = append(channelIDs, room.ChannelID)
		ownerIDs = append(ownerIDs, room.OwnerID)
	}

	res, err := r.db.ExecContext(
		ctx, `INSERT INTO monitored_room (channel_id, owner_id)
                                    SELECT * FROM UNNEST($1::BIGINT[], $2::BIGINT[])
                                    ON CONFLICT (channel_id) DO NOTHING`,
		pq.Array(channelIDs), pq.Array(ownerIDs),
	)
	if err != nil {
		return 0, errors.Store("insert monitored rooms", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// DeleteMonitoredRoom reports whether a row was removed; a missing row is not an error.
func (r *MonitoredRoomPostgresRepo) DeleteMonitoredRoom(ctx context.Context, channelID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM monitored_room WHERE channel_id = $1`, channelID)
	if err != nil {
		return false, errors.Store("delete monitored room", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *MonitoredRoomPostgresRepo) DeleteMonitoredRoomsByIDs(ctx context.Context, channelIDs []int64) (int64, error) {
	if len(channelIDs) == 0 {
		return 0, nil
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM monitored_room WHERE channel_id = ANY($1)`, pq.Array(channelIDs))
	if err != nil {
		return 0, errors.Store("delete monitored rooms", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
