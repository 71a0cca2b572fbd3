package repository

import (
	"context"

	"autoroom/internal/domain/errors"
	"autoroom/internal/domain/model"
	"autoroom/internal/infrastructure/repository/dbo"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile *model.SavedRoomProfile, guestIDs []int64) (int64, error)
	ProfileByID(ctx context.Context, id int64) (*model.SavedRoomProfile, error)
	ProfilesByOwnerAndTemplate(ctx context.Context, ownerID, templateID int64) ([]model.SavedRoomProfile, error)
	ProfileGuests(ctx context.Context, profileID int64) ([]int64, error)
}

type ProfilePostgresRepo struct {
	db *sqlx.DB
}

func NewProfilePostgresRepo(db *sqlx.DB) *ProfilePostgresRepo {
	return &ProfilePostgresRepo{db: db}
}

// CreateProfile writes the profile and its guests atomically and returns the new profile id.
func (r *ProfilePostgresRepo) CreateProfile(ctx context.Context, profile *model.SavedRoomProfile, guestIDs []int64) (int64, error) {
	row := dbo.NewSavedProfileFromDomain(profile)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Store("begin save profile", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowxContext(
		ctx, `INSERT INTO saved_profile (owner_id, name, room_name, template_id)
                                    VALUES ($1, $2, $3, $4) RETURNING id`,
		row.OwnerID, row.Name, row.RoomName, row.TemplateID,
	).Scan(&id)
	if err != nil {
		return 0, errors.Store("insert saved profile", err)
	}

	if len(guestIDs) > 0 {
		profileIDs := make([]int64, len(guestIDs))
		for i := range profileIDs {
			profileIDs[i] = id
		}
		_, err = tx.ExecContext(
			ctx, `INSERT INTO saved_guest (profile_id, guest_id)
                                    SELECT * FROM UNNEST($1::BIGINT[], $2::BIGINT[])
                                    ON CONFLICT DO NOTHING`,
			pq.Array(profileIDs), pq.Array(guestIDs),
		)
		if err != nil {
			return 0, errors.Store("insert saved guests", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Store("commit save profile", err)
	}

	return id, nil
}

func (r *ProfilePostgresRepo) ProfileByID(ctx context.Context, id int64) (*model.SavedRoomProfile, error) {
	var row dbo.SavedProfile
	err := r.db.GetContext(
		ctx, &row,
		`SELECT id, owner_id, name, room_name, template_id FROM saved_profile WHERE id = $1`, id,
	)
	if err != nil {
		return nil, classify("saved profile by id", err)
	}
	return dbo.NewDomainSavedProfileFromDBO(&row), nil
}

func (r *ProfilePostgresRepo) ProfilesByOwnerAndTemplate(ctx context.Context, ownerID, templateID int64) ([]model.SavedRoomProfile, error) {
	var rows []dbo.SavedProfile
	err := r.db.SelectContext(
		ctx, &rows,
		`SELECT id, owner_id, name, room_name, template_id FROM saved_profile
                                    WHERE owner_id = $1 AND template_id = $2 ORDER BY id`, ownerID, templateID,
	)
	if err != nil {
		return nil, errors.Store("saved profiles by owner", err)
	}

	profiles := make([]model.SavedRoomProfile, 0, len(rows))
	for i := range rows {
		profiles = append(profiles, *dbo.NewDomainSavedProfileFromDBO(&rows[i]))
	}
	return profiles, nil
}

func (r *ProfilePostgresRepo) ProfileGuests(ctx context.Context, profileID int64) ([]int64, error) {
	var guests []int64
	err := r.db.SelectContext(ctx, &guests, `SELECT guest_id FROM saved_guest WHERE profile_id = $1`, profileID)
	if err != nil {
		return nil, errors.Store("saved profile guests", err)
	}
	return guests, nil
}
