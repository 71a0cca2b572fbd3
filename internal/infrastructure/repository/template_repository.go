package repository

import (
	"context"
	"database/sql"
	stderrors "errors"

	"autoroom/internal/domain/errors"
	"autoroom/internal/domain/model"
	"autoroom/internal/infrastructure/repository/dbo"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type TemplateRepository interface {
	CreateTemplate(ctx context.Context, template *model.RoomTemplate) error
	TemplateByChannelID(ctx context.Context, channelID int64) (*model.RoomTemplate, error)
	TemplateByCategoryID(ctx context.Context, categoryID int64) (*model.RoomTemplate, error)
	TemplatesByGuild(ctx context.Context, guildID int64) ([]model.RoomTemplate, error)
	AllCategoryIDs(ctx context.Context) ([]int64, error)
	OriginChannelIDs(ctx context.Context) ([]int64, error)
	DeleteTemplate(ctx context.Context, channelID int64) error
	DeleteTemplatesByCategoryIDs(ctx context.Context, categoryIDs []int64) (int64, error)
}

type TemplatePostgresRepo struct {
	db *sqlx.DB
}

func NewTemplatePostgresRepo(db *sqlx.DB) *TemplatePostgresRepo {
	return &TemplatePostgresRepo{db: db}
}

func (r *TemplatePostgresRepo) CreateTemplate(ctx context.Context, template *model.RoomTemplate) error {
	row := dbo.NewRoomTemplateFromDomain(template)

	_, err := r.db.ExecContext(
		ctx, `INSERT INTO room_template (channel_id, guild_id, category_id, suffix)
                                    VALUES ($1, $2, $3, $4)`,
		row.ChannelID, row.GuildID, row.CategoryID, row.Suffix,
	)
	if err != nil {
		return errors.Store("insert room template", err)
	}
	return nil
}

func (r *TemplatePostgresRepo) TemplateByChannelID(ctx context.Context, channelID int64) (*model.RoomTemplate, error) {
	var row dbo.RoomTemplate

	err := r.db.GetContext(
		ctx, &row,
		`SELECT channel_id, guild_id, category_id, suffix FROM room_template WHERE channel_id = $1`, channelID,
	)
	if err != nil {
		return nil, classify("room template by channel", err)
	}

	return dbo.NewDomainRoomTemplateFromDBO(&row), nil
}

func (r *TemplatePostgresRepo) TemplateByCategoryID(ctx context.Context, categoryID int64) (*model.RoomTemplate, error) {
	var row dbo.RoomTemplate

	err := r.db.GetContext(
		ctx, &row,
		`SELECT channel_id, guild_id, category_id, suffix FROM room_template
                                    WHERE category_id = $1 ORDER BY channel_id LIMIT 1`, categoryID,
	)
	if err != nil {
		return nil, classify("room template by category", err)
	}

	return dbo.NewDomainRoomTemplateFromDBO(&row), nil
}

func (r *TemplatePostgresRepo) TemplatesByGuild(ctx context.Context, guildID int64) ([]model.RoomTemplate, error) {
	var rows []dbo.RoomTemplate

	err := r.db.SelectContext(
		ctx, &rows,
		`SELECT channel_id, guild_id, category_id, suffix FROM room_template WHERE guild_id = $1 ORDER BY channel_id`, guildID,
	)
	if err != nil {
		return nil, errors.Store("room templates by guild", err)
	}

	templates := make([]model.RoomTemplate, 0, len(rows))
	for i := range rows {
		templates = append(templates, *dbo.NewDomainRoomTemplateFromDBO(&rows[i]))
	}
	return templates, nil
}

func (r *TemplatePostgresRepo) AllCategoryIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, `SELECT DISTINCT category_id FROM room_template`)
	if err != nil {
		return nil, errors.Store("all template category ids", err)
	}
	return ids, nil
}

func (r *TemplatePostgresRepo) OriginChannelIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, `SELECT channel_id FROM room_template`)
	if err != nil {
		return nil, errors.Store("template origin channel ids", err)
	}
	return ids, nil
}

func (r *TemplatePostgresRepo) DeleteTemplate(ctx context.Context, channelID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM room_template WHERE channel_id = $1`, channelID)
	if err != nil {
		return errors.Store("delete room template", err)
	}
	return nil
}

// DeleteTemplatesByCategoryIDs removes every template placed in one of the
// categories. Saved profiles go with them through the cascade.
func (r *TemplatePostgresRepo) DeleteTemplatesByCategoryIDs(ctx context.Context, categoryIDs []int64) (int64, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM room_template WHERE category_id = ANY($1)`, pq.Array(categoryIDs))
	if err != nil {
		return 0, errors.Store("delete room templates by category", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// classify maps a single-row lookup failure onto the error taxonomy.
func classify(op string, err error) error {
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NotFound(op, nil)
	}
	return errors.Store(op, err)
}
