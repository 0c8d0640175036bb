package repositories

import (
	"context"

	"github.com/questcord/questbot/questbot/database/models"
	"github.com/uptrace/bun"
)

type BanRepository interface {
	Ban(ctx context.Context, discordID string) error
	Unban(ctx context.Context, discordID string) error
	IsBanned(ctx context.Context, discordID string) (bool, error)
	Count(ctx context.Context) (int, error)
}

type banRepository struct {
	db *bun.DB
}

func NewBanRepository(db *bun.DB) BanRepository {
	return &banRepository{db: db}
}

func (r *banRepository) Ban(ctx context.Context, discordID string) error {
	_, err := r.db.NewInsert().
		Model(&models.BannedUser{DiscordID: discordID}).
		On("CONFLICT (discord_id) DO NOTHING").
		Exec(ctx)
	return err
}

func (r *banRepository) Unban(ctx context.Context, discordID string) error {
	_, err := r.db.NewDelete().
		Model((*models.BannedUser)(nil)).
		Where("discord_id = ?", discordID).
		Exec(ctx)
	return err
}

func (r *banRepository) IsBanned(ctx context.Context, discordID string) (bool, error) {
	return r.db.NewSelect().
		Model((*models.BannedUser)(nil)).
		Where("discord_id = ?", discordID).
		Exists(ctx)
}

func (r *banRepository) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*models.BannedUser)(nil)).Count(ctx)
}
