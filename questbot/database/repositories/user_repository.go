package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/questcord/questbot/questbot/database/models"
	"github.com/uptrace/bun"
)

type UserRepository interface {
	// Ensure creates the user's ledger row if it does not exist yet.
	Ensure(ctx context.Context, discordID string) error
	GetPoints(ctx context.Context, discordID string) (int64, error)
	// AddPoints applies a relational increment so concurrent credits
	// serialize at the store instead of lost-updating each other.
	AddPoints(ctx context.Context, discordID string, amount int64) error
	Top(ctx context.Context, limit int) ([]*models.User, error)
	All(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
}

type userRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Ensure(ctx context.Context, discordID string) error {
	_, err := r.db.NewInsert().
		Model(&models.User{DiscordID: discordID}).
		On("CONFLICT (discord_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to ensure user %s: %w", discordID, err)
	}
	return nil
}

func (r *userRepository) GetPoints(ctx context.Context, discordID string) (int64, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("discord_id = ?", discordID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return user.Points, nil
}

func (r *userRepository) AddPoints(ctx context.Context, discordID string, amount int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("points = points + ?", amount).
		Where("discord_id = ?", discordID).
		Exec(ctx)
	return err
}

func (r *userRepository) Top(ctx context.Context, limit int) ([]*models.User, error) {
	var users []*models.User
	err := r.db.NewSelect().
		Model(&users).
		OrderExpr("points DESC").
		Limit(limit).
		Scan(ctx)
	return users, err
}

func (r *userRepository) All(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := r.db.NewSelect().
		Model(&users).
		OrderExpr("points DESC").
		Scan(ctx)
	return users, err
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*models.User)(nil)).Count(ctx)
}
