package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/questcord/questbot/questbot/database/models"
	"github.com/uptrace/bun"
)

var (
	ErrWithdrawalNotFound = errors.New("withdrawal not found")
	// ErrInsufficientPoints means the guarded debit matched no row: the
	// balance moved below the requested amount between validation and
	// commit. The transaction rolls back and no withdrawal row exists.
	ErrInsufficientPoints = errors.New("insufficient points for withdrawal")
	ErrAlreadyCompleted   = errors.New("withdrawal already completed")
)

type WithdrawalRepository interface {
	// CreateWithDebit debits the user and inserts the withdrawal row in
	// one transaction. The debit is guarded by a balance predicate so
	// the ledger can never go negative.
	CreateWithDebit(ctx context.Context, w *models.Withdrawal) error
	Get(ctx context.Context, id int64) (*models.Withdrawal, error)
	// Complete flips a pending withdrawal to completed. The balance was
	// already debited at creation and is never touched again. Returns
	// ErrAlreadyCompleted when the row left pending earlier and
	// ErrWithdrawalNotFound when it does not exist.
	Complete(ctx context.Context, id int64) error
}

type withdrawalRepository struct {
	db *bun.DB
}

func NewWithdrawalRepository(db *bun.DB) WithdrawalRepository {
	return &withdrawalRepository{db: db}
}

func (r *withdrawalRepository) CreateWithDebit(ctx context.Context, w *models.Withdrawal) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.User)(nil)).
			Set("points = points - ?", w.Points).
			Where("discord_id = ?", w.UserID).
			Where("points >= ?", w.Points).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrInsufficientPoints
		}

		w.Status = models.WithdrawalPending
		if _, err := tx.NewInsert().
			Model(w).
			Returning("id").
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create withdrawal: %w", err)
		}
		return nil
	})
}

func (r *withdrawalRepository) Get(ctx context.Context, id int64) (*models.Withdrawal, error) {
	w := new(models.Withdrawal)
	err := r.db.NewSelect().
		Model(w).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, err
	}
	return w, nil
}

func (r *withdrawalRepository) Complete(ctx context.Context, id int64) error {
	res, err := r.db.NewUpdate().
		Model((*models.Withdrawal)(nil)).
		Set("status = ?", models.WithdrawalCompleted).
		Where("id = ?", id).
		Where("status = ?", models.WithdrawalPending).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// No row flipped: either it was already completed or the id is
		// bogus. Re-read to tell the two apart.
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyCompleted
	}
	return nil
}
