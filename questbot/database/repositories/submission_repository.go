package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/questcord/questbot/questbot/database/models"
	"github.com/uptrace/bun"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrNotPending is returned when a review lands on a submission that
	// already left the pending state. Callers surface it as a specific
	// denial, which is what makes approve/reject idempotent.
	ErrNotPending = errors.New("submission is no longer pending")
)

// TaskPendingStats is one dashboard row: how much of a task's submission
// volume is still waiting for review.
type TaskPendingStats struct {
	TaskID  int64  `bun:"task_id"`
	Title   string `bun:"title"`
	Pending int    `bun:"pending"`
	Total   int    `bun:"total"`
}

type SubmissionRepository interface {
	Create(ctx context.Context, sub *models.Submission) error
	GetByUserAndTask(ctx context.Context, userID string, taskID int64) (*models.Submission, error)
	// CountDone counts a task's non-rejected submissions, the number the
	// capacity invariant is measured against.
	CountDone(ctx context.Context, taskID int64) (int, error)
	// PendingQueue returns the oldest pending submissions with their
	// tasks joined, bounded by limit.
	PendingQueue(ctx context.Context, limit int) ([]*models.Submission, error)
	GetPendingWithTask(ctx context.Context, id int64) (*models.Submission, error)
	// Approve flips the submission to approved and credits the reward in
	// one transaction. Returns ErrNotPending if the status predicate
	// matched no row, in which case nothing was credited.
	Approve(ctx context.Context, id int64) (*models.Submission, error)
	// Reject flips the submission to rejected; no ledger mutation.
	Reject(ctx context.Context, id int64) (*models.Submission, error)
	// Reviewed pages a user's approved/rejected submissions, newest
	// first.
	Reviewed(ctx context.Context, userID string, limit, offset int) ([]*models.Submission, error)
	CountReviewed(ctx context.Context, userID string) (int, error)
	CountByStatus(ctx context.Context, userID string, status string) (int, error)
	CountForUser(ctx context.Context, userID string) (int, error)
	CountPending(ctx context.Context) (int, error)
	// PendingStats aggregates per-task pending/total counts for tasks
	// that still have pending submissions.
	PendingStats(ctx context.Context) ([]TaskPendingStats, error)
}

type submissionRepository struct {
	db *bun.DB
}

func NewSubmissionRepository(db *bun.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	sub.Status = models.SubmissionPending
	sub.CreatedAt = time.Now()
	_, err := r.db.NewInsert().
		Model(sub).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

func (r *submissionRepository) GetByUserAndTask(ctx context.Context, userID string, taskID int64) (*models.Submission, error) {
	sub := new(models.Submission)
	err := r.db.NewSelect().
		Model(sub).
		Where("user_id = ?", userID).
		Where("task_id = ?", taskID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return sub, nil
}

func (r *submissionRepository) CountDone(ctx context.Context, taskID int64) (int, error) {
	return r.db.NewSelect().
		Model((*models.Submission)(nil)).
		Where("task_id = ?", taskID).
		Where("status != ?", models.SubmissionRejected).
		Count(ctx)
}

func (r *submissionRepository) PendingQueue(ctx context.Context, limit int) ([]*models.Submission, error) {
	var subs []*models.Submission
	err := r.db.NewSelect().
		Model(&subs).
		Relation("Task").
		Where("s.status = ?", models.SubmissionPending).
		Order("s.id ASC").
		Limit(limit).
		Scan(ctx)
	return subs, err
}

func (r *submissionRepository) GetPendingWithTask(ctx context.Context, id int64) (*models.Submission, error) {
	sub := new(models.Submission)
	err := r.db.NewSelect().
		Model(sub).
		Relation("Task").
		Where("s.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	if sub.Status != models.SubmissionPending {
		return sub, ErrNotPending
	}
	return sub, nil
}

func (r *submissionRepository) Approve(ctx context.Context, id int64) (*models.Submission, error) {
	sub := new(models.Submission)
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().
			Model(sub).
			Relation("Task").
			Where("s.id = ?", id).
			Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSubmissionNotFound
			}
			return err
		}

		res, err := tx.NewUpdate().
			Model((*models.Submission)(nil)).
			Set("status = ?", models.SubmissionApproved).
			Set("reviewed_at = ?", time.Now()).
			Where("id = ?", id).
			Where("status = ?", models.SubmissionPending).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotPending
		}

		// Credit inside the same transaction so a crash between the two
		// statements cannot leave an approved submission uncredited.
		if _, err := tx.NewUpdate().
			Model((*models.User)(nil)).
			Set("points = points + ?", sub.Task.Points).
			Where("discord_id = ?", sub.UserID).
			Exec(ctx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return sub, err
	}
	return sub, nil
}

func (r *submissionRepository) Reject(ctx context.Context, id int64) (*models.Submission, error) {
	sub := new(models.Submission)
	if err := r.db.NewSelect().
		Model(sub).
		Relation("Task").
		Where("s.id = ?", id).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}

	res, err := r.db.NewUpdate().
		Model((*models.Submission)(nil)).
		Set("status = ?", models.SubmissionRejected).
		Set("reviewed_at = ?", time.Now()).
		Where("id = ?", id).
		Where("status = ?", models.SubmissionPending).
		Exec(ctx)
	if err != nil {
		return sub, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return sub, err
	}
	if affected == 0 {
		return sub, ErrNotPending
	}
	return sub, nil
}

func (r *submissionRepository) Reviewed(ctx context.Context, userID string, limit, offset int) ([]*models.Submission, error) {
	var subs []*models.Submission
	err := r.db.NewSelect().
		Model(&subs).
		Relation("Task").
		Where("s.user_id = ?", userID).
		Where("s.status IN (?)", bun.In([]string{models.SubmissionApproved, models.SubmissionRejected})).
		Order("s.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	return subs, err
}

func (r *submissionRepository) CountReviewed(ctx context.Context, userID string) (int, error) {
	return r.db.NewSelect().
		Model((*models.Submission)(nil)).
		Where("user_id = ?", userID).
		Where("status IN (?)", bun.In([]string{models.SubmissionApproved, models.SubmissionRejected})).
		Count(ctx)
}

func (r *submissionRepository) CountByStatus(ctx context.Context, userID string, status string) (int, error) {
	return r.db.NewSelect().
		Model((*models.Submission)(nil)).
		Where("user_id = ?", userID).
		Where("status = ?", status).
		Count(ctx)
}

func (r *submissionRepository) CountForUser(ctx context.Context, userID string) (int, error) {
	return r.db.NewSelect().
		Model((*models.Submission)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
}

func (r *submissionRepository) CountPending(ctx context.Context) (int, error) {
	return r.db.NewSelect().
		Model((*models.Submission)(nil)).
		Where("status = ?", models.SubmissionPending).
		Count(ctx)
}

func (r *submissionRepository) PendingStats(ctx context.Context) ([]TaskPendingStats, error) {
	var stats []TaskPendingStats
	err := r.db.NewSelect().
		ColumnExpr("t.id AS task_id").
		ColumnExpr("t.title AS title").
		ColumnExpr("count(*) FILTER (WHERE s.status = ?) AS pending", models.SubmissionPending).
		ColumnExpr("count(*) AS total").
		TableExpr("submissions AS s").
		Join("JOIN tasks AS t ON t.id = s.task_id").
		GroupExpr("t.id, t.title").
		Having("count(*) FILTER (WHERE s.status = ?) > 0", models.SubmissionPending).
		OrderExpr("pending DESC").
		Scan(ctx, &stats)
	return stats, err
}
