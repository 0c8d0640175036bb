package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/questcord/questbot/questbot/database/models"
	"github.com/uptrace/bun"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskRepository interface {
	// Create inserts the task and fills in its generated ID.
	Create(ctx context.Context, task *models.Task) error
	Get(ctx context.Context, id int64) (*models.Task, error)
	// GetActive returns non-archived tasks, oldest first.
	GetActive(ctx context.Context) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Archive(ctx context.Context, id int64) error
	// Delete removes the task and all of its submissions in one
	// transaction.
	Delete(ctx context.Context, id int64) error
	SetAnnouncementRef(ctx context.Context, id int64, messageID string) error
	Count(ctx context.Context) (int, error)
}

type taskRepository struct {
	db *bun.DB
}

func NewTaskRepository(db *bun.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	_, err := r.db.NewInsert().
		Model(task).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *taskRepository) Get(ctx context.Context, id int64) (*models.Task, error) {
	task := new(models.Task)
	err := r.db.NewSelect().
		Model(task).
		Where("t.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) GetActive(ctx context.Context) ([]*models.Task, error) {
	var tasks []*models.Task
	err := r.db.NewSelect().
		Model(&tasks).
		Where("archived = FALSE").
		Order("id ASC").
		Scan(ctx)
	return tasks, err
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	_, err := r.db.NewUpdate().
		Model(task).
		Column("title", "points", "max_submissions", "type", "task_link").
		WherePK().
		Exec(ctx)
	return err
}

func (r *taskRepository) Archive(ctx context.Context, id int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.Task)(nil)).
		Set("archived = TRUE").
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.Submission)(nil)).
			Where("task_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete submissions for task %d: %w", id, err)
		}
		if _, err := tx.NewDelete().
			Model((*models.Task)(nil)).
			Where("id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete task %d: %w", id, err)
		}
		return nil
	})
}

func (r *taskRepository) SetAnnouncementRef(ctx context.Context, id int64, messageID string) error {
	_, err := r.db.NewUpdate().
		Model((*models.Task)(nil)).
		Set("announcement_message_id = ?", messageID).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *taskRepository) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*models.Task)(nil)).Count(ctx)
}
