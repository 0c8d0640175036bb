package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Submission review states. A submission starts pending and transitions
// exactly once to approved or rejected.
const (
	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

// Submission is a user's proof-of-completion record for a task. At most
// one row exists per (user, task) pair; the intake protocol refuses a
// second attempt before a row is written.
type Submission struct {
	bun.BaseModel `bun:"table:submissions,alias:s"`

	ID         int64      `bun:"id,pk,autoincrement"`
	UserID     string     `bun:"user_id,notnull"`
	TaskID     int64      `bun:"task_id,notnull"`
	Proof      string     `bun:"proof"`
	Status     string     `bun:"status,notnull,default:'pending'"`
	CreatedAt  time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	ReviewedAt *time.Time `bun:"reviewed_at"`

	Task *Task `bun:"rel:belongs-to,join:task_id=id"`
}
