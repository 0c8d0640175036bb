package models

import (
	"github.com/uptrace/bun"
)

// Task types mirror the kinds of proof a quest expects.
const (
	TaskTypeLike    = "like"
	TaskTypeRetweet = "rt"
	TaskTypeLink    = "link"
)

// ValidTaskType reports whether t is one of the accepted task types.
func ValidTaskType(t string) bool {
	return t == TaskTypeLike || t == TaskTypeRetweet || t == TaskTypeLink
}

// Task is a quest offered to users with a fixed point reward and a
// submission capacity. Archived tasks no longer appear on the board;
// a task archives itself once its non-rejected submissions reach
// MaxSubmissions.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`

	ID              int64  `bun:"id,pk,autoincrement"`
	Title           string `bun:"title,notnull"`
	Points          int64  `bun:"points,notnull"`
	MaxSubmissions  int    `bun:"max_submissions,notnull"`
	Archived        bool   `bun:"archived,notnull,default:false"`
	RoleRewardID    string `bun:"role_reward_id,nullzero"`
	Daily           bool   `bun:"daily_flag,notnull,default:false"`
	Type            string `bun:"type,notnull,default:'link'"`
	Link            string `bun:"task_link,nullzero"`
	AnnouncementRef string `bun:"announcement_message_id,nullzero"`
}
