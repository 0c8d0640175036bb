package models

import (
	"github.com/uptrace/bun"
)

// BannedUser marks a user as blocked from submitting quests.
type BannedUser struct {
	bun.BaseModel `bun:"table:banned_users,alias:bu"`

	DiscordID string `bun:"discord_id,pk"`
}
