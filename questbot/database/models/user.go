package models

import (
	"github.com/uptrace/bun"
)

// User is the points ledger row for a Discord user. Rows are created
// lazily on first interaction and never deleted. Points are mutated only
// by submission approval (credit) and withdrawal commit (debit), always
// as relational increments.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	DiscordID string `bun:"discord_id,pk"`
	Points    int64  `bun:"points,notnull,default:0"`
}
