package commands

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/questcord/questbot/questbot/commands/admin"
)

var Commands = []discord.ApplicationCommandCreate{
	Quests,
	Profile,
	Leaderboard,
	Review,
	ReviewStats,
	Help,
}

func init() {
	Commands = append(Commands, admin.Commands...)
}
