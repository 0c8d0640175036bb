package commands

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/questcord/questbot/questbot"
	"github.com/questcord/questbot/questbot/config"
)

var Help = discord.SlashCommandCreate{
	Name:        "help",
	Description: "❓ How the quest system works",
}

func HelpHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title: "❓ QuestBot Help",
				Description: "Complete quests, earn points, climb the ranks and cash out!\n\n" +
					"**How it works**\n" +
					"1. Run `/quests` to get your quest board.\n" +
					"2. Click a quest button, then post your proof link within the time window.\n" +
					"3. An admin reviews your proof — approved submissions credit points instantly.\n" +
					"4. Track everything with `/profile`, withdraw once you pass the minimum.",
				Color: config.InfoColor,
				Fields: []discord.EmbedField{
					{Name: "/quests", Value: "Show the quest board"},
					{Name: "/profile", Value: "Points, rank, history and withdrawals"},
					{Name: "/leaderboard", Value: "Top quest completers"},
				},
				Footer: &discord.EmbedFooter{
					Text: "Version " + b.Version,
				},
			}},
			Flags: discord.MessageFlagEphemeral,
		})
	}
}
