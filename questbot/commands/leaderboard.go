package commands

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"
	"github.com/questcord/questbot/questbot"
	"github.com/questcord/questbot/questbot/config"
	"github.com/questcord/questbot/questbot/quest"
	"github.com/questcord/questbot/questbot/utils"
)

var Leaderboard = discord.SlashCommandCreate{
	Name:        "leaderboard",
	Description: "🏆 Top quest completers by points",
}

var medals = []string{"🥇", "🥈", "🥉"}

func LeaderboardHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		users, err := b.UserRepository.All(ctx)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load the leaderboard. Please try again.")
		}
		if len(users) == 0 {
			return utils.EH.CreateErrorEmbed(e, "Nobody has earned points yet — be the first!")
		}

		callerID := e.User().ID.String()
		callerPosition, callerPoints := 0, int64(0)
		for i, u := range users {
			if u.DiscordID == callerID {
				callerPosition = i + 1
				callerPoints = u.Points
				break
			}
		}

		totalPages := quest.PageCount(len(users), config.LeaderboardSize)
		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				start := page * config.LeaderboardSize
				end := min(start+config.LeaderboardSize, len(users))

				description := ""
				for i, u := range users[start:end] {
					position := start + i + 1
					marker := fmt.Sprintf("`#%d`", position)
					if position <= len(medals) {
						marker = medals[position-1]
					}
					description += fmt.Sprintf("%s <@%s> — **%d** pts • %s\n",
						marker, u.DiscordID, u.Points, quest.RankOf(u.Points))
				}

				footer := fmt.Sprintf("Page %d/%d", page+1, totalPages)
				if callerPosition > 0 {
					footer += fmt.Sprintf(" • You: #%d with %d pts", callerPosition, callerPoints)
				}

				embed.
					SetTitle("🏆 Quest Leaderboard").
					SetDescription(description).
					SetColor(config.GoldColor).
					SetFooter(footer, "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}
