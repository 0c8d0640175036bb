package admin

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/json"
	"github.com/questcord/questbot/questbot"
	"github.com/questcord/questbot/questbot/config"
	"github.com/questcord/questbot/questbot/quest"
	"github.com/questcord/questbot/questbot/utils"
)

var GivePoints = discord.SlashCommandCreate{
	Name:                     "givepoints",
	Description:              "🎁 Grant bonus points to a user",
	DefaultMemberPermissions: json.NewNullablePtr(discord.PermissionAdministrator),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The user to credit",
			Required:    true,
		},
		discord.ApplicationCommandOptionInt{
			Name:        "amount",
			Description: "Points to add",
			Required:    true,
			MinValue:    &[]int{1}[0],
		},
	},
}

// GivePointsHandler credits points outside the review pipeline, e.g.
// event prizes or compensation. Only positive grants: the ledger floor
// is enforced by the withdrawal path, not here.
func GivePointsHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !isAdmin(e.Member()) {
			return utils.EH.CreateErrorEmbed(e, "🚫 Only administrators can grant points.")
		}

		data := e.SlashCommandInteractionData()
		target := data.User("user")
		amount := int64(data.Int("amount"))

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		if err := b.UserRepository.Ensure(ctx, target.ID.String()); err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to grant points. Please try again.")
		}
		if err := b.UserRepository.AddPoints(ctx, target.ID.String(), amount); err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to grant points. Please try again.")
		}

		points, err := b.UserRepository.GetPoints(ctx, target.ID.String())
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Points granted, but the new balance could not be read.")
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title: "🎁 Points Granted",
				Description: fmt.Sprintf("%s received **%d points**.\nNew balance: **%d** (%s)",
					target.Mention(), amount, points, quest.RankOf(points)),
				Color: config.SuccessColor,
			}},
		})
	}
}
