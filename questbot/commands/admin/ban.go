package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"
	"github.com/questcord/questbot/questbot"
	"github.com/questcord/questbot/questbot/config"
	"github.com/questcord/questbot/questbot/utils"
)

// BanButtonHandler opens the ban form.
func BanButtonHandler(b *questbot.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		if !isAdmin(e.Member()) {
			return utils.EH.CreateEphemeralError(e, "🚫 Only administrators can ban users.")
		}
		return e.Modal(discord.ModalCreate{
			CustomID: "/admin/banuser",
			Title:    "Ban / Unban a User",
			Components: []discord.ContainerComponent{
				discord.NewActionRow(
					discord.NewTextInput("user_id", discord.TextInputStyleShort, "User ID").
						WithRequired(true).
						WithPlaceholder("e.g. 123456789012345678"),
				),
				discord.NewActionRow(
					discord.NewTextInput("action", discord.TextInputStyleShort, "Action (ban / unban)").
						WithRequired(true).
						WithValue("ban").
						WithMaxLength(5),
				),
			},
		})
	}
}

// BanModalHandler applies the ban or unban. Both directions are
// idempotent, so repeating the form is harmless.
func BanModalHandler(b *questbot.Bot) handler.ModalHandler {
	return func(e *handler.ModalEvent) error {
		if !isAdmin(e.Member()) {
			return utils.EH.CreateModalError(e, "🚫 Only administrators can ban users.")
		}

		rawID := strings.TrimSpace(e.Data.Text("user_id"))
		userID, err := snowflake.Parse(rawID)
		if err != nil {
			return utils.EH.CreateModalError(e, "❌ That's not a valid user ID.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		action := strings.ToLower(strings.TrimSpace(e.Data.Text("action")))
		switch action {
		case "ban":
			if err := b.BanRepository.Ban(ctx, userID.String()); err != nil {
				return utils.EH.CreateModalError(e, "Failed to ban the user. Please try again.")
			}
			return e.CreateMessage(discord.MessageCreate{
				Content: fmt.Sprintf("🚫 <@%s> can no longer submit quests.", userID),
				Flags:   discord.MessageFlagEphemeral,
			})
		case "unban":
			if err := b.BanRepository.Unban(ctx, userID.String()); err != nil {
				return utils.EH.CreateModalError(e, "Failed to unban the user. Please try again.")
			}
			return e.CreateMessage(discord.MessageCreate{
				Content: fmt.Sprintf("✅ <@%s> can submit quests again.", userID),
				Flags:   discord.MessageFlagEphemeral,
			})
		default:
			return utils.EH.CreateModalError(e, "❌ Action must be `ban` or `unban`.")
		}
	}
}
