package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"
	"github.com/questcord/questbot/questbot"
	"github.com/questcord/questbot/questbot/config"
	"github.com/questcord/questbot/questbot/database/models"
	"github.com/questcord/questbot/questbot/quest"
	"github.com/questcord/questbot/questbot/utils"
)

var Profile = discord.SlashCommandCreate{
	Name:        "profile",
	Description: "👤 View points, rank and submission stats",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "member",
			Description: "The member to look up (defaults to you)",
			Required:    false,
		},
	},
}

// profileView is everything the profile embed and its buttons depend on.
type profileView struct {
	Points   int64
	Rank     string
	Total    int
	Approved int
	Rejected int
}

func loadProfile(ctx context.Context, b *questbot.Bot, userID string) (profileView, error) {
	// Materialize the ledger row on first view so the member shows up
	// on the leaderboard before their first submission.
	if err := b.UserRepository.Ensure(ctx, userID); err != nil {
		return profileView{}, fmt.Errorf("failed to ensure user: %w", err)
	}
	points, err := b.UserRepository.GetPoints(ctx, userID)
	if err != nil {
		return profileView{}, fmt.Errorf("failed to read points: %w", err)
	}
	total, err := b.SubmissionRepository.CountForUser(ctx, userID)
	if err != nil {
		return profileView{}, fmt.Errorf("failed to count submissions: %w", err)
	}
	approved, err := b.SubmissionRepository.CountByStatus(ctx, userID, models.SubmissionApproved)
	if err != nil {
		return profileView{}, fmt.Errorf("failed to count approved submissions: %w", err)
	}
	rejected, err := b.SubmissionRepository.CountByStatus(ctx, userID, models.SubmissionRejected)
	if err != nil {
		return profileView{}, fmt.Errorf("failed to count rejected submissions: %w", err)
	}
	return profileView{
		Points:   points,
		Rank:     quest.RankOf(points),
		Total:    total,
		Approved: approved,
		Rejected: rejected,
	}, nil
}

func profileEmbed(target discord.User, view profileView) discord.Embed {
	now := time.Now()
	return discord.Embed{
		Title: fmt.Sprintf("👤 %s's Quest Profile", target.EffectiveName()),
		Color: config.InfoColor,
		Fields: []discord.EmbedField{
			{Name: "🏆 Points", Value: fmt.Sprintf("**%d**", view.Points), Inline: ptr(true)},
			{Name: "🎖️ Rank", Value: view.Rank, Inline: ptr(true)},
			{Name: "📊 Submissions", Value: fmt.Sprintf("%d total • %d approved • %d rejected",
				view.Total, view.Approved, view.Rejected), Inline: ptr(false)},
		},
		Timestamp: &now,
	}
}

// profileComponents builds the profile action row. The withdraw button
// only appears on the viewer's own profile; the history button only when
// there is reviewed history to page.
func profileComponents(target discord.User, viewerID snowflake.ID, view profileView) []discord.ContainerComponent {
	var row []discord.InteractiveComponent
	if target.ID == viewerID {
		row = append(row, discord.NewSuccessButton("💸 Withdraw Points", fmt.Sprintf("/withdraw/start/%s", target.ID)))
	}
	if view.Approved+view.Rejected > 0 {
		row = append(row, discord.NewSecondaryButton("📜 History", fmt.Sprintf("/history/%s/0", target.ID)))
	}
	if len(row) == 0 {
		return nil
	}
	return []discord.ContainerComponent{discord.NewActionRow(row...)}
}

func ProfileHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		target := e.User()
		if member, ok := e.SlashCommandInteractionData().OptUser("member"); ok {
			target = member
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		view, err := loadProfile(ctx, b, target.ID.String())
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load the profile. Please try again.")
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds:     []discord.Embed{profileEmbed(target, view)},
			Components: profileComponents(target, e.User().ID, view),
		})
	}
}

// ProfileButtonHandler rebuilds the profile view in place. Used as the
// back target from the history pager.
func ProfileButtonHandler(b *questbot.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		data, ok := e.Data.(discord.ButtonInteractionData)
		if !ok {
			return fmt.Errorf("invalid interaction type")
		}

		targetID, err := snowflake.Parse(strings.TrimPrefix(data.CustomID(), "/profile/"))
		if err != nil {
			return utils.EH.CreateEphemeralError(e, "This button is no longer valid.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		target, err := e.Client().Rest().GetUser(targetID)
		if err != nil {
			return utils.EH.CreateEphemeralError(e, "Failed to load the profile. Please try again.")
		}

		view, err := loadProfile(ctx, b, targetID.String())
		if err != nil {
			return utils.EH.CreateEphemeralError(e, "Failed to load the profile. Please try again.")
		}

		components := profileComponents(*target, e.User().ID, view)
		return e.UpdateMessage(discord.MessageUpdate{
			Embeds:     &[]discord.Embed{profileEmbed(*target, view)},
			Components: &components,
		})
	}
}
