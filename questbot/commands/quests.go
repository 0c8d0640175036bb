package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
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

var Quests = discord.SlashCommandCreate{
	Name:        "quests",
	Description: "📋 Show the quest board with every open quest",
}

// QuestsHandler posts the caller's quest board. The board message is
// bound to the caller: only their clicks open a submission flow.
func QuestsHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if err := e.DeferCreateMessage(false); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		entries, err := b.Board.Render(ctx)
		if err != nil {
			slog.Error("Failed to render quest board",
				slog.String("type", "db"),
				slog.Any("error", err))
			_, err = e.UpdateInteractionResponse(discord.MessageUpdate{
				Content: ptr("❌ Failed to load the quest board. Please try again."),
			})
			return err
		}

		if len(entries) == 0 {
			_, err = e.UpdateInteractionResponse(discord.MessageUpdate{
				Content: ptr("⚠️ No active quests right now. Check back soon!"),
			})
			return err
		}

		components := quest.BoardComponents(entries, e.User().ID)
		_, err = e.UpdateInteractionResponse(discord.MessageUpdate{
			Embeds:     &[]discord.Embed{quest.BoardEmbed(entries)},
			Components: &components,
		})
		return err
	}
}

// QuestButtonHandler runs the submission flow behind every board button.
// The custom ID carries the task and the board owner, so the handler
// works from the click alone.
func QuestButtonHandler(b *questbot.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		data, ok := e.Data.(discord.ButtonInteractionData)
		if !ok {
			return fmt.Errorf("invalid interaction type")
		}

		parts := strings.Split(strings.TrimPrefix(data.CustomID(), "/quest/"), "/")
		if len(parts) != 2 {
			return utils.EH.CreateEphemeralError(e, "This button is no longer valid. Run /quests for a fresh board.")
		}
		taskID, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return utils.EH.CreateEphemeralError(e, "This button is no longer valid. Run /quests for a fresh board.")
		}
		ownerID, err := snowflake.Parse(parts[1])
		if err != nil {
			return utils.EH.CreateEphemeralError(e, "This button is no longer valid. Run /quests for a fresh board.")
		}

		user := e.User()
		if user.ID != ownerID {
			return utils.EH.CreateEphemeralError(e, "🚫 This quest board belongs to someone else. Run /quests to get your own!")
		}

		board := quest.Board{
			ChannelID: e.Message.ChannelID,
			MessageID: e.Message.ID,
			OwnerID:   ownerID,
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		task, err := b.Intake.Begin(ctx, user.ID.String(), taskID, board)
		if err != nil {
			var deny *quest.DenyError
			if errors.As(err, &deny) {
				title := "this quest"
				if deny.Reason == quest.DenyCooldown {
					// The cooldown check fires before the task load, so
					// the title is fetched here just for the message.
					if t, terr := b.TaskRepository.Get(ctx, taskID); terr == nil {
						title = t.Title
					}
				}
				return utils.EH.CreateEphemeralError(e, denyText(user, deny, title))
			}
			slog.Error("Failed to start submission flow",
				slog.String("type", "error"),
				slog.Int64("task_id", taskID),
				slog.Any("error", err))
			return utils.EH.CreateEphemeralError(e, "Something went wrong starting this quest. Please try again.")
		}

		proofWindow := time.Duration(b.Cfg.Quest.ProofTimeoutSecs) * time.Second

		prompt := discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title: fmt.Sprintf("%s %s", quest.TypeEmoji(task.Type), task.Title),
				Description: fmt.Sprintf(
					"Post your **proof link** (starting with `http`) in this channel within **%d seconds**.\nReward: **%d points** 🏆",
					int(proofWindow.Seconds()), task.Points),
				Color: config.InfoColor,
			}},
			Flags: discord.MessageFlagEphemeral,
		}
		if task.Link != "" {
			prompt.Components = []discord.ContainerComponent{
				discord.NewActionRow(discord.NewLinkButton("🔗 Open Quest", task.Link)),
			}
		}
		if err := e.CreateMessage(prompt); err != nil {
			return err
		}

		go collectProof(b, e, user, task, board, proofWindow)
		return nil
	}
}

// collectProof waits out the proof window off the interaction goroutine
// and reports back through followups.
func collectProof(b *questbot.Bot, e *handler.ComponentEvent, user discord.User, task *models.Task, board quest.Board, proofWindow time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), proofWindow+30*time.Second)
	defer cancel()

	proof, err := b.Intake.AwaitProof(ctx, user.ID, board.ChannelID)
	if err != nil {
		var deny *quest.DenyError
		if errors.As(err, &deny) && deny.Reason == quest.DenyTimeout {
			_, _ = e.CreateFollowupMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Description: fmt.Sprintf("⏰ Time's up for **%s**! Click the quest again when your proof is ready.", task.Title),
					Color:       config.WarningColor,
				}},
				Flags: discord.MessageFlagEphemeral,
			})
			return
		}
		slog.Error("Proof collection failed",
			slog.String("type", "error"),
			slog.Int64("task_id", task.ID),
			slog.Any("error", err))
		return
	}

	slotsLeft, err := b.Intake.Record(ctx, user.ID.String(), task, proof, board)
	if err != nil {
		slog.Error("Failed to record submission",
			slog.String("type", "db"),
			slog.Int64("task_id", task.ID),
			slog.Any("error", err))
		_, _ = e.CreateFollowupMessage(discord.MessageCreate{
			Content: "❌ Failed to save your submission. Please try again.",
			Flags:   discord.MessageFlagEphemeral,
		})
		return
	}

	desc := fmt.Sprintf("Your proof for **%s** is in! An admin will review it soon.", task.Title)
	if slotsLeft >= 0 {
		desc += fmt.Sprintf("\n%d slot(s) remain on this quest.", slotsLeft)
	}
	_, _ = e.CreateFollowupMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       "✅ Submission Received",
			Description: desc,
			Color:       config.SuccessColor,
		}},
		Flags: discord.MessageFlagEphemeral,
	})
}

// denyText renders a typed denial for the clicking user. title is the
// quest title for the cooldown phrasing that names it.
func denyText(user discord.User, deny *quest.DenyError, title string) string {
	switch deny.Reason {
	case quest.DenyBanned:
		return "🚫 You are banned from submitting quests."
	case quest.DenyCooldown:
		return quest.CooldownMessage(user.Mention(), title, deny.Remaining)
	case quest.DenyFull:
		return "😔 This quest just filled up. The board has been refreshed."
	case quest.DenyDuplicate:
		switch deny.Status {
		case models.SubmissionPending:
			return "📝 You already submitted this quest — it's waiting for review."
		case models.SubmissionApproved:
			return "🏆 You already completed this quest!"
		default:
			return "❌ Your submission for this quest was rejected. Each quest allows one attempt."
		}
	default:
		return "❌ " + deny.Error()
	}
}

func ptr[T any](v T) *T {
	return &v
}
