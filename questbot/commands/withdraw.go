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
	"github.com/questcord/questbot/questbot/database/repositories"
	"github.com/questcord/questbot/questbot/quest"
	"github.com/questcord/questbot/questbot/utils"
)

// WithdrawButtonHandler routes every "/withdraw/..." click: the
// profile-side start button and the admin-side details and approve
// buttons on the ops request.
func WithdrawButtonHandler(b *questbot.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		data, ok := e.Data.(discord.ButtonInteractionData)
		if !ok {
			return fmt.Errorf("invalid interaction type")
		}

		parts := strings.Split(strings.TrimPrefix(data.CustomID(), "/withdraw/"), "/")
		if len(parts) != 2 {
			return utils.EH.CreateEphemeralError(e, "This button is no longer valid.")
		}

		switch parts[0] {
		case "start":
			return handleWithdrawStart(b, e, parts[1])
		case "details":
			return handleWithdrawDetails(b, e, parts[1])
		case "approve":
			return handleWithdrawApprove(b, e, parts[1])
		default:
			return utils.EH.CreateEphemeralError(e, "This button is no longer valid.")
		}
	}
}

func handleWithdrawStart(b *questbot.Bot, e *handler.ComponentEvent, rawUserID string) error {
	user := e.User()
	if user.ID.String() != rawUserID {
		return utils.EH.CreateEphemeralError(e, "🚫 You can only withdraw from your own profile.")
	}
	userID := user.ID.String()

	if !b.Withdraw.TryBegin(userID) {
		return utils.EH.CreateEphemeralError(e, "⏳ You already have a withdrawal in progress. Finish that one first.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
	balance, err := b.Withdraw.Eligible(ctx, userID)
	cancel()
	if err != nil {
		b.Withdraw.End(userID)
		var deny *quest.DenyError
		if errors.As(err, &deny) {
			return utils.EH.CreateEphemeralError(e, fmt.Sprintf(
				"💰 You need at least **%d** points to withdraw. Current balance: **%d**.",
				b.Withdraw.Minimum(), balance))
		}
		return utils.EH.CreateEphemeralError(e, "Failed to check your balance. Please try again.")
	}

	if err := e.CreateMessage(discord.MessageCreate{
		Content: "🏦 Let's set up your withdrawal! Answer the prompts below — you have 60 seconds per step.",
		Flags:   discord.MessageFlagEphemeral,
	}); err != nil {
		b.Withdraw.End(userID)
		return err
	}

	go runWithdrawForm(b, user, e.Message.ChannelID, balance)
	return nil
}

// runWithdrawForm walks the sequential detail collection. Prompts and
// answers are deleted as each step completes; any timeout aborts the
// whole negotiation with nothing written.
func runWithdrawForm(b *questbot.Bot, user discord.User, channelID snowflake.ID, balance int64) {
	userID := user.ID.String()
	defer b.Withdraw.End(userID)

	formWindow := time.Duration(b.Cfg.Quest.FormTimeoutSecs) * time.Second
	restClient := b.Client.Rest()

	ask := func(prompt string) (string, bool) {
		msg, err := restClient.CreateMessage(channelID, discord.MessageCreate{
			Content: fmt.Sprintf("%s %s", user.Mention(), prompt),
		})
		if err != nil {
			slog.Error("Failed to send withdrawal prompt",
				slog.String("type", "sys"),
				slog.Any("error", err))
			return "", false
		}

		ctx, cancel := context.WithTimeout(context.Background(), formWindow+10*time.Second)
		defer cancel()
		answer, err := b.Collector.Await(ctx, user.ID, channelID, nil, formWindow)

		_ = restClient.DeleteMessage(channelID, msg.ID)
		if err != nil {
			_, _ = restClient.CreateMessage(channelID, discord.MessageCreate{
				Content: fmt.Sprintf("⏰ %s, withdrawal cancelled — you took too long to reply.", user.Mention()),
			})
			return "", false
		}

		_ = restClient.DeleteMessage(channelID, answer.ID)
		return strings.TrimSpace(answer.Content), true
	}

	form := quest.WithdrawalForm{}
	var ok bool
	if form.BankName, ok = ask("What is your **bank name**?"); !ok {
		return
	}
	if form.AccountNumber, ok = ask("What is your **account number**?"); !ok {
		return
	}
	if form.AccountName, ok = ask("What is the **account holder name**?"); !ok {
		return
	}

	raw, ok := ask(fmt.Sprintf("How many **points** do you want to withdraw? (minimum %d, balance %d)",
		b.Withdraw.Minimum(), balance))
	if !ok {
		return
	}

	amount, err := b.Withdraw.ValidateAmount(raw, balance)
	if err != nil {
		var deny *quest.DenyError
		reason := "❌ Invalid amount, withdrawal cancelled."
		if errors.As(err, &deny) {
			switch deny.Reason {
			case quest.DenyNotANumber:
				reason = "❌ That's not a valid number. Withdrawal cancelled."
			case quest.DenyBelowMinimum:
				reason = fmt.Sprintf("❌ The minimum withdrawal is **%d** points. Withdrawal cancelled.", b.Withdraw.Minimum())
			case quest.DenyExceedsBalance:
				reason = fmt.Sprintf("❌ You only have **%d** points. Withdrawal cancelled.", balance)
			}
		}
		_, _ = restClient.CreateMessage(channelID, discord.MessageCreate{
			Content: fmt.Sprintf("%s %s", user.Mention(), reason),
		})
		return
	}
	form.Points = amount

	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
	w, err := b.Withdraw.Commit(ctx, userID, form)
	cancel()
	if err != nil {
		content := "❌ Failed to record the withdrawal. Please try again."
		if errors.Is(err, repositories.ErrInsufficientPoints) {
			content = "❌ Your balance changed while we talked — not enough points anymore. Withdrawal cancelled."
		}
		_, _ = restClient.CreateMessage(channelID, discord.MessageCreate{
			Content: fmt.Sprintf("%s %s", user.Mention(), content),
		})
		return
	}

	_, _ = restClient.CreateMessage(channelID, discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title: "💸 Withdrawal Requested",
			Description: fmt.Sprintf("%s, your request for **%d points** is in! An admin will process it soon.",
				user.Mention(), w.Points),
			Color: config.SuccessColor,
		}},
	})

	notifyWithdrawalOps(b, user, w.ID, w.Points)
}

// notifyWithdrawalOps posts the admin approval request to the
// withdrawals channel.
func notifyWithdrawalOps(b *questbot.Bot, user discord.User, withdrawalID int64, points int64) {
	if b.Cfg.Channels.Withdrawals == 0 {
		return
	}
	_, err := b.Client.Rest().CreateMessage(b.Cfg.Channels.Withdrawals, discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title: "💸 New Withdrawal Request",
			Description: fmt.Sprintf("**User:** %s (`%s`)\n**Points:** %d\n**Request ID:** #%d",
				user.Mention(), user.ID, points, withdrawalID),
			Color: config.GoldColor,
		}},
		Components: []discord.ContainerComponent{
			discord.NewActionRow(
				discord.NewSecondaryButton("📋 Details", fmt.Sprintf("/withdraw/details/%d", withdrawalID)),
				discord.NewSuccessButton("✅ Mark Completed", fmt.Sprintf("/withdraw/approve/%d", withdrawalID)),
			),
		},
	})
	if err != nil {
		slog.Error("Failed to send withdrawal request to ops channel",
			slog.String("type", "sys"),
			slog.Int64("withdrawal_id", withdrawalID),
			slog.Any("error", err))
	}
}

func handleWithdrawDetails(b *questbot.Bot, e *handler.ComponentEvent, rawID string) error {
	if !isAdmin(e.Member()) {
		return utils.EH.CreateEphemeralError(e, "🚫 Only administrators can view withdrawal details.")
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return utils.EH.CreateEphemeralError(e, "This button is no longer valid.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
	defer cancel()

	w, err := b.Withdraw.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrWithdrawalNotFound) {
			return utils.EH.CreateEphemeralError(e, "This withdrawal no longer exists.")
		}
		return utils.EH.CreateEphemeralError(e, "Failed to load the withdrawal. Please try again.")
	}

	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title: fmt.Sprintf("📋 Withdrawal #%d", w.ID),
			Description: fmt.Sprintf(
				"**User:** <@%s>\n**Bank:** %s\n**Account Number:** `%s`\n**Account Name:** %s\n**Points:** %d\n**Status:** %s\n**Requested:** %s",
				w.UserID, w.BankName, w.AccountNumber, w.AccountName, w.Points, w.Status,
				w.CreatedAt.Format("Jan 02, 2006 15:04")),
			Color: config.InfoColor,
		}},
		Flags: discord.MessageFlagEphemeral,
	})
}

func handleWithdrawApprove(b *questbot.Bot, e *handler.ComponentEvent, rawID string) error {
	if !isAdmin(e.Member()) {
		return utils.EH.CreateEphemeralError(e, "🚫 Only administrators can complete withdrawals.")
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return utils.EH.CreateEphemeralError(e, "This button is no longer valid.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
	defer cancel()

	if err := b.Withdraw.Complete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrAlreadyCompleted):
			return utils.EH.CreateEphemeralError(e, "This withdrawal was already completed.")
		case errors.Is(err, repositories.ErrWithdrawalNotFound):
			return utils.EH.CreateEphemeralError(e, "This withdrawal no longer exists.")
		default:
			return utils.EH.CreateEphemeralError(e, "Failed to complete the withdrawal. Please try again.")
		}
	}

	embeds := e.Message.Embeds
	if len(embeds) > 0 {
		embeds[0].Color = config.SuccessColor
	}
	return e.UpdateMessage(discord.MessageUpdate{
		Content:    ptr(fmt.Sprintf("✅ Completed by %s", e.User().Mention())),
		Embeds:     &embeds,
		Components: &[]discord.ContainerComponent{},
	})
}

// isAdmin gates admin-only component actions on the administrator bit.
func isAdmin(member *discord.ResolvedMember) bool {
	return member != nil && member.Permissions.Has(discord.PermissionAdministrator)
}
