package quest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/questcord/questbot/questbot/collector"
	"github.com/questcord/questbot/questbot/config"
	"github.com/questcord/questbot/questbot/database/models"
	"github.com/questcord/questbot/questbot/database/repositories"
)

// MessageDeleter removes a message from a channel. Satisfied by
// rest.Rest.
type MessageDeleter interface {
	DeleteMessage(channelID snowflake.ID, messageID snowflake.ID, opts ...rest.RequestOpt) error
}

var cooldownMessages = []string{
	"⏳ Quest cooldown! Take a sip of water 💧 Try again in %ds.",
	"😅 Whoa %s, calm down — adventurers need rest too 🛑 (%ds left)",
	"🕒 Patience %s, greatness takes time ⚡ %ds to go.",
	"🚦 Too much traffic on **%s** — wait %ds!",
	"😴 Even heroes nap. Try again in %ds!",
	"🐢 Slow and steady wins the quest %s! (%ds left)",
}

// CooldownMessage picks a denial phrase for a throttled click. Selection
// keys off the remaining seconds so repeated clicks rotate phrasing
// without randomness.
func CooldownMessage(mention, title string, remaining time.Duration) string {
	sec := int(remaining.Seconds())
	if sec < 1 {
		sec = 1
	}
	switch sec % len(cooldownMessages) {
	case 0:
		return fmt.Sprintf(cooldownMessages[0], sec)
	case 1:
		return fmt.Sprintf(cooldownMessages[1], mention, sec)
	case 2:
		return fmt.Sprintf(cooldownMessages[2], mention, sec)
	case 3:
		return fmt.Sprintf(cooldownMessages[3], title, sec)
	case 4:
		return fmt.Sprintf(cooldownMessages[4], sec)
	default:
		return fmt.Sprintf(cooldownMessages[5], mention, sec)
	}
}

// IntakeService runs the per-click submission state machine:
// CooldownCheck → CapacityCheck → DuplicateCheck → AwaitingProof →
// Recorded, with typed denials as early exits. The owner check happens
// at the component layer, where the clicking identity is known.
type IntakeService struct {
	users        repositories.UserRepository
	tasks        repositories.TaskRepository
	subs         repositories.SubmissionRepository
	bans         repositories.BanRepository
	cooldown     *Cooldown
	collector    *collector.Manager
	board        *BoardService
	sender       MessageSender
	deleter      MessageDeleter
	slotsChannel snowflake.ID
	proofTimeout time.Duration
}

func NewIntakeService(
	users repositories.UserRepository,
	tasks repositories.TaskRepository,
	subs repositories.SubmissionRepository,
	bans repositories.BanRepository,
	cooldown *Cooldown,
	col *collector.Manager,
	board *BoardService,
	sender MessageSender,
	deleter MessageDeleter,
	slotsChannel snowflake.ID,
	proofTimeout time.Duration,
) *IntakeService {
	return &IntakeService{
		users:        users,
		tasks:        tasks,
		subs:         subs,
		bans:         bans,
		cooldown:     cooldown,
		collector:    col,
		board:        board,
		sender:       sender,
		deleter:      deleter,
		slotsChannel: slotsChannel,
		proofTimeout: proofTimeout,
	}
}

// Begin runs every check that must pass before the proof wait starts.
// The cooldown stamp is recorded inside the check itself, before any
// storage round trip, so two near-simultaneous clicks cannot both pass.
// A task found full here is archived and the board refreshed.
func (s *IntakeService) Begin(ctx context.Context, userID string, taskID int64, board Board) (*models.Task, error) {
	banned, err := s.bans.IsBanned(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check ban: %w", err)
	}
	if banned {
		return nil, Deny(DenyBanned)
	}

	if remaining, ok := s.cooldown.Check(userID, taskID); !ok {
		return nil, &DenyError{Reason: DenyCooldown, Remaining: remaining}
	}

	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task %d: %w", taskID, err)
	}
	if task.Archived {
		return nil, Deny(DenyFull)
	}

	// Render-time capacity may be stale; the click-time check is the
	// binding one.
	done, err := s.subs.CountDone(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	if done >= task.MaxSubmissions {
		if err := s.tasks.Archive(ctx, taskID); err != nil {
			slog.Error("Failed to archive full task",
				slog.String("type", "db"),
				slog.Int64("task_id", taskID),
				slog.Any("error", err))
		}
		s.board.Refresh(ctx, board)
		return nil, Deny(DenyFull)
	}

	if existing, err := s.subs.GetByUserAndTask(ctx, userID, taskID); err == nil {
		return nil, &DenyError{Reason: DenyDuplicate, Status: existing.Status}
	} else if !errors.Is(err, repositories.ErrSubmissionNotFound) {
		return nil, fmt.Errorf("failed to check for duplicate submission: %w", err)
	}

	return task, nil
}

// AwaitProof suspends until the user posts a link in the channel or the
// proof window lapses. The matched message is consumed (deleted from the
// channel) and its content becomes the proof.
func (s *IntakeService) AwaitProof(ctx context.Context, userID, channelID snowflake.ID) (string, error) {
	msg, err := s.collector.Await(ctx, userID, channelID, func(m discord.Message) bool {
		return strings.HasPrefix(m.Content, "http")
	}, s.proofTimeout)
	if err != nil {
		if errors.Is(err, collector.ErrTimeout) {
			return "", Deny(DenyTimeout)
		}
		return "", err
	}

	if err := s.deleter.DeleteMessage(msg.ChannelID, msg.ID); err != nil {
		slog.Warn("Failed to delete proof message",
			slog.String("type", "sys"),
			slog.String("message_id", msg.ID.String()),
			slog.Any("error", err))
	}
	return strings.TrimSpace(msg.Content), nil
}

// Record writes the pending submission, broadcasts the remaining-slot
// count, and refreshes the board. Returns the slots left after this
// submission, or -1 when the count could not be read.
func (s *IntakeService) Record(ctx context.Context, userID string, task *models.Task, proof string, board Board) (int, error) {
	if err := s.users.Ensure(ctx, userID); err != nil {
		return 0, err
	}

	sub := &models.Submission{
		UserID: userID,
		TaskID: task.ID,
		Proof:  proof,
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return 0, err
	}

	done, err := s.subs.CountDone(ctx, task.ID)
	if err != nil {
		// The row is in; without a real count there is nothing honest
		// to broadcast.
		slog.Error("Failed to count submissions after record",
			slog.String("type", "db"),
			slog.Int64("task_id", task.ID),
			slog.Any("error", err))
		s.board.Refresh(ctx, board)
		return -1, nil
	}
	slotsLeft := task.MaxSubmissions - done
	if slotsLeft < 0 {
		slotsLeft = 0
	}

	s.broadcastSlots(task, slotsLeft)
	s.board.Refresh(ctx, board)
	return slotsLeft, nil
}

func (s *IntakeService) broadcastSlots(task *models.Task, slotsLeft int) {
	if s.slotsChannel == 0 {
		return
	}
	_, err := s.sender.CreateMessage(s.slotsChannel, discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       "📢 Quest Progress Update",
			Description: fmt.Sprintf("**%s** has %d slots left!", task.Title, slotsLeft),
			Color:       config.SuccessColor,
			Footer: &discord.EmbedFooter{
				Text: fmt.Sprintf("A new submission was received. %d slots remaining!", slotsLeft),
			},
		}},
	})
	if err != nil {
		slog.Error("Failed to send slot broadcast",
			slog.String("type", "sys"),
			slog.String("channel_id", s.slotsChannel.String()),
			slog.Any("error", err))
	}
}
