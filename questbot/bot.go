package questbot

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"
	"github.com/questcord/questbot/questbot/collector"
	"github.com/questcord/questbot/questbot/database"
	"github.com/questcord/questbot/questbot/database/repositories"
	"github.com/questcord/questbot/questbot/quest"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Collector: collector.New(),
		Version:   version,
		Commit:    commit,
	}
}

// Bot is the explicitly-constructed application context: configuration,
// the gateway client, the store handle, and every workflow service.
// Components receive it at construction time instead of reaching for
// globals.
type Bot struct {
	Cfg       Config
	Client    bot.Client
	Paginator *paginator.Manager
	Collector *collector.Manager
	Version   string
	Commit    string
	DB        *database.DB

	UserRepository       repositories.UserRepository
	TaskRepository       repositories.TaskRepository
	SubmissionRepository repositories.SubmissionRepository
	WithdrawalRepository repositories.WithdrawalRepository
	BanRepository        repositories.BanRepository

	Cooldown *quest.Cooldown
	Board    *quest.BoardService
	Intake   *quest.IntakeService
	Review   *quest.ReviewService
	Withdraw *quest.WithdrawService
	History  *quest.HistoryService
}

// SetupServices wires the repositories and workflow services once the
// database handle exists.
func (b *Bot) SetupServices() {
	bunDB := b.DB.BunDB()
	b.UserRepository = repositories.NewUserRepository(bunDB)
	b.TaskRepository = repositories.NewTaskRepository(bunDB)
	b.SubmissionRepository = repositories.NewSubmissionRepository(bunDB)
	b.WithdrawalRepository = repositories.NewWithdrawalRepository(bunDB)
	b.BanRepository = repositories.NewBanRepository(bunDB)

	b.Cooldown = quest.NewCooldown(time.Duration(b.Cfg.Quest.CooldownSeconds) * time.Second)
	b.Withdraw = quest.NewWithdrawService(b.UserRepository, b.WithdrawalRepository, b.Cfg.Quest.WithdrawalMinimum)
	b.History = quest.NewHistoryService(b.SubmissionRepository)
}

// SetupClient builds the gateway client and the rest-backed services
// that need it. The collector listens for plain messages so suspended
// flows can consume them as form input.
func (b *Bot) SetupClient(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(gateway.IntentGuilds, gateway.IntentGuildMessages, gateway.IntentMessageContent)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(bot.NewListenerFunc(b.Collector.OnMessageCreate)),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}
	b.Client = client

	restClient := client.Rest()
	b.Board = quest.NewBoardService(b.TaskRepository, b.SubmissionRepository, restClient)
	b.Intake = quest.NewIntakeService(
		b.UserRepository,
		b.TaskRepository,
		b.SubmissionRepository,
		b.BanRepository,
		b.Cooldown,
		b.Collector,
		b.Board,
		restClient,
		restClient,
		b.Cfg.Channels.Slots,
		time.Duration(b.Cfg.Quest.ProofTimeoutSecs)*time.Second,
	)
	b.Review = quest.NewReviewService(
		b.UserRepository,
		b.SubmissionRepository,
		restClient,
		b.Cfg.Channels.Notifications,
		b.Cfg.Quest.Milestones,
	)
	return nil
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("QuestBot is now ready",
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithWatchingActivity("quests roll in"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.Any("error", err))
	}
}
