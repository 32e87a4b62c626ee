// Package telegram delivers signals and performance summaries through a
// Telegram bot.
package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/mister-predictor/internal/models"
	"github.com/yourusername/mister-predictor/internal/repository"
	"github.com/yourusername/mister-predictor/internal/service"
)

const (
	updateTimeout      = 60
	latestSignalsLimit = 40
	bankrollHistory    = 50
	maxGroupsPerReply  = 10
)

// Bot serves signal and bankroll queries over Telegram and can trigger an
// on-demand analysis run
type Bot struct {
	api          *tgbotapi.BotAPI
	repos        *repository.Repositories
	pipeline     *service.SignalPipelineService
	adminChatIDs map[int64]bool
	logger       *logrus.Logger
}

// NewBot creates and authenticates the Telegram bot
func NewBot(
	token string,
	adminChatIDs []int64,
	repos *repository.Repositories,
	pipeline *service.SignalPipelineService,
	logger *logrus.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	api.Debug = false

	admins := make(map[int64]bool, len(adminChatIDs))
	for _, id := range adminChatIDs {
		admins[id] = true
	}

	logger.WithField("account", api.Self.UserName).Info("Telegram bot authorized")

	return &Bot{
		api:          api,
		repos:        repos,
		pipeline:     pipeline,
		adminChatIDs: admins,
		logger:       logger,
	}, nil
}

// Run processes updates until the context is cancelled
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeout
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("Telegram bot stopped")
			return
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	text := strings.TrimSpace(message.Text)
	if text == "" || !strings.HasPrefix(text, "/") {
		return
	}

	if len(b.adminChatIDs) > 0 && !b.adminChatIDs[message.Chat.ID] {
		b.reply(message.Chat.ID, "Access denied.")
		return
	}

	command := strings.ToLower(strings.Fields(text)[0])
	// Strip the @botname suffix used in group chats
	if i := strings.Index(command, "@"); i > 0 {
		command = command[:i]
	}

	switch command {
	case "/start", "/help":
		b.sendHelp(message.Chat.ID)
	case "/signals":
		b.sendSignals(ctx, message.Chat.ID)
	case "/bankroll":
		b.sendBankroll(ctx, message.Chat.ID)
	case "/performance":
		b.sendPerformance(ctx, message.Chat.ID)
	case "/analyze":
		b.runAnalysis(ctx, message.Chat.ID)
	default:
		b.reply(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) sendHelp(chatID int64) {
	help := `<b>Mister Predictor</b>

/signals - Latest betting signals, grouped by match
/bankroll - Current balance and recent PnL
/performance - Pattern win rates
/analyze - Run the analysis pipeline now
/help - Show this message`
	b.replyHTML(chatID, help)
}

func (b *Bot) sendSignals(ctx context.Context, chatID int64) {
	signals, err := b.repos.Signal.GetLatest(ctx, latestSignalsLimit)
	if err != nil {
		b.logger.WithError(err).Error("Failed to load signals")
		b.reply(chatID, "Failed to load signals.")
		return
	}

	var open []*models.Signal
	for _, sig := range signals {
		if !sig.IsResolved() {
			open = append(open, sig)
		}
	}

	if len(open) == 0 {
		b.reply(chatID, "No signals available. Signals are generated during the daily analysis cycle.")
		return
	}

	groups := GroupSignalsByMatch(open, b.matchInfoFor(ctx, open))
	for i, group := range groups {
		if i >= maxGroupsPerReply {
			b.replyHTML(chatID, fmt.Sprintf("<i>...and %d more matches.</i>", len(groups)-i))
			break
		}
		b.replyHTML(chatID, FormatSignalGroup(group))
	}
}

func (b *Bot) sendBankroll(ctx context.Context, chatID int64) {
	current, err := b.repos.Bankroll.GetCurrentBalance(ctx)
	if err != nil {
		b.logger.WithError(err).Error("Failed to load bankroll")
		b.reply(chatID, "Failed to load bankroll.")
		return
	}
	history, err := b.repos.Bankroll.GetHistory(ctx, bankrollHistory)
	if err != nil {
		b.logger.WithError(err).Warn("Failed to load bankroll history")
	}
	b.replyHTML(chatID, FormatBankroll(current, history))
}

func (b *Bot) sendPerformance(ctx context.Context, chatID int64) {
	stats, err := b.repos.PatternStat.GetAll(ctx)
	if err != nil {
		b.logger.WithError(err).Error("Failed to load pattern stats")
		b.reply(chatID, "Failed to load performance data.")
		return
	}
	b.replyHTML(chatID, FormatPerformance(stats))
}

func (b *Bot) runAnalysis(ctx context.Context, chatID int64) {
	b.reply(chatID, "Running analysis...")

	report, err := b.pipeline.RunAnalysis(ctx)
	if err != nil {
		b.logger.WithError(err).Error("On-demand analysis failed")
		b.reply(chatID, fmt.Sprintf("Analysis failed: %v", err))
		return
	}

	b.reply(chatID, fmt.Sprintf(
		"Analysis complete: %d matches considered, %d signals created, %d failures (%s).",
		report.MatchesTotal, report.SignalsCreated, report.Failures, report.Duration.Round(time.Millisecond).String(),
	))
}

// matchInfoFor resolves team names and kickoff times for the signal groups
func (b *Bot) matchInfoFor(ctx context.Context, signals []*models.Signal) map[int64]MatchInfo {
	info := make(map[int64]MatchInfo)
	for _, sig := range signals {
		if _, done := info[sig.MatchID]; done {
			continue
		}
		match, err := b.repos.Match.GetByID(ctx, sig.MatchID)
		if err != nil {
			b.logger.WithError(err).WithField("match_id", sig.MatchID).Warn("Failed to resolve match for display")
			continue
		}
		mi := MatchInfo{Kickoff: match.UTCDate}
		if home, err := b.repos.Team.GetByID(ctx, match.HomeTeamID); err == nil {
			mi.HomeTeam = home.Name
		}
		if away, err := b.repos.Team.GetByID(ctx, match.AwayTeamID); err == nil {
			mi.AwayTeam = away.Name
		}
		info[sig.MatchID] = mi
	}
	return info
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.WithError(err).Warn("Failed to send telegram message")
	}
}

func (b *Bot) replyHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		b.logger.WithError(err).Warn("Failed to send telegram message")
	}
}
