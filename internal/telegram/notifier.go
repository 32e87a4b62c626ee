package telegram

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/mister-predictor/internal/models"
	"github.com/yourusername/mister-predictor/internal/repository"
)

// Telegram throttles bots at roughly 30 messages per minute per chat
const sendInterval = 2 * time.Second

// Notifier pushes freshly generated signals to the admin chats and marks
// them published so a signal is announced exactly once
type Notifier struct {
	api      *tgbotapi.BotAPI
	repos    *repository.Repositories
	chatIDs  []int64
	logger   *logrus.Logger
	mu       sync.Mutex
	lastSend time.Time
}

// NewNotifier creates a notifier reusing the bot's API handle
func NewNotifier(bot *Bot, chatIDs []int64, logger *logrus.Logger) *Notifier {
	return &Notifier{
		api:     bot.api,
		repos:   bot.repos,
		chatIDs: chatIDs,
		logger:  logger,
	}
}

// PublishNewSignals sends every unpublished open signal to the admin chats,
// grouped by match, then marks the batch published
func (n *Notifier) PublishNewSignals(ctx context.Context) error {
	signals, err := n.repos.Signal.GetLatest(ctx, latestSignalsLimit)
	if err != nil {
		return err
	}

	var pending []*models.Signal
	for _, sig := range signals {
		if !sig.IsPublished && !sig.IsResolved() {
			pending = append(pending, sig)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	info := n.matchInfoFor(ctx, pending)
	groups := GroupSignalsByMatch(pending, info)

	var publishedIDs []string
	for _, group := range groups {
		text := FormatSignalGroup(group)
		delivered := false
		for _, chatID := range n.chatIDs {
			n.throttle()
			msg := tgbotapi.NewMessage(chatID, text)
			msg.ParseMode = tgbotapi.ModeHTML
			if _, err := n.api.Send(msg); err != nil {
				n.logger.WithError(err).WithField("chat_id", chatID).Warn("Failed to deliver signal notification")
				continue
			}
			delivered = true
		}
		if delivered {
			for _, sig := range group.Signals {
				publishedIDs = append(publishedIDs, sig.ID.String())
			}
		}
	}

	if len(publishedIDs) == 0 {
		return nil
	}
	if err := n.repos.Signal.MarkPublished(ctx, publishedIDs); err != nil {
		return err
	}

	n.logger.WithField("signals", len(publishedIDs)).Info("Published new signals")
	return nil
}

// matchInfoFor mirrors the bot's lookup; the notifier runs without a Bot in
// scheduled contexts so it keeps its own copy
func (n *Notifier) matchInfoFor(ctx context.Context, signals []*models.Signal) map[int64]MatchInfo {
	info := make(map[int64]MatchInfo)
	for _, sig := range signals {
		if _, done := info[sig.MatchID]; done {
			continue
		}
		match, err := n.repos.Match.GetByID(ctx, sig.MatchID)
		if err != nil {
			continue
		}
		mi := MatchInfo{Kickoff: match.UTCDate}
		if home, err := n.repos.Team.GetByID(ctx, match.HomeTeamID); err == nil {
			mi.HomeTeam = home.Name
		}
		if away, err := n.repos.Team.GetByID(ctx, match.AwayTeamID); err == nil {
			mi.AwayTeam = away.Name
		}
		info[sig.MatchID] = mi
	}
	return info
}

func (n *Notifier) throttle() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if wait := sendInterval - time.Since(n.lastSend); wait > 0 {
		time.Sleep(wait)
	}
	n.lastSend = time.Now()
}
