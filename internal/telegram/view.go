package telegram

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/mister-predictor/internal/models"
)

// MatchInfo carries the display context for one match's signal group
type MatchInfo struct {
	HomeTeam string
	AwayTeam string
	Kickoff  time.Time
}

// SignalGroup is one match's signals in rank order
type SignalGroup struct {
	MatchID int64
	Info    MatchInfo
	Signals []*models.Signal
}

// GroupSignalsByMatch partitions signals by match, preserving the order in
// which matches first appear in the input. Within a group signals sort by
// rank, unranked rows last.
func GroupSignalsByMatch(signals []*models.Signal, info map[int64]MatchInfo) []SignalGroup {
	index := make(map[int64]int)

	var groups []SignalGroup
	for _, sig := range signals {
		i, seen := index[sig.MatchID]
		if !seen {
			i = len(groups)
			index[sig.MatchID] = i
			groups = append(groups, SignalGroup{MatchID: sig.MatchID, Info: info[sig.MatchID]})
		}
		groups[i].Signals = append(groups[i].Signals, sig)
	}

	for i := range groups {
		sort.SliceStable(groups[i].Signals, func(a, b int) bool {
			ra, rb := groups[i].Signals[a].RankInMatch, groups[i].Signals[b].RankInMatch
			if ra == nil {
				return false
			}
			if rb == nil {
				return true
			}
			return *ra < *rb
		})
	}

	return groups
}

// FormatSignalGroup renders one match's signals as an HTML message
func FormatSignalGroup(group SignalGroup) string {
	var b strings.Builder

	home, away := group.Info.HomeTeam, group.Info.AwayTeam
	if home == "" {
		home = "Home"
	}
	if away == "" {
		away = "Away"
	}

	fmt.Fprintf(&b, "<b>%s vs %s</b>\n", escapeHTML(home), escapeHTML(away))
	if !group.Info.Kickoff.IsZero() {
		fmt.Fprintf(&b, "%s\n", group.Info.Kickoff.Format("Mon 02 Jan 15:04 MST"))
	}
	b.WriteString("\n")

	for _, sig := range group.Signals {
		oddsLabel := fmt.Sprintf("%.2f", sig.BookmakerOdds)
		if !sig.HasLiveOdds {
			oddsLabel += " (fair value)"
		}
		fmt.Fprintf(&b, "%s <b>%s</b> @ %s\n", rankMarker(sig.RankInMatch), formatBetType(sig.SuggestedBet), oddsLabel)
		fmt.Fprintf(&b, "   Edge %.1f%% | Confidence %.0f%% | Stake %.2f\n",
			sig.ValueEdge*100, sig.ConfidenceScore*100, sig.RecommendedStake)
		if sig.Explanation != "" {
			fmt.Fprintf(&b, "   <i>%s</i>\n", escapeHTML(sig.Explanation))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatBankroll renders the bankroll summary message
func FormatBankroll(current *models.BankrollEntry, history []*models.BankrollEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Bankroll</b>\n\n")
	fmt.Fprintf(&b, "Balance: <b>%s</b>\n", current.Balance.StringFixed(2))

	if len(history) > 0 {
		var settled int
		total := decimal.Zero
		for _, entry := range history {
			if entry.MatchID != nil {
				settled++
				total = total.Add(entry.PnL)
			}
		}
		if settled > 0 {
			fmt.Fprintf(&b, "Settled bets: %d\n", settled)
			fmt.Fprintf(&b, "PnL over period: %s\n", total.StringFixed(2))
		}
	}

	return b.String()
}

// FormatPerformance renders pattern reliability stats as an HTML message
func FormatPerformance(stats []*models.PatternStat) string {
	if len(stats) == 0 {
		return "No pattern performance data yet. Stats accumulate as signals settle."
	}

	sorted := make([]*models.PatternStat, len(stats))
	copy(sorted, stats)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ReliabilityScore > sorted[j].ReliabilityScore
	})

	var b strings.Builder
	b.WriteString("<b>Pattern Performance</b>\n\n")
	for _, stat := range sorted {
		fmt.Fprintf(&b, "%s: %d/%d (%.0f%%)\n",
			formatBetType(stat.PatternName), stat.Wins, stat.Occurrences, stat.WinRate()*100)
	}
	return b.String()
}

func rankMarker(rank *int) string {
	if rank == nil {
		return "•"
	}
	return fmt.Sprintf("%d.", *rank)
}

// formatBetType turns SNAKE_CASE identifiers into readable labels,
// preserving embedded numbers like 2.5
func formatBetType(betType string) string {
	parts := strings.Split(betType, "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		if part[0] >= '0' && part[0] <= '9' {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
	}
	return strings.Join(parts, " ")
}

func escapeHTML(text string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	return replacer.Replace(text)
}
