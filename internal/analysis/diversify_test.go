package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func candidate(betType, marketKey string, edge float64) MarketCandidate {
	return MarketCandidate{BetType: betType, MarketKey: marketKey, Edge: edge}
}

func TestSelectDiversePrefersMarketVariety(t *testing.T) {
	candidates := []MarketCandidate{
		candidate(BetHomeWin, Market1X2, 0.12),
		candidate(BetDraw, Market1X2, 0.11),
		candidate(BetOver25, MarketTotals, 0.10),
		candidate(BetBTTSYes, MarketBTTS, 0.08),
	}

	selected := SelectDiverse(candidates, 3)

	assert.Len(t, selected, 3)
	assert.Equal(t, BetHomeWin, selected[0].BetType)
	assert.Equal(t, BetOver25, selected[1].BetType)
	assert.Equal(t, BetBTTSYes, selected[2].BetType)
}

func TestSelectDiverseBackfillsFromSameCategory(t *testing.T) {
	candidates := []MarketCandidate{
		candidate(BetHomeWin, Market1X2, 0.12),
		candidate(BetDraw, Market1X2, 0.11),
		candidate(BetOver25, MarketTotals, 0.10),
	}

	selected := SelectDiverse(candidates, 3)

	assert.Len(t, selected, 3)
	assert.Equal(t, BetHomeWin, selected[0].BetType)
	assert.Equal(t, BetOver25, selected[1].BetType)
	// Second 1x2 pick only enters once every category is represented
	assert.Equal(t, BetDraw, selected[2].BetType)
}

func TestSelectDiverseHonoursCap(t *testing.T) {
	candidates := []MarketCandidate{
		candidate(BetHomeWin, Market1X2, 0.15),
		candidate(BetOver25, MarketTotals, 0.12),
		candidate(BetBTTSYes, MarketBTTS, 0.10),
		candidate(BetHTHome, MarketHalfTime, 0.09),
		candidate(BetLateGoal, MarketLateGoal, 0.07),
	}

	selected := SelectDiverse(candidates, 2)

	assert.Len(t, selected, 2)
	assert.Equal(t, BetHomeWin, selected[0].BetType)
	assert.Equal(t, BetOver25, selected[1].BetType)
}

func TestSelectDiverseDefaultCap(t *testing.T) {
	candidates := []MarketCandidate{
		candidate(BetHomeWin, Market1X2, 0.15),
		candidate(BetOver25, MarketTotals, 0.12),
		candidate(BetBTTSYes, MarketBTTS, 0.10),
		candidate(BetHTHome, MarketHalfTime, 0.09),
		candidate(BetLateGoal, MarketLateGoal, 0.07),
		candidate(BetOddGoals, MarketOddEven, 0.06),
	}

	selected := SelectDiverse(candidates, 0)

	assert.Len(t, selected, DefaultMaxSignalsPerMatch)
}

func TestSelectDiverseEmptyInput(t *testing.T) {
	assert.Nil(t, SelectDiverse(nil, 5))
	assert.Nil(t, SelectDiverse([]MarketCandidate{}, 5))
}
