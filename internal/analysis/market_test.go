package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/mister-predictor/internal/models"
)

func snapshot(home, away float64) *models.OddsSnapshot {
	return &models.OddsSnapshot{
		HomeOdds: floatPtr(home),
		AwayOdds: floatPtr(away),
	}
}

func TestMarketScoreNeutralWithSparseHistory(t *testing.T) {
	engine := MarketConfidenceEngine{}

	assert.Equal(t, 0.5, engine.GetScore(BetHomeWin, nil))
	assert.Equal(t, 0.5, engine.GetScore(BetHomeWin, []*models.OddsSnapshot{snapshot(2.0, 3.5)}))
}

func TestShorteningPriceReadsAsAgreement(t *testing.T) {
	engine := MarketConfidenceEngine{}
	history := []*models.OddsSnapshot{
		snapshot(2.2, 3.5),
		snapshot(2.0, 3.8),
	}

	// Drift of -0.2 earns a 0.02 boost plus a 0.04 stability bonus
	assert.InDelta(t, 0.56, engine.GetScore(BetHomeWin, history), 1e-9)
}

func TestDriftingPricePenalizes(t *testing.T) {
	engine := MarketConfidenceEngine{}
	history := []*models.OddsSnapshot{
		snapshot(3.0, 2.2),
		snapshot(4.0, 2.0),
	}

	// Drift of +1.0 costs the capped 0.08 penalty against the 0.04 bonus
	assert.InDelta(t, 0.46, engine.GetScore(BetHomeWin, history), 1e-9)

	// The away price shortened over the same window
	assert.InDelta(t, 0.56, engine.GetScore(BetAwayWin, history), 1e-9)
}

func TestNonWinMarketsOnlyEarnStabilityBonus(t *testing.T) {
	engine := MarketConfidenceEngine{}
	history := []*models.OddsSnapshot{
		snapshot(2.2, 3.5),
		snapshot(2.0, 3.8),
		snapshot(1.9, 4.0),
	}

	assert.InDelta(t, 0.56, engine.GetScore(BetOver25, history), 1e-9)
}

func TestStabilityBonusIsCapped(t *testing.T) {
	engine := MarketConfidenceEngine{}
	var history []*models.OddsSnapshot
	for i := 0; i < 10; i++ {
		history = append(history, snapshot(2.0, 3.5))
	}

	assert.InDelta(t, 0.6, engine.GetScore(BetOver25, history), 1e-9)
}

func TestMissingPricesContributeNoDrift(t *testing.T) {
	engine := MarketConfidenceEngine{}
	history := []*models.OddsSnapshot{
		{},
		snapshot(2.0, 3.5),
	}

	assert.InDelta(t, 0.54, engine.GetScore(BetHomeWin, history), 1e-9)
}
