package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/mister-predictor/internal/models"
)

func TestGenerateFinalDecision(t *testing.T) {
	engine := NewSignalEngine(0.05, 0.5)
	report := reportWith(map[string]float64{
		OutcomeHome: 0.5,
		OutcomeDraw: 0.3,
		OutcomeAway: 0.2,
	})

	tests := []struct {
		name             string
		edge             float64
		confidence       float64
		stake            float64
		marketConfidence float64
		patterns         []Pattern
		expectedDecision models.SignalDecision
		expectedText     string
	}{
		{
			name:             "Strong edge with everything aligned",
			edge:             0.12,
			confidence:       0.80,
			stake:            5,
			marketConfidence: 0.75,
			patterns:         []Pattern{{Name: PatternHomeFortress}},
			expectedDecision: models.SignalDecisionBet,
			expectedText:     "Strong value edge. High confidence signal. Market agrees with prediction. Patterns: HOME_FORTRESS",
		},
		{
			name:             "Moderate edge and decent confidence",
			edge:             0.06,
			confidence:       0.62,
			stake:            3,
			marketConfidence: 0.5,
			expectedDecision: models.SignalDecisionBet,
			expectedText:     "Moderate value edge. Decent confidence",
		},
		{
			name:             "Edge below threshold passes",
			edge:             0.03,
			confidence:       0.55,
			stake:            3,
			marketConfidence: 0.5,
			expectedDecision: models.SignalDecisionPass,
			expectedText:     "Standard analysis",
		},
		{
			name:             "Confidence below threshold passes",
			edge:             0.08,
			confidence:       0.40,
			stake:            3,
			marketConfidence: 0.5,
			expectedDecision: models.SignalDecisionPass,
			expectedText:     "Moderate value edge",
		},
		{
			name:             "Zero stake passes even on a good edge",
			edge:             0.12,
			confidence:       0.80,
			stake:            0,
			marketConfidence: 0.5,
			expectedDecision: models.SignalDecisionPass,
			expectedText:     "Strong value edge. High confidence signal",
		},
		{
			name:             "Multiple patterns listed in order",
			edge:             0.11,
			confidence:       0.78,
			stake:            4,
			marketConfidence: 0.4,
			patterns:         []Pattern{{Name: PatternHomeFortress}, {Name: PatternAwayWeakness}},
			expectedDecision: models.SignalDecisionBet,
			expectedText:     "Strong value edge. High confidence signal. Patterns: HOME_FORTRESS, AWAY_WEAKNESS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := engine.GenerateFinalDecision(report, tt.edge, tt.confidence, tt.stake, BetHomeWin, tt.patterns, tt.marketConfidence)

			assert.Equal(t, tt.expectedDecision, d.Decision)
			assert.Equal(t, tt.expectedText, d.Explanation)
			assert.Equal(t, BetHomeWin, d.BetType)
			assert.Equal(t, "home", d.ExpectedOutcome)
		})
	}
}

func TestDominantOutcomeBreaksTiesDeterministically(t *testing.T) {
	report := reportWith(map[string]float64{
		OutcomeHome: 0.4,
		OutcomeDraw: 0.4,
		OutcomeAway: 0.2,
	})

	// Equal probabilities resolve to the alphabetically first key
	assert.Equal(t, "draw", dominantOutcome(report))
}

func TestNewSignalEngineDefaults(t *testing.T) {
	e := NewSignalEngine(0, 0)

	assert.Equal(t, DefaultSignalMinEdge, e.MinEdge)
	assert.Equal(t, DefaultSignalMinConfidence, e.MinConfidence)
}
