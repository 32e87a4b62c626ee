package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/mister-predictor/internal/models"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

// finished builds a finished match with the given full-time score
func finished(homeScore, awayScore int) *models.Match {
	return &models.Match{
		Status:    models.MatchStatusFinished,
		UTCDate:   time.Date(2026, 1, 10, 15, 0, 0, 0, time.UTC),
		HomeScore: intPtr(homeScore),
		AwayScore: intPtr(awayScore),
	}
}

// finishedHT builds a finished match with full-time and half-time scores
func finishedHT(homeScore, awayScore, htHome, htAway int) *models.Match {
	m := finished(homeScore, awayScore)
	m.HomeHTScore = intPtr(htHome)
	m.AwayHTScore = intPtr(htAway)
	return m
}

func upcoming(id, homeTeamID, awayTeamID int64) *models.Match {
	return &models.Match{
		ID:         id,
		Status:     models.MatchStatusScheduled,
		UTCDate:    time.Now().UTC().Add(48 * time.Hour),
		HomeTeamID: homeTeamID,
		AwayTeamID: awayTeamID,
	}
}

func TestBuildFeaturesFallsBackToNeutralPriors(t *testing.T) {
	match := upcoming(1, 10, 20)

	fv := BuildFeatures(match, nil, nil, nil)

	assert.Equal(t, int64(1), fv.MatchID)
	assert.Equal(t, 0.4, fv.HomeFormAvg)
	assert.Equal(t, 0.3, fv.AwayFormAvg)
	assert.Equal(t, 0.0, fv.PositionGap)
	assert.Equal(t, 1.2, fv.HomeGoalsAvg)
	assert.Equal(t, 1.0, fv.HomeConcededAvg)
	assert.Equal(t, 1.0, fv.AwayGoalsAvg)
	assert.Equal(t, 1.3, fv.AwayConcededAvg)
	assert.Equal(t, 0.5, fv.Over25HomeRate)
	assert.Equal(t, 0.5, fv.BTTSHomeRate)
	assert.Equal(t, 0.7, fv.HTOver05Rate)
}

func TestBuildFeaturesComputesHomeAverages(t *testing.T) {
	match := upcoming(2, 10, 20)
	homeHistory := []*models.Match{
		finished(2, 0),
		finished(3, 1),
		finished(1, 1),
		finished(0, 2),
		finished(2, 1),
	}

	fv := BuildFeatures(match, homeHistory, nil, nil)

	assert.InDelta(t, 1.6, fv.HomeGoalsAvg, 1e-9)
	assert.InDelta(t, 1.0, fv.HomeConcededAvg, 1e-9)
	// Three home wins out of five
	assert.InDelta(t, 0.6, fv.HomeFormAvg, 1e-9)
	// Totals: 2, 4, 2, 2, 3 -> three of five over 2.5
	assert.InDelta(t, 0.6, fv.Over25HomeRate, 1e-9)
	// Both scored in 3-1, 1-1 and 2-1
	assert.InDelta(t, 0.6, fv.BTTSHomeRate, 1e-9)
	// Clean sheets: only 2-0
	assert.InDelta(t, 0.2, fv.CleanSheetHomeRate, 1e-9)
}

func TestBuildFeaturesUsesTrailingFiveOnly(t *testing.T) {
	match := upcoming(3, 10, 20)
	// Two old heavy defeats followed by five 1-0 wins, newest last
	homeHistory := []*models.Match{
		finished(0, 5),
		finished(0, 5),
		finished(1, 0),
		finished(1, 0),
		finished(1, 0),
		finished(1, 0),
		finished(1, 0),
	}

	fv := BuildFeatures(match, homeHistory, nil, nil)

	assert.InDelta(t, 1.0, fv.HomeGoalsAvg, 1e-9)
	assert.InDelta(t, 0.0, fv.HomeConcededAvg, 1e-9)
	assert.InDelta(t, 1.0, fv.HomeFormAvg, 1e-9)
}

func TestBuildFeaturesIgnoresUnfinishedHistory(t *testing.T) {
	match := upcoming(4, 10, 20)
	inPlay := &models.Match{Status: models.MatchStatusInPlay}

	fv := BuildFeatures(match, []*models.Match{inPlay}, nil, nil)

	assert.Equal(t, 1.2, fv.HomeGoalsAvg)
	assert.Equal(t, 0.4, fv.HomeFormAvg)
}

func TestBuildFeaturesPositionGap(t *testing.T) {
	match := upcoming(5, 10, 20)
	standings := []*models.StandingSnapshot{
		{TeamID: 10, Position: 2},
		{TeamID: 20, Position: 15},
	}

	fv := BuildFeatures(match, nil, nil, standings)

	assert.Equal(t, 13.0, fv.PositionGap)
}

func TestBuildFeaturesMissingTeamGetsMidTablePosition(t *testing.T) {
	match := upcoming(6, 10, 99)
	standings := []*models.StandingSnapshot{
		{TeamID: 10, Position: 1},
	}

	fv := BuildFeatures(match, nil, nil, standings)

	// Unknown away side defaults to position 10
	assert.Equal(t, 9.0, fv.PositionGap)
}

func TestBuildFeaturesHalfTimeNeedsRecordedScores(t *testing.T) {
	match := upcoming(7, 10, 20)
	homeHistory := []*models.Match{
		finished(2, 1),
		finished(3, 0),
		finishedHT(2, 0, 1, 0),
		finishedHT(1, 1, 0, 0),
	}

	fv := BuildFeatures(match, homeHistory, nil, nil)

	// Only the two matches with half-time data contribute
	assert.InDelta(t, 0.5, fv.HomeHTGoalsAvg, 1e-9)
	assert.InDelta(t, 0.5, fv.HTOver05Rate, 1e-9)
}
