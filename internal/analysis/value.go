package analysis

import (
	"sort"

	"github.com/yourusername/mister-predictor/internal/models"
)

// DefaultMinEdge is the minimum predicted-vs-implied probability gap for a
// market to qualify as value
const DefaultMinEdge = 0.05

// Model probabilities below this are never worth pricing against reference
// odds
const minModelProb = 0.05

// MarketCandidate is one evaluated bet for a match. Candidates are consumed
// within the same analysis pass and never persisted directly.
type MarketCandidate struct {
	BetType          string
	MarketKey        string
	PredictedProb    float64
	ImpliedProb      float64
	Odds             float64
	Edge             float64
	Consistency      float64
	HasBookmakerOdds bool
}

// ValueDetector compares model probabilities against bookmaker-implied (or
// fixed reference) probabilities across all supported markets
type ValueDetector struct {
	MinEdge float64
}

// NewValueDetector returns a detector with the given edge threshold, or the
// default when non-positive
func NewValueDetector(minEdge float64) ValueDetector {
	if minEdge <= 0 {
		minEdge = DefaultMinEdge
	}
	return ValueDetector{MinEdge: minEdge}
}

// FindEdge returns the value edge: predicted minus market-implied
// probability, rounded to four decimals
func (d ValueDetector) FindEdge(predProb, marketProb float64) float64 {
	return round4(predProb - marketProb)
}

// quotedMarket maps a bet type to its model outcome and its bookmaker price
// field. Under markets derive their predicted probability as the complement
// of the paired over outcome but are priced from their own quoted odds; the
// bookmaker's over/under prices need not be exact complements and the two
// numbers are deliberately not reconciled.
type quotedMarket struct {
	betType      string
	outcomeKey   string // empty for unders; complementOf names the paired over
	marketKey    string
	price        func(*models.OddsSnapshot) *float64
	complementOf string
}

var quotedMarkets = []quotedMarket{
	{betType: BetHomeWin, outcomeKey: OutcomeHome, marketKey: Market1X2, price: func(o *models.OddsSnapshot) *float64 { return o.HomeOdds }},
	{betType: BetDraw, outcomeKey: OutcomeDraw, marketKey: Market1X2, price: func(o *models.OddsSnapshot) *float64 { return o.DrawOdds }},
	{betType: BetAwayWin, outcomeKey: OutcomeAway, marketKey: Market1X2, price: func(o *models.OddsSnapshot) *float64 { return o.AwayOdds }},
	{betType: BetOver25, outcomeKey: OutcomeOver25, marketKey: MarketTotals, price: func(o *models.OddsSnapshot) *float64 { return o.Over25Odds }},
	{betType: BetUnder25, marketKey: MarketTotals, price: func(o *models.OddsSnapshot) *float64 { return o.Under25Odds }, complementOf: OutcomeOver25},
	{betType: BetOver15, outcomeKey: OutcomeOver15, marketKey: MarketTotals, price: func(o *models.OddsSnapshot) *float64 { return o.Over15Odds }},
	{betType: BetUnder15, marketKey: MarketTotals, price: func(o *models.OddsSnapshot) *float64 { return o.Under15Odds }, complementOf: OutcomeOver15},
	{betType: BetOver35, outcomeKey: OutcomeOver35, marketKey: MarketTotals, price: func(o *models.OddsSnapshot) *float64 { return o.Over35Odds }},
	{betType: BetUnder35, marketKey: MarketTotals, price: func(o *models.OddsSnapshot) *float64 { return o.Under35Odds }, complementOf: OutcomeOver35},
}

// referenceOdds are league-typical prices for markets without a live
// bookmaker feed. Candidates in these markets report a fair-value price
// (1/predicted) instead and are flagged as not bookmaker-backed.
var referenceOdds = map[string]float64{
	BetBTTSYes:        1.80,
	BetBTTSNo:         1.95,
	BetCleanSheetHome: 2.50,
	BetCleanSheetAway: 3.00,
	BetOddGoals:       1.90,
	BetEvenGoals:      1.90,
	BetHTHome:         2.80,
	BetHTDraw:         2.00,
	BetHTAway:         4.50,
	BetHTOver05:       1.40,
	BetLateGoal:       2.20,
}

var modelOnlyMarkets = []struct {
	betType    string
	outcomeKey string
	marketKey  string
}{
	{BetBTTSYes, OutcomeBTTSYes, MarketBTTS},
	{BetBTTSNo, OutcomeBTTSNo, MarketBTTS},
	{BetCleanSheetHome, OutcomeCleanSheetHome, MarketCleanSheet},
	{BetCleanSheetAway, OutcomeCleanSheetAway, MarketCleanSheet},
	{BetOddGoals, OutcomeOddGoals, MarketOddEven},
	{BetEvenGoals, OutcomeEvenGoals, MarketOddEven},
	{BetHTHome, OutcomeHTHome, MarketHalfTime},
	{BetHTDraw, OutcomeHTDraw, MarketHalfTime},
	{BetHTAway, OutcomeHTAway, MarketHalfTime},
	{BetHTOver05, OutcomeHTOver05, MarketHalfTime},
	{BetLateGoal, OutcomeLateGoal, MarketLateGoal},
}

// EvaluateAllMarkets returns every market clearing the edge threshold,
// sorted by descending edge. odds may be nil when no bookmaker snapshot
// exists; quoted markets are then skipped entirely.
func (d ValueDetector) EvaluateAllMarkets(report ProbabilityReport, odds *models.OddsSnapshot, fv FeatureVector) []MarketCandidate {
	var candidates []MarketCandidate

	if odds != nil {
		for _, qm := range quotedMarkets {
			predProb := 0.0
			if qm.complementOf != "" {
				predProb = round4(1 - report.Get(qm.complementOf))
			} else {
				predProb = report.Get(qm.outcomeKey)
			}

			price := qm.price(odds)
			if price == nil || *price <= 1 {
				continue
			}

			impliedProb := 1.0 / *price
			edge := d.FindEdge(predProb, impliedProb)
			if edge < d.MinEdge {
				continue
			}

			candidates = append(candidates, MarketCandidate{
				BetType:          qm.betType,
				MarketKey:        qm.marketKey,
				PredictedProb:    round4(predProb),
				ImpliedProb:      round4(impliedProb),
				Odds:             *price,
				Edge:             edge,
				Consistency:      round4(consistencyScore(qm.betType, fv)),
				HasBookmakerOdds: true,
			})
		}
	}

	for _, mm := range modelOnlyMarkets {
		predProb := report.Get(mm.outcomeKey)
		if predProb < minModelProb {
			continue
		}

		impliedProb := 1.0 / referenceOdds[mm.betType]
		edge := d.FindEdge(predProb, impliedProb)
		if edge < d.MinEdge {
			continue
		}

		candidates = append(candidates, MarketCandidate{
			BetType:          mm.betType,
			MarketKey:        mm.marketKey,
			PredictedProb:    round4(predProb),
			ImpliedProb:      round4(impliedProb),
			Odds:             round2(1.0 / predProb),
			Edge:             edge,
			Consistency:      round4(consistencyScore(mm.betType, fv)),
			HasBookmakerOdds: false,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Edge > candidates[j].Edge
	})
	return candidates
}

// consistencyScore maps a bet type to the feature that historically tracks
// it, with complement logic for the NO/UNDER/EVEN variants and a neutral 0.5
// when no feature applies
func consistencyScore(betType string, fv FeatureVector) float64 {
	switch betType {
	case BetHomeWin:
		return fv.HomeFormAvg
	case BetAwayWin:
		return fv.AwayFormAvg
	case BetOver15:
		return fv.Over15HomeRate
	case BetOver25:
		return fv.Over25HomeRate
	case BetOver35:
		return fv.Over35HomeRate
	case BetUnder15:
		return 1 - fv.Over15HomeRate
	case BetUnder25:
		return 1 - fv.Over25HomeRate
	case BetUnder35:
		return 1 - fv.Over35HomeRate
	case BetBTTSYes:
		return fv.BTTSHomeRate
	case BetBTTSNo:
		return 1 - fv.BTTSHomeRate
	case BetCleanSheetHome:
		return fv.CleanSheetHomeRate
	case BetCleanSheetAway:
		return fv.CleanSheetAwayRate
	case BetOddGoals:
		return fv.OddGoalsRate
	case BetEvenGoals:
		return 1 - fv.OddGoalsRate
	case BetLateGoal:
		return fv.LateGoalHomeRate
	default:
		return 0.5
	}
}
