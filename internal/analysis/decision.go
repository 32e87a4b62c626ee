package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yourusername/mister-predictor/internal/models"
)

// Default viability thresholds
const (
	DefaultSignalMinEdge       = 0.05
	DefaultSignalMinConfidence = 0.5
)

// Explanation tiers
const (
	strongEdgeThreshold       = 0.10
	moderateEdgeThreshold     = 0.05
	highConfidenceThreshold   = 0.75
	decentConfidenceThreshold = 0.60
	marketAgreementThreshold  = 0.7
)

// Decision is the final verdict for one evaluated candidate
type Decision struct {
	Decision         models.SignalDecision
	BetType          string
	Edge             float64
	Confidence       float64
	MarketConfidence float64
	Stake            float64
	ExpectedOutcome  string
	Explanation      string
}

// SignalEngine turns an evaluated candidate into a BET or PASS decision with
// a human-readable explanation
type SignalEngine struct {
	MinEdge       float64
	MinConfidence float64
}

// NewSignalEngine returns a signal engine, substituting defaults for
// non-positive thresholds
func NewSignalEngine(minEdge, minConfidence float64) SignalEngine {
	if minEdge <= 0 {
		minEdge = DefaultSignalMinEdge
	}
	if minConfidence <= 0 {
		minConfidence = DefaultSignalMinConfidence
	}
	return SignalEngine{MinEdge: minEdge, MinConfidence: minConfidence}
}

// GenerateFinalDecision applies the viability thresholds and assembles the
// explanation. A candidate is viable only when edge, confidence and stake
// all clear their bars; the explanation concatenates qualifying clauses in
// fixed order and falls back to "Standard analysis".
func (e SignalEngine) GenerateFinalDecision(
	report ProbabilityReport,
	edge, confidence, stake float64,
	betType string,
	patterns []Pattern,
	marketConfidence float64,
) Decision {
	viable := edge >= e.MinEdge && confidence >= e.MinConfidence && stake > 0

	var parts []string
	switch {
	case edge >= strongEdgeThreshold:
		parts = append(parts, "Strong value edge")
	case edge >= moderateEdgeThreshold:
		parts = append(parts, "Moderate value edge")
	}
	switch {
	case confidence >= highConfidenceThreshold:
		parts = append(parts, "High confidence signal")
	case confidence >= decentConfidenceThreshold:
		parts = append(parts, "Decent confidence")
	}
	if marketConfidence >= marketAgreementThreshold {
		parts = append(parts, "Market agrees with prediction")
	}
	if len(patterns) > 0 {
		names := make([]string, len(patterns))
		for i, p := range patterns {
			names[i] = p.Name
		}
		parts = append(parts, fmt.Sprintf("Patterns: %s", strings.Join(names, ", ")))
	}

	explanation := "Standard analysis"
	if len(parts) > 0 {
		explanation = strings.Join(parts, ". ")
	}

	decision := models.SignalDecisionPass
	if viable {
		decision = models.SignalDecisionBet
	}

	return Decision{
		Decision:         decision,
		BetType:          betType,
		Edge:             round4(edge),
		Confidence:       round4(confidence),
		MarketConfidence: round4(marketConfidence),
		Stake:            stake,
		ExpectedOutcome:  dominantOutcome(report),
		Explanation:      explanation,
	}
}

// dominantOutcome returns the outcome key with the highest probability,
// breaking ties by key so the result is deterministic
func dominantOutcome(report ProbabilityReport) string {
	keys := make([]string, 0, len(report.Outcomes))
	for k := range report.Outcomes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best, bestProb := "", -1.0
	for _, k := range keys {
		if p := report.Outcomes[k]; p > bestProb {
			best, bestProb = k, p
		}
	}
	return best
}
