package config

// RiskProfile bundles every threshold the signal pipeline applies for a
// single appetite level. Switching the profile is a config change, not a
// code change.
type RiskProfile struct {
	Name          string
	MaxPicks      int
	MinConfidence float64
	MinValueEdge  float64
	KellyFraction float64
	MaxStakePct   float64
}

const (
	// ProfileConservative takes fewer, higher-conviction picks at small stakes.
	ProfileConservative = "conservative"
	// ProfileBalanced is the default appetite.
	ProfileBalanced = "balanced"
	// ProfileAggressive takes more picks with looser thresholds.
	ProfileAggressive = "aggressive"
)

var riskProfiles = map[string]RiskProfile{
	ProfileConservative: {
		Name:          ProfileConservative,
		MaxPicks:      3,
		MinConfidence: 0.70,
		MinValueEdge:  0.08,
		KellyFraction: 0.05,
		MaxStakePct:   0.03,
	},
	ProfileBalanced: {
		Name:          ProfileBalanced,
		MaxPicks:      5,
		MinConfidence: 0.60,
		MinValueEdge:  0.05,
		KellyFraction: 0.10,
		MaxStakePct:   0.05,
	},
	ProfileAggressive: {
		Name:          ProfileAggressive,
		MaxPicks:      8,
		MinConfidence: 0.50,
		MinValueEdge:  0.03,
		KellyFraction: 0.15,
		MaxStakePct:   0.08,
	},
}

// ProfileByName returns the named risk profile, falling back to balanced
// for unknown names.
func ProfileByName(name string) RiskProfile {
	if p, ok := riskProfiles[name]; ok {
		return p
	}
	return riskProfiles[ProfileBalanced]
}

// ProfileNames returns the set of valid profile names.
func ProfileNames() []string {
	return []string{ProfileConservative, ProfileBalanced, ProfileAggressive}
}
