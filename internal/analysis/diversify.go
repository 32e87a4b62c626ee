package analysis

// DefaultMaxSignalsPerMatch caps the candidates selected for one match
const DefaultMaxSignalsPerMatch = 4

// SelectDiverse picks up to maxPicks candidates from an edge-sorted slice,
// favouring market variety over raw edge: one pass takes at most one
// candidate per market category in descending-edge order, then any remaining
// slots are backfilled from the unselected remainder, again by edge.
// The returned order is the selection order and determines signal rank;
// it is intentionally not globally edge-sorted.
func SelectDiverse(candidates []MarketCandidate, maxPicks int) []MarketCandidate {
	if maxPicks <= 0 {
		maxPicks = DefaultMaxSignalsPerMatch
	}
	if len(candidates) == 0 {
		return nil
	}

	selected := make([]MarketCandidate, 0, maxPicks)
	taken := make([]bool, len(candidates))
	seenCategory := make(map[string]bool)

	for i, c := range candidates {
		if len(selected) == maxPicks {
			break
		}
		if seenCategory[c.MarketKey] {
			continue
		}
		seenCategory[c.MarketKey] = true
		taken[i] = true
		selected = append(selected, c)
	}

	for i, c := range candidates {
		if len(selected) == maxPicks {
			break
		}
		if !taken[i] {
			taken[i] = true
			selected = append(selected, c)
		}
	}

	return selected
}
