package domain

import "math"

// RelevanceWeights controls the text/proximity blend of the search score.
type RelevanceWeights struct {
	Text      float64
	Proximity float64
}

// DefaultRelevanceWeights favors text relevance over proximity: users search
// by name or category first and tolerate a longer walk for a strong match.
var DefaultRelevanceWeights = RelevanceWeights{Text: 0.6, Proximity: 0.4}

// RelevanceScore blends a text rank and a distance into a single score in
// [0,1], rounded to two decimals.
//
// textRank is capped at 1.0: length-normalized rank functions can exceed 1
// on short documents and a single pathological match must not dominate the
// blend. Distance decays linearly to zero at the radius boundary and is
// clamped at both ends, since merged sources can yield results beyond the
// nominal radius. nil signals take neutral defaults (rank 0.5, distance 0)
// so a source missing one signal is not penalized.
func RelevanceScore(textRank, distanceMeters *float64, maxRadiusKm float64, w RelevanceWeights) float64 {
	rank := neutralTextRank
	if textRank != nil {
		rank = math.Min(*textRank, 1.0)
	}

	dist := 0.0
	if distanceMeters != nil {
		dist = *distanceMeters
	}

	proximity := 0.0
	if maxRadiusKm > 0 {
		proximity = 1 - dist/(maxRadiusKm*1000)
		proximity = math.Max(0, math.Min(1, proximity))
	}

	score := w.Text*rank + w.Proximity*proximity
	return math.Round(score*100) / 100
}
