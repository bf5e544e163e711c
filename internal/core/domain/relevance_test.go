package domain_test

import (
	"testing"

	"github.com/fairwage/fairwage/internal/core/domain"
)

func f(v float64) *float64 { return &v }

func TestRelevanceScore_PerfectMatchAtZeroDistance(t *testing.T) {
	got := domain.RelevanceScore(f(1.0), f(0), 10, domain.DefaultRelevanceWeights)
	if got != 1.0 {
		t.Errorf("got %v, want 1.0", got)
	}
}

func TestRelevanceScore_PerfectMatchAtRadiusBoundary(t *testing.T) {
	got := domain.RelevanceScore(f(1.0), f(10000), 10, domain.DefaultRelevanceWeights)
	if got != 0.6 {
		t.Errorf("got %v, want 0.6", got)
	}
}

func TestRelevanceScore_TextRankCapped(t *testing.T) {
	capped := domain.RelevanceScore(f(1.5), f(2500), 10, domain.DefaultRelevanceWeights)
	exact := domain.RelevanceScore(f(1.0), f(2500), 10, domain.DefaultRelevanceWeights)
	if capped != exact {
		t.Errorf("rank 1.5 scored %v, rank 1.0 scored %v; should be identical", capped, exact)
	}
}

func TestRelevanceScore_DistanceBeyondRadiusClampsToZero(t *testing.T) {
	got := domain.RelevanceScore(f(1.0), f(25000), 10, domain.DefaultRelevanceWeights)
	if got != 0.6 {
		t.Errorf("proximity beyond radius must clamp to 0, not go negative: got %v", got)
	}
}

func TestRelevanceScore_Defaults(t *testing.T) {
	// Missing text rank is neutral (0.5); missing distance is best-case (0).
	got := domain.RelevanceScore(nil, nil, 10, domain.DefaultRelevanceWeights)
	if got != 0.7 {
		t.Errorf("got %v, want 0.7 (0.6*0.5 + 0.4*1)", got)
	}
}

func TestRelevanceScore_RoundedToTwoDecimals(t *testing.T) {
	// 0.6*0.5 + 0.4*(1 - 3333/10000) = 0.3 + 0.26668 -> 0.57
	got := domain.RelevanceScore(f(0.5), f(3333), 10, domain.DefaultRelevanceWeights)
	if got != 0.57 {
		t.Errorf("got %v, want 0.57", got)
	}
}
