package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAnalysisParams() AnalysisParams {
	return AnalysisParams{
		ProposalID: "prop-1",
		CriteriaScores: map[string]float64{
			"price":              80,
			"technical_approach": 90,
		},
	}
}

func TestNewAnalysis_MissingFields(t *testing.T) {
	params := validAnalysisParams()
	params.ProposalID = ""
	_, err := NewAnalysis(params)
	require.ErrorIs(t, err, ErrMissingRequired)
	assert.Contains(t, err.Error(), "proposal_id")

	params = validAnalysisParams()
	params.CriteriaScores = nil
	_, err = NewAnalysis(params)
	require.ErrorIs(t, err, ErrMissingRequired)
	assert.Contains(t, err.Error(), "criteria_scores")

	params.CriteriaScores = map[string]float64{}
	_, err = NewAnalysis(params)
	assert.ErrorIs(t, err, ErrMissingRequired)
}

func TestNewAnalysis_ScoreRanges(t *testing.T) {
	params := validAnalysisParams()
	params.CriteriaScores["price"] = 101
	_, err := NewAnalysis(params)
	assert.ErrorIs(t, err, ErrOutOfRange)

	params = validAnalysisParams()
	params.CriteriaScores["price"] = -1
	_, err = NewAnalysis(params)
	assert.ErrorIs(t, err, ErrOutOfRange)

	params = validAnalysisParams()
	bad := 120.0
	params.OverallScore = &bad
	_, err = NewAnalysis(params)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestWeightedOverallScore_AllNamedCriteria(t *testing.T) {
	scores := map[string]float64{
		"price":              80,
		"technical_approach": 90,
		"experience":         85,
		"timeline":           75,
		"risk":               70,
	}

	assert.Equal(t, 81.75, WeightedOverallScore(scores))
	// Deterministic across calls despite map iteration order.
	assert.Equal(t, 81.75, WeightedOverallScore(scores))
}

func TestWeightedOverallScore_EqualShareFallback(t *testing.T) {
	scores := map[string]float64{
		"custom_a": 100,
		"custom_b": 0,
	}

	assert.Equal(t, 50.0, WeightedOverallScore(scores))
}

// A mixed set keeps the table weight for named criteria and 1/N for the
// rest, so the total weight does not come out to 1.
func TestWeightedOverallScore_MixedNotRenormalized(t *testing.T) {
	scores := map[string]float64{
		"price":  100, // table weight 0.30
		"custom": 0,   // equal share 1/2
	}

	// (100*0.30 + 0*0.5) / 0.8 = 37.5
	assert.Equal(t, 37.5, WeightedOverallScore(scores))
}

func TestWeightedOverallScore_Empty(t *testing.T) {
	assert.Equal(t, 0.0, WeightedOverallScore(nil))
}

func TestNewAnalysis_ComputesOverallScore(t *testing.T) {
	a, err := NewAnalysis(AnalysisParams{
		ProposalID: "prop-1",
		CriteriaScores: map[string]float64{
			"price":              80,
			"technical_approach": 90,
			"experience":         85,
			"timeline":           75,
			"risk":               70,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 81.75, a.OverallScore())
}

func TestNewAnalysis_SuppliedScoreWins(t *testing.T) {
	supplied := 42.0
	params := validAnalysisParams()
	params.OverallScore = &supplied

	a, err := NewAnalysis(params)
	require.NoError(t, err)
	assert.Equal(t, supplied, a.OverallScore())
}

func TestNewAnalysis_Defaults(t *testing.T) {
	a, err := NewAnalysis(validAnalysisParams())
	require.NoError(t, err)

	assert.Empty(t, a.Strengths())
	assert.Empty(t, a.Concerns())
	_, ok := a.RecommendationRank()
	assert.False(t, ok)
	assert.False(t, a.CreatedAt().IsZero())
}

func TestAnalysis_RoundTrip(t *testing.T) {
	supplied := 88.25
	rank := 2
	a, err := NewAnalysis(AnalysisParams{
		ProposalID:         "prop-9",
		CriteriaScores:     map[string]float64{"price": 90, "custom": 80},
		OverallScore:       &supplied,
		Strengths:          []string{"clear pricing", "strong team"},
		Concerns:           []string{"tight timeline"},
		RecommendationRank: &rank,
	})
	require.NoError(t, err)

	restored, err := AnalysisFromMap(a.ToMap())
	require.NoError(t, err)

	assert.Equal(t, a.ProposalID(), restored.ProposalID())
	assert.Equal(t, a.CriteriaScores(), restored.CriteriaScores())
	assert.Equal(t, a.Strengths(), restored.Strengths())
	assert.Equal(t, a.Concerns(), restored.Concerns())

	// An explicit overall score survives the round trip untouched:
	// aggregation is not recomputed.
	assert.Equal(t, supplied, restored.OverallScore())

	restoredRank, ok := restored.RecommendationRank()
	require.True(t, ok)
	assert.Equal(t, rank, restoredRank)

	assert.True(t, a.CreatedAt().Equal(restored.CreatedAt()))
}

func TestAnalysisFromMap_JSONShapedInput(t *testing.T) {
	a, err := AnalysisFromMap(map[string]any{
		"proposal_id": "prop-4",
		"criteria_scores": map[string]any{
			"custom_a": float64(100),
			"custom_b": 0,
		},
		"strengths":           []any{"a", "b"},
		"recommendation_rank": float64(1),
		"created_at":          "2026-03-01T09:00:00Z",
		"reviewer":            "ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, 50.0, a.OverallScore())
	assert.Equal(t, []string{"a", "b"}, a.Strengths())

	rank, ok := a.RecommendationRank()
	require.True(t, ok)
	assert.Equal(t, 1, rank)
}

func TestAnalysisFromMap_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		kind error
	}{
		{
			"missing proposal_id",
			map[string]any{"criteria_scores": map[string]any{"price": 80}},
			ErrMissingRequired,
		},
		{
			"missing criteria_scores",
			map[string]any{"proposal_id": "p"},
			ErrMissingRequired,
		},
		{
			"non-numeric score",
			map[string]any{"proposal_id": "p", "criteria_scores": map[string]any{"price": "high"}},
			ErrInvalidFormat,
		},
		{
			"score out of range",
			map[string]any{"proposal_id": "p", "criteria_scores": map[string]any{"price": 250}},
			ErrOutOfRange,
		},
		{
			"overall score out of range",
			map[string]any{"proposal_id": "p", "criteria_scores": map[string]any{"price": 80}, "overall_score": -3},
			ErrOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := AnalysisFromMap(tt.data)
			assert.Nil(t, a)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestAnalysis_Immutable(t *testing.T) {
	a, err := NewAnalysis(validAnalysisParams())
	require.NoError(t, err)

	before := a.ToMap()
	assert.ErrorIs(t, a.Set("overallScore", 0.0), ErrImmutable)
	assert.Equal(t, before, a.ToMap())

	// Mutating accessor copies leaves the record untouched.
	a.CriteriaScores()["price"] = 0
	assert.Equal(t, 80.0, a.CriteriaScores()["price"])
}

// The params maps are copied at construction, so later caller-side
// mutation cannot reach a finalized record.
func TestNewAnalysis_CopiesInputs(t *testing.T) {
	params := validAnalysisParams()
	a, err := NewAnalysis(params)
	require.NoError(t, err)

	params.CriteriaScores["price"] = 0
	assert.Equal(t, 80.0, a.CriteriaScores()["price"])
}
