package models

import (
	"fmt"
	"math"
	"time"
)

// DefaultCriteriaWeights is the fixed weight table for known evaluation
// criteria. Criteria outside this table fall back to an equal share of
// the record's criteria count.
var DefaultCriteriaWeights = map[string]float64{
	"price":              0.30,
	"technical_approach": 0.25,
	"experience":         0.20,
	"timeline":           0.15,
	"risk":               0.10,
}

// Analysis represents the completed evaluation of one proposal,
// referenced by its id. Instances are finalized when NewAnalysis
// returns, after the overall score has been supplied or computed, and
// cannot be modified afterwards.
type Analysis struct {
	proposalID         string
	criteriaScores     map[string]float64
	overallScore       float64
	strengths          []string
	concerns           []string
	recommendationRank *int
	createdAt          time.Time
}

// AnalysisParams carries the inputs for NewAnalysis. A nil OverallScore
// requests computation from the criteria scores; a zero CreatedAt means
// now.
type AnalysisParams struct {
	ProposalID         string
	CriteriaScores     map[string]float64
	OverallScore       *float64
	Strengths          []string
	Concerns           []string
	RecommendationRank *int
	CreatedAt          time.Time
}

// NewAnalysis validates params, computes the overall score when none is
// supplied, and returns a finalized Analysis.
func NewAnalysis(params AnalysisParams) (*Analysis, error) {
	if err := validateAnalysis(params); err != nil {
		return nil, err
	}

	overall := WeightedOverallScore(params.CriteriaScores)
	if params.OverallScore != nil {
		overall = *params.OverallScore
	}

	createdAt := params.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return &Analysis{
		proposalID:         params.ProposalID,
		criteriaScores:     copyScores(params.CriteriaScores),
		overallScore:       overall,
		strengths:          copyStrings(params.Strengths),
		concerns:           copyStrings(params.Concerns),
		recommendationRank: copyInt(params.RecommendationRank),
		createdAt:          createdAt,
	}, nil
}

func validateAnalysis(params AnalysisParams) error {
	if params.ProposalID == "" {
		return fmt.Errorf("%w: proposal_id", ErrMissingRequired)
	}
	if len(params.CriteriaScores) == 0 {
		return fmt.Errorf("%w: criteria_scores", ErrMissingRequired)
	}
	if params.OverallScore != nil && (*params.OverallScore < 0 || *params.OverallScore > 100) {
		return fmt.Errorf("%w: overall score must be between 0 and 100, got %v", ErrOutOfRange, *params.OverallScore)
	}
	for criterion, score := range params.CriteriaScores {
		if score < 0 || score > 100 {
			return fmt.Errorf("%w: score for %q must be between 0 and 100, got %v", ErrOutOfRange, criterion, score)
		}
	}
	return nil
}

// WeightedOverallScore aggregates per-criterion scores into a single
// 0-100 value. Criteria present in DefaultCriteriaWeights use their
// table weight; any other criterion gets an equal share 1/N, N being
// the criteria count of this set. Mixed named and unnamed criteria
// therefore do not renormalize to a total weight of 1; consumers must
// not assume normalized weights. The result is the weighted mean
// rounded to two decimals, or 0 for an empty set.
func WeightedOverallScore(scores map[string]float64) float64 {
	var totalScore, totalWeight float64

	for criterion, score := range scores {
		weight, ok := DefaultCriteriaWeights[criterion]
		if !ok {
			weight = 1.0 / float64(len(scores))
		}
		totalScore += score * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 0
	}
	return math.Round(totalScore/totalWeight*100) / 100
}

// ProposalID returns the id of the proposal this analysis refers to.
func (a *Analysis) ProposalID() string { return a.proposalID }

// CriteriaScores returns a copy of the per-criterion scores.
func (a *Analysis) CriteriaScores() map[string]float64 { return copyScores(a.criteriaScores) }

// OverallScore returns the supplied or computed overall score.
func (a *Analysis) OverallScore() float64 { return a.overallScore }

// Strengths returns a copy of the identified strengths.
func (a *Analysis) Strengths() []string { return copyStrings(a.strengths) }

// Concerns returns a copy of the identified concerns.
func (a *Analysis) Concerns() []string { return copyStrings(a.concerns) }

// RecommendationRank returns the ordering hint and whether one is set.
func (a *Analysis) RecommendationRank() (int, bool) {
	if a.recommendationRank == nil {
		return 0, false
	}
	return *a.recommendationRank, true
}

// CreatedAt returns the construction timestamp.
func (a *Analysis) CreatedAt() time.Time { return a.createdAt }

// Set rejects every write: an Analysis is immutable once finalized.
func (a *Analysis) Set(field string, value any) error {
	return fmt.Errorf("%w: analysis field %q", ErrImmutable, field)
}

// ToMap converts the analysis to a plain mapping for transport to a
// persistence or HTTP layer. The timestamp serializes as an ISO-8601
// string; an absent recommendation rank serializes as nil.
func (a *Analysis) ToMap() map[string]any {
	var rank any
	if a.recommendationRank != nil {
		rank = *a.recommendationRank
	}

	return map[string]any{
		"proposal_id":         a.proposalID,
		"overall_score":       a.overallScore,
		"criteria_scores":     copyScores(a.criteriaScores),
		"strengths":           copyStrings(a.strengths),
		"concerns":            copyStrings(a.concerns),
		"recommendation_rank": rank,
		"created_at":          formatTimestamp(a.createdAt),
	}
}

// AnalysisFromMap builds an Analysis from a plain mapping, e.g. one
// decoded from JSON. Unrecognized keys are ignored and the result goes
// through the same validation as direct construction; a present
// overall_score is taken as-is, not recomputed.
func AnalysisFromMap(data map[string]any) (*Analysis, error) {
	var params AnalysisParams
	var err error

	if params.ProposalID, err = stringField(data, "proposal_id"); err != nil {
		return nil, err
	}

	if raw, ok := data["criteria_scores"]; ok && raw != nil {
		if params.CriteriaScores, err = scoresField(raw); err != nil {
			return nil, err
		}
	}

	if raw, ok := data["overall_score"]; ok && raw != nil {
		score, ok := toFloat(raw)
		if !ok {
			return nil, fmt.Errorf("%w: field \"overall_score\" must be a number", ErrInvalidFormat)
		}
		params.OverallScore = &score
	}

	if params.Strengths, err = stringsField(data, "strengths"); err != nil {
		return nil, err
	}
	if params.Concerns, err = stringsField(data, "concerns"); err != nil {
		return nil, err
	}

	if raw, ok := data["recommendation_rank"]; ok && raw != nil {
		rank, ok := toFloat(raw)
		if !ok {
			return nil, fmt.Errorf("%w: field \"recommendation_rank\" must be an integer", ErrInvalidFormat)
		}
		r := int(rank)
		params.RecommendationRank = &r
	}

	if params.CreatedAt, err = timestampField(data, "created_at"); err != nil {
		return nil, err
	}

	return NewAnalysis(params)
}

// scoresField coerces a criteria-scores value that may have been
// decoded as map[string]any or passed through as map[string]float64.
func scoresField(raw any) (map[string]float64, error) {
	switch m := raw.(type) {
	case map[string]float64:
		return m, nil
	case map[string]any:
		scores := make(map[string]float64, len(m))
		for criterion, v := range m {
			score, ok := toFloat(v)
			if !ok {
				return nil, fmt.Errorf("%w: score for %q must be a number", ErrInvalidFormat, criterion)
			}
			scores[criterion] = score
		}
		return scores, nil
	default:
		return nil, fmt.Errorf("%w: field \"criteria_scores\" must be a mapping", ErrInvalidFormat)
	}
}

func stringsField(data map[string]any, key string) ([]string, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return nil, nil
	}

	switch list := raw.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, v := range list {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: field %q must contain strings", ErrInvalidFormat, key)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: field %q must be a list", ErrInvalidFormat, key)
	}
}

func (a *Analysis) String() string {
	rank := "none"
	if a.recommendationRank != nil {
		rank = fmt.Sprintf("%d", *a.recommendationRank)
	}
	return fmt.Sprintf("Analysis(proposal_id=%q, score=%.2f, rank=%s, criteria_count=%d)",
		a.proposalID, a.overallScore, rank, len(a.criteriaScores))
}
