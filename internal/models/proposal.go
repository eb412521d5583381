package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// maxContentLength caps extracted proposal text at ten million
// characters to prevent memory exhaustion from hostile uploads.
const maxContentLength = 10_000_000

// Proposal represents one uploaded RFP proposal document: the extracted
// text plus any structured data pulled from it. Instances are finalized
// when NewProposal returns and cannot be modified afterwards.
type Proposal struct {
	id            string
	filename      string
	content       string
	extractedData map[string]any
	analysisScore *float64
	createdAt     time.Time
}

// ProposalParams carries the inputs for NewProposal. A nil
// ExtractedData means an empty mapping and a zero CreatedAt means now.
type ProposalParams struct {
	ID            string
	Filename      string
	Content       string
	ExtractedData map[string]any
	AnalysisScore *float64
	CreatedAt     time.Time
}

// NewProposal validates params and returns a finalized Proposal. A
// failed validation yields no object at all.
func NewProposal(params ProposalParams) (*Proposal, error) {
	if err := validateProposal(params); err != nil {
		return nil, err
	}

	createdAt := params.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return &Proposal{
		id:            params.ID,
		filename:      params.Filename,
		content:       params.Content,
		extractedData: copyMap(params.ExtractedData),
		analysisScore: copyFloat(params.AnalysisScore),
		createdAt:     createdAt,
	}, nil
}

// validateProposal applies the checks in a fixed order so the reported
// error kind is deterministic when several constraints fail at once.
func validateProposal(params ProposalParams) error {
	if params.ID == "" {
		return fmt.Errorf("%w: id", ErrMissingRequired)
	}
	if params.Filename == "" {
		return fmt.Errorf("%w: filename", ErrMissingRequired)
	}
	if params.Content == "" {
		return fmt.Errorf("%w: content", ErrMissingRequired)
	}

	if strings.Contains(params.Filename, "../") || strings.Contains(params.Filename, `\`) {
		return fmt.Errorf("%w: filename contains path traversal", ErrSecurityRejected)
	}
	if !strings.HasSuffix(strings.ToLower(params.Filename), ".pdf") {
		return fmt.Errorf("%w: only PDF files are supported", ErrInvalidFormat)
	}
	if utf8.RuneCountInString(params.Content) > maxContentLength {
		return fmt.Errorf("%w: content exceeds %d characters", ErrSecurityRejected, maxContentLength)
	}
	if params.AnalysisScore != nil && (*params.AnalysisScore < 0 || *params.AnalysisScore > 100) {
		return fmt.Errorf("%w: analysis score must be between 0 and 100, got %v", ErrOutOfRange, *params.AnalysisScore)
	}
	return nil
}

// ID returns the proposal identifier.
func (p *Proposal) ID() string { return p.id }

// Filename returns the original upload filename.
func (p *Proposal) Filename() string { return p.filename }

// Content returns the extracted document text.
func (p *Proposal) Content() string { return p.content }

// ExtractedData returns a copy of the structured data mapping; the
// record itself cannot be changed through it.
func (p *Proposal) ExtractedData() map[string]any { return copyMap(p.extractedData) }

// AnalysisScore returns the analysis score and whether one is present.
func (p *Proposal) AnalysisScore() (float64, bool) {
	if p.analysisScore == nil {
		return 0, false
	}
	return *p.analysisScore, true
}

// CreatedAt returns the construction timestamp.
func (p *Proposal) CreatedAt() time.Time { return p.createdAt }

// Set rejects every write: a Proposal is immutable once finalized.
func (p *Proposal) Set(field string, value any) error {
	return fmt.Errorf("%w: proposal field %q", ErrImmutable, field)
}

// ToMap converts the proposal to a plain mapping for transport to a
// persistence or HTTP layer. The timestamp serializes as an ISO-8601
// string; an absent analysis score serializes as nil.
func (p *Proposal) ToMap() map[string]any {
	var score any
	if p.analysisScore != nil {
		score = *p.analysisScore
	}

	return map[string]any{
		"id":             p.id,
		"filename":       p.filename,
		"content":        p.content,
		"extracted_data": copyMap(p.extractedData),
		"analysis_score": score,
		"created_at":     formatTimestamp(p.createdAt),
	}
}

// ProposalFromMap builds a Proposal from a plain mapping, e.g. one
// decoded from JSON. Unrecognized keys are ignored and the result goes
// through the same validation as direct construction.
func ProposalFromMap(data map[string]any) (*Proposal, error) {
	for _, key := range []string{"id", "filename", "content"} {
		if raw, ok := data[key]; !ok || raw == nil || raw == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingRequired, key)
		}
	}

	var params ProposalParams
	var err error

	if params.ID, err = stringField(data, "id"); err != nil {
		return nil, err
	}
	if params.Filename, err = stringField(data, "filename"); err != nil {
		return nil, err
	}
	if params.Content, err = stringField(data, "content"); err != nil {
		return nil, err
	}

	if raw, ok := data["extracted_data"]; ok && raw != nil {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: field \"extracted_data\" must be a mapping", ErrInvalidFormat)
		}
		params.ExtractedData = m
	}

	if raw, ok := data["analysis_score"]; ok && raw != nil {
		score, ok := toFloat(raw)
		if !ok {
			return nil, fmt.Errorf("%w: field \"analysis_score\" must be a number", ErrInvalidFormat)
		}
		params.AnalysisScore = &score
	}

	if params.CreatedAt, err = timestampField(data, "created_at"); err != nil {
		return nil, err
	}

	return NewProposal(params)
}

// String excludes the document content, which may be large and
// sensitive.
func (p *Proposal) String() string {
	keys := make([]string, 0, len(p.extractedData))
	for k := range p.extractedData {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	score := "none"
	if p.analysisScore != nil {
		score = fmt.Sprintf("%g", *p.analysisScore)
	}
	return fmt.Sprintf("Proposal(id=%q, filename=%q, score=%s, data_keys=%v)",
		p.id, p.filename, score, keys)
}
