// Package result defines the scored search hit returned by the merge stage.
package result

import "github.com/learnhub-cloud/learnhub/internal/domain"

// Result is a single scored search hit with its source discriminant.
type Result struct {
	id          string
	title       string
	description string
	contentType domain.ContentType
	source      domain.Source
	score       float64
}

// New creates a search result.
func New(
	id, title, description string,
	contentType domain.ContentType,
	source domain.Source,
	score float64,
) Result {
	return Result{
		id:          id,
		title:       title,
		description: description,
		contentType: contentType,
		source:      source,
		score:       score,
	}
}

// FromCandidate attaches a source tag and score to an unscored candidate.
func FromCandidate(c domain.Candidate, source domain.Source, score float64) Result {
	return New(c.ID, c.Title, c.Description, c.ContentType, source, score)
}

// ID returns the item identifier.
func (r *Result) ID() string { return r.id }

// Title returns the display title.
func (r *Result) Title() string { return r.title }

// Description returns the display description.
func (r *Result) Description() string { return r.description }

// ContentType returns the item classification.
func (r *Result) ContentType() domain.ContentType { return r.contentType }

// Source returns the collection the item came from.
func (r *Result) Source() domain.Source { return r.source }

// Score returns the computed relevance score.
func (r *Result) Score() float64 { return r.score }
