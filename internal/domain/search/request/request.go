// Package request validates and normalizes intelligent-search parameters.
package request

import (
	"fmt"
	"strings"

	"github.com/learnhub-cloud/learnhub/internal/domain"
)

// Search parameter limits.
const (
	MaxQueryLength   = 1024
	MaxContextLength = 4096
)

// Type is the requested search strategy. All types currently execute the
// same pattern-match fan-out; the value is validated and recorded in the
// query log so ranking strategies can diverge later without an API change.
type Type string

const (
	TypeKeyword  Type = "keyword"
	TypeSemantic Type = "semantic"
	TypeHybrid   Type = "hybrid"
)

// IsValid reports whether t names a known search type.
func (t Type) IsValid() bool {
	switch t {
	case TypeKeyword, TypeSemantic, TypeHybrid:
		return true
	}
	return false
}

// Request is a validated intelligent-search query.
type Request struct {
	query       string
	searchType  Type
	sources     []domain.Source
	limit       int
	userContext string
	enhance     bool
}

// Limits bounds request normalization; values come from config.
type Limits struct {
	DefaultLimit int
	MaxLimit     int
}

// New validates and normalizes search parameters.
//
// The query is trimmed and must be non-empty. Unknown content types are
// ignored; an empty (or fully unknown) content_types list selects all four
// sources. Defaults: type=hybrid, limit=lims.DefaultLimit.
func New(
	query string,
	searchType string,
	contentTypes []string,
	limit int,
	userContext string,
	enhance bool,
	lims Limits,
) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidQuery)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, MaxQueryLength)
	}
	if len(userContext) > MaxContextLength {
		return Request{}, fmt.Errorf("%w: user_context too long (max %d chars)", domain.ErrInvalidQuery, MaxContextLength)
	}

	t := Type(searchType)
	if t == "" {
		t = TypeHybrid
	}
	if !t.IsValid() {
		return Request{}, fmt.Errorf("%w: invalid search_type %q", domain.ErrInvalidQuery, searchType)
	}

	sources := selectSources(contentTypes)

	if limit <= 0 {
		limit = lims.DefaultLimit
	}
	if lims.MaxLimit > 0 && limit > lims.MaxLimit {
		limit = lims.MaxLimit
	}

	return Request{
		query:       query,
		searchType:  t,
		sources:     sources,
		limit:       limit,
		userContext: strings.TrimSpace(userContext),
		enhance:     enhance,
	}, nil
}

// selectSources maps content_types filter values to sources, ignoring
// unknown names. Nothing selected means all sources.
func selectSources(contentTypes []string) []domain.Source {
	if len(contentTypes) == 0 {
		return domain.Sources()
	}

	seen := make(map[domain.Source]bool, len(contentTypes))
	var selected []domain.Source
	for _, ct := range contentTypes {
		s := domain.Source(strings.ToLower(strings.TrimSpace(ct)))
		if s.IsValid() && !seen[s] {
			seen[s] = true
			selected = append(selected, s)
		}
	}
	if len(selected) == 0 {
		return domain.Sources()
	}

	// Preserve canonical insertion order regardless of filter order: the
	// merger's tie-breaking depends on it.
	var ordered []domain.Source
	for _, s := range domain.Sources() {
		if seen[s] {
			ordered = append(ordered, s)
		}
	}
	return ordered
}

// Query returns the trimmed search query text.
func (r *Request) Query() string { return r.query }

// SearchType returns the requested strategy.
func (r *Request) SearchType() Type { return r.searchType }

// Sources returns the sources to fan out to, in canonical order.
func (r *Request) Sources() []domain.Source { return r.sources }

// Limit returns the maximum results to return after the merge.
func (r *Request) Limit() int { return r.limit }

// UserContext returns optional free-text context for the AI enhancer.
func (r *Request) UserContext() string { return r.userContext }

// Enhance reports whether AI enhancement was requested.
func (r *Request) Enhance() bool { return r.enhance }
