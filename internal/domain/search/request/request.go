package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/vecdash/internal/domain"
)

// Search parameter limits. Atlas caps numCandidates at 10000 and requires
// limit <= numCandidates.
const (
	// MaxQueryLength is the maximum allowed prompt length.
	MaxQueryLength       = 4096
	DefaultNumCandidates = 10000
	MaxNumCandidates     = 10000
	DefaultLimit         = 200
)

// Request is a validated vector search query.
type Request struct {
	query         string
	numCandidates int
	limit         int
}

// Limits bounds a request. Zero fields fall back to the package defaults.
type Limits struct {
	MaxQueryLength int
	NumCandidates  int
	Limit          int
}

// DefaultLimits returns the Atlas-compatible defaults.
func DefaultLimits() Limits {
	return Limits{MaxQueryLength: MaxQueryLength, NumCandidates: DefaultNumCandidates, Limit: DefaultLimit}
}

func (l Limits) normalized() Limits {
	d := DefaultLimits()
	if l.MaxQueryLength <= 0 {
		l.MaxQueryLength = d.MaxQueryLength
	}
	if l.NumCandidates <= 0 || l.NumCandidates > MaxNumCandidates {
		l.NumCandidates = d.NumCandidates
	}
	if l.Limit <= 0 {
		l.Limit = d.Limit
	}
	if l.Limit > l.NumCandidates {
		l.Limit = l.NumCandidates
	}
	return l
}

// New validates search parameters against DefaultLimits.
func New(query string, numCandidates, limit int) (Request, error) {
	return NewWithLimits(query, numCandidates, limit, DefaultLimits())
}

// NewWithLimits validates search parameters. The prompt is passed through verbatim;
// blank prompts are rejected. Non-positive numbers fall back to the configured
// values, numCandidates is clamped to MaxNumCandidates and limit to numCandidates.
func NewWithLimits(query string, numCandidates, limit int, lim Limits) (Request, error) {
	lim = lim.normalized()

	if strings.TrimSpace(query) == "" {
		return Request{}, fmt.Errorf("%w: prompt is required", domain.ErrInvalidQuery)
	}
	if len(query) > lim.MaxQueryLength {
		return Request{}, fmt.Errorf("%w: prompt too long (max %d chars)", domain.ErrInvalidQuery, lim.MaxQueryLength)
	}
	if numCandidates <= 0 {
		numCandidates = lim.NumCandidates
	}
	if numCandidates > MaxNumCandidates {
		numCandidates = MaxNumCandidates
	}
	if limit <= 0 {
		limit = lim.Limit
	}
	if limit > numCandidates {
		limit = numCandidates
	}

	return Request{query: query, numCandidates: numCandidates, limit: limit}, nil
}

// Query returns the prompt text.
func (r *Request) Query() string { return r.query }

// NumCandidates returns the ANN candidate pool size.
func (r *Request) NumCandidates() int { return r.numCandidates }

// Limit returns the maximum number of hits to return.
func (r *Request) Limit() int { return r.limit }
