package pipeline

import (
	"io"

	"reviewpipe/internal/review"
)

// Source is an iterable stream of review records. Next returns io.EOF once
// the source is drained. Sources that know their size can additionally
// implement Sized to enable remaining-time estimates.
type Source interface {
	Next() (review.Review, error)
}

// Sized is optionally implemented by sources with a known total length.
type Sized interface {
	Len() int
}

// SliceSource adapts an in-memory slice to the Source interface.
type SliceSource struct {
	reviews []review.Review
	pos     int
}

// NewSliceSource creates a source over the given reviews.
func NewSliceSource(reviews []review.Review) *SliceSource {
	return &SliceSource{reviews: reviews}
}

// Next returns the next review or io.EOF when drained.
func (s *SliceSource) Next() (review.Review, error) {
	if s.pos >= len(s.reviews) {
		return review.Review{}, io.EOF
	}
	rev := s.reviews[s.pos]
	s.pos++
	return rev, nil
}

// Len returns the total number of reviews in the source.
func (s *SliceSource) Len() int {
	return len(s.reviews)
}
