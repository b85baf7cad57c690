package places

import (
	"context"
	"fmt"
	"time"

	"navbuddy/api/internal/apperr"
	"navbuddy/api/internal/logging"
	"navbuddy/api/internal/upstream"
)

type Service struct {
	Places   Searcher
	Distance DistanceMatrix
	Timeout  time.Duration
	Log      *logging.Logger
}

// Search runs the text search and annotates up to MaxEnrichedPlaces results
// with travel distance from the query origin.
func (s *Service) Search(ctx context.Context, q Query) ([]Candidate, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidRequest, err)
	}
	q = q.WithDefaults()

	found, err := upstream.Call(ctx, "places", s.Timeout, func(ctx context.Context) ([]Candidate, error) {
		return s.Places.SearchText(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return s.Enrich(ctx, q.Origin, q.Mode, found)
}

// Enrich truncates to the first MaxEnrichedPlaces candidates, asks for all
// distances in one call and merges element i onto candidate i.
func (s *Service) Enrich(ctx context.Context, origin LatLng, mode string, found []Candidate) ([]Candidate, error) {
	if len(found) == 0 {
		return []Candidate{}, nil
	}
	if len(found) > MaxEnrichedPlaces {
		found = found[:MaxEnrichedPlaces]
	}
	out := make([]Candidate, len(found))
	copy(out, found)

	dests := make([]LatLng, len(out))
	for i, c := range out {
		dests[i] = c.Location
	}

	elems, err := upstream.Call(ctx, "distance_matrix", s.Timeout, func(ctx context.Context) ([]Element, error) {
		return s.Distance.Matrix(ctx, origin, dests, mode)
	})
	if err != nil {
		return nil, err
	}
	if len(elems) != len(dests) {
		logging.Or(s.Log).Error.Printf("places enrich [%s]: requested %d destinations, got %d elements: %+v",
			logging.RequestID(ctx), len(dests), len(elems), elems)
		return nil, fmt.Errorf("%w: requested %d destinations, got %d elements",
			apperr.ErrDistanceResultMismatch, len(dests), len(elems))
	}

	for i := range out {
		el := elems[i]
		if !el.OK {
			logging.Or(s.Log).Info.Printf("places enrich [%s]: no route to %q (%s)",
				logging.RequestID(ctx), out[i].DisplayName.Text, el.Status)
			continue
		}
		out[i].Distance = el.Distance
		out[i].DistanceMeters = el.DistanceMeters
		out[i].Duration = el.Duration
		out[i].DurationSeconds = el.DurationSeconds
	}
	return out, nil
}
