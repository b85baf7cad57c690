package places

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// MaxEnrichedPlaces caps both the distance-matrix request and the spoken list.
const MaxEnrichedPlaces = 4

const (
	DefaultRadius         = 1000.0
	DefaultRankPreference = "DISTANCE"
	DefaultMode           = "walking"
	locationField         = "places.location"
)

var DefaultFields = []string{"places.displayName", "places.formattedAddress", locationField}

type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// String formats the point the way the Distance Matrix API expects it.
func (p LatLng) String() string {
	return strconv.FormatFloat(p.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(p.Longitude, 'f', -1, 64)
}

func (p LatLng) Validate() error {
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range", p.Latitude)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range", p.Longitude)
	}
	return nil
}

type LocalizedText struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode,omitempty"`
}

// Candidate is a place from the search gateway. The distance fields are
// filled once by Enrich.
type Candidate struct {
	DisplayName      LocalizedText `json:"displayName"`
	FormattedAddress string        `json:"formattedAddress,omitempty"`
	Location         LatLng        `json:"location"`

	Distance        string `json:"distance,omitempty"` // "350 m"
	Duration        string `json:"duration,omitempty"` // "5 mins"
	DistanceMeters  int    `json:"distanceMeters,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
}

// Query is a text search biased to a circle around Origin.
type Query struct {
	TextQuery      string
	Origin         LatLng
	Radius         float64
	Fields         []string
	RankPreference string
	Mode           string
}

// WithDefaults fills empty settings and makes sure the field mask asks for
// places.location, which enrichment needs.
func (q Query) WithDefaults() Query {
	if q.Radius <= 0 {
		q.Radius = DefaultRadius
	}
	if strings.TrimSpace(q.RankPreference) == "" {
		q.RankPreference = DefaultRankPreference
	}
	q.RankPreference = strings.ToUpper(strings.TrimSpace(q.RankPreference))
	if strings.TrimSpace(q.Mode) == "" {
		q.Mode = DefaultMode
	}
	q.Mode = strings.ToLower(strings.TrimSpace(q.Mode))

	fields := make([]string, 0, len(q.Fields)+1)
	seen := map[string]bool{}
	src := q.Fields
	if len(src) == 0 {
		src = DefaultFields
	}
	for _, f := range src {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if !strings.HasPrefix(f, "places.") && f != "*" {
			f = "places." + f
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		fields = append(fields, f)
	}
	if !seen[locationField] && !seen["*"] {
		fields = append(fields, locationField)
	}
	q.Fields = fields
	return q
}

func (q Query) Validate() error {
	if strings.TrimSpace(q.TextQuery) == "" {
		return fmt.Errorf("textQuery is required")
	}
	if err := q.Origin.Validate(); err != nil {
		return fmt.Errorf("currentCoordinates: %w", err)
	}
	if q.Radius < 0 || q.Radius > 50000 {
		return fmt.Errorf("radius must be within 0..50000 meters")
	}
	switch strings.ToUpper(strings.TrimSpace(q.RankPreference)) {
	case "", "DISTANCE", "RELEVANCE":
	default:
		return fmt.Errorf("rankPreference must be DISTANCE or RELEVANCE")
	}
	switch strings.ToLower(strings.TrimSpace(q.Mode)) {
	case "", "walking", "driving", "bicycling", "transit":
	default:
		return fmt.Errorf("unknown travel mode %q", q.Mode)
	}
	return nil
}

// Element is one distance-matrix cell. OK is false for NOT_FOUND/ZERO_RESULTS.
type Element struct {
	OK              bool
	Status          string
	Distance        string
	DistanceMeters  int
	Duration        string
	DurationSeconds int
}

// Searcher is the place search gateway.
type Searcher interface {
	SearchText(ctx context.Context, q Query) ([]Candidate, error)
}

// DistanceMatrix returns one element per destination, in request order.
type DistanceMatrix interface {
	Matrix(ctx context.Context, origin LatLng, destinations []LatLng, mode string) ([]Element, error)
}
