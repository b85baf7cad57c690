package gmaps

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"navbuddy/api/internal/places"
)

// Client wraps the Maps web-service client used for Distance Matrix and
// Directions requests.
type Client struct {
	maps *maps.Client
}

// New builds a Maps client. baseURL is only set in tests.
func New(apiKey, baseURL string, httpc *http.Client) (*Client, error) {
	opts := []maps.ClientOption{maps.WithAPIKey(strings.TrimSpace(apiKey))}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, maps.WithBaseURL(strings.TrimRight(baseURL, "/")))
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: 60 * time.Second}
	}
	opts = append(opts, maps.WithHTTPClient(httpc))
	mc, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("maps client: %w", err)
	}
	return &Client{maps: mc}, nil
}

// Matrix sends one request with a single origin and every destination and
// returns the elements of the first row in destination order.
func (c *Client) Matrix(ctx context.Context, origin places.LatLng, destinations []places.LatLng, mode string) ([]places.Element, error) {
	dests := make([]string, len(destinations))
	for i, d := range destinations {
		dests[i] = d.String()
	}
	resp, err := c.maps.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      []string{origin.String()},
		Destinations: dests,
		Mode:         travelMode(mode),
		Units:        maps.UnitsMetric,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Rows) == 0 {
		return []places.Element{}, nil
	}

	row := resp.Rows[0].Elements
	out := make([]places.Element, len(row))
	for i, el := range row {
		if el == nil {
			out[i] = places.Element{Status: "NOT_FOUND"}
			continue
		}
		out[i] = places.Element{Status: el.Status}
		if el.Status != "OK" {
			continue
		}
		out[i].OK = true
		out[i].Distance = el.Distance.HumanReadable
		out[i].DistanceMeters = el.Distance.Meters
		out[i].Duration = FormatDuration(el.Duration)
		out[i].DurationSeconds = int(el.Duration / time.Second)
	}
	return out, nil
}

func travelMode(mode string) maps.Mode {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "driving":
		return maps.TravelModeDriving
	case "bicycling":
		return maps.TravelModeBicycling
	case "transit":
		return maps.TravelModeTransit
	default:
		return maps.TravelModeWalking
	}
}

// FormatDuration renders d the way the Maps APIs word it: "1 min",
// "12 mins", "1 hour 5 mins".
func FormatDuration(d time.Duration) string {
	mins := int((d + 30*time.Second) / time.Minute)
	if mins < 1 {
		mins = 1
	}
	days, mins := mins/(24*60), mins%(24*60)
	hours, mins := mins/60, mins%60

	var parts []string
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if mins > 0 && days == 0 {
		parts = append(parts, plural(mins, "min"))
	}
	return strings.Join(parts, " ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
