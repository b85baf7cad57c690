package gmaps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"navbuddy/api/internal/apperr"
	"navbuddy/api/internal/places"
)

const DefaultPlacesBaseURL = "https://places.googleapis.com"

// PlacesClient talks to the Places API (New) text search endpoint.
type PlacesClient struct {
	APIKey  string
	BaseURL string
	httpc   *http.Client
}

func NewPlaces(apiKey, baseURL string) *PlacesClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultPlacesBaseURL
	}
	return &PlacesClient{
		APIKey:  strings.TrimSpace(apiKey),
		BaseURL: baseURL,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
}

type searchTextRequest struct {
	TextQuery      string       `json:"textQuery"`
	LocationBias   locationBias `json:"locationBias"`
	RankPreference string       `json:"rankPreference,omitempty"`
}

type locationBias struct {
	Circle circle `json:"circle"`
}

type circle struct {
	Center places.LatLng `json:"center"`
	Radius float64       `json:"radius"`
}

type searchTextResponse struct {
	Places []places.Candidate `json:"places"`
}

// googleError is the error envelope of Google JSON APIs.
type googleError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *PlacesClient) SearchText(ctx context.Context, q places.Query) ([]places.Candidate, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("places: MAPS_API_KEY not set")
	}
	body := searchTextRequest{
		TextQuery:      q.TextQuery,
		LocationBias:   locationBias{Circle: circle{Center: q.Origin, Radius: q.Radius}},
		RankPreference: q.RankPreference,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/places:searchText", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.APIKey)
	req.Header.Set("X-Goog-FieldMask", strings.Join(q.Fields, ","))

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &apperr.UpstreamError{Service: "places", Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperr.UpstreamError{Service: "places", Status: resp.StatusCode, Message: err.Error(), Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &apperr.UpstreamError{Service: "places", Status: resp.StatusCode, Message: errorMessage(raw)}
	}

	var out searchTextResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("places search: bad JSON: %w", err)
	}
	if out.Places == nil {
		return []places.Candidate{}, nil
	}
	return out.Places, nil
}

// errorMessage returns error.message from a Google error body, or the
// trimmed body when it is not one.
func errorMessage(raw []byte) string {
	var ge googleError
	if err := json.Unmarshal(raw, &ge); err == nil && ge.Error.Message != "" {
		return ge.Error.Message
	}
	return truncate(strings.TrimSpace(string(raw)), 1024)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
