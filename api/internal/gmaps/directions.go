package gmaps

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"googlemaps.github.io/maps"

	"navbuddy/api/internal/apperr"
	"navbuddy/api/internal/directions"
	"navbuddy/api/internal/util"
)

// Route asks for directions and flattens the first leg of the first route.
func (c *Client) Route(ctx context.Context, in directions.Request) (directions.Route, error) {
	routes, _, err := c.maps.Directions(ctx, &maps.DirectionsRequest{
		Origin:      in.Origin,
		Destination: in.Destination,
		Mode:        travelMode(in.Mode),
		Units:       maps.UnitsMetric,
	})
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") || strings.Contains(err.Error(), "NOT_FOUND") {
			return directions.Route{}, fmt.Errorf("%w: %v", apperr.ErrNoRoute, err)
		}
		return directions.Route{}, err
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return directions.Route{}, apperr.ErrNoRoute
	}

	r := routes[0]
	leg := r.Legs[0]
	out := directions.Route{
		Distance:     leg.Distance.HumanReadable,
		Duration:     FormatDuration(leg.Duration),
		StartAddress: leg.StartAddress,
		EndAddress:   leg.EndAddress,
		Summary:      r.Summary,
		Steps:        make([]directions.Step, 0, len(leg.Steps)),
	}
	for _, st := range leg.Steps {
		if st == nil {
			continue
		}
		out.Steps = append(out.Steps, directions.Step{
			Instruction: SpeakableInstruction(st.HTMLInstructions),
			Distance:    st.Distance.HumanReadable,
			Duration:    FormatDuration(st.Duration),
		})
	}
	return out, nil
}

var blockTags = map[string]bool{"div": true, "br": true, "p": true, "li": true}

// SpeakableInstruction turns an html_instructions fragment into plain text.
// Block elements become sentence breaks.
func SpeakableInstruction(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	brk := func() {
		t := strings.TrimSpace(b.String())
		if t == "" || strings.HasSuffix(t, ".") {
			return
		}
		b.Reset()
		b.WriteString(t + ". ")
	}
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return util.CollapseSpaces(s)
			}
			return strings.TrimSpace(util.CollapseSpaces(b.String()))
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if blockTags[string(name)] {
				brk()
			}
		}
	}
}
