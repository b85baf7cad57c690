package directions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"navbuddy/api/internal/apperr"
	"navbuddy/api/internal/logging"
	"navbuddy/api/internal/upstream"
)

const DefaultMode = "walking"

type Request struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Mode        string `json:"mode,omitempty"`
}

type Step struct {
	Instruction string `json:"instruction"`
	Distance    string `json:"distance"`
	Duration    string `json:"duration"`
}

// Route is the first leg of the first route, ready to be read out.
type Route struct {
	Distance     string `json:"distance"`
	Duration     string `json:"duration"`
	StartAddress string `json:"startAddress"`
	EndAddress   string `json:"endAddress"`
	Summary      string `json:"summary,omitempty"`
	Steps        []Step `json:"steps"`
}

type Router interface {
	Route(ctx context.Context, in Request) (Route, error)
}

type Service struct {
	Router  Router
	Timeout time.Duration
	Log     *logging.Logger
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.Origin) == "" || strings.TrimSpace(r.Destination) == "" {
		return fmt.Errorf("origin and destination are required")
	}
	switch strings.ToLower(strings.TrimSpace(r.Mode)) {
	case "", "walking", "driving", "bicycling", "transit":
		return nil
	}
	return fmt.Errorf("unknown travel mode %q", r.Mode)
}

func (s *Service) Get(ctx context.Context, in Request) (Route, error) {
	if err := in.Validate(); err != nil {
		return Route{}, fmt.Errorf("%w: %v", apperr.ErrInvalidRequest, err)
	}
	in.Origin = strings.TrimSpace(in.Origin)
	in.Destination = strings.TrimSpace(in.Destination)
	in.Mode = strings.ToLower(strings.TrimSpace(in.Mode))
	if in.Mode == "" {
		in.Mode = DefaultMode
	}

	route, err := upstream.Call(ctx, "directions", s.Timeout, func(ctx context.Context) (Route, error) {
		return s.Router.Route(ctx, in)
	})
	if err != nil {
		return Route{}, err
	}
	logging.Or(s.Log).Info.Printf("directions [%s]: %s, %d steps (%s)",
		logging.RequestID(ctx), route.Distance, len(route.Steps), in.Mode)
	if route.Steps == nil {
		route.Steps = []Step{}
	}
	return route, nil
}
