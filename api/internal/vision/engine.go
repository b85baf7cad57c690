package vision

import (
	"context"

	"navbuddy/api/internal/util"
)

// Request is one image + instruction call to a vision model.
type Request struct {
	Prompt string
	Image  util.Image
	JSON   bool // просим application/json вместо text/plain
}

type Engine interface {
	Name() string
	GetModel() string
	Generate(ctx context.Context, in Request) (string, error)
}
