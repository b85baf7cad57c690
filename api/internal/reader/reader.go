package reader

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"navbuddy/api/internal/hazard"
	"navbuddy/api/internal/logging"
	"navbuddy/api/internal/prompt"
	"navbuddy/api/internal/upstream"
	"navbuddy/api/internal/util"
	"navbuddy/api/internal/vision"
)

// DefaultCommand is used when the user said nothing recognizable.
const DefaultCommand = "read everything"

// maxCommandLen bounds the user text pasted into the prompt, in runes.
const maxCommandLen = 500

type Response struct {
	SpeechText string `json:"speechText"`
}

// Reader answers a spoken command about a camera image.
type Reader struct {
	Engine  vision.Engine
	Prompts prompt.Store
	Timeout time.Duration
	Log     *logging.Logger
}

func (r *Reader) Read(ctx context.Context, imagePayload, command string) (Response, error) {
	img, err := util.DecodeImagePayload(imagePayload)
	if err != nil {
		return Response{}, err
	}
	command = util.CollapseSpaces(command)
	if command == "" {
		command = DefaultCommand
	}
	if utf8.RuneCountInString(command) > maxCommandLen {
		command = string([]rune(command)[:maxCommandLen])
	}

	tpl, err := r.Prompts.Load(prompt.Reader)
	if err != nil {
		return Response{}, fmt.Errorf("reader prompt: %w", err)
	}
	// кавычки в команде ломают шаблон
	p := prompt.Render(tpl, map[string]string{"user_text": strings.ReplaceAll(command, `"`, "'")})

	raw, err := upstream.Call(ctx, r.Engine.Name(), r.Timeout, func(ctx context.Context) (string, error) {
		return r.Engine.Generate(ctx, vision.Request{Prompt: p, Image: img})
	})
	if err != nil {
		logging.Or(r.Log).Error.Printf("reader [%s]: %v", logging.RequestID(ctx), err)
		return Response{}, err
	}

	speech := util.CollapseSpaces(util.StripCodeFences(raw))
	if speech == "" {
		logging.Or(r.Log).Info.Printf("reader [%s]: empty model answer", logging.RequestID(ctx))
		speech = hazard.FallbackSpeech
	}
	return Response{SpeechText: speech}, nil
}
