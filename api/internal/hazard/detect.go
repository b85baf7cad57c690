package hazard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"navbuddy/api/internal/apperr"
	"navbuddy/api/internal/logging"
	"navbuddy/api/internal/prompt"
	"navbuddy/api/internal/upstream"
	"navbuddy/api/internal/util"
	"navbuddy/api/internal/vision"
)

// Variant selects the prompt contract used for detection.
type Variant string

const (
	VariantStructured Variant = "structured" // JSON по hazard.schema.json
	VariantText       Variant = "text"       // короткий текст + HIGH/MED/LOW
)

func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case "", VariantStructured:
		return VariantStructured, nil
	case VariantText:
		return VariantText, nil
	}
	return "", fmt.Errorf("unknown hazard prompt variant %q", s)
}

// Event is one audited detection. RawOutput is kept only when parsing failed.
type Event struct {
	ID            string        `json:"id"`
	RequestID     string        `json:"requestId,omitempty"`
	Engine        string        `json:"engine"`
	Model         string        `json:"model"`
	Variant       Variant       `json:"variant"`
	ImageSHA256   string        `json:"imageSha256"`
	ImageBytes    int           `json:"imageBytes"`
	OutputKind    string        `json:"outputKind,omitempty"`
	Declared      Severity      `json:"declared,omitempty"`
	Severity      Severity      `json:"severity,omitempty"`
	SpeechText    string        `json:"speechText,omitempty"`
	FindingsCount int           `json:"findingsCount"`
	RawOutput     string        `json:"rawOutput,omitempty"`
	Error         string        `json:"error,omitempty"`
	Latency       time.Duration `json:"latencyNs"`
	CreatedAt     time.Time     `json:"createdAt"`
}

type Recorder interface {
	RecordDetection(ctx context.Context, ev Event) error
}

type Detector struct {
	Engine   vision.Engine
	Prompts  prompt.Store
	Variant  Variant
	Timeout  time.Duration
	Recorder Recorder // nil: аудит выключен
	Log      *logging.Logger
}

// Detect validates the image, asks the model once and normalizes the answer.
func (d *Detector) Detect(ctx context.Context, imagePayload string) (Response, error) {
	img, err := util.DecodeImagePayload(imagePayload)
	if err != nil {
		return Response{}, err
	}

	name, asJSON := prompt.HazardStructured, true
	if d.Variant == VariantText {
		name, asJSON = prompt.HazardText, false
	}
	tpl, err := d.Prompts.Load(name)
	if err != nil {
		return Response{}, fmt.Errorf("hazard prompt: %w", err)
	}

	ev := Event{
		ID:          uuid.NewString(),
		RequestID:   logging.RequestID(ctx),
		Engine:      d.Engine.Name(),
		Model:       d.Engine.GetModel(),
		Variant:     d.variant(),
		ImageSHA256: img.SHA256(),
		ImageBytes:  len(img.Data),
		CreatedAt:   time.Now().UTC(),
	}

	start := time.Now()
	raw, err := upstream.Call(ctx, d.Engine.Name(), d.Timeout, func(ctx context.Context) (string, error) {
		return d.Engine.Generate(ctx, vision.Request{Prompt: tpl, Image: img, JSON: asJSON})
	})
	ev.Latency = time.Since(start)
	if err != nil {
		logging.Or(d.Log).Error.Printf("hazard detect [%s]: %v", ev.RequestID, err)
		ev.Error = err.Error()
		d.record(ctx, ev)
		return Response{}, err
	}

	out, err := ParseModelOutput(raw)
	if err != nil {
		var me *apperr.MalformedOutputError
		if errors.As(err, &me) {
			logging.Or(d.Log).Error.Printf("hazard detect [%s]: %s; payload=%q", ev.RequestID, me.Reason, me.Payload)
		}
		ev.Error = err.Error()
		ev.RawOutput = raw
		d.record(ctx, ev)
		return Response{}, err
	}

	resp := Normalize(out)

	ev.OutputKind = out.Kind.String()
	ev.Declared = out.Declared
	ev.Severity = resp.Severity
	ev.SpeechText = resp.SpeechText
	if out.Analysis != nil {
		ev.FindingsCount = len(out.Analysis.Findings)
	}
	d.record(ctx, ev)

	return resp, nil
}

func (d *Detector) variant() Variant {
	if d.Variant == "" {
		return VariantStructured
	}
	return d.Variant
}

// record never fails the request; audit problems only reach the log.
func (d *Detector) record(ctx context.Context, ev Event) {
	if d.Recorder == nil {
		return
	}
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := d.Recorder.RecordDetection(rctx, ev); err != nil {
		logging.Or(d.Log).Error.Printf("hazard audit [%s]: %v", ev.RequestID, err)
	}
}
