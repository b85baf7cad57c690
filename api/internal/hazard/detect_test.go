package hazard

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"navbuddy/api/internal/apperr"
	"navbuddy/api/internal/logging"
	"navbuddy/api/internal/util"
	"navbuddy/api/internal/vision"
)

type fakeEngine struct {
	out   string
	err   error
	calls int
	last  vision.Request
}

func (f *fakeEngine) Name() string     { return "fake" }
func (f *fakeEngine) GetModel() string { return "fake-model" }
func (f *fakeEngine) Generate(ctx context.Context, in vision.Request) (string, error) {
	f.calls++
	f.last = in
	return f.out, f.err
}

type fakeRecorder struct {
	events []Event
	err    error
}

func (r *fakeRecorder) RecordDetection(ctx context.Context, ev Event) error {
	r.events = append(r.events, ev)
	return r.err
}

var testImage = base64.StdEncoding.EncodeToString([]byte{0xFF, 0xD8, 0xFF, 0xE0})

func TestDetector_Structured(t *testing.T) {
	eng := &fakeEngine{out: `{"hazards":[{"position":"FRONT","type":"Path Obstructions","severity":"HIGH","description":"Bicycle"}],"severity":"HIGH","safe_direction":"STOP, Fast moving bicycle."}`}
	rec := &fakeRecorder{}
	d := &Detector{Engine: eng, Recorder: rec, Log: logging.Discard()}

	ctx := logging.WithRequestID(context.Background(), "req-1")
	resp, err := d.Detect(ctx, testImage)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if resp.Severity != SeverityHigh || resp.SpeechText != "STOP, Fast moving bicycle." {
		t.Fatalf("unexpected response %+v", resp)
	}
	if !eng.last.JSON {
		t.Fatal("structured variant must request JSON output")
	}
	if eng.last.Image.Format != "jpeg" || eng.last.Prompt == "" {
		t.Fatalf("unexpected request %+v", eng.last)
	}
	if len(rec.events) != 1 {
		t.Fatalf("expected 1 audit event, got %d", len(rec.events))
	}
	ev := rec.events[0]
	if ev.RequestID != "req-1" || ev.FindingsCount != 1 || ev.Severity != SeverityHigh || ev.OutputKind != "structured" {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.RawOutput != "" {
		t.Fatal("raw output stored for a successful detection")
	}
}

func TestDetector_TextVariant(t *testing.T) {
	eng := &fakeEngine{out: "Walk straight, clear path."}
	d := &Detector{Engine: eng, Variant: VariantText, Log: logging.Discard()}

	resp, err := d.Detect(context.Background(), testImage)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if eng.last.JSON {
		t.Fatal("text variant must not request JSON")
	}
	if resp.Severity != SeverityMedium {
		t.Fatalf("severity = %s, want MEDIUM", resp.Severity)
	}
}

func TestDetector_InvalidImageNeverCallsModel(t *testing.T) {
	eng := &fakeEngine{out: "x"}
	d := &Detector{Engine: eng, Log: logging.Discard()}

	big := base64.StdEncoding.EncodeToString(make([]byte, util.MaxImageBytes+1))
	for _, in := range []string{"", "data:text/plain;base64,AAAA", big} {
		if _, err := d.Detect(context.Background(), in); !apperr.IsClientError(err) {
			t.Fatalf("expected client error for %.30q, got %v", in, err)
		}
	}
	if eng.calls != 0 {
		t.Fatalf("model called %d times for invalid images", eng.calls)
	}
}

func TestDetector_MalformedOutputIsAudited(t *testing.T) {
	eng := &fakeEngine{out: `{"hazards": []}`}
	rec := &fakeRecorder{err: errors.New("db down")}
	d := &Detector{Engine: eng, Recorder: rec, Log: logging.Discard()}

	_, err := d.Detect(context.Background(), testImage)
	if !errors.Is(err, apperr.ErrMalformedModelOutput) {
		t.Fatalf("expected malformed output, got %v", err)
	}
	if len(rec.events) != 1 || rec.events[0].RawOutput != `{"hazards": []}` {
		t.Fatalf("expected raw payload in audit event, got %+v", rec.events)
	}
}

func TestDetector_UpstreamFailure(t *testing.T) {
	eng := &fakeEngine{err: errors.New("quota exceeded")}
	d := &Detector{Engine: eng, Log: logging.Discard()}

	_, err := d.Detect(context.Background(), testImage)
	var ue *apperr.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if ue.Message != "quota exceeded" {
		t.Fatalf("upstream message = %q", ue.Message)
	}
	if eng.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", eng.calls)
	}
}

func TestParseVariant(t *testing.T) {
	if v, err := ParseVariant(""); err != nil || v != VariantStructured {
		t.Fatalf("default variant = %q, %v", v, err)
	}
	if v, err := ParseVariant("text"); err != nil || v != VariantText {
		t.Fatalf("text variant = %q, %v", v, err)
	}
	if _, err := ParseVariant("yaml"); err == nil {
		t.Fatal("expected error")
	}
}
