package upstream

import (
	"context"
	"errors"
	"testing"
	"time"

	"navbuddy/api/internal/apperr"
)

func TestCall_PassesResult(t *testing.T) {
	got, err := Call(context.Background(), "svc", time.Second, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestCall_WrapsFailureOnce(t *testing.T) {
	calls := 0
	_, err := Call(context.Background(), "places", time.Second, func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("connection reset")
	})
	if calls != 1 {
		t.Fatalf("expected exactly one attempt, got %d", calls)
	}
	if !errors.Is(err, apperr.ErrUpstreamService) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	var ue *apperr.UpstreamError
	if !errors.As(err, &ue) || ue.Service != "places" {
		t.Fatalf("expected places upstream error, got %#v", err)
	}
}

func TestCall_KeepsUpstreamStatus(t *testing.T) {
	orig := &apperr.UpstreamError{Service: "places", Status: 403, Message: "denied"}
	_, err := Call(context.Background(), "places", time.Second, func(ctx context.Context) (string, error) {
		return "", orig
	})
	var ue *apperr.UpstreamError
	if !errors.As(err, &ue) || ue.Status != 403 || ue.Message != "denied" {
		t.Fatalf("upstream error not preserved: %#v", err)
	}
}

func TestCall_Timeout(t *testing.T) {
	_, err := Call(context.Background(), "gemini", 20*time.Millisecond, func(ctx context.Context) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(2 * time.Second):
			return "late", nil
		}
	})
	if !errors.Is(err, apperr.ErrUpstreamService) {
		t.Fatalf("expected upstream error on timeout, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("deadline lost in wrapping: %v", err)
	}
}
