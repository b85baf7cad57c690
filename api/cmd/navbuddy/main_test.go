package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"navbuddy/api/internal/places"
	"navbuddy/api/internal/util"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"NAVBUDDY_CONFIG", "PROJECT_ID", "DATABASE_URL", "PGHOST", "API_KEY",
		"GEMINI_API_KEY", "VERTEX_AI_API_KEY", "MAPS_API_KEY", "PLACES_BASE_URL", "MAPS_BASE_URL",
		"UPSTREAM_TIMEOUT", "HAZARD_PROMPT_VARIANT", "VISION_ENGINE", "OPENAI_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSearchCommand_EndToEnd(t *testing.T) {
	isolateEnv(t)
	matrixCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/places:searchText":
			_, _ = io.WriteString(w, `{"places":[
				{"displayName":{"text":"A"},"location":{"latitude":1,"longitude":1}},
				{"displayName":{"text":"B"},"location":{"latitude":2,"longitude":2}},
				{"displayName":{"text":"C"},"location":{"latitude":3,"longitude":3}},
				{"displayName":{"text":"D"},"location":{"latitude":4,"longitude":4}},
				{"displayName":{"text":"E"},"location":{"latitude":5,"longitude":5}}
			]}`)
		case "/maps/api/distancematrix/json":
			matrixCalls++
			if n := len(strings.Split(r.URL.Query().Get("destinations"), "|")); n != places.MaxEnrichedPlaces {
				t.Errorf("destinations = %d", n)
			}
			el := `{"status":"OK","distance":{"text":"100 m","value":100},"duration":{"text":"2 mins","value":120}}`
			_, _ = io.WriteString(w, `{"status":"OK","rows":[{"elements":[`+strings.Join([]string{el, el, el, el}, ",")+`]}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	t.Setenv("MAPS_API_KEY", "AIzaTestKey000000000000000000000000000")
	t.Setenv("PLACES_BASE_URL", srv.URL)
	t.Setenv("MAPS_BASE_URL", srv.URL)

	out, err := run(t, "", "search", "--lat=0.5", "--lng=0.5", "coffee", "shop")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var got struct {
		Places []places.Candidate `json:"places"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output %q: %v", out, err)
	}
	if len(got.Places) != places.MaxEnrichedPlaces || got.Places[3].DisplayName.Text != "D" {
		t.Fatalf("unexpected places %+v", got.Places)
	}
	if got.Places[0].Duration != "2 mins" || got.Places[0].DistanceMeters != 100 {
		t.Fatalf("not enriched: %+v", got.Places[0])
	}
	if matrixCalls != 1 {
		t.Fatalf("matrix calls = %d", matrixCalls)
	}
}

func TestCommands_RequireKeys(t *testing.T) {
	isolateEnv(t)
	img := filepath.Join(t.TempDir(), "x.jpg")
	if err := os.WriteFile(img, []byte{0xFF, 0xD8, 0xFF}, 0o600); err != nil {
		t.Fatal(err)
	}
	cases := map[string][]string{
		"GEMINI_API_KEY": {"detect", img},
		"MAPS_API_KEY":   {"directions", "--from=a", "--to=b"},
		"DATABASE_URL":   {"purge"},
	}
	for key, args := range cases {
		_, err := run(t, "", args...)
		if err == nil || !strings.Contains(err.Error(), key) {
			t.Fatalf("%v: expected error about %s, got %v", args, key, err)
		}
	}
}

func TestImagePayload(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 1, 2, 3}
	path := filepath.Join(t.TempDir(), "photo.bin")
	if err := os.WriteFile(path, png, 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := imagePayload(path, nil)
	if err != nil {
		t.Fatalf("imagePayload: %v", err)
	}
	img, err := util.DecodeImagePayload(got)
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if img.Format != "png" || !bytes.Equal(img.Data, png) {
		t.Fatalf("unexpected image %s %v", img.Format, img.Data)
	}

	got, err = imagePayload("-", bytes.NewReader([]byte{0xFF, 0xD8, 0xFF, 0xE0}))
	if err != nil {
		t.Fatalf("stdin: %v", err)
	}
	if !strings.HasPrefix(got, "data:image/jpeg;base64,") {
		t.Fatalf("stdin payload = %q", got)
	}

	if _, err := imagePayload(filepath.Join(t.TempDir(), "missing.jpg"), nil); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestAuditCommand(t *testing.T) {
	isolateEnv(t)
	if _, err := run(t, "", "audit", "not-a-uuid"); err == nil || !strings.Contains(err.Error(), "invalid detection id") {
		t.Fatalf("expected id error, got %v", err)
	}
	_, err := run(t, "", "audit", "7f2c9a52-0d7e-4d1b-9b8e-3f1f0c6a2b11")
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}
}
