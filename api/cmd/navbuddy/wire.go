package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"navbuddy/api/internal/config"
	"navbuddy/api/internal/directions"
	"navbuddy/api/internal/gmaps"
	"navbuddy/api/internal/hazard"
	"navbuddy/api/internal/logging"
	"navbuddy/api/internal/places"
	"navbuddy/api/internal/prompt"
	"navbuddy/api/internal/reader"
	"navbuddy/api/internal/store"
	"navbuddy/api/internal/util"
	"navbuddy/api/internal/vision"
	"navbuddy/api/internal/vision/gemini"
	"navbuddy/api/internal/vision/openai"
)

// app owns the config, logger and the optional audit DB of one process.
type app struct {
	cfg *config.Config
	log *logging.Logger
	db  *sql.DB
}

func newApp(ctx context.Context, name string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	lg, err := logging.New(ctx, cfg.ProjectID, name)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	return &app{cfg: cfg, log: lg}, nil
}

func (a *app) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	_ = a.log.Close()
}

// recorder opens the audit store when a DSN is configured. Without one,
// detections are not audited.
func (a *app) recorder(ctx context.Context) (hazard.Recorder, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, nil
	}
	db, err := store.Open(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	repo := store.NewHazardRepo(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("audit schema: %w", err)
	}
	a.db = db
	a.log.Info.Printf("db connected: %s", config.SafeDSNSummary(a.cfg.DatabaseURL))
	return repo, nil
}

func (a *app) engine() vision.Engine {
	if a.cfg.VisionEngine == config.EngineGPT {
		return openai.New(a.cfg.OpenAIAPIKey, a.cfg.OpenAIModel)
	}
	return gemini.New(a.cfg.GeminiAPIKey, a.cfg.GeminiModel)
}

func (a *app) detector(rec hazard.Recorder) (*hazard.Detector, error) {
	variant, err := hazard.ParseVariant(a.cfg.HazardVariant)
	if err != nil {
		return nil, err
	}
	return &hazard.Detector{
		Engine:   a.engine(),
		Prompts:  prompt.Store{Dir: a.cfg.PromptDir},
		Variant:  variant,
		Timeout:  a.cfg.UpstreamTimeout,
		Recorder: rec,
		Log:      a.log,
	}, nil
}

func (a *app) reader() *reader.Reader {
	return &reader.Reader{
		Engine:  a.engine(),
		Prompts: prompt.Store{Dir: a.cfg.PromptDir},
		Timeout: a.cfg.UpstreamTimeout,
		Log:     a.log,
	}
}

func (a *app) mapsClient() (*gmaps.Client, error) {
	return gmaps.New(a.cfg.MapsAPIKey, a.cfg.MapsBaseURL, nil)
}

func (a *app) places() (*places.Service, error) {
	mc, err := a.mapsClient()
	if err != nil {
		return nil, err
	}
	return &places.Service{
		Places:   gmaps.NewPlaces(a.cfg.MapsAPIKey, a.cfg.PlacesBaseURL),
		Distance: mc,
		Timeout:  a.cfg.UpstreamTimeout,
		Log:      a.log,
	}, nil
}

func (a *app) directions() (*directions.Service, error) {
	mc, err := a.mapsClient()
	if err != nil {
		return nil, err
	}
	return &directions.Service{Router: mc, Timeout: a.cfg.UpstreamTimeout, Log: a.log}, nil
}

// imagePayload reads an image file (or "-" for stdin) into a data URL.
func imagePayload(path string, stdin io.Reader) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(io.LimitReader(stdin, util.MaxImageBytes+1))
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return util.MakeDataURL(util.SniffImageFormat(b), b), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
