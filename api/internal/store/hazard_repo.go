package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"navbuddy/api/internal/hazard"
)

var ErrNotFound = sql.ErrNoRows

// Open connects to Postgres through the pgx stdlib driver and checks the
// connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// HazardRepo keeps the audit trail of hazard detections.
type HazardRepo struct{ DB *sql.DB }

func NewHazardRepo(db *sql.DB) *HazardRepo { return &HazardRepo{DB: db} }

const schema = `
create table if not exists hazard_detections (
  id             uuid primary key,
  created_at     timestamptz not null default now(),
  request_id     text not null default '',
  engine         text not null,
  model          text not null,
  variant        text not null,
  image_sha256   text not null,
  image_bytes    integer not null,
  output_kind    text not null default '',
  declared       text not null default '',
  severity       text not null default '',
  speech_text    text not null default '',
  findings_count integer not null default 0,
  raw_output     text,
  error          text,
  latency_ms     bigint not null default 0
);
create index if not exists hazard_detections_created_at_idx on hazard_detections (created_at);`

func (r *HazardRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schema)
	return err
}

// RecordDetection inserts one event. Rows are never updated.
func (r *HazardRepo) RecordDetection(ctx context.Context, ev hazard.Event) error {
	if ev.ID == "" {
		return errors.New("event id is empty")
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	const q = `
insert into hazard_detections (
  id, created_at, request_id, engine, model, variant,
  image_sha256, image_bytes, output_kind, declared, severity,
  speech_text, findings_count, raw_output, error, latency_ms
) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`
	_, err := r.DB.ExecContext(ctx, q,
		ev.ID, ev.CreatedAt, ev.RequestID, ev.Engine, ev.Model, string(ev.Variant),
		ev.ImageSHA256, ev.ImageBytes, ev.OutputKind, string(ev.Declared), string(ev.Severity),
		ev.SpeechText, ev.FindingsCount, nullString(ev.RawOutput), nullString(ev.Error), ev.Latency.Milliseconds(),
	)
	return err
}

// Find возвращает событие по id.
func (r *HazardRepo) Find(ctx context.Context, id string) (hazard.Event, error) {
	const q = `
select id, created_at, request_id, engine, model, variant,
       image_sha256, image_bytes, output_kind, declared, severity,
       speech_text, findings_count, coalesce(raw_output,''), coalesce(error,''), latency_ms
from hazard_detections
where id = $1`
	var (
		ev                          hazard.Event
		variant, declared, severity string
		latencyMS                   int64
	)
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&ev.ID, &ev.CreatedAt, &ev.RequestID, &ev.Engine, &ev.Model, &variant,
		&ev.ImageSHA256, &ev.ImageBytes, &ev.OutputKind, &declared, &severity,
		&ev.SpeechText, &ev.FindingsCount, &ev.RawOutput, &ev.Error, &latencyMS,
	)
	if err != nil {
		return hazard.Event{}, err
	}
	ev.Variant = hazard.Variant(variant)
	ev.Declared = hazard.Severity(declared)
	ev.Severity = hazard.Severity(severity)
	ev.Latency = time.Duration(latencyMS) * time.Millisecond
	return ev, nil
}

// PurgeOlderThan удаляет старые записи аудита, чтобы не раздувать БД.
func (r *HazardRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be > 0")
	}
	cutoff := time.Now().Add(-olderThan)
	const q = `delete from hazard_detections where created_at < $1`
	res, err := r.DB.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
