package logging

import (
	"context"
	"io"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/logging"
	"google.golang.org/api/option"
)

// Logger holds one standard logger per severity. With a GCP project the
// loggers write to Cloud Logging, otherwise to stderr.
type Logger struct {
	Info  *log.Logger
	Error *log.Logger

	client *logging.Client
}

// New creates a logger named name. An empty projectID selects stderr.
func New(ctx context.Context, projectID, name string, opts ...option.ClientOption) (*Logger, error) {
	if strings.TrimSpace(projectID) == "" {
		return Stderr(name), nil
	}
	cl, err := logging.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, err
	}
	lg := cl.Logger(name)
	return &Logger{
		Info:   lg.StandardLogger(logging.Info),
		Error:  lg.StandardLogger(logging.Error),
		client: cl,
	}, nil
}

func Stderr(name string) *Logger {
	prefix := ""
	if name != "" {
		prefix = name + ": "
	}
	return &Logger{
		Info:  log.New(os.Stderr, prefix, log.LstdFlags),
		Error: log.New(os.Stderr, prefix+"ERROR ", log.LstdFlags),
	}
}

// Discard drops everything; handy in tests.
func Discard() *Logger {
	return &Logger{
		Info:  log.New(io.Discard, "", 0),
		Error: log.New(io.Discard, "", 0),
	}
}

// Or returns l, or a stderr logger when l is nil.
func Or(l *Logger) *Logger {
	if l == nil {
		return Stderr("")
	}
	return l
}

// Close flushes Cloud Logging buffers.
func (l *Logger) Close() error {
	if l == nil || l.client == nil {
		return nil
	}
	return l.client.Close()
}

type requestIDKey struct{}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
