package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"navbuddy/api/internal/handle"
	"navbuddy/api/internal/logging"
)

// Routes registers the public API on a new mux.
func Routes(h *handle.Handle, gate *handle.Gate) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/healthz", handle.WithRequestID(http.HandlerFunc(h.Healthz)))
	mux.Handle("/v1/hazards/detect", gate.Wrap(h.Detect))
	mux.Handle("/v1/reader", gate.Wrap(h.Read))
	mux.Handle("/v1/places/search", gate.Wrap(h.SearchPlaces))
	mux.Handle("/v1/directions", gate.Wrap(h.Directions))
	return mux
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, addr string, h http.Handler, log *logging.Logger) error {
	log = logging.Or(log)
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info.Printf("navbuddy listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer cancel()
		log.Info.Printf("shutting down")
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
