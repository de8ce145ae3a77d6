package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"vnkey/internal/config"
	"vnkey/internal/health"
	"vnkey/internal/ime"
	"vnkey/internal/logging"
	"vnkey/internal/metrics"
	"vnkey/internal/store"
)

// newChecker registers the dictionary and store checks for e.
func newChecker(cfg *config.Config, e *ime.Engine, st *store.Store) *health.Checker {
	c := health.NewChecker()
	c.RegisterFunc("english_dictionary", false, health.DictionaryCheck(
		cfg.Dictionaries.English, e.IsEnglishInitialized,
		func() int { return e.GetSessionInfo().EnglishWords }))
	c.RegisterFunc("vietnamese_dictionary", false, health.DictionaryCheck(
		cfg.Dictionaries.Vietnamese, e.IsVietnameseInitialized,
		func() int { return e.GetSessionInfo().VietnameseWords }))
	if st != nil {
		c.RegisterFunc("store", true, health.StoreCheck(st.Ping))
	}
	return c
}

func newMux(c *health.Checker, reg *metrics.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.HTTPHandler())
	mux.Handle("/livez", c.LivenessHandler())
	mux.Handle("/healthz", c.Handler())
	return mux
}

// serveHTTP serves metrics and health on addr until ctx is done.
func serveHTTP(ctx context.Context, addr string, handler http.Handler, log *logging.Logger) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("http listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http server failed", "addr", addr, "error", err)
	}
}
