package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	api "github.com/zaktec/haibl-sub000/internal/api/http"
	"github.com/zaktec/haibl-sub000/internal/auth"
	"github.com/zaktec/haibl-sub000/internal/config"
	"github.com/zaktec/haibl-sub000/internal/db"
	"github.com/zaktec/haibl-sub000/internal/engine"
	"github.com/zaktec/haibl-sub000/internal/grading"
	"github.com/zaktec/haibl-sub000/internal/logger"
	"github.com/zaktec/haibl-sub000/internal/progress"
	"github.com/zaktec/haibl-sub000/internal/quiz"
	syncx "github.com/zaktec/haibl-sub000/internal/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", true)
		boot.Fatal().Err(err).Msg("config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("tutord stopped")
	}
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- DB ---
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	cancel()
	if err != nil {
		return err
	}
	defer dbh.Close()

	// --- Engine ---
	var opts []grading.Option
	if cfg.NumericTolerance >= 0 {
		opts = append(opts, grading.WithNumericTolerance(cfg.NumericTolerance))
		log.Info().Float64("tolerance", cfg.NumericTolerance).Msg("numeric answer tolerance enabled")
	}
	store := progress.NewSQLStore(dbh, syncx.NewEventRepo(dbh, ""))
	eng := engine.New(quiz.NewSQLReader(dbh), store, grading.NewScorer(opts...), log)

	// --- HTTP ---
	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: api.NewRouter(eng, auth.NewAuthService(cfg.AuthHMACSecret), log, api.RouterConfig{
			CORSOrigins: cfg.CORSOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("db", cfg.DBDriver).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}
