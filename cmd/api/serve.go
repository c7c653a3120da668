package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/shadowing-api/internal/handler/clinic"
	"github.com/jwalitptl/shadowing-api/internal/handler/experience"
	geocodeHandler "github.com/jwalitptl/shadowing-api/internal/handler/geocode"
	"github.com/jwalitptl/shadowing-api/internal/handler/health"
	promhandler "github.com/jwalitptl/shadowing-api/internal/handler/prometheus"
	"github.com/jwalitptl/shadowing-api/internal/middleware"
	"github.com/jwalitptl/shadowing-api/internal/repository/sqlstore"
	"github.com/jwalitptl/shadowing-api/internal/router"
	clinicService "github.com/jwalitptl/shadowing-api/internal/service/clinic"
	experienceService "github.com/jwalitptl/shadowing-api/internal/service/experience"
	"github.com/jwalitptl/shadowing-api/pkg/clock"
	"github.com/jwalitptl/shadowing-api/pkg/geocode"
	"github.com/jwalitptl/shadowing-api/pkg/metrics"
)

const metricsNamespace = "shadowing"

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg

	db, err := a.openDatabase(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Metrics
	var (
		m        *metrics.Metrics
		metricsH *promhandler.Handler
	)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m = metrics.New(metricsNamespace, reg)
		metricsH = promhandler.New(m, reg)
	}

	// Geocoder
	geocodeOpts := []geocode.Option{geocode.WithMetrics(m)}
	if cfg.Redis.URL != "" {
		cache, client, err := geocode.NewRedisCache(cfg.Redis.URL, cfg.Geocode.CacheTTL)
		if err != nil {
			return err
		}
		defer client.Close()
		geocodeOpts = append(geocodeOpts, geocode.WithCache(cache))
	}
	geocoder := geocode.NewClient(geocode.Config{
		Enabled:           cfg.Geocode.Enabled,
		BaseURL:           cfg.Geocode.BaseURL,
		UserAgent:         cfg.Geocode.UserAgent,
		Timeout:           cfg.Geocode.Timeout,
		CacheTTL:          cfg.Geocode.CacheTTL,
		RequestsPerSecond: cfg.Geocode.RequestsPerSecond,
	}, geocodeOpts...)

	// Repositories and services
	clk := clock.Real()
	clinicSvc := clinicService.NewService(sqlstore.NewClinicRepository(db, m), clk)
	experienceSvc := experienceService.NewService(sqlstore.NewExperienceRepository(db, m), clk)

	// Router
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins

	r := router.NewRouter(router.RouterConfig{
		Mode:             cfg.Server.Mode,
		CORSConfig:       corsConfig,
		MaxBodyBytes:     cfg.Server.MaxBodyBytes,
		RequestTimeout:   cfg.Server.WriteTimeout,
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:        cfg.RateLimit.Burst,
		MetricsPath:      cfg.Metrics.Path,
	},
		health.NewHandler(db),
		metricsH,
		clinic.NewHandler(clinicSvc, geocoder),
		experience.NewHandler(experienceSvc),
		geocodeHandler.NewHandler(geocoder),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("db", cfg.Database.Driver).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited properly")
	return nil
}
