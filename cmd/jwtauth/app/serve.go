package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	jwtauth "github.com/kumuluz/go-jwt-auth"
	"github.com/kumuluz/go-jwt-auth/authz"
	"github.com/kumuluz/go-jwt-auth/config"
)

type serveOptions struct {
	addr   string
	routes []string
}

func newServeCommand(o *rootOptions) *cobra.Command {
	s := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an HTTP server protected by the configured verifier",
		Long: `Run an HTTP server whose routes echo the caller's principal.

Every --route path=policy registers a guarded route. /healthz and /metrics
are always public.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			registry := prometheus.NewRegistry()
			registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			handler, err := o.newServeHandler(ctx, cfg, s.routes, registry)
			if err != nil {
				return err
			}

			return serve(ctx, s.addr, handler, o)
		},
	}

	cmd.Flags().StringVar(&s.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringArrayVar(&s.routes, "route", []string{"/whoami=open"}, "guarded route as path=policy, repeatable")
	return cmd
}

func (o *rootOptions) newServeHandler(ctx context.Context, cfg *config.Config, routes []string, registry *prometheus.Registry) (http.Handler, error) {
	v, err := o.newValidator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	mw, err := jwtauth.New(
		jwtauth.WithValidator(v),
		jwtauth.WithDisabled(cfg.Disabled),
		jwtauth.WithLogger(jwtauth.NewLogrusLogger(o.logger)),
		jwtauth.WithMetrics(jwtauth.NewPrometheusMetrics(registry)),
		jwtauth.WithTracer(jwtauth.NewOpenTelemetryTracer(nil)),
		jwtauth.WithExclusionUrls([]string{"/healthz", "/metrics"}),
	)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, route := range routes {
		path, spec, ok := strings.Cut(route, "=")
		if !ok || !strings.HasPrefix(path, "/") {
			return nil, fmt.Errorf("route %q must look like /path=policy", route)
		}
		policy, err := authz.ParsePolicy(spec)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", route, err)
		}
		mux.Handle(path, mw.RequirePolicy(policy, http.HandlerFunc(whoami)))
		o.logger.WithField("path", path).WithField("policy", policy.String()).Info("route registered")
	}

	return mw.CheckJWT(mux), nil
}

func whoami(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	p, err := jwtauth.GetPrincipal(r.Context())
	if err != nil {
		_, _ = w.Write([]byte(`{"name":"","claims":{}}`))
		return
	}
	_ = printJSON(w, p)
}

func serve(ctx context.Context, addr string, handler http.Handler, o *rootOptions) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		o.logger.WithField("addr", addr).Info("listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	o.logger.Info("shutting down")
	return server.Shutdown(shutdownCtx)
}
