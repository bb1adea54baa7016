// Command webaccept runs the Insider acceptance suite against a
// remote WebDriver endpoint and prints one verdict line per case.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"digital.vasic.webaccept/pkg/config"
	"digital.vasic.webaccept/pkg/env"
	"digital.vasic.webaccept/pkg/hub"
	"digital.vasic.webaccept/pkg/logging"
	"digital.vasic.webaccept/pkg/metrics"
	"digital.vasic.webaccept/pkg/monitor"
	"digital.vasic.webaccept/pkg/page"
	"digital.vasic.webaccept/pkg/report"
	"digital.vasic.webaccept/pkg/runner"
	"digital.vasic.webaccept/pkg/suite"
)

const shutdownTimeout = 5 * time.Second

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	failed, err := run(ctx, params)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if failed {
		os.Exit(1)
	}
}

func loadConfig(params commandParams) (config.Config, error) {
	loader := env.NewLoader()
	if params.envFile != "" {
		if err := loader.Load(params.envFile); err != nil {
			return config.Config{}, err
		}
	}

	cfg := config.Default()
	var err error
	if params.configFile != "" {
		if cfg, err = cfg.LoadFile(params.configFile); err != nil {
			return cfg, err
		}
	}
	if cfg, err = cfg.FromEnv(loader); err != nil {
		return cfg, err
	}
	cfg = params.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, params commandParams) (bool, error) {
	cfg, err := loadConfig(params)
	if err != nil {
		return false, err
	}

	var logger logging.Logger = logging.NewConsoleLoggerTo(os.Stderr, cfg.Verbose)
	if cfg.LogFile != "" {
		fileLogger, err := logging.SetupLogging(cfg.LogFile, cfg.Verbose)
		if err != nil {
			return false, err
		}
		multi := logging.NewMultiLogger(logger, fileLogger)
		defer multi.Close()
		logger = multi
	}

	catalog, err := page.LoadCatalog(cfg.SitesFile)
	if err != nil {
		return false, err
	}
	filter, err := runner.NewFilter(params.run, params.skip)
	if err != nil {
		return false, err
	}

	var rec metrics.Recorder = metrics.NoopRecorder{}
	if cfg.MetricsAddr != "" {
		prom := metrics.NewPrometheusRecorder(nil)
		rec = prom
		srv := serveMetrics(cfg.MetricsAddr, prom, logger)
		defer shutdown(srv)
	}

	opts := []runner.Option{
		runner.WithSuite(suite.Insider(cfg, catalog, logger, rec)),
		runner.WithLogger(logger),
		runner.WithMetrics(rec),
		runner.WithFilter(filter),
		runner.WithOutput(os.Stdout, !params.noColor),
	}
	if cfg.ResultsDir != "" {
		opts = append(opts, runner.WithReporter(report.NewSummaryReporter(cfg.ResultsDir)))
	}
	if cfg.JUnitFile != "" {
		opts = append(opts, runner.WithReporter(report.NewJUnitReporter(
			cfg.JUnitFile,
			map[string]string{"endpoint": env.RedactURL(cfg.Endpoint)},
		)))
	}

	if cfg.MonitorAddr != "" {
		collector := monitor.NewEventCollector()
		mon := monitor.NewServer(cfg.MonitorAddr, collector, monitor.NewDashboard(), logger)
		go func() {
			if err := mon.Start(ctx); err != nil {
				logger.Error("monitor stopped", logging.ErrorField(err))
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = mon.Stop(sctx)
		}()
		opts = append(opts, runner.WithMonitor(collector))
	}

	if cfg.HubWaitTimeout > 0 {
		logger.Info("waiting for endpoint", logging.StringField("endpoint", env.RedactURL(cfg.Endpoint)))
		st, err := hub.NewStatusClient(cfg.Endpoint).WaitReady(ctx, cfg.HubWaitTimeout, time.Second)
		if err != nil {
			return false, err
		}
		logger.Info("endpoint ready", logging.StringField("message", st.Message))
	}

	result, err := runner.New(cfg, opts...).Run(ctx)
	if err != nil {
		return false, err
	}
	return result.Failed(), nil
}

func serveMetrics(
	addr string,
	prom *metrics.PrometheusRecorder,
	logger logging.Logger,
) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", prom.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", logging.ErrorField(err))
		}
	}()
	logger.Info("metrics listening", logging.StringField("addr", addr))
	return srv
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
