package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/sir_venger/msg2json/internal/app/adminhttp"
	"github.com/sir_venger/msg2json/internal/app/resthttp"
	"github.com/sir_venger/msg2json/internal/config"
)

// version подставляется при сборке через -ldflags "-X main.version=...".
var version = "dev"

const readHeaderTimeout = 10 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run инициализирует REST HTTP-сервис и обеспечивает корректное завершение по сигналу.
func run(args []string) error {
	var (
		configPath  string
		showVersion bool
	)

	flagSet := pflag.NewFlagSet("msg2json", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to YAML config (default: $CONFIG_PATH)")
	flagSet.BoolVar(&showVersion, "version", false, "print version and exit")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if showVersion {
		fmt.Println(version)
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler, _, err := resthttp.NewServer(cfg, resthttp.Deps{Logger: logger, Registry: reg})
	if err != nil {
		return err
	}

	servers := []*http.Server{{
		Addr:              cfg.ListenAddr(),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}}
	if addr := cfg.AdminAddr(); addr != "" {
		servers = append(servers, &http.Server{
			Addr: addr,
			Handler: adminhttp.New(adminhttp.Options{
				Version:  version,
				Gatherer: reg,
				Started:  time.Now(),
			}),
			ReadHeaderTimeout: readHeaderTimeout,
		})
	}

	// Слушающие сокеты открываем до запуска горутин, ошибка bind возвращается из run.
	listeners := make([]net.Listener, 0, len(servers))
	for _, srv := range servers {
		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			for _, l := range listeners {
				_ = l.Close()
			}
			return fmt.Errorf("listen %s: %w", srv.Addr, err)
		}
		listeners = append(listeners, ln)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for i, srv := range servers {
		ln := listeners[i]
		g.Go(func() error {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", srv.Addr, err)
			}
			return nil
		})
	}

	// Сценарий graceful shutdown при получении SIGTERM/SIGINT или падении одного из серверов.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	logger.Info("running server on "+cfg.ListenAddr(),
		"admin", cfg.AdminAddr(),
		"max_upload", humanize.IBytes(uint64(cfg.MaxUploadBytes)),
		"version", version,
	)

	return g.Wait()
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}
