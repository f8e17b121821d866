package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/puck-vision/internal/config"
	"github.com/ironsheep/puck-vision/internal/logging"
	"github.com/ironsheep/puck-vision/internal/params"
	"github.com/ironsheep/puck-vision/internal/pipeline"
	"github.com/ironsheep/puck-vision/internal/server"
	"github.com/ironsheep/puck-vision/internal/source"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			printVersion(os.Stdout)
			return
		case "--help", "-h", "help":
			printHelp(os.Stdout)
			return
		}
	}

	logger, err := logging.New("puck-vision")
	if err != nil {
		fmt.Fprintf(os.Stderr, "puck-vision: build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, logger); err != nil {
		logger.Errorw("puck-vision stopped", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "puck-vision %s\n", Version)
	fmt.Fprintf(w, "  Build time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "puck-vision - colored puck localization for a mobile robot camera")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: puck-vision [-config file.json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -config FILE     JSON configuration (default $"+config.PathEnv+")")
	fmt.Fprintln(w, "  --version, -v    Print version information")
	fmt.Fprintln(w, "  --help, -h       Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintln(w, "  "+logging.LevelEnv+"=debug    Enable debug logging")
	fmt.Fprintln(w, "  "+config.PathEnv+"=FILE    Configuration file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Requests are JSON-RPC 2.0 over stdin/stdout, one per line. Logs go to stderr.")
}

// run wires the components together and blocks until the control stream
// closes or ctx is cancelled.
func run(ctx context.Context, args []string, in io.Reader, out io.Writer, logger *zap.SugaredLogger) error {
	fs := flag.NewFlagSet("puck-vision", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "", "JSON configuration file")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parse flags")
	}

	cfg := config.Empty()
	if path := config.ResolvePath(*configPath); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return err
		}
		logger.Infow("configuration loaded", "path", path)
	}

	store, err := cfg.NewStore()
	if err != nil {
		return errors.Wrap(err, "build parameter store")
	}
	estimator, err := cfg.Estimator()
	if err != nil {
		return errors.Wrap(err, "build estimator")
	}
	src, err := cfg.NewSource()
	if err != nil {
		return errors.Wrap(err, "open frame source")
	}

	outline, guide := cfg.OverlayColors()
	p := pipeline.New(store, estimator, logger.Named("pipeline"),
		pipeline.WithCalibration(cfg.GetCalibration()),
		pipeline.WithOverlayColors(outline, guide),
	)

	cam := estimator.Camera()
	logger.Infow("puck-vision starting",
		"version", Version,
		"commit", GitCommit,
		"preset", store.Snapshot().Preset,
		"frame", fmt.Sprintf("%dx%d", cam.Width, cam.Height),
		"projection", estimator.Projection(),
		"interval", cfg.Interval(),
		"source", cfg.GetSource().Kind,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if src != nil {
		g.Go(func() error {
			source.Acquire(ctx, src, cfg.Interval(), cam.Width, cam.Height, p.PushFrame, logger.Named("source"))
			return nil
		})
	}

	if path := cfg.GetCalibrationFile(); path != "" {
		g.Go(func() error {
			return params.Watch(ctx, store, path, logger.Named("calibration"))
		})
	}

	g.Go(func() error {
		p.Loop(ctx, cfg.Interval())
		return nil
	})

	server.Version = Version
	srv := server.New(p, logger.Named("server"))
	if c, ok := in.(io.Closer); ok {
		// Unblocks a pending read of the control stream on shutdown.
		g.Go(func() error {
			<-ctx.Done()
			_ = c.Close()
			return nil
		})
	}
	g.Go(func() error {
		// The control stream closing ends the process.
		defer cancel()
		return srv.Serve(ctx, in, out)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Infow("puck-vision stopped", "passes", p.Passes())
	return nil
}
