package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/fundus-vessels/internal/config"
	"github.com/ironsheep/fundus-vessels/internal/dataset"
	"github.com/ironsheep/fundus-vessels/internal/display"
	"github.com/ironsheep/fundus-vessels/internal/logging"
	"github.com/ironsheep/fundus-vessels/internal/server"
	"github.com/ironsheep/fundus-vessels/internal/vessels"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args and executes one invocation. It returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fundus-vessels", flag.ContinueOnError)
	fs.SetOutput(stderr)

	caseIDs := fs.String("case", "01_h", "Case identifier, or a comma-separated list of them")
	configPath := fs.String("config", "", "YAML configuration file (optional)")
	root := fs.String("root", "", "Dataset root directory (overrides config and "+config.EnvRoot+")")
	width := fs.Int("width", -1, "Preview width in terminal columns (default from config)")
	palette := fs.String("palette", "", "Preview palette: gray or vessel (default from config)")
	stageName := fs.String("stage", "", "Stage to preview: "+stageList()+" (default edges)")
	region := fs.String("region", "", "Preview only a named region: "+strings.Join(display.Regions, ", "))
	workers := fs.Int("workers", 0, "Cases recognized at once (default from config)")
	writeConfig := fs.String("write-config", "", "Write the effective configuration to this path and exit")
	mcp := fs.Bool("mcp", false, "Serve MCP over stdin/stdout instead of previewing")
	version := fs.Bool("version", false, "Print version information")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "fundus-vessels - blood vessel edge recognition for retinal fundus photographs")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Usage: fundus-vessels [options]")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Environment variables:")
		fmt.Fprintln(stderr, "  "+logging.EnvLevel+"=debug    Set the log level")
		fmt.Fprintln(stderr, "  "+config.EnvRoot+"=/data       Set the dataset root")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *version {
		fmt.Fprintf(stdout, "fundus-vessels %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return 0
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "fundus-vessels: %v\n", err)
		return 1
	}
	cfg.ApplyEnv()
	if *root != "" {
		cfg.Dataset.Root = *root
	}
	if *width >= 0 {
		cfg.Display.Width = *width
	}
	if *palette != "" {
		cfg.Display.Palette = display.Palette(*palette)
	}
	if *workers > 0 {
		cfg.Processing.Workers = *workers
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "fundus-vessels: invalid configuration: %v\n", err)
		return 1
	}

	logger, err := logging.New(stderr, cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "fundus-vessels: %v\n", err)
		return 1
	}

	if *writeConfig != "" {
		if err := config.SaveConfig(cfg, *writeConfig); err != nil {
			logger.Error().Err(err).Msg("writing configuration")
			return 1
		}
		logger.Info().Str("path", *writeConfig).Msg("configuration written")
		return 0
	}

	loader := dataset.NewLoader(cfg.Dataset, logger)

	if *mcp {
		logger.Debug().Str("version", Version).Str("built", BuildTime).Str("commit", GitCommit).Msg("starting MCP server")
		srv := server.New(loader,
			server.WithParams(cfg.Pipeline),
			server.WithLogger(logger),
			server.WithVersion(Version),
			server.WithStreams(stdin, stdout))
		if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("server error")
			return 1
		}
		return 0
	}

	stage, err := vessels.ParseStage(*stageName)
	if err != nil {
		logger.Error().Err(err).Msg("bad -stage")
		return 1
	}
	if *region != "" {
		if err := display.ParseRegion(*region); err != nil {
			logger.Error().Err(err).Msg("bad -region")
			return 1
		}
	}

	if err := preview(ctx, loader, splitCases(*caseIDs), stage, *region, cfg, stdout, logger); err != nil {
		logger.Error().Err(err).Msg("recognition failed")
		return 1
	}
	return 0
}

// preview recognizes every case and draws the chosen stage of each one. All
// cases are attempted; the first failure is returned.
func preview(ctx context.Context, loader *dataset.Loader, ids []string, stage vessels.Stage, region string,
	cfg *config.Config, out io.Writer, logger zerolog.Logger) error {
	if len(ids) == 0 {
		return dataset.ErrEmptyCaseID
	}

	results := vessels.RecognizeCases(ctx, loader, ids, cfg.Processing.Workers,
		vessels.WithParams(cfg.Pipeline), vessels.WithLogger(logger))

	var firstErr error
	for _, r := range results {
		if r.Err != nil {
			logger.Error().Err(r.Err).Str("case", r.CaseID).Msg("case failed")
			if firstErr == nil {
				firstErr = r.Err
			}
			continue
		}

		g, err := r.Result.Stage(stage)
		if err != nil {
			return err
		}
		if region != "" {
			rect, err := display.RegionRect(g.Width, g.Height, region)
			if err != nil {
				return err
			}
			if g, err = display.Crop(g, rect, 1); err != nil {
				return err
			}
		}
		fmt.Fprintf(out, "%s  %s  %dx%d  %d non-zero pixels  %s\n",
			r.CaseID, stage, g.Width, g.Height, g.CountNonZero(), r.Result.Total().Round(time.Microsecond))
		if err := display.Render(out, g, cfg.Display); err != nil {
			return err
		}
	}
	return firstErr
}

func splitCases(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func stageList() string {
	names := make([]string, len(vessels.Stages))
	for i, st := range vessels.Stages {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}
