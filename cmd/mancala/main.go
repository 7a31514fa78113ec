// Command mancala solves a Kalah starting position and optionally writes the
// solved store and a YAML report.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/domino14/mancala/config"
	"github.com/domino14/mancala/solver"
)

var (
	GitVersion string
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}
	level := zerolog.InfoLevel
	if cfg.GetBool(config.ConfigDebug) {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger

	if p := cfg.GetString(config.ConfigCPUProfile); p != "" {
		f, err := os.Create(p)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
	}

	ctx, stop := signal.NotifyContext(logger.WithContext(context.Background()),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		log.Error().Err(err).Msg("solve-failed")
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, w io.Writer) error {
	req, err := cfg.Request()
	if err != nil {
		return err
	}
	sol, err := solver.Solve(ctx, req)
	if err != nil {
		return err
	}
	label := sol.Mode
	if !sol.Exact {
		label = fmt.Sprintf("%s (approximate, width %d)", sol.Mode, sol.MaxWidth)
	}
	fmt.Fprintf(w, "%s %s: %s (%d positions", req.Rules, label, sol.Value, sol.Entries)
	if sol.Compressed > 0 {
		fmt.Fprintf(w, ", %d after compression", sol.Compressed)
	}
	fmt.Fprintf(w, ", %.2fs)\n", sol.ElapsedSec)

	if p := cfg.GetString(config.ConfigDumpPath); p != "" {
		if err := writeDump(p, sol); err != nil {
			return err
		}
	}
	if cfg.GetBool(config.ConfigHistogram) {
		h := histogram.Hist(20, sol.Values())
		if err := histogram.Fprint(w, h, histogram.Linear(50)); err != nil {
			return err
		}
	}
	if p := cfg.GetString(config.ConfigReportPath); p != "" {
		if err := writeReport(p, sol); err != nil {
			return err
		}
	}
	return nil
}

func writeDump(path string, sol *solver.Solution) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	n, err := sol.Dump(bw)
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	log.Info().Str("path", path).Int("records", n).Msg("wrote-dump")
	return nil
}

type report struct {
	Version string         `yaml:"version,omitempty"`
	Written time.Time      `yaml:"written"`
	Result  *solver.Result `yaml:"result"`
}

func writeReport(path string, sol *solver.Solution) error {
	out, err := yaml.Marshal(report{Version: GitVersion, Written: time.Now().UTC(), Result: &sol.Result})
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}
