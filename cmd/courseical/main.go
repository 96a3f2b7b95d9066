package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/robfig/cron/v3"

	"courseical/internal/config"
	"courseical/internal/convert"
	"courseical/internal/expand"
	appLog "courseical/internal/log"
	"courseical/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	input      string
	output     string
	listen     string
	serve      bool
	watch      bool
	debug      bool
}

func main() {
	flags := parseFlags()

	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}
	appLog.Info("courseical starting", "version", "0.1.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"calendar_name", conf.CalendarName,
		"sheet_name", conf.SheetName,
		"watch", conf.WatchCron,
	)

	switch {
	case flags.input != "":
		if err := convertOnce(conf, flags.input, flags.output); err != nil {
			os.Exit(1)
		}

	case flags.watch:
		if err := runWatch(conf); err != nil {
			appLog.Error("watch mode failed", err)
			os.Exit(1)
		}

	case flags.serve:
		if err := web.StartServer(signalContext(), conf); err != nil {
			appLog.Error("HTTP server failed", err)
			os.Exit(1)
		}

	default:
		flag.Usage()
		os.Exit(2)
	}

	appLog.Info("courseical exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/courseical/config.yaml", "Path to config file")
	flag.StringVar(&cfg.input, "input", "", "Convert this .xlsx export and exit")
	flag.StringVar(&cfg.output, "output", "", "Output .ics path (default: input name with .ics extension)")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.serve, "serve", false, "Run the upload UI / conversion API server")
	flag.BoolVar(&cfg.watch, "watch", false, "Convert config input_path on the configured cron schedule")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}

// signalContext returns a context canceled on SIGINT/SIGTERM.
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	return ctx
}

// convertOnce converts one export file to one calendar file.
func convertOnce(conf *config.Config, input, output string) error {
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".ics"
	}

	in, err := os.Open(input)
	if err != nil {
		appLog.Error("cannot open input", err, "input", input)
		return err
	}
	defer in.Close()

	data, sum, err := convert.Convert(in, conf)
	if err != nil {
		if errors.Is(err, expand.ErrNoData) {
			appLog.Error("no course data found in the file", err, "input", input)
		} else {
			appLog.Error("conversion failed", err, "input", input)
		}
		return err
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		appLog.Error("cannot write output", err, "output", output)
		return err
	}

	appLog.Info("calendar written",
		"output", output,
		"courses_found", sum.CoursesFound,
		"courses_scheduled", sum.CoursesScheduled,
		"events_created", sum.EventsCreated,
	)
	return nil
}

// runWatch converts config.InputPath to config.OutputPath immediately and
// then on every tick of the configured cron schedule, until interrupted.
// Useful when the registrar drops a fresh export on disk periodically.
func runWatch(conf *config.Config) error {
	if conf.InputPath == "" {
		return errors.New("watch mode requires input_path in config")
	}

	run := func() {
		// Conversion errors in watch mode are logged, not fatal; the
		// next tick retries with whatever is on disk then.
		_ = convertOnce(conf, conf.InputPath, conf.OutputPath)
	}

	run()

	c := cron.New()
	if _, err := c.AddFunc(conf.WatchCron, run); err != nil {
		return err
	}

	appLog.Info("watch mode started", "cron", conf.WatchCron, "input", conf.InputPath, "output", conf.OutputPath)
	c.Start()

	ctx := signalContext()
	<-ctx.Done()

	c.Stop()
	return nil
}
