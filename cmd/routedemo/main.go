// Command routedemo splits a range of integers into queues by residue,
// merges them back and sums the result.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kbukum/routekit/bootstrap"
	"github.com/kbukum/routekit/config"
	"github.com/kbukum/routekit/driver"
	"github.com/kbukum/routekit/logger"
	"github.com/kbukum/routekit/observability"
	"github.com/kbukum/routekit/route"
	"github.com/kbukum/routekit/version"
)

const serviceName = "routedemo"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	f := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	configFile := f.String("config", "", "path to config.yml (searched for when empty)")
	envFile := f.String("env-file", "", "path to a .env file")
	count := f.Int("count", 0, "number of integers to route (overrides demo.count)")
	mode := f.String("mode", "", "idle wait mode: poll or notify (overrides driver.mode)")
	strategy := f.String("strategy", "", "concurrent or multiplexed (overrides driver.strategy)")
	showVersion := f.Bool("version", false, "print the version and exit")
	if err := f.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if *showVersion {
		fmt.Println(version.Get())
		return nil
	}

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}

	var cfg AppConfig
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	if cfg.Version == "" {
		cfg.Version = version.Get().Short()
	}
	if f.Changed("count") {
		cfg.Demo.Count = *count
	}
	if *mode != "" {
		cfg.Driver.Mode = *mode
	}
	if *strategy != "" {
		cfg.Driver.Strategy = *strategy
	}

	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		return err
	}

	telemetry := observability.NewTelemetry(cfg.Telemetry, app.Name, app.Version, cfg.Environment)
	if err := app.RegisterComponent(telemetry); err != nil {
		return err
	}
	metrics, err := telemetry.Metrics()
	if err != nil {
		return err
	}

	d, err := buildDemo(cfg.Demo, route.WithLogger(logger.WithComponent("route")))
	if err != nil {
		return err
	}

	schedOpts := []driver.Option{
		driver.WithLogger(logger.WithComponent("driver")),
		driver.WithMetrics(metrics),
	}
	if cfg.Telemetry.Tracing {
		schedOpts = append(schedOpts, driver.WithTracing(serviceName))
	}
	scheduler, err := driver.New(cfg.Driver, d.graph, schedOpts...)
	if err != nil {
		return err
	}
	if err := app.RegisterComponent(scheduler); err != nil {
		return err
	}

	runErr := app.RunTask(ctx, app.Components.WaitAll)

	split, merge := d.split.Stats(), d.merge.Stats()
	app.Logger.Info("routing summary", logger.Fields(
		logger.FieldCount, d.count.Load(),
		"sum", d.sum.Load(),
		"split_state", d.split.State().String(),
		"split_routed", split.Routed,
		"merge_routed", merge.Routed,
		"merge_sentinels_in", merge.SentinelsIn,
		"steps", scheduler.Stats().Steps,
	))
	return runErr
}
