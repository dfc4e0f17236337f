package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/kbukum/depdep/app"
	"github.com/kbukum/depdep/config"
	"github.com/kbukum/depdep/di"
	"github.com/kbukum/depdep/logger"
	"github.com/kbukum/depdep/observability"
	"github.com/kbukum/depdep/version"
)

// Flags holds the command-line configuration.
type Flags struct {
	ConfigFile string
	EnvFile    string
	Port       int
	Root       string
	Version    bool
}

// parseFlags parses command-line arguments. Port -1 and an empty root mean
// "not set on the command line".
func parseFlags(args []string, output io.Writer) (Flags, error) {
	var f Flags
	fs := pflag.NewFlagSet(app.ServiceName, pflag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVarP(&f.ConfigFile, "config", "c", "", "Path to the YAML config file (searched for when empty).")
	fs.StringVar(&f.EnvFile, "env-file", "", "Path to a .env file (searched for when empty).")
	fs.IntVarP(&f.Port, "port", "p", -1, "Port to listen on, overriding server.port.")
	fs.StringVar(&f.Root, "root", "", "Directory to serve, overriding static.root.")
	fs.BoolVarP(&f.Version, "version", "v", false, "Print the version and exit.")
	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}
	return f, nil
}

func (f Flags) loaderOptions() []config.LoaderOption {
	var opts []config.LoaderOption
	if f.ConfigFile != "" {
		opts = append(opts, config.WithConfigFile(f.ConfigFile))
	}
	if f.EnvFile != "" {
		opts = append(opts, config.WithEnvFile(f.EnvFile))
	}
	return opts
}

// loadConfig loads the config and applies the flag overrides.
func loadConfig(f Flags, extra ...config.LoaderOption) (*app.Config, error) {
	cfg, err := app.LoadConfig(append(f.loaderOptions(), extra...)...)
	if err != nil {
		return nil, err
	}
	if f.Port >= 0 {
		cfg.Server.Port = f.Port
	}
	if f.Root != "" {
		cfg.Static.Root = f.Root
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	f, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}
	if f.Version {
		fmt.Fprintln(stdout, version.Get())
		return nil
	}
	cfg, err := loadConfig(f)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)

	shutdown, err := observability.Setup(ctx, cfg.Observability, observability.Service{
		Name:        cfg.Name,
		Version:     cfg.Version,
		Environment: cfg.Environment,
	})
	if err != nil {
		return fmt.Errorf("setup observability: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn("Observability shutdown failed", logger.ErrorFields("shutdown", err))
		}
	}()

	metrics, err := observability.NewMetrics(observability.Meter(cfg.Name))
	if err != nil {
		return err
	}

	subs := di.Substitutions{}
	app.Names.Config.Substitute(subs, cfg)
	app.Names.Logger.Substitute(subs, log)
	app.Names.Metrics.Substitute(subs, metrics)

	a, err := app.BuildApplication(subs,
		app.WithLogger(log),
		app.WithObserver(observability.NewFactoryObserver(ctx, observability.Tracer(cfg.Name), metrics)),
	)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", app.ServiceName, err)
		os.Exit(1)
	}
}
