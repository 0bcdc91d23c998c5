package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/garodriguezlp/local-obs-sandbox/loggen/common"
	"github.com/garodriguezlp/local-obs-sandbox/loggen/go_generator/logdb"
	generator "github.com/garodriguezlp/local-obs-sandbox/loggen/go_generator/pkg"
)

var version = "dev"

// Default command line parameters
const (
	defaultConfigPath = "config.yaml"
)

// app holds the command line flags shared by every mode
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath    string
	logsPath      string
	logFile       string
	console       string
	seed          int64
	remote        string
	remoteURL     string
	metricsPort   int
	verbose       bool
	jsonLogs      bool
	defaultConfig bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand(stdout, stderr)
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "loggen [mode] [args]",
		Short: "Synthetic application log generator",
		Long: `loggen writes realistic application log entries as JSON Lines to
logs/application.log, in batch, continuous or burst mode.
Without a mode the configured default mode (batch) runs.`,
		Version: version,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unknown mode %q", args[0])
			}
			return a.runMode(cmd, "", nil)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to YAML configuration file")
	flags.StringVarP(&a.logsPath, "logs-path", "p", "logs", "Directory of the output file")
	flags.StringVar(&a.logFile, "log-file", "application.log", "Output file name")
	flags.StringVar(&a.console, "console", common.ConsoleAuto, "Echo entries to the console: auto (continuous only), always, never")
	flags.Int64Var(&a.seed, "seed", 0, "Random seed for reproducible output (0 = random)")
	flags.StringVar(&a.remote, "remote", "", "Also push entries to: loki, victoria, elasticsearch")
	flags.StringVar(&a.remoteURL, "remote-url", "", "Base URL of the remote logging system")
	flags.IntVar(&a.metricsPort, "metrics-port", 0, "Port for Prometheus metrics server (0 = disabled)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Verbose diagnostics")
	flags.BoolVar(&a.jsonLogs, "json-logs", false, "Write diagnostics as JSON")
	flags.BoolVar(&a.defaultConfig, "default-config", false, "Create default configuration and exit")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "batch [count]",
			Short: "Write count entries and exit (default 100)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runMode(cmd, common.ModeBatch, args)
			},
		},
		&cobra.Command{
			Use:   "continuous",
			Short: "Write entries with a random delay until interrupted",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runMode(cmd, common.ModeContinuous, args)
			},
		},
		&cobra.Command{
			Use:   "burst [bursts] [per-burst]",
			Short: "Write bursts of entries separated by a pause (default 5 bursts of 50)",
			Args:  cobra.MaximumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runMode(cmd, common.ModeBurst, args)
			},
		},
	)

	return rootCmd
}

// runMode runs one generation mode. Errors from here on are runtime
// errors: they are logged and reported without the usage text.
func (a *app) runMode(cmd *cobra.Command, mode string, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	a.initLogger(a.verbose, a.jsonLogs)

	if err := a.execute(cmd, mode, args); err != nil {
		common.LogError("loggen", "run", err, logrus.Fields{"mode": mode})
		return err
	}
	return nil
}

func (a *app) execute(cmd *cobra.Command, mode string, args []string) error {
	if a.defaultConfig {
		return a.writeDefaultConfig()
	}

	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Verbose || cfg.JSONLogs {
		a.initLogger(cfg.Verbose, cfg.JSONLogs)
	}

	if mode == "" {
		mode = cfg.Mode
	}
	if err := applyArgs(cfg, mode, args); err != nil {
		return err
	}

	ctx := cmd.Context()
	db, err := a.buildOutputs(ctx, cfg, mode)
	if err != nil {
		return err
	}

	gen := generator.NewGenerator(generator.NewConfig(cfg), db, a.stdout)

	if cfg.Metrics && cfg.MetricsPort > 0 {
		metricsCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		generator.StartMetricsServer(metricsCtx, cfg.MetricsPort, gen.Stats)
	}

	common.LogDebug("loggen", "Starting generation", logrus.Fields{
		"mode":    mode,
		"file":    cfg.LogFilePath(),
		"outputs": db.Name(),
		"seed":    cfg.Seed,
	})

	return gen.RunGenerator(ctx, mode)
}

func (a *app) initLogger(verbose, jsonLogs bool) {
	if jsonLogs {
		common.InitLogger(verbose)
	} else {
		common.InitTextLogger(verbose)
	}
	common.SetLoggerOutput(a.stderr)
}

func (a *app) writeDefaultConfig() error {
	path := a.configPath
	if path == "" {
		path = defaultConfigPath
	}

	if err := common.SaveConfig(common.DefaultConfig(), path); err != nil {
		return fmt.Errorf("error creating default configuration: %w", err)
	}
	fmt.Fprintf(a.stdout, "Default configuration created in file: %s\n", path)
	return nil
}

// loadConfig reads the configuration file and overlays the flags set on the command line
func (a *app) loadConfig(cmd *cobra.Command) (*common.Config, error) {
	cfg := common.DefaultConfig()
	if a.configPath != "" {
		loaded, err := common.LoadConfig(a.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("logs-path") {
		cfg.LogsPath = a.logsPath
	}
	if flags.Changed("log-file") {
		cfg.LogFile = a.logFile
	}
	if flags.Changed("console") {
		cfg.Console = a.console
	}
	if flags.Changed("seed") {
		cfg.Seed = a.seed
	}
	if flags.Changed("remote") {
		cfg.Remote.System = a.remote
	}
	if flags.Changed("remote-url") {
		cfg.Remote.URL = a.remoteURL
	}
	if flags.Changed("metrics-port") {
		cfg.Metrics = a.metricsPort > 0
		cfg.MetricsPort = a.metricsPort
	}
	if flags.Changed("verbose") {
		cfg.Verbose = a.verbose
	}
	if flags.Changed("json-logs") {
		cfg.JSONLogs = a.jsonLogs
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Remote.URL != "" && !cfg.Remote.Enabled() {
		common.LogWarn("loggen", "Remote URL ignored, no remote system selected", logrus.Fields{"url": cfg.Remote.URL})
	}
	return cfg, nil
}

// applyArgs overrides the configured counts with positional arguments
func applyArgs(cfg *common.Config, mode string, args []string) error {
	targets := map[string][]struct {
		name  string
		value *int
	}{
		common.ModeBatch: {
			{"count", &cfg.Generator.Count},
		},
		common.ModeBurst: {
			{"bursts", &cfg.Generator.Bursts},
			{"per-burst", &cfg.Generator.PerBurst},
		},
	}

	for i, arg := range args {
		if i >= len(targets[mode]) {
			return fmt.Errorf("too many arguments for %s mode", mode)
		}
		n, err := parseCount(targets[mode][i].name, arg)
		if err != nil {
			return err
		}
		*targets[mode][i].value = n
	}
	return nil
}

// parseCount parses a non-negative integer argument
func parseCount(name, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, arg, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", name, arg)
	}
	return n, nil
}

// buildOutputs creates the file destination plus the optional console and remote ones
func (a *app) buildOutputs(ctx context.Context, cfg *common.Config, mode string) (logdb.LogDB, error) {
	options := logdb.Options{Out: a.stdout}

	file, err := logdb.CreateLogDB(logdb.KindFile, cfg.LogFilePath(), options)
	if err != nil {
		return nil, err
	}
	dbs := []logdb.LogDB{file}

	if cfg.ConsoleEnabled(mode) {
		console, err := logdb.CreateLogDB(logdb.KindConsole, "", options)
		if err != nil {
			return nil, err
		}
		dbs = append(dbs, console)
	}

	if cfg.Remote.Enabled() {
		remote, err := logdb.CreateLogDB(cfg.Remote.System, cfg.Remote.URL, logdb.Options{
			BatchSize:       cfg.Remote.BatchSize,
			Timeout:         cfg.Remote.Timeout(),
			RetryCount:      cfg.Remote.MaxRetries,
			RetryDelay:      cfg.Remote.RetryDelay(),
			ConnectionCount: cfg.Remote.Connections,
			Compress:        cfg.Remote.Compress,
			Labels:          cfg.Remote.Labels,
			IndexPrefix:     cfg.Remote.IndexPrefix,
			Out:             a.stdout,
			Verbose:         cfg.Verbose,
			Context:         ctx,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating remote destination: %w", err)
		}
		dbs = append(dbs, remote)
	}

	return logdb.NewMultiDB(dbs...), nil
}
