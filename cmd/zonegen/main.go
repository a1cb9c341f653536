package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"zonegen/internal/apply"
	"zonegen/internal/engine"
	"zonegen/internal/metrics"
	"zonegen/internal/model"
	"zonegen/internal/parser"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	policyProvider string
	policyFile     string
	dbConnStr      string
	logLevel       string
	logFile        string
	defaultLog     bool

	update       bool
	assumeYes    bool
	outFile      string
	metricsFile  string
	applyTimeout time.Duration
	wrapper      string
	shell        string
	sessionCheck bool
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "zonegen",
		Short: "Zone-based firewall policy generator for EdgeOS",
		Long: `zonegen compiles zones, groups and inter-zone rules into the firewall
and zone-policy configuration commands of an EdgeOS router, and can apply
them to the running configuration.`,
		Version:      version,
		SilenceUsage: true,
		RunE:         run,
	}

	// Policy source and logging
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&policyProvider, "provider", "hcl", "Policy provider type: 'hcl', 'yaml', 'mariadb' or 'sqlite'")
	pf.StringVar(&policyFile, "policy", "", "Policy file (for 'hcl' and 'yaml' providers)")
	pf.StringVar(&dbConnStr, "db", "", "Database connection string (for 'mariadb' and 'sqlite' providers)")
	pf.StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	pf.StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")
	pf.BoolVarP(&defaultLog, "log", "l", false, "Enable default logging on every ruleset")

	// Output and apply
	rootCmd.Flags().BoolVarP(&update, "update", "U", false, "Apply the generated commands to the running configuration")
	rootCmd.Flags().BoolVar(&assumeYes, "yes", false, "Apply without asking for confirmation")
	rootCmd.Flags().StringVar(&outFile, "out", "", "Write commands to this file instead of stdout")
	rootCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write run metrics to this Prometheus textfile")
	rootCmd.Flags().DurationVar(&applyTimeout, "timeout", 2*time.Minute, "Maximum time allowed for applying the configuration")
	rootCmd.Flags().StringVar(&wrapper, "wrapper", apply.DefaultWrapper, "Configuration command wrapper")
	rootCmd.Flags().StringVar(&shell, "shell", apply.DefaultShell, "Shell that runs the wrapped commands")
	rootCmd.Flags().BoolVar(&sessionCheck, "session-check", true, "Require an active configuration session before applying")

	rootCmd.AddCommand(newDiffCmd())

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := setupLogger(logLevel, logFile).With("run_id", uuid.NewString())
	slog.SetDefault(logger)

	slog.Info("Starting zone policy generator", "version", version)

	result, err := compilePolicy(logger)
	if err != nil {
		return err
	}

	if err := writeCommands(cmd.OutOrStdout(), outFile, result.Commands); err != nil {
		slog.Error("Failed to write commands", "path", outFile, "error", err)
		return err
	}

	var reg *metrics.Registry
	if metricsFile != "" {
		reg = metrics.New()
		reg.RecordCompile(result.Stats, time.Now())
	}

	var applyErr error
	if update {
		var attempted bool
		attempted, applyErr = applyCommands(cmd, logger, result.Commands)
		if reg != nil && attempted {
			reg.RecordApply(applyErr == nil)
		}
	}

	if reg != nil {
		if err := reg.WriteTextfile(metricsFile); err != nil {
			slog.Error("Failed to write metrics", "path", metricsFile, "error", err)
			if applyErr == nil {
				return err
			}
		}
	}

	return applyErr
}

func compilePolicy(logger *slog.Logger) (*engine.Result, error) {
	slog.Info("Loading policy...", "provider", policyProvider)
	policy, err := loadPolicy(policyProvider, policyFile, dbConnStr)
	if err != nil {
		slog.Error("Failed to load policy", "error", err)
		return nil, err
	}
	slog.Info("Successfully loaded policy", "zones", len(policy.Zones), "groups", len(policy.Groups), "rules", len(policy.Rules))

	result, err := engine.Compile(policy, engine.Options{DefaultLog: defaultLog, Logger: logger})
	if err != nil {
		slog.Error("Failed to compile policy", "error", err)
		return nil, err
	}
	slog.Info("Compilation complete",
		"commands", len(result.Commands),
		"rulesets", result.Stats.Rulesets,
		"rule_instances", result.Stats.RuleInstances,
		"duplicates", result.Stats.Duplicates,
		"lint_warnings", result.Stats.Warnings,
		"duration", result.Stats.Duration)
	return result, nil
}

// applyCommands reports whether an apply was attempted, which is false when
// the operator declines or the prompt fails.
func applyCommands(cmd *cobra.Command, logger *slog.Logger, commands []string) (bool, error) {
	if !assumeYes {
		ok, err := apply.Confirm(newPrompter(cmd), fmt.Sprintf("Apply %d commands to the running configuration?", len(commands)), "n")
		if err != nil {
			slog.Error("Confirmation failed", "error", err)
			return false, err
		}
		if !ok {
			slog.Info("Apply cancelled by operator")
			return false, nil
		}
	}

	a := apply.NewShellApplier()
	a.Shell = shell
	a.Wrapper = wrapper
	a.Logger = logger
	if !sessionCheck {
		a.SessionAPI = ""
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, applyTimeout)
	defer cancel()

	out, err := a.Apply(ctx, commands)
	if out != nil && out.Stdout != "" {
		fmt.Fprint(cmd.ErrOrStderr(), out.Stdout)
	}
	if err != nil {
		slog.Error("Failed to apply configuration", "error", err)
		return true, err
	}
	return true, nil
}

func newPrompter(cmd *cobra.Command) apply.Prompter {
	if f, ok := cmd.InOrStdin().(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return apply.HuhPrompter{}
	}
	return apply.LinePrompter{In: cmd.InOrStdin(), Out: cmd.ErrOrStderr()}
}

func writeCommands(stdout io.Writer, path string, commands []string) error {
	w := stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	for _, c := range commands {
		if _, err := fmt.Fprintln(w, c); err != nil {
			return err
		}
	}
	return nil
}

func setupLogger(level, logFilePath string) *slog.Logger {
	var logWriter io.Writer = os.Stderr
	if logFilePath != "" {
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			logWriter = f
		}
		// The logger isn't set up yet; fall back to stderr silently.
	}

	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "INFO":
		lvl = slog.LevelInfo
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: lvl}))
}

func loadPolicy(provider, path, dsn string) (*model.Policy, error) {
	switch provider {
	case "hcl", "yaml":
		if path == "" {
			return nil, fmt.Errorf("policy file path must be provided for %s provider", provider)
		}
		if provider == "hcl" {
			return parser.LoadHCLFile(path)
		}
		return parser.LoadYAMLFile(path)
	case "mariadb", "sqlite":
		if dsn == "" {
			return nil, fmt.Errorf("database connection string must be provided for %s provider", provider)
		}
		driver := "sqlite"
		if provider == "mariadb" {
			driver = "mysql"
		}
		p, err := parser.OpenSQL(driver, dsn)
		if err != nil {
			return nil, err
		}
		defer p.Close()
		if err := p.Parse(); err != nil {
			return nil, err
		}
		return &p.Policy, nil
	default:
		return nil, fmt.Errorf("unknown policy provider: %s", provider)
	}
}
