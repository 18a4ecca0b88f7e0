package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/travi-platform/travictl/internal/adapters/audit/sqlite"
	"github.com/travi-platform/travictl/internal/api"
	"github.com/travi-platform/travictl/internal/app"
	"github.com/travi-platform/travictl/internal/config"
	"github.com/travi-platform/travictl/internal/domain"
	"github.com/travi-platform/travictl/internal/platform"
	"github.com/travi-platform/travictl/internal/tui"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// main handles main.
func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run runs the requested command flow.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// rootFlags holds CLI-level overrides resolved before config loading.
type rootFlags struct {
	configPath string
	baseURL    string
	token      string
	appName    string
	devMode    bool
}

// newRootCommand builds the travictl command tree. The bare command starts
// the interactive console; subcommands drive the same service from scripts.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	flags := &rootFlags{appName: "travictl"}
	if envApp := strings.TrimSpace(os.Getenv("TRAVICTL_APP_NAME")); envApp != "" {
		flags.appName = envApp
	}
	flags.devMode = version == "dev"
	if envDev, ok := parseBoolEnv("TRAVICTL_DEV_MODE"); ok {
		flags.devMode = envDev
	}

	root := &cobra.Command{
		Use:           "travictl",
		Short:         "operator console for TRAVI change plans",
		Long:          "travictl is an operator console for the TRAVI change-management API.\nWithout a subcommand it opens the interactive plan board.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(flags, stderr)
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config TOML")
	root.PersistentFlags().StringVar(&flags.baseURL, "base-url", "", "admin API base URL override")
	root.PersistentFlags().StringVar(&flags.token, "token", "", "admin API bearer token override")
	root.PersistentFlags().StringVar(&flags.appName, "app", flags.appName, "application name for config/data path resolution")
	root.PersistentFlags().BoolVar(&flags.devMode, "dev", flags.devMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(
		newPlansCommand(flags, stdout, stderr),
		newStatsCommand(flags, stdout, stderr),
		newActionCommand(flags, stdout, stderr, domain.ActionApprove),
		newActionCommand(flags, stdout, stderr, domain.ActionApply),
		newActionCommand(flags, stdout, stderr, domain.ActionDryRun),
		newActionCommand(flags, stdout, stderr, domain.ActionRollback),
		newAuditCommand(flags, stdout, stderr),
		newPathsCommand(flags, stdout),
	)
	return root
}

// runtime bundles the wired service and its cleanup for one command run.
type runtime struct {
	cfg     config.Config
	paths   platform.Paths
	logger  *runtimeLogger
	service *app.Service
	cleanup func()
}

// newRuntime resolves paths and config, then wires the API client, audit
// log, and plan service.
func newRuntime(flags *rootFlags, stderr io.Writer) (*runtime, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: flags.appName,
		DevMode: flags.devMode,
	})
	if err != nil {
		return nil, err
	}

	configPath := strings.TrimSpace(flags.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("TRAVICTL_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(paths.AuditDBPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if baseURL := resolveOverride(flags.baseURL, "TRAVICTL_BASE_URL"); baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if token := resolveOverride(flags.token, "TRAVICTL_TOKEN"); token != "" {
		cfg.API.Token = token
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %q: %w", configPath, err)
	}

	logger, err := newRuntimeLogger(stderr, flags.appName, flags.devMode, cfg.Logging, paths.LogDir, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	logger.Info("startup configuration resolved", "app", flags.appName, "dev_mode", flags.devMode, "base_url", cfg.API.BaseURL)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Debug("dev file logging enabled", "path", devPath)
	}

	client, err := api.NewClient(cfg.API.BaseURL, cfg.API.Token,
		api.WithTimeout(time.Duration(cfg.API.TimeoutSeconds)*time.Second))
	if err != nil {
		closeLogger(logger, stderr)
		return nil, fmt.Errorf("configure api client: %w", err)
	}

	opts := []app.Option{app.WithLogger(logger)}
	var repo *sqlite.Repository
	if cfg.Audit.Enabled {
		repo, err = sqlite.Open(cfg.Audit.Path)
		if err != nil {
			closeLogger(logger, stderr)
			return nil, fmt.Errorf("open audit log %q: %w", cfg.Audit.Path, err)
		}
		logger.Info("audit log ready", "path", cfg.Audit.Path)
		opts = append(opts, app.WithAuditLog(repo))
	}

	rt := &runtime{
		cfg:     cfg,
		paths:   paths,
		logger:  logger,
		service: app.NewService(client, opts...),
	}
	rt.cleanup = func() {
		if repo != nil {
			if closeErr := repo.Close(); closeErr != nil {
				logger.Warn("audit log close failed", "path", cfg.Audit.Path, "err", closeErr)
			}
		}
		closeLogger(logger, stderr)
	}
	return rt, nil
}

// runConsole wires the runtime and hands control to the plan board.
func runConsole(flags *rootFlags, stderr io.Writer) error {
	rt, err := newRuntime(flags, stderr)
	if err != nil {
		return err
	}
	defer rt.cleanup()

	// Keep TUI rendering clean: runtime logs stay in the dev-file sink
	// while the board is active.
	rt.logger.SetConsoleEnabled(false)

	tab, _ := domain.ParseTab(rt.cfg.Console.DefaultTab)
	m := tui.NewModel(
		rt.service,
		tui.WithDefaultTab(tab),
		tui.WithConfirmApply(rt.cfg.Console.ConfirmApply),
		tui.WithConfirmRollback(rt.cfg.Console.ConfirmRollback),
	)
	rt.logger.Info("starting console program loop")
	if _, err := programFactory(m).Run(); err != nil {
		rt.logger.Error("console program terminated with error", "err", err)
		return fmt.Errorf("run console program: %w", err)
	}
	rt.logger.Info("command flow complete", "command", "console")
	return nil
}

// resolveOverride prefers the flag value, then the environment variable.
func resolveOverride(flagValue, envName string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(envName))
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// closeLogger closes the dev-file sink and reports failures on stderr.
func closeLogger(logger *runtimeLogger, stderr io.Writer) {
	if err := logger.Close(); err != nil {
		_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", err)
	}
}
