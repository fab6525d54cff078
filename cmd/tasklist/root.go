package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tasklist/tasklist/internal/config"
	"github.com/tasklist/tasklist/internal/logging"
	"github.com/tasklist/tasklist/internal/store"
	"github.com/tasklist/tasklist/internal/sync"
	"github.com/tasklist/tasklist/internal/trello"
	"github.com/tasklist/tasklist/internal/ui"
)

// Version is set at build time.
var Version = "dev"

// Command groups shown in help.
const (
	groupCreate  = "create"
	groupPending = "pending"
	groupBoard   = "board"
	groupReports = "reports"
	groupSearch  = "search"
)

// skipSetup marks commands that run without a loaded configuration.
const skipSetup = "skip-setup"

// Options injects paths and collaborators, mostly for tests. The zero value
// uses the per-user locations and the real terminal.
type Options struct {
	DBPath     string // local task cache (default: XDG data dir)
	LogPath    string // debug log (default: XDG state dir)
	HTTPClient *http.Client
	Prompter   Prompter
	Now        func() time.Time
}

// app carries the state shared by every command of one invocation.
type app struct {
	opts   *Options
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	verbose    bool
	noColor    bool

	cfg      *config.Config
	logger   *zap.Logger
	closeLog func()
	store    *store.Store
	client   *trello.Client
	syncer   *sync.Syncer
	prompter Prompter
}

// Execute runs the CLI with the given arguments and IO and returns the
// process exit code.
func Execute(args []string, stdin io.Reader, stdout, stderr io.Writer, opts *Options) int {
	if opts == nil {
		opts = &Options{}
	}
	a := &app{opts: opts, stdin: stdin, stdout: stdout, stderr: stderr}
	defer a.close()

	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasklist",
		Short:   "Task list CLI with Trello integration",
		Version: Version,
		Long: `tasklist captures tasks from the command line and mirrors them to a Trello
board. Tasks added while Trello is unreachable are kept in a local queue and
uploaded later, in the order they were added.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ui.SetColor(ui.ColorEnabled(a.stdout, a.noColor))
			if cmd.Annotations[skipSetup] == "true" || cmd.Name() == "help" {
				return nil
			}
			return a.setup(cmd.Context())
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath(), "Path to configuration file")
	cmd.PersistentFlags().BoolVar(&a.verbose, "debug", false, "Show debug log output")
	cmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	cmd.AddGroup(
		&cobra.Group{ID: groupCreate, Title: "Task Creation (online/offline):"},
		&cobra.Group{ID: groupPending, Title: "Pending Task Management (offline):"},
		&cobra.Group{ID: groupBoard, Title: "Trello Board Interaction (online):"},
		&cobra.Group{ID: groupReports, Title: "Reports:"},
		&cobra.Group{ID: groupSearch, Title: "Search:"},
	)

	cmd.AddCommand(
		newAddCmd(a),
		newImportCmd(a),
		newSubCmd(a),
		newListCmd(a),
		newEditCmd(a),
		newViewCmd(a),
		newRemoveCmd(a),
		newShowCmd(a),
		newDoneCmd(a),
		newUploadCmd(a),
		newReportsCmd(a),
		newSearchCmd(a),
		newConfigureCmd(a),
	)
	return cmd
}

// setup loads the configuration and wires the logger, the local store, the
// Trello client and the syncer.
func (a *app) setup(ctx context.Context) error {
	if _, err := os.Stat(a.configPath); err == nil {
		if err := config.SecurePermissions(a.configPath); err != nil {
			_, _ = fmt.Fprintf(a.stderr, "Error setting permissions on %s: %v\n", a.configPath, err)
		}
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			return fmt.Errorf("%w\nPlease run 'tasklist configure' to create one", err)
		}
		return err
	}
	a.cfg = cfg

	logPath := a.opts.LogPath
	if logPath == "" {
		if logPath, err = config.LogPath(); err != nil {
			return err
		}
	}
	logger, closeLog, err := logging.New(logging.Options{
		Verbose: a.verbose,
		Level:   cfg.LogLevel,
		LogFile: logPath,
		Console: a.stderr,
	})
	if err != nil {
		return err
	}
	a.logger, a.closeLog = logger, closeLog

	dbPath := a.opts.DBPath
	if dbPath == "" {
		if dbPath, err = config.DataPath(); err != nil {
			return err
		}
	}
	a.store, err = store.Open(ctx, dbPath, logger)
	if err != nil {
		return err
	}

	clientOpts := []trello.Option{trello.WithLogger(logger)}
	if a.opts.HTTPClient != nil {
		clientOpts = append(clientOpts, trello.WithHTTPClient(a.opts.HTTPClient))
	}
	a.client = trello.New(trello.Credentials{
		APIKey:  cfg.Trello.APIKey,
		Token:   cfg.Trello.Token,
		BoardID: cfg.Trello.BoardID,
		ListID:  cfg.Trello.ListID,
		BaseURL: cfg.Trello.BaseURL,
	}, clientOpts...)
	a.syncer = sync.New(a.store, a.client, logger)

	logger.Debug("configuration loaded", zap.String("config", a.configPath), zap.String("db", dbPath))
	return nil
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.closeLog != nil {
		a.closeLog()
	}
}

func (a *app) now() time.Time {
	if a.opts.Now != nil {
		return a.opts.Now()
	}
	return time.Now()
}

func (a *app) prompt() Prompter {
	if a.prompter == nil {
		a.prompter = a.opts.Prompter
		if a.prompter == nil {
			a.prompter = newPrompter(a.stdin, a.stdout)
		}
	}
	return a.prompter
}

// printf writes to stdout.
func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.stdout, format, args...)
}

// warnf writes a message to stderr without failing the command.
func (a *app) warnf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.stderr, format+"\n", args...)
}

// fail reports a problem with the request that leaves nothing changed. The
// command still exits 0.
func (a *app) fail(format string, args ...any) error {
	_, _ = fmt.Fprintf(a.stderr, "%s "+format+"\n", append([]any{ui.RenderFail("Error:")}, args...)...)
	return nil
}

func parseTaskNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid task number: '%s'. Must be a valid integer", s)
	}
	return n, nil
}

// pick returns the n-th (1-based) item. It reports false after printing why
// when there is no such item.
func pick[T any](a *app, items []T, n int) (T, bool) {
	var zero T
	if len(items) == 0 {
		_ = a.fail("There are no tasks to perform this action on.")
		return zero, false
	}
	if n < 1 || n > len(items) {
		_ = a.fail("Invalid task number. Please enter a number between 1 and %d.", len(items))
		return zero, false
	}
	return items[n-1], true
}
