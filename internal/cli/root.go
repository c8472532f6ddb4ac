// Package cli implements the rmaboard command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/rmaboard/internal/config"
	"github.com/ALT-F4-LLC/rmaboard/internal/db"
	"github.com/ALT-F4-LLC/rmaboard/internal/kanban"
	"github.com/ALT-F4-LLC/rmaboard/internal/logging"
	"github.com/ALT-F4-LLC/rmaboard/internal/output"
	"github.com/ALT-F4-LLC/rmaboard/internal/tracker"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type contextKey string

const (
	cfgKey     contextKey = "cfg"
	logKey     contextKey = "log"
	sessionKey contextKey = "session"
)

// session is the open store and the tracker loaded from it for one command.
type session struct {
	store   *db.Store
	tracker *tracker.Tracker
	loaded  uint64
}

// CmdError wraps an error with a machine-readable error code for structured output.
type CmdError struct {
	Err  error
	Code output.ErrorCode
}

func (e *CmdError) Error() string { return e.Err.Error() }

func (e *CmdError) Unwrap() error { return e.Err }

func cmdErr(err error, code output.ErrorCode) *CmdError {
	return &CmdError{Err: err, Code: code}
}

// codeFor classifies tracker and board errors.
func codeFor(err error) output.ErrorCode {
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		return output.ErrNotFound
	case errors.Is(err, tracker.ErrValidation),
		errors.Is(err, tracker.ErrSelfRelation),
		errors.Is(err, kanban.ErrInvalidWipLimit):
		return output.ErrValidation
	case errors.Is(err, kanban.ErrWipLimitExceeded),
		errors.Is(err, kanban.ErrHoldingColumnNotEmpty),
		errors.Is(err, tracker.ErrDuplicateCustomer):
		return output.ErrConflict
	default:
		return output.ErrGeneral
	}
}

// failed wraps a tracker error with its classified code.
func failed(err error) *CmdError {
	return cmdErr(err, codeFor(err))
}

var rootCmd = &cobra.Command{
	Use:     "rmaboard",
	Short:   "Local-first RMA repair ticket tracker",
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Resolve()
		if err != nil {
			return err
		}

		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = slog.LevelDebug
		}
		log, err := logging.New(os.Stderr, level, cfg.LogFormat)
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		ctx := context.WithValue(cmd.Context(), cfgKey, cfg)
		ctx = context.WithValue(ctx, logKey, log)

		if _, ok := cmd.Annotations["skipDB"]; ok {
			cmd.SetContext(ctx)
			return nil
		}

		if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
			return cmdErr(
				fmt.Errorf("no rmaboard database found, run 'rmaboard init' to create one"),
				output.ErrNotFound,
			)
		}

		store, err := db.OpenStore(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}

		t, err := tracker.Open(store,
			tracker.WithLogger(log),
			tracker.WithRMAPrefix(cfg.RMAPrefix),
			tracker.WithAuthor(cfg.Author),
		)
		if err != nil {
			store.Close()
			return fmt.Errorf("loading board: %w", err)
		}

		s := &session{store: store, tracker: t, loaded: t.Version()}
		cmd.SetContext(context.WithValue(ctx, sessionKey, s))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		s, ok := cmd.Context().Value(sessionKey).(*session)
		if !ok || s == nil {
			return nil
		}
		defer s.store.Close()

		if s.tracker.Version() == s.loaded {
			return nil
		}
		if err := s.tracker.Save(s.store); err != nil {
			return fmt.Errorf("saving board: %w", err)
		}
		getLog(cmd).Debug("board saved", "version", s.tracker.Version())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug diagnostics to stderr")
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func getWriter(cmd *cobra.Command) *output.Writer {
	jsonMode, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")
	return output.New(jsonMode, quietMode)
}

func getCfg(cmd *cobra.Command) *config.Config {
	cfg, _ := cmd.Context().Value(cfgKey).(*config.Config)
	return cfg
}

func getLog(cmd *cobra.Command) *slog.Logger {
	if l, ok := cmd.Context().Value(logKey).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

func getTracker(cmd *cobra.Command) *tracker.Tracker {
	s, _ := cmd.Context().Value(sessionKey).(*session)
	if s == nil {
		return nil
	}
	return s.tracker
}

// Execute runs the root command and returns an exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		jsonMode, _ := rootCmd.PersistentFlags().GetBool("json")
		quietMode, _ := rootCmd.PersistentFlags().GetBool("quiet")
		w := output.New(jsonMode, quietMode)

		var ce *CmdError
		if errors.As(err, &ce) {
			return w.Error(ce.Err, ce.Code)
		}
		return w.Error(err, output.ErrGeneral)
	}
	return 0
}
