package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/ALT-F4-LLC/rmaboard/internal/config"
	"github.com/ALT-F4-LLC/rmaboard/internal/db"
	"github.com/ALT-F4-LLC/rmaboard/internal/output"
	"github.com/ALT-F4-LLC/rmaboard/internal/render"
	"github.com/ALT-F4-LLC/rmaboard/internal/tracker"

	"github.com/spf13/cobra"
)

type initResult struct {
	Path          string `json:"path"`
	DBPath        string `json:"db_path"`
	ConfigPath    string `json:"config_path"`
	SchemaVersion int    `json:"schema_version"`
	Created       bool   `json:"created"`
}

var initCmd = &cobra.Command{
	Use:         "init",
	Short:       "Initialize a new rmaboard database with the default columns",
	Annotations: map[string]string{"skipDB": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		exists, err := cfg.Exists()
		if err != nil {
			return cmdErr(fmt.Errorf("checking database: %w", err), output.ErrGeneral)
		}

		if exists {
			w.Warn("Database already exists at %s", cfg.DBPath)

			conn, err := db.Open(cfg.DBPath)
			if err != nil {
				return cmdErr(fmt.Errorf("opening database: %w", err), output.ErrGeneral)
			}
			defer conn.Close()

			schemaVersion, err := db.SchemaVersion(conn)
			if err != nil {
				return cmdErr(fmt.Errorf("reading schema version: %w", err), output.ErrGeneral)
			}

			msg := render.StyledText("Database already initialized", lipgloss.NewStyle().Foreground(lipgloss.Color("3")))
			w.Success(initResult{
				Path:          cfg.Dir,
				DBPath:        cfg.DBPath,
				ConfigPath:    cfg.ConfigPath,
				SchemaVersion: schemaVersion,
			}, msg)
			return nil
		}

		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return cmdErr(fmt.Errorf("creating directory: %w", err), output.ErrGeneral)
		}

		store, err := db.OpenStore(cfg.DBPath)
		if err != nil {
			return cmdErr(fmt.Errorf("initializing database: %w", err), output.ErrGeneral)
		}
		defer store.Close()

		// Persist the default board so the layout exists before the first ticket.
		if err := tracker.New(tracker.WithLogger(getLog(cmd))).Save(store); err != nil {
			return cmdErr(fmt.Errorf("writing default board: %w", err), output.ErrGeneral)
		}

		settings := config.Defaults()
		settings.RMAPrefix = cfg.RMAPrefix
		if _, err := cfg.WriteSettings(settings, false); err != nil {
			return cmdErr(fmt.Errorf("writing config: %w", err), output.ErrGeneral)
		}

		schemaVersion, err := db.SchemaVersion(store.DB())
		if err != nil {
			return cmdErr(fmt.Errorf("reading schema version: %w", err), output.ErrGeneral)
		}

		successMsg := render.StyledText("Initialized rmaboard database", lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")))
		w.Success(initResult{
			Path:          cfg.Dir,
			DBPath:        cfg.DBPath,
			ConfigPath:    cfg.ConfigPath,
			SchemaVersion: schemaVersion,
			Created:       true,
		}, successMsg)

		w.Info("Database created at %s", cfg.DBPath)
		w.Info("Consider adding .rmaboard/ to your .gitignore")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
