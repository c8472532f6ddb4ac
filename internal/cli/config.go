package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	humanize "github.com/dustin/go-humanize"

	"github.com/ALT-F4-LLC/rmaboard/internal/config"
	"github.com/ALT-F4-LLC/rmaboard/internal/db"
	"github.com/ALT-F4-LLC/rmaboard/internal/output"
	"github.com/ALT-F4-LLC/rmaboard/internal/render"
	"github.com/spf13/cobra"
)

type configInfo struct {
	DBPath          string `json:"db_path"`
	DBSizeBytes     int64  `json:"db_size_bytes"`
	SchemaVersion   int    `json:"schema_version"`
	ConfigPath      string `json:"config_path"`
	RMAPrefix       string `json:"rma_prefix"`
	Author          string `json:"author"`
	LogLevel        string `json:"log_level"`
	LogFormat       string `json:"log_format"`
	RMABoardPathEnv string `json:"rmaboard_path_env"`
	RMABoardPathSet bool   `json:"rmaboard_path_set"`
}

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Display rmaboard configuration",
	Annotations: map[string]string{"skipDB": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		info := configInfo{
			DBPath:          cfg.DBPath,
			ConfigPath:      cfg.ConfigPath,
			RMAPrefix:       cfg.RMAPrefix,
			Author:          cfg.Author,
			LogLevel:        cfg.LogLevel,
			LogFormat:       cfg.LogFormat,
			RMABoardPathEnv: os.Getenv("RMABOARD_PATH"),
			RMABoardPathSet: cfg.EnvVarSet,
		}

		exists, err := cfg.Exists()
		if err != nil {
			return cmdErr(fmt.Errorf("checking database: %w", err), output.ErrGeneral)
		}

		if !exists {
			w.Warn("No rmaboard database found. Run 'rmaboard init' to create one.")
			w.Success(info, formatConfigHuman(info, true))
			return nil
		}

		conn, err := db.Open(cfg.DBPath)
		if err != nil {
			return cmdErr(fmt.Errorf("opening database: %w", err), output.ErrGeneral)
		}
		defer conn.Close()

		info.SchemaVersion, err = db.SchemaVersion(conn)
		if err != nil {
			return cmdErr(fmt.Errorf("reading schema version: %w", err), output.ErrGeneral)
		}

		stat, err := os.Stat(cfg.DBPath)
		if err != nil {
			return cmdErr(fmt.Errorf("reading database file: %w", err), output.ErrGeneral)
		}
		info.DBSizeBytes = stat.Size()

		w.Success(info, formatConfigHuman(info, false))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write config.yaml with the default settings",
	Annotations: map[string]string{"skipDB": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)
		force, _ := cmd.Flags().GetBool("force")

		written, err := cfg.WriteSettings(config.Defaults(), force)
		if err != nil {
			return cmdErr(err, output.ErrGeneral)
		}
		if !written {
			return cmdErr(fmt.Errorf("%s already exists, use --force to overwrite", cfg.ConfigPath), output.ErrConflict)
		}

		w.Success(struct {
			Path string `json:"path"`
		}{cfg.ConfigPath}, fmt.Sprintf("Wrote %s", cfg.ConfigPath))
		return nil
	},
}

func formatEnvValue(val string) string {
	if val == "" {
		return "(not set)"
	}
	return val
}

func configRows(info configInfo, notFound bool) [][2]string {
	dbPath := info.DBPath
	if notFound {
		dbPath += " (not found)"
	}
	rows := [][2]string{{"Database path:", dbPath}}
	if !notFound {
		rows = append(rows,
			[2]string{"Database size:", humanize.Bytes(uint64(info.DBSizeBytes))},
			[2]string{"Schema version:", fmt.Sprintf("%d", info.SchemaVersion)},
		)
	}
	return append(rows,
		[2]string{"Config file:", info.ConfigPath},
		[2]string{"RMA prefix:", info.RMAPrefix},
		[2]string{"Author:", info.Author},
		[2]string{"Log level:", info.LogLevel + " (" + info.LogFormat + ")"},
		[2]string{"RMABOARD_PATH:", formatEnvValue(info.RMABoardPathEnv)},
	)
}

func formatConfigHuman(info configInfo, notFound bool) string {
	rows := configRows(info, notFound)

	if !render.ColorsEnabled() {
		var lines string
		for i, r := range rows {
			if i > 0 {
				lines += "\n"
			}
			lines += fmt.Sprintf("%-16s %s", r[0], r[1])
		}
		return lines
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(16)
	valStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))

	indicator := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("●")
	if notFound {
		indicator = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("●")
	}

	lines := headerStyle.Render("RMA Board Configuration") + "\n"
	for i, r := range rows {
		val := valStyle.Render(r[1])
		if i == 0 {
			val = indicator + " " + val
		}
		lines += fmt.Sprintf("\n  %s %s", keyStyle.Render(r[0]), val)
	}
	return lines
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
