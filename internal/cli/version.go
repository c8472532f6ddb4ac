package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/rmaboard/internal/db"
	"github.com/ALT-F4-LLC/rmaboard/internal/model"
	"github.com/ALT-F4-LLC/rmaboard/internal/render"
)

type versionInfo struct {
	Version         string `json:"version"`
	Commit          string `json:"commit"`
	BuildDate       string `json:"build_date"`
	GoVersion       string `json:"go_version"`
	SchemaVersion   int    `json:"schema_version"`
	DocumentVersion int    `json:"document_version"`
}

// buildVersion fills in the module version for binaries built with
// go install, where no version is stamped at link time.
func buildVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print rmaboard version and data format versions",
	Annotations: map[string]string{"skipDB": "true"},
	Run: func(cmd *cobra.Command, args []string) {
		w := getWriter(cmd)

		info := versionInfo{
			Version:         buildVersion(),
			Commit:          commit,
			BuildDate:       buildDate,
			GoVersion:       runtime.Version(),
			SchemaVersion:   db.LatestSchemaVersion(),
			DocumentVersion: model.DocumentVersion,
		}

		bold := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
		dim := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		msg := fmt.Sprintf("rmaboard %s %s\n%s",
			render.StyledText(info.Version, bold),
			render.StyledText(fmt.Sprintf("(commit: %s, built: %s, %s)", info.Commit, info.BuildDate, info.GoVersion), dim),
			render.StyledText(fmt.Sprintf("database schema v%d, export format v%d", info.SchemaVersion, info.DocumentVersion), dim),
		)
		w.Success(info, msg)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
