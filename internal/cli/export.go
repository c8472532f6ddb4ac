package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/rmaboard/internal/output"
	"github.com/ALT-F4-LLC/rmaboard/internal/tracker"
)

type transferResult struct {
	Path      string `json:"path"`
	Format    string `json:"format"`
	Tickets   int    `json:"tickets"`
	Customers int    `json:"customers"`
}

// formatFor picks the document format from an explicit flag value or, when
// that is empty, from the file extension.
func formatFor(flag, path string) string {
	if flag != "" {
		return strings.ToLower(flag)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return tracker.FormatYAML
	default:
		return tracker.FormatJSON
	}
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every ticket, customer and the board layout to a document",
	Long: `Write every ticket, customer and the board layout to a document.

Without --file the document is printed to stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)
		path, _ := cmd.Flags().GetString("file")
		flag, _ := cmd.Flags().GetString("format")
		format := formatFor(flag, path)

		doc := t.Document()
		data, err := tracker.EncodeDocument(doc, format)
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		if path == "" {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return cmdErr(fmt.Errorf("writing %s: %w", path, err), output.ErrGeneral)
		}
		w.Success(transferResult{Path: path, Format: format, Tickets: len(doc.Tickets), Customers: len(doc.Customers)},
			fmt.Sprintf("Exported %d ticket(s) and %d customer(s) to %s", len(doc.Tickets), len(doc.Customers), path))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Replace all data with the contents of a document",
	Long: `Replace all data with the contents of a document.

Relationship entries in older shapes (bare IDs, partial objects) are
normalized. A document without a board layout has its board rebuilt from
ticket status history.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)
		flag, _ := cmd.Flags().GetString("format")
		force, _ := cmd.Flags().GetBool("force")
		path := args[0]

		var data []byte
		var err error
		if path == "-" {
			data, err = io.ReadAll(io.LimitReader(cmd.InOrStdin(), 64*maxStdinSize))
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return cmdErr(fmt.Errorf("reading %s: %w", path, err), output.ErrGeneral)
		}

		format := formatFor(flag, path)
		doc, err := tracker.DecodeDocument(data, format)
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		if len(t.ListTickets()) > 0 && !force {
			if !interactive(cmd) {
				return cmdErr(fmt.Errorf("refusing to replace existing tickets without --force"), output.ErrConflict)
			}
			ok, err := confirm("Replace all existing tickets and customers?", "Replace")
			if err != nil {
				return cmdErr(fmt.Errorf("interactive form failed: %w", err), output.ErrGeneral)
			}
			if !ok {
				w.Info("Cancelled.")
				return nil
			}
		}

		if err := t.Load(doc); err != nil {
			return cmdErr(err, output.ErrValidation)
		}
		loaded := t.Document()
		w.Success(transferResult{Path: path, Format: format, Tickets: len(loaded.Tickets), Customers: len(loaded.Customers)},
			fmt.Sprintf("Imported %d ticket(s) and %d customer(s)", len(loaded.Tickets), len(loaded.Customers)))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("file", "o", "", "Write to a file instead of stdout")
	exportCmd.Flags().String("format", "", "Document format: json or yaml (default from extension)")
	importCmd.Flags().String("format", "", "Document format: json or yaml (default from extension)")
	importCmd.Flags().BoolP("force", "f", false, "Replace existing data without confirmation")
	rootCmd.AddCommand(exportCmd, importCmd)
}
