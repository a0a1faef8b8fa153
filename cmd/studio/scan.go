package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/vango-dev/studio/pkg/catalog"
	"github.com/vango-dev/studio/pkg/editor"
)

func scanCmd(flags *globalFlags) *cobra.Command {
	var (
		asJSON    bool
		category  string
		workspace string
		offline   bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List the components of the app",
		Long: `Scan the app's components and print the catalog.

Components come from the build server, or from the local workspace when
the build server is disabled.

Examples:
  studio scan
  studio scan --json
  studio scan --no-build-server --workspace=./app --category=buttons`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.configPath, flags.logger)
			if err != nil {
				return err
			}
			if workspace != "" {
				cfg.Workspace.Dir = workspace
			}
			if offline {
				cfg.BuildServer.Disabled = true
			}

			ed, err := editor.New(cfg, editor.Deps{Logger: flags.logger})
			if err != nil {
				return err
			}
			defer ed.Dispose()

			ed.Rescan(cmd.Context())
			comps := ed.Registry().List()
			if category != "" {
				comps = ed.Registry().ByCategory(category)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(comps)
			}
			printCatalog(out, comps)
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&asJSON, "json", false, "Print the catalog as JSON")
	f.StringVar(&category, "category", "", "Only list one category")
	f.StringVarP(&workspace, "workspace", "w", "", "Local workspace directory")
	f.BoolVar(&offline, "no-build-server", false, "Scan the local workspace only")

	return cmd
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func printCatalog(w io.Writer, comps []catalog.Metadata) {
	if len(comps) == 0 {
		fmt.Fprintln(w, "No components found.")
		return
	}

	t := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("ID", "NAME", "CATEGORY", "TAGS")
	for _, m := range comps {
		t.Row(m.ID, m.Name, m.Category, strings.Join(m.Tags, ", "))
	}

	fmt.Fprintln(w, t.String())
	fmt.Fprintf(w, "%d components\n", len(comps))
}
