package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/devtycoon/forge/errors"
	"github.com/devtycoon/forge/graph"
)

// ValidateCmd checks a graph document without emitting source
var ValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a graph document without compiling",
	Long: `Validate a graph document and list every error and warning.
Exits non-zero when the graph has errors; warnings alone pass.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var validateLanguage string

func init() {
	ValidateCmd.Flags().StringVarP(&validateLanguage, "language", "l", "", "Also check the graph against this language")
}

func runValidate(cmd *cobra.Command, args []string) error {
	c, err := newCompiler()
	if err != nil {
		return err
	}
	g, err := loadGraph(args[0])
	if err != nil {
		return err
	}

	report := c.Check(g, graph.Language(validateLanguage))
	printIssues(report)

	stats := g.Stats()
	if !report.OK() {
		return errors.Newf("%s: %d errors", args[0], len(report.Errors()))
	}
	pterm.Success.Printfln("%s is valid (%d nodes, %d connections, %d warnings)",
		args[0], stats.TotalNodes, stats.TotalEdges, len(report.Warnings()))
	return nil
}
